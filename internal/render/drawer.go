package render

import (
	"github.com/wandb/lovely-chart/internal/axes"
)

// Ruler is the minimap's range selector, in pixels.
type Ruler struct {
	Begin, End float64
	EarWidth   float64
}

// Frame is one drawing of a surface.
type Frame struct {
	Pass Pass

	XTicks  []axes.Tick
	YScales []axes.Scale

	// FocusX is the pixel x of the hovered label, if any.
	FocusX *float64

	// Ruler is set for the minimap.
	Ruler *Ruler
}

// Drawer draws frames on a surface.
type Drawer interface {
	Draw(frame Frame)
}

// DrawerFunc adapts a function to the Drawer interface.
type DrawerFunc func(frame Frame)

func (f DrawerFunc) Draw(frame Frame) {
	f(frame)
}
