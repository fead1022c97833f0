// Package render draws prepared chart passes on a terminal canvas.
//
// All geometry reaching this package is already projected to pixels.
// On a terminal a pixel is one Braille dot: a cell is two pixels wide
// and four pixels high.
package render

import (
	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/chartstate"
	"github.com/wandb/lovely-chart/internal/formulas"
	"github.com/wandb/lovely-chart/internal/points"
	"github.com/wandb/lovely-chart/internal/projection"
)

// Pass is everything needed to draw the datasets of one frame, either on
// the plot or on the minimap.
type Pass struct {
	Data  *chartdata.ChartData
	State *chartstate.RenderState

	// Window is the label window the points were prepared for.
	Window points.Window

	// Points holds the prepared points of every dataset, in dataset order.
	Points     [][]points.Point
	Projection *projection.Projection

	// SecondaryPoints and SecondaryProjection are set for charts with a
	// second y axis and belong to the last dataset.
	SecondaryPoints     []points.Point
	SecondaryProjection *projection.Projection

	Visibilities []float64
	LineWidth    float64

	// Minimap is set for the minimap pass. Pies are drawn as areas there.
	Minimap bool

	// SimplificationDelta is the tolerance lines and areas are simplified
	// with. It is zero unless the pass holds enough points in total.
	SimplificationDelta float64
}

// PassParams describes how to prepare a pass.
type PassParams struct {
	Data  *chartdata.ChartData
	State *chartstate.RenderState

	Width, Height float64

	// Begin and End are the x range shown.
	Begin, End float64

	// YMin and YMax bound the primary axis, YMinSecond and YMaxSecond the
	// second one.
	YMin, YMax             float64
	YMinSecond, YMaxSecond float64

	XPadding, YPadding float64

	// Window is the label window to prepare.
	Window points.Window

	Minimap bool

	// SimplificationFactor scales the base simplification delta.
	SimplificationFactor float64

	LineWidth float64
}

// Prepare projects a chart state into a pass.
func Prepare(p PassParams) Pass {
	data := p.Data
	visibilities := points.Visibilities(data.Datasets, p.State.Opacity)

	proj := projection.New(projection.Params{
		Begin:           p.Begin,
		End:             p.End,
		TotalXWidth:     float64(data.TotalXWidth()),
		YMin:            p.YMin,
		YMax:            p.YMax,
		AvailableWidth:  p.Width,
		AvailableHeight: p.Height,
		XPadding:        p.XPadding,
		YPadding:        p.YPadding,
	})

	pieToArea := p.Minimap
	pass := Pass{
		Data:         data,
		State:        p.State,
		Window:       p.Window,
		Projection:   proj,
		Visibilities: visibilities,
		LineWidth:    p.LineWidth,
		Minimap:      p.Minimap,
		Points: points.Prepare(
			data, data.Datasets, p.Window, visibilities,
			points.Bounds{YMin: p.YMin, YMax: p.YMax},
			pieToArea,
		),
	}

	if data.HasSecondYAxis && len(data.Datasets) > 0 {
		last := len(data.Datasets) - 1
		pass.SecondaryProjection = proj.Copy(projection.Overrides{
			YMin: &p.YMinSecond,
			YMax: &p.YMaxSecond,
		})
		pass.SecondaryPoints = points.Prepare(
			data, data.Datasets[last:], p.Window, visibilities[last:],
			points.Bounds{YMin: p.YMinSecond, YMax: p.YMaxSecond},
			pieToArea,
		)[0]
	}

	totalPoints := 0
	for _, pts := range pass.Points {
		totalPoints += len(pts)
	}
	pass.SimplificationDelta = formulas.SimplificationDelta(totalPoints) * p.SimplificationFactor

	return pass
}

// DrawType returns how a dataset is drawn in this pass.
func (p Pass) DrawType(ds chartdata.Dataset) chartdata.ChartType {
	if ds.Type == chartdata.TypePie && p.Minimap {
		return chartdata.TypeArea
	}
	return ds.Type
}

// DatasetPoints returns the points and projection a dataset is drawn
// with.
func (p Pass) DatasetPoints(i int) ([]points.Point, *projection.Projection) {
	if p.Data.Datasets[i].HasOwnYAxis && p.SecondaryProjection != nil {
		return p.SecondaryPoints, p.SecondaryProjection
	}
	if i >= len(p.Points) {
		return nil, p.Projection
	}
	return p.Points[i], p.Projection
}
