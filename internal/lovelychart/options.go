package lovelychart

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wandb/lovely-chart/internal/chartstate"
	"github.com/wandb/lovely-chart/internal/formulas"
	"github.com/wandb/lovely-chart/internal/frameloop"
	"github.com/wandb/lovely-chart/internal/observability"
	"github.com/wandb/lovely-chart/internal/render"
	"github.com/wandb/lovely-chart/internal/theme"
	"github.com/wandb/lovely-chart/internal/zoomer"
)

// DefaultResizeDelay is how long a chart waits for resizing to stop.
const DefaultResizeDelay = 150 * time.Millisecond

type ChartOption func(c *Chart)

// WithLoop sets the loop the chart runs on.
func WithLoop(loop frameloop.Loop) ChartOption {
	return func(c *Chart) {
		c.loop = loop
	}
}

// WithDrawers sets the surfaces the plot and the minimap are drawn on.
func WithDrawers(plot, minimap render.Drawer) ChartOption {
	return func(c *Chart) {
		c.plotDrawer = plot
		c.minimapDrawer = minimap
	}
}

// WithDataSource makes the chart zoomable through the source.
func WithDataSource(source zoomer.DataSource) ChartOption {
	return func(c *Chart) {
		c.source = source
	}
}

func WithTheme(name theme.Name) ChartOption {
	return func(c *Chart) {
		c.themeName = name
	}
}

func WithLogger(logger *observability.CoreLogger) ChartOption {
	return func(c *Chart) {
		c.logger = logger
	}
}

// WithRegisterer registers the chart's metrics. Charts sharing a
// registerer share their metrics.
func WithRegisterer(registerer prometheus.Registerer) ChartOption {
	return func(c *Chart) {
		c.registerer = registerer
	}
}

// WithSize sets the plot and minimap sizes in pixels. The plot size
// includes the x axis.
func WithSize(plot, minimap chartstate.Size) ChartOption {
	return func(c *Chart) {
		c.plotSize = plot
		c.minimapSize = minimap
	}
}

func WithLayout(layout chartstate.Layout) ChartOption {
	return func(c *Chart) {
		c.layout = layout
	}
}

// WithAnimations turns transitions on or off. Without animations every
// change jumps to its target.
func WithAnimations(enabled bool) ChartOption {
	return func(c *Chart) {
		c.animations = enabled
	}
}

// WithMinFPS sets the frame rate below which animations are skipped.
func WithMinFPS(fps float64) ChartOption {
	return func(c *Chart) {
		c.minFPS = fps
	}
}

func WithZoomTimeout(timeout time.Duration) ChartOption {
	return func(c *Chart) {
		c.zoomTimeout = timeout
	}
}

func WithResizeDelay(delay time.Duration) ChartOption {
	return func(c *Chart) {
		c.resizeDelay = delay
	}
}

// WithSimplification sets the factors applied to the simplification
// tolerance of the plot and of the minimap.
func WithSimplification(plotFactor, minimapFactor float64) ChartOption {
	return func(c *Chart) {
		c.plotFactor = plotFactor
		c.minimapFactor = minimapFactor
	}
}

// WithMinimapEarWidth sets the width of the minimap selector's handles
// in pixels.
func WithMinimapEarWidth(width float64) ChartOption {
	return func(c *Chart) {
		c.earWidth = width
	}
}

// WithZoomCallback is called when a zoom completes or is aborted.
func WithZoomCallback(fn func(dir zoomer.Direction, err error)) ChartOption {
	return func(c *Chart) {
		c.onZoom = fn
	}
}

func defaults(c *Chart) {
	c.themeName = theme.Day
	c.layout = chartstate.DefaultLayout()
	c.animations = true
	c.resizeDelay = DefaultResizeDelay
	c.zoomTimeout = formulas.ZoomTimeout
	c.plotFactor = formulas.SimplifierPlotFactor
	c.minimapFactor = formulas.SimplifierMinimapFactor
	c.earWidth = formulas.MinimapEarWidth
	c.plotSize = chartstate.Size{Width: 600, Height: 320}
	c.minimapSize = chartstate.Size{Width: 600, Height: 40}
}
