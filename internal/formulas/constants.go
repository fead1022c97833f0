package formulas

import "time"

// Animation.
const (
	TransitionDefaultDuration = 300 * time.Millisecond
	TransitionFastDuration    = 200 * time.Millisecond
	TransitionAxesDuration    = 400 * time.Millisecond

	// ZoomTimeout separates the phases of a zoom when animations are fast.
	ZoomTimeout = 300 * time.Millisecond

	// ZoomRangeDelta is the width of the range shown after zooming into
	// data whose labels do not line up with the clicked label.
	ZoomRangeDelta = 0.1

	// ZoomPieLabels is the number of labels in a synthesized pie window.
	ZoomPieLabels = 7
)

// Axes layout, in pixels.
const (
	AxesMaxColumnWidth = 45
	AxesMaxRowHeight   = 50
	XAxisHeight        = 30
	GutterWidth        = 10

	YAxisZeroBasedThreshold = 0.1
)

// Simplification.
const (
	SimplifierMinPoints     = 1000
	SimplifierPlotFactor    = 1.0
	SimplifierMinimapFactor = 2.0
)

// Minimap.
const (
	MinimapEarWidth            = 8
	MinimapMaxAnimatedDatasets = 4
)

// Plot.
const (
	PlotPieRadiusFactor      = 0.45
	PiePercentMinimumVisible = 0.02
	PlotBarsWidthShift       = 0.5

	// PlotPieShift moves the hovered sector out of the pie, in pixels.
	PlotPieShift = 3

	// PieTextShiftFactor places sector labels along the radius.
	PieTextShiftFactor = 0.6
)
