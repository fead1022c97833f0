// Package formulas holds the scale tables and small numeric helpers shared
// by the state manager, the axes and the drawing code.
package formulas

import "math"

// yScaleSteps are the allowed distances between horizontal grid lines.
var yScaleSteps = []float64{
	1, 2, 8, 18, 50, 100, 250, 500, 1000, 1500, 2000, 2500, 5000, 10000,
	25000, 50000, 100000, 250000, 500000, 1000000, 2500000, 5000000,
	10000000, 25000000, 50000000, 100000000,
}

// XScaleLevelToStep returns the label step for an x scale level.
func XScaleLevelToStep(level float64) float64 {
	return math.Pow(2, level)
}

// XStepToScaleLevel returns the smallest level whose step covers the given
// number of labels per column. Levels are never negative.
func XStepToScaleLevel(step float64) float64 {
	if !(step > 1) {
		return 0
	}
	return math.Ceil(math.Log2(step))
}

// YScaleLevelToStep returns the grid step for a (possibly interpolated)
// y scale level.
func YScaleLevelToStep(level float64) float64 {
	i := int(math.Floor(level))
	switch {
	case i < 0:
		i = 0
	case i >= len(yScaleSteps):
		i = len(yScaleSteps) - 1
	}
	return yScaleSteps[i]
}

// YStepToScaleLevel returns the index of the first step not smaller than
// the needed step, or the last index if none is.
func YStepToScaleLevel(neededStep float64) float64 {
	for i, step := range yScaleSteps {
		if step >= neededStep {
			return float64(i)
		}
	}
	return float64(len(yScaleSteps) - 1)
}

// SimplificationDelta returns the base tolerance, in pixels, for a series
// of the given total length. Short series are never simplified.
func SimplificationDelta(totalPoints int) float64 {
	if totalPoints < SimplifierMinPoints {
		return 0
	}
	return 1
}

// PieRadius returns the radius of a pie inscribed in a plot of the
// given size.
func PieRadius(width, height float64) float64 {
	return math.Min(width, height) * PlotPieRadiusFactor
}

// EdgeOpacity fades content that approaches either edge of [0, length].
func EdgeOpacity(opacity, position, length float64) float64 {
	fadeZone := GutterWidth * 2.0
	offset := math.Min(position, length-position)
	if offset >= fadeZone {
		return opacity
	}
	if offset <= 0 {
		return 0
	}
	return opacity * offset / fadeZone
}

// TopEdgeOpacity fades content that approaches the top edge only.
func TopEdgeOpacity(opacity, position float64) float64 {
	return EdgeOpacity(opacity, position, math.Inf(1))
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
