package tui

import (
	"math"

	"github.com/wandb/lovely-chart/internal/chartdata"
)

// panRange moves rng by a fraction of its width, keeping it inside 0..1.
func panRange(rng chartdata.Range, fraction float64) chartdata.Range {
	width := rng.End - rng.Begin
	shift := width * fraction
	shift = math.Max(shift, -rng.Begin)
	shift = math.Min(shift, 1-rng.End)
	return chartdata.Range{Begin: rng.Begin + shift, End: rng.End + shift}
}

// scaleRange grows or shrinks rng around its center by factor. The width
// stays between minWidth and the whole extent.
func scaleRange(rng chartdata.Range, factor, minWidth float64) chartdata.Range {
	width := rng.End - rng.Begin
	next := math.Min(math.Max(width*factor, minWidth), 1)
	center := (rng.Begin + rng.End) / 2

	begin := center - next/2
	begin = math.Min(math.Max(begin, 0), 1-next)
	return chartdata.Range{Begin: begin, End: begin + next}
}
