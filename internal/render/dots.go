package render

import (
	"math"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/canvas/graph"
	"github.com/charmbracelet/lipgloss"

	"github.com/wandb/lovely-chart/internal/formulas"
)

// dots is a layer of Braille dots drawn in a single style.
type dots struct {
	grid          *graph.BrailleGrid
	width, height int
	empty         bool
}

func newDots(cols, rows int) *dots {
	return &dots{
		grid:   graph.NewBrailleGrid(cols, rows, 0, 1, 0, 1),
		width:  cols * 2,
		height: rows * 4,
		empty:  true,
	}
}

// set turns on the dot nearest to a pixel position.
func (d *dots) set(x, y float64) {
	xi, yi := int(math.Floor(x)), int(math.Floor(y))
	if xi < 0 || yi < 0 || xi >= d.width || yi >= d.height {
		return
	}
	d.grid.Set(canvas.Point{X: xi, Y: yi})
	d.empty = false
}

// line draws a segment using Bresenham's algorithm after clipping it to
// the layer.
//
// See https://en.wikipedia.org/wiki/Bresenham%27s_line_algorithm.
func (d *dots) line(x0, y0, x1, y1 float64) {
	x0, y0, x1, y1, ok := d.clip(x0, y0, x1, y1)
	if !ok {
		return
	}

	ax, ay := int(math.Floor(x0)), int(math.Floor(y0))
	bx, by := int(math.Floor(x1)), int(math.Floor(y1))

	dx, dy := abs(bx-ax), abs(by-ay)
	sx, sy := 1, 1
	if ax > bx {
		sx = -1
	}
	if ay > by {
		sy = -1
	}

	err := dx - dy
	x, y := ax, ay
	for {
		d.set(float64(x), float64(y))
		if x == bx && y == by {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// clip restricts a segment to the layer with the Liang–Barsky algorithm.
func (d *dots) clip(x0, y0, x1, y1 float64) (float64, float64, float64, float64, bool) {
	for _, v := range []float64{x0, y0, x1, y1} {
		if !formulas.IsFinite(v) {
			return 0, 0, 0, 0, false
		}
	}

	maxX, maxY := float64(d.width)-0.5, float64(d.height)-0.5
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0

	edges := [4][2]float64{
		{-dx, x0},
		{dx, maxX - x0},
		{-dy, y0},
		{dy, maxY - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = math.Max(t0, r)
		} else {
			t1 = math.Min(t1, r)
		}
		if t0 > t1 {
			return 0, 0, 0, 0, false
		}
	}

	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

// column fills a vertical run of dots between two pixel heights.
func (d *dots) column(x, y0, y1 float64) {
	if !formulas.IsFinite(y0) || !formulas.IsFinite(y1) {
		return
	}
	top, bottom := math.Min(y0, y1), math.Max(y0, y1)
	top = math.Max(top, 0)
	bottom = math.Min(bottom, float64(d.height)-1)
	for y := math.Floor(top); y <= bottom; y++ {
		d.set(x, y)
	}
}

// row draws a horizontal line across the layer.
func (d *dots) row(y float64) {
	for x := 0; x < d.width; x++ {
		d.set(float64(x), y)
	}
}

func (d *dots) draw(m *canvas.Model, style lipgloss.Style) {
	if d.empty {
		return
	}
	graph.DrawBraillePatterns(m, canvas.Point{}, d.grid.BraillePatterns(), style)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
