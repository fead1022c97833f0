package render

import (
	"math"
	"strconv"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/wandb/lovely-chart/internal/axes"
	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/formulas"
	"github.com/wandb/lovely-chart/internal/points"
	"github.com/wandb/lovely-chart/internal/projection"
	"github.com/wandb/lovely-chart/internal/simplify"
	"github.com/wandb/lovely-chart/internal/theme"
)

// Canvas is a Drawer on a grid of terminal cells.
type Canvas struct {
	model      canvas.Model
	cols, rows int
	theme      theme.Theme

	// cache may be nil, in which case lines are simplified uncached.
	cache *simplify.Cache
}

var _ Drawer = &Canvas{}

func NewCanvas(cols, rows int, th theme.Theme, cache *simplify.Cache) *Canvas {
	cols, rows = max(cols, 1), max(rows, 1)
	return &Canvas{
		model: canvas.New(cols, rows),
		cols:  cols,
		rows:  rows,
		theme: th,
		cache: cache,
	}
}

// Resize changes the canvas size in cells and clears it.
func (c *Canvas) Resize(cols, rows int) {
	c.cols, c.rows = max(cols, 1), max(rows, 1)
	c.model.Resize(c.cols, c.rows)
	c.model.ViewWidth, c.model.ViewHeight = c.cols, c.rows
	c.model.Clear()
}

func (c *Canvas) SetTheme(th theme.Theme) {
	c.theme = th
}

// PixelSize returns the drawable size in pixels.
func (c *Canvas) PixelSize() (width, height float64) {
	return float64(c.cols * 2), float64(c.rows * 4)
}

// View renders the canvas as a string of styled lines.
func (c *Canvas) View() string {
	return c.model.View()
}

// Draw replaces the canvas content with a frame.
func (c *Canvas) Draw(frame Frame) {
	c.model.Clear()

	pass := frame.Pass
	if pass.Data == nil {
		return
	}

	c.drawGrid(frame.YScales)
	if frame.FocusX != nil && (pass.Data.IsLines || pass.Data.IsAreas) {
		focus := newDots(c.cols, c.rows)
		_, height := pass.Projection.Size()
		focus.column(*frame.FocusX, 0, height)
		focus.draw(&c.model, c.style(c.theme.GridLines, 1))
	}

	c.drawDatasets(pass)

	c.drawYLabels(pass.Data, frame.YScales)
	c.drawXLabels(frame.XTicks)

	if frame.Ruler != nil {
		c.drawRuler(*frame.Ruler)
	}
}

func (c *Canvas) style(color lipgloss.Color, opacity float64) lipgloss.Style {
	return c.theme.Foreground(color, opacity)
}

func (c *Canvas) drawGrid(scales []axes.Scale) {
	for _, scale := range scales {
		if scale.Secondary {
			continue
		}
		for _, tick := range scale.Ticks {
			if tick.Opacity <= 0 {
				continue
			}
			layer := newDots(c.cols, c.rows)
			layer.row(tick.Pos)
			layer.draw(&c.model, c.style(c.theme.GridLines, tick.Opacity))
		}
	}
}

func (c *Canvas) drawDatasets(pass Pass) {
	data := pass.Data

	var focus *int
	if f := pass.State.FocusOn; f != nil && (data.IsBars || data.IsSteps) && !pass.Minimap {
		focus = &f.LabelIndex
	}

	if data.IsPie && !pass.Minimap {
		c.drawPie(pass)
		return
	}

	for i, ds := range data.Datasets {
		if i >= len(pass.Visibilities) || pass.Visibilities[i] <= 0 {
			continue
		}

		opacity := pass.Visibilities[i]
		if data.IsStacked {
			opacity = 1
		}
		color := c.theme.DatasetColor(data, ds.Key)
		pts, proj := pass.DatasetPoints(i)

		layer := newDots(c.cols, c.rows)
		faded := newDots(c.cols, c.rows)

		switch pass.DrawType(ds) {
		case chartdata.TypeBar:
			c.bars(layer, faded, pts, proj, focus)
		case chartdata.TypeStep:
			c.steps(layer, faded, pts, proj, focus)
		case chartdata.TypeArea:
			c.area(layer, pts, proj, data.IsStacked, pass.SimplificationDelta)
		default:
			c.line(layer, pts, proj, pass.SimplificationDelta)
		}

		faded.draw(&c.model, c.style(color, opacity/2))
		layer.draw(&c.model, c.style(color, opacity))
	}
}

func pixelsOf(pts []points.Point, proj *projection.Projection) []simplify.Point {
	pixels := make([]simplify.Point, 0, len(pts))
	for _, p := range pts {
		if !formulas.IsFinite(p.StackValue) {
			continue
		}
		x, y := proj.ToPixels(float64(p.LabelIndex), p.StackValue)
		pixels = append(pixels, simplify.Point{X: x, Y: y})
	}
	return pixels
}

func polyline(layer *dots, pixels []simplify.Point) {
	if len(pixels) == 1 {
		layer.set(pixels[0].X, pixels[0].Y)
		return
	}
	for i := 1; i < len(pixels); i++ {
		a, b := pixels[i-1], pixels[i]
		layer.line(a.X, a.Y, b.X, b.Y)
	}
}

func (c *Canvas) line(layer *dots, pts []points.Point, proj *projection.Projection, delta float64) {
	polyline(layer, c.cache.Simplify(pixelsOf(pts, proj), delta))
}

func (c *Canvas) steps(
	layer, faded *dots,
	pts []points.Point,
	proj *projection.Projection,
	focus *int,
) {
	var pixels []simplify.Point
	for _, p := range pts {
		if !formulas.IsFinite(p.StackValue) {
			continue
		}
		x0, y := proj.ToPixels(float64(p.LabelIndex)-formulas.PlotBarsWidthShift, p.StackValue)
		x1, _ := proj.ToPixels(float64(p.LabelIndex)+formulas.PlotBarsWidthShift, p.StackValue)
		pixels = append(pixels, simplify.Point{X: x0, Y: y}, simplify.Point{X: x1, Y: y})
	}

	if focus == nil {
		polyline(layer, pixels)
		return
	}

	polyline(faded, pixels)
	for i, p := range pts {
		if p.LabelIndex == *focus && 2*i+1 < len(pixels) {
			polyline(layer, pixels[2*i:2*i+2])
		}
	}
}

func (c *Canvas) bars(
	layer, faded *dots,
	pts []points.Point,
	proj *projection.Projection,
	focus *int,
) {
	yMin := proj.Params().YMin
	width := proj.XFactor()

	for _, p := range pts {
		if !formulas.IsFinite(p.StackValue) {
			continue
		}
		target := layer
		if focus != nil && p.LabelIndex != *focus {
			target = faded
		}

		_, bottom := proj.ToPixels(float64(p.LabelIndex), math.Max(p.StackOffset, yMin))
		x, top := proj.ToPixels(float64(p.LabelIndex), p.StackValue)

		from := math.Round(x - width/2)
		to := math.Max(math.Round(x+width/2)-1, from)
		for xi := from; xi <= to; xi++ {
			target.column(xi, top, bottom)
		}
	}
}

// area fills the band between each point's stack offset and its stack
// value. Unstacked areas are filled down to the bottom of the plot.
//
// With a positive delta the top edge is simplified and only the points it
// keeps are filled between.
func (c *Canvas) area(
	layer *dots,
	pts []points.Point,
	proj *projection.Projection,
	stacked bool,
	delta float64,
) {
	yMin := proj.Params().YMin
	if delta > 0 {
		pts = c.simplifyArea(pts, proj, delta)
	}

	edges := func(p points.Point) (x, top, bottom float64) {
		base := yMin
		if stacked {
			base = p.StackOffset
		}
		x, top = proj.ToPixels(float64(p.LabelIndex), p.StackValue)
		_, bottom = proj.ToPixels(float64(p.LabelIndex), base)
		return x, top, bottom
	}

	if len(pts) == 1 {
		x, top, bottom := edges(pts[0])
		layer.column(x, top, bottom)
		return
	}

	for i := 1; i < len(pts); i++ {
		x0, top0, bottom0 := edges(pts[i-1])
		x1, top1, bottom1 := edges(pts[i])
		if x1 <= x0 {
			continue
		}

		from := math.Max(math.Ceil(x0), 0)
		to := math.Min(math.Floor(x1), float64(layer.width-1))
		for x := from; x <= to; x++ {
			t := (x - x0) / (x1 - x0)
			layer.column(x, top0+(top1-top0)*t, bottom0+(bottom1-bottom0)*t)
		}
	}
}

func (c *Canvas) simplifyArea(
	pts []points.Point,
	proj *projection.Projection,
	delta float64,
) []points.Point {
	finite := make([]points.Point, 0, len(pts))
	for _, p := range pts {
		if formulas.IsFinite(p.StackValue) {
			finite = append(finite, p)
		}
	}

	kept := c.cache.Keep(pixelsOf(finite, proj), delta)
	simplified := make([]points.Point, len(kept))
	for i, idx := range kept {
		simplified[i] = finite[idx]
	}
	return simplified
}

// drawPie draws one sector per visible dataset, clockwise from 12
// o'clock in dataset order. The hovered sector is moved out of the pie.
func (c *Canvas) drawPie(pass Pass) {
	data := pass.Data

	values := make([]float64, len(data.Datasets))
	total := 0.0
	for i := range data.Datasets {
		if i >= len(pass.Points) || len(pass.Points[i]) == 0 || pass.Visibilities[i] <= 0 {
			continue
		}
		v := pass.Points[i][0].VisibleValue
		if !data.IsStacked {
			v *= pass.Visibilities[i]
		}
		if formulas.IsFinite(v) && v > 0 {
			values[i] = v
			total += v
		}
	}
	if total <= 0 {
		return
	}

	cx, cy := pass.Projection.Center()
	radius := formulas.PieRadius(pass.Projection.Size())
	pointer := pass.State.FocusOn

	offset := 0.0
	for i, ds := range data.Datasets {
		if values[i] == 0 {
			continue
		}
		share := values[i] / total
		begin := offset / total * 2 * math.Pi
		end := (offset + values[i]) / total * 2 * math.Pi
		offset += values[i]

		mid := (begin + end) / 2
		dirX, dirY := math.Sin(mid), -math.Cos(mid)

		shift := 0.0
		if pointer != nil && pointer.Pointer != nil {
			pv := pointer.Pointer
			if begin <= pv.Angle && pv.Angle < end && pv.Distance <= radius {
				shift = formulas.PlotPieShift
			}
		}
		sx, sy := cx+dirX*shift, cy+dirY*shift

		layer := newDots(c.cols, c.rows)
		for y := math.Floor(sy - radius); y <= sy+radius; y++ {
			for x := math.Floor(sx - radius); x <= sx+radius; x++ {
				dx, dy := x+0.5-sx, y+0.5-sy
				if math.Hypot(dx, dy) > radius {
					continue
				}
				angle := math.Atan2(dx, -dy)
				if angle < 0 {
					angle += 2 * math.Pi
				}
				if begin <= angle && angle < end {
					layer.set(x, y)
				}
			}
		}

		color := c.theme.DatasetColor(data, ds.Key)
		layer.draw(&c.model, c.style(color, 1))

		if share >= formulas.PiePercentMinimumVisible {
			textShift := radius * formulas.PieTextShiftFactor
			c.text(
				sx+dirX*textShift, sy+dirY*textShift,
				strconv.Itoa(int(math.Round(share*100)))+"%",
				lipgloss.NewStyle().
					Foreground(c.theme.Background).
					Background(color).
					Bold(true),
			)
		}
	}
}

// text draws a string centered on a pixel position.
func (c *Canvas) text(x, y float64, s string, style lipgloss.Style) {
	width := runewidth.StringWidth(s)
	col := int(math.Round(x/2)) - width/2
	col = min(max(col, 0), max(c.cols-width, 0))
	row := min(max(int(math.Floor(y/4)), 0), c.rows-1)
	c.model.SetStringWithStyle(canvas.Point{X: col, Y: row}, s, style)
}

func (c *Canvas) drawXLabels(ticks []axes.Tick) {
	for _, tick := range ticks {
		c.text(tick.Pos, float64(c.rows*4-1), tick.Text, c.style(c.theme.XAxisText, tick.Opacity))
	}
}

func (c *Canvas) drawYLabels(data *chartdata.ChartData, scales []axes.Scale) {
	for _, scale := range scales {
		for _, tick := range scale.Ticks {
			if tick.Opacity <= 0 {
				continue
			}

			color := c.theme.YAxisText
			if scale.DatasetKey != "" {
				color = c.theme.DatasetColor(data, scale.DatasetKey)
			}
			style := c.style(color, tick.Opacity)

			// Labels sit on the cell row above their grid line.
			row := min(max(int(math.Floor(tick.Pos/4))-1, 0), c.rows-1)

			if scale.Secondary {
				c.rightAligned(row, tick.Text, style)
			} else {
				c.model.SetStringWithStyle(canvas.Point{X: 0, Y: row}, tick.Text, style)
			}
			if tick.AltText != "" {
				c.rightAligned(row, tick.AltText, style)
			}
		}
	}
}

func (c *Canvas) rightAligned(row int, s string, style lipgloss.Style) {
	col := max(c.cols-runewidth.StringWidth(s), 0)
	c.model.SetStringWithStyle(canvas.Point{X: col, Y: row}, s, style)
}

// drawRuler masks the minimap outside the selected range and highlights
// the slider's ears.
func (c *Canvas) drawRuler(r Ruler) {
	begin := int(math.Floor(r.Begin / 2))
	end := int(math.Ceil(r.End / 2))
	ear := max(int(math.Round(r.EarWidth/2)), 1)

	mask := lipgloss.NewStyle().Background(c.theme.MinimapMask)
	slider := lipgloss.NewStyle().Background(c.theme.MinimapSlider)

	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			var bg lipgloss.Style
			switch {
			case col < begin || col >= end:
				bg = mask
			case col < begin+ear || col >= end-ear:
				bg = slider
			default:
				continue
			}

			p := canvas.Point{X: col, Y: row}
			cell := c.model.Cell(p)
			style := cell.Style.Inherit(bg)
			if cell.Rune == 0 {
				cell.Rune = ' '
			}
			c.model.SetCell(p, canvas.NewCellWithStyle(cell.Rune, style))
		}
	}
}
