// Package chartstate derives the render state of a chart from its range,
// filter and viewport, and animates changes between states.
package chartstate

import (
	"maps"
	"math"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/formulas"
	"github.com/wandb/lovely-chart/internal/transition"
)

// Size is a viewport size in pixels.
type Size struct {
	Width, Height float64
}

// Layout holds the axis metrics used to pick grid densities.
type Layout struct {
	AxesMaxColumnWidth float64
	AxesMaxRowHeight   float64
	XAxisHeight        float64
}

func DefaultLayout() Layout {
	return Layout{
		AxesMaxColumnWidth: formulas.AxesMaxColumnWidth,
		AxesMaxRowHeight:   formulas.AxesMaxRowHeight,
		XAxisHeight:        formulas.XAxisHeight,
	}
}

// PointerVector locates the pointer relative to the center of a pie.
type PointerVector struct {
	Angle    float64 // radians, clockwise from 12 o'clock
	Distance float64 // pixels
}

// Focus is the hovered label, and for pies the pointer position.
type Focus struct {
	LabelIndex int
	Pointer    *PointerVector
}

// RenderState is everything needed to draw one frame.
//
// A state delivered to the draw callback holds interpolated values;
// Static always points at the target the interpolation converges to.
type RenderState struct {
	TotalXWidth int

	Begin, End float64

	// LabelFromIndex and LabelToIndex bound the labels to draw, including
	// one label of overscan on each side except for pies.
	LabelFromIndex float64
	LabelToIndex   float64

	XAxisScale       float64
	YAxisScale       float64
	YAxisScaleSecond float64

	YMinViewport       float64
	YMaxViewport       float64
	YMinViewportSecond float64
	YMaxViewportSecond float64

	YMinMinimap       float64
	YMaxMinimap       float64
	YMinMinimapSecond float64
	YMaxMinimapSecond float64

	// Opacity maps dataset keys to 1 (shown) or 0 (hidden), interpolated
	// while a dataset fades.
	Opacity map[string]float64

	Filter  chartdata.Filter
	FocusOn *Focus

	// MinimapDelta, when positive, snaps the range to multiples of it.
	MinimapDelta float64

	// Transitions describes the properties in flight, by property name.
	Transitions map[string]transition.Snapshot

	Static *RenderState
}

// Range returns the state's range.
func (s *RenderState) Range() chartdata.Range {
	return chartdata.Range{Begin: s.Begin, End: s.End}
}

// Clone returns a copy of the state that shares no maps with s.
func (s *RenderState) Clone() *RenderState {
	c := *s
	c.Opacity = maps.Clone(s.Opacity)
	c.Filter = s.Filter.Clone()
	c.Transitions = maps.Clone(s.Transitions)
	return &c
}

// Input is everything Compute depends on.
type Input struct {
	Data         *chartdata.ChartData
	Viewport     Size
	Range        chartdata.Range
	Filter       chartdata.Filter
	Focus        *Focus
	MinimapDelta float64
	Layout       Layout
}

type yBounds struct {
	min, max float64
	ok       bool
}

// Compute derives the target render state. It is a pure function of its
// input and the previous state, which supplies fallbacks when nothing is
// visible. prev may be nil.
func Compute(in Input, prev *RenderState) *RenderState {
	data := in.Data
	rng := in.Range
	total := data.TotalXWidth()

	from, to := labelWindow(data, rng)

	visible := float64(to - from)
	if visible <= 0 {
		visible = 1
	}
	maxColumns := math.Max(math.Floor(in.Viewport.Width/in.Layout.AxesMaxColumnWidth), 1)
	xAxisScale := formulas.XStepToScaleLevel(visible / maxColumns)

	var viewport, minimap, viewportSecond, minimapSecond yBounds
	if data.IsStacked {
		viewport, minimap = stackedBounds(data, in.Filter, from, to)
	} else {
		viewport, minimap = plainBounds(data, in.Filter, from, to, false)
		viewportSecond, minimapSecond = plainBounds(data, in.Filter, from, to, true)
	}

	state := &RenderState{
		TotalXWidth:  total,
		Begin:        rng.Begin,
		End:          rng.End,
		XAxisScale:   xAxisScale,
		Opacity:      make(map[string]float64, len(data.Datasets)),
		Filter:       in.Filter.Clone(),
		FocusOn:      in.Focus,
		MinimapDelta: in.MinimapDelta,
	}

	if data.IsPie {
		state.LabelFromIndex = float64(from)
		state.LabelToIndex = float64(to)
	} else {
		state.LabelFromIndex = float64(max(0, from-1))
		state.LabelToIndex = float64(min(total, to+1))
	}

	for _, ds := range data.Datasets {
		if in.Filter.Visible(ds.Key) {
			state.Opacity[ds.Key] = 1
		} else {
			state.Opacity[ds.Key] = 0
		}
	}

	maxRows := math.Max(
		math.Floor((in.Viewport.Height-in.Layout.XAxisHeight)/in.Layout.AxesMaxRowHeight),
		1,
	)

	state.YMinViewport, state.YMaxViewport = resolve(viewport, prev, data,
		func(p *RenderState) (float64, float64) { return p.YMinViewport, p.YMaxViewport })
	state.YMinMinimap, state.YMaxMinimap = resolve(minimap, prev, data,
		func(p *RenderState) (float64, float64) { return p.YMinMinimap, p.YMaxMinimap })
	state.YAxisScale, state.YMinViewport = snapAxis(
		state.YMinViewport, state.YMaxViewport, maxRows)

	if data.HasSecondYAxis {
		state.YMinViewportSecond, state.YMaxViewportSecond = resolve(viewportSecond, prev, data,
			func(p *RenderState) (float64, float64) {
				return p.YMinViewportSecond, p.YMaxViewportSecond
			})
		state.YMinMinimapSecond, state.YMaxMinimapSecond = resolve(minimapSecond, prev, data,
			func(p *RenderState) (float64, float64) {
				return p.YMinMinimapSecond, p.YMaxMinimapSecond
			})
		state.YAxisScaleSecond, state.YMinViewportSecond = snapAxis(
			state.YMinViewportSecond, state.YMaxViewportSecond, maxRows)
	}

	return state
}

// labelWindow returns the inclusive label indices covered by the range,
// without overscan.
//
// Pie charts treat the n labels as n equal bins so that a range of
// width 1/n selects exactly one label.
func labelWindow(data *chartdata.ChartData, rng chartdata.Range) (int, int) {
	if data.IsPie {
		n := len(data.XLabels)
		from := min(max(ceil(float64(n)*rng.Begin), 0), n-1)
		to := min(floor(float64(n)*rng.End), n) - 1
		return from, min(max(to, from), n-1)
	}

	total := data.TotalXWidth()
	from := max(0, ceil(float64(total)*rng.Begin))
	to := min(floor(float64(total)*rng.End), total)
	if to < from {
		// The range lies between two labels.
		from, to = to, from
	}
	return from, to
}

// labelEpsilon absorbs the rounding error of range fractions such as 3/7.
const labelEpsilon = 1e-9

func ceil(x float64) int {
	return int(math.Ceil(x - labelEpsilon))
}

func floor(x float64) int {
	return int(math.Floor(x + labelEpsilon))
}

func plainBounds(
	data *chartdata.ChartData,
	filter chartdata.Filter,
	from, to int,
	secondAxis bool,
) (viewport, minimap yBounds) {
	viewport.min, viewport.max = math.Inf(1), math.Inf(-1)
	minimap.min, minimap.max = math.Inf(1), math.Inf(-1)

	for _, ds := range data.Datasets {
		if ds.HasOwnYAxis != secondAxis || !filter.Visible(ds.Key) {
			continue
		}

		lo, hi := chartdata.MinMax(ds.Values[from : to+1])
		viewport.min = math.Min(viewport.min, lo)
		viewport.max = math.Max(viewport.max, hi)
		minimap.min = math.Min(minimap.min, ds.YMin)
		minimap.max = math.Max(minimap.max, ds.YMax)
	}

	for _, b := range []*yBounds{&viewport, &minimap} {
		if math.IsInf(b.min, 0) || math.IsInf(b.max, 0) {
			continue
		}
		b.ok = true
		if zeroBased(b.min, b.max) {
			b.min = 0
		}
	}
	return viewport, minimap
}

// zeroBased reports whether the y axis of non-negative data should start
// at zero: when the data is flat, or its minimum is small relative to
// its maximum.
func zeroBased(lo, hi float64) bool {
	if lo < 0 {
		return false
	}
	return lo == hi || lo/hi <= formulas.YAxisZeroBasedThreshold
}

func stackedBounds(
	data *chartdata.ChartData,
	filter chartdata.Filter,
	from, to int,
) (viewport, minimap yBounds) {
	sums := make([]float64, len(data.XLabels))
	shown := false
	for _, ds := range data.Datasets {
		if !filter.Visible(ds.Key) {
			continue
		}
		shown = true
		for i, v := range ds.Values {
			if formulas.IsFinite(v) {
				sums[i] += v
			}
		}
	}
	if !shown {
		return viewport, minimap
	}

	minimap = yBounds{min: 0, max: maxOf(sums), ok: true}
	viewport = yBounds{min: 0, max: maxOf(sums[from : to+1]), ok: true}
	return viewport, minimap
}

func maxOf(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		m = math.Max(m, v)
	}
	return m
}

// resolve returns the computed bounds, or the previous state's bounds if
// nothing was visible, or the data's bounds if there is no previous state.
func resolve(
	b yBounds,
	prev *RenderState,
	data *chartdata.ChartData,
	fromPrev func(*RenderState) (float64, float64),
) (float64, float64) {
	switch {
	case b.ok:
		return b.min, b.max
	case prev != nil:
		return fromPrev(prev)
	default:
		return data.YMin, data.YMax
	}
}

// snapAxis picks the y scale level for the bounds and snaps the minimum
// down to a multiple of the level's step.
func snapAxis(yMin, yMax, maxRows float64) (level, snappedMin float64) {
	level = formulas.YStepToScaleLevel((yMax - yMin) / maxRows)
	step := formulas.YScaleLevelToStep(level)
	return level, math.Floor(yMin/step) * step
}
