// Package minimap implements the overview strip below a chart: a static
// drawing of the whole chart with a draggable range selector.
package minimap

import (
	"math"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/chartstate"
	"github.com/wandb/lovely-chart/internal/formulas"
	"github.com/wandb/lovely-chart/internal/points"
	"github.com/wandb/lovely-chart/internal/render"
)

// Target is the part of the range selector under the pointer.
type Target int

const (
	None Target = iota
	Slider
	LeftEar
	RightEar
)

func (t Target) String() string {
	switch t {
	case Slider:
		return "slider"
	case LeftEar:
		return "left ear"
	case RightEar:
		return "right ear"
	default:
		return "none"
	}
}

// drag is the state of a pointer drag on the selector.
type drag struct {
	target Target

	// anchor is the pointer x where the drag started.
	anchor float64

	// begin and end are the selector edges, in pixels, at capture time.
	begin, end float64
}

// Minimap tracks the selected range and the state it was last drawn
// with.
//
// While a drag is in progress the minimap owns the range: range updates
// coming from the chart are ignored until the pointer is released.
type Minimap struct {
	data     *chartdata.ChartData
	width    float64
	earWidth float64
	factor   float64

	rng     chartdata.Range
	onRange func(chartdata.Range)

	drag *drag

	// state is the state last drawn.
	state *chartstate.RenderState
	stale bool

	// delta, when positive, snaps dragged ranges to its multiples.
	delta float64
}

// Params configure a minimap.
type Params struct {
	Data *chartdata.ChartData

	// Width is the minimap width in pixels.
	Width float64

	// EarWidth is the width of the selector's handles in pixels.
	EarWidth float64

	// SimplificationFactor scales the simplification tolerance.
	// Defaults to formulas.SimplifierMinimapFactor.
	SimplificationFactor float64

	// OnRange receives every range chosen by dragging.
	OnRange func(chartdata.Range)
}

func New(params Params) *Minimap {
	m := &Minimap{
		data:     params.Data,
		width:    params.Width,
		earWidth: params.EarWidth,
		factor:   params.SimplificationFactor,
		onRange:  params.OnRange,
		rng:      chartdata.Range{Begin: 0, End: 1},
	}
	if m.earWidth <= 0 {
		m.earWidth = formulas.MinimapEarWidth
	}
	if m.factor <= 0 {
		m.factor = formulas.SimplifierMinimapFactor
	}
	if r := params.Data.MinimapRange; r != nil && !r.Clamp().IsEmpty() {
		m.rng = r.Clamp()
	}
	return m
}

// Range returns the selected range.
func (m *Minimap) Range() chartdata.Range {
	return m.rng
}

// Resize sets the minimap width in pixels. The next Update redraws.
func (m *Minimap) Resize(width float64) {
	if width != m.width {
		m.width = width
		m.stale = true
	}
}

// IsDragging reports whether a drag is in progress.
func (m *Minimap) IsDragging() bool {
	return m.drag != nil
}

// HitTest returns the part of the selector at pixel x.
func (m *Minimap) HitTest(x float64) Target {
	begin, end := m.rng.Begin*m.width, m.rng.End*m.width
	switch {
	case x < begin || x > end:
		return None
	case x < begin+m.earWidth:
		return LeftEar
	case x >= end-m.earWidth:
		return RightEar
	default:
		return Slider
	}
}

// PointerDown starts a drag if the pointer is on the selector.
func (m *Minimap) PointerDown(x float64) bool {
	target := m.HitTest(x)
	if target == None {
		return false
	}
	m.drag = &drag{
		target: target,
		anchor: x,
		begin:  m.rng.Begin * m.width,
		end:    m.rng.End * m.width,
	}
	return true
}

// PointerMove moves the dragged part of the selector.
func (m *Minimap) PointerMove(x float64) {
	if m.drag == nil || m.width <= 0 {
		return
	}
	d := m.drag
	offset := x - d.anchor
	minWidth := 2 * m.earWidth

	next := m.rng
	switch d.target {
	case Slider:
		size := d.end - d.begin
		begin := clamp(d.begin+offset, 0, m.width-size)
		next.Begin = begin / m.width
		next.End = (begin + size) / m.width
	case LeftEar:
		begin := clamp(d.begin+offset, 0, d.end-minWidth)
		next.Begin = begin / m.width
	case RightEar:
		end := clamp(d.end+offset, d.begin+minWidth, m.width)
		next.End = end / m.width
	}

	m.setRange(next, false)
}

// PointerUp ends the drag.
func (m *Minimap) PointerUp() {
	m.drag = nil
}

// Update takes the chart's latest state. It reports whether the minimap
// needs to be redrawn.
func (m *Minimap) Update(state *chartstate.RenderState) bool {
	m.delta = state.MinimapDelta
	if m.drag == nil {
		m.setRange(state.Range(), true)
	}

	// Many datasets fading at once are too costly to redraw every frame.
	if len(m.data.Datasets) >= formulas.MinimapMaxAnimatedDatasets && state.Static != nil {
		state = state.Static
	}

	if !m.stale && !Changed(m.data, m.state, state) {
		return false
	}
	m.stale = false

	drawn := state.Clone()
	drawn.FocusOn = nil
	drawn.Static = nil
	m.state = drawn
	return true
}

// Changed reports whether next draws a different minimap than prev.
// Only dataset opacities and the minimap's y range affect the drawing.
func Changed(data *chartdata.ChartData, prev, next *chartstate.RenderState) bool {
	if prev == nil {
		return true
	}
	for _, ds := range data.Datasets {
		if prev.Opacity[ds.Key] != next.Opacity[ds.Key] {
			return true
		}
	}
	return prev.YMaxMinimap != next.YMaxMinimap
}

// Pass prepares the minimap drawing for a height in pixels. It returns
// false before the first Update.
func (m *Minimap) Pass(height float64) (render.Pass, bool) {
	s := m.state
	if s == nil {
		return render.Pass{}, false
	}
	return render.Prepare(render.PassParams{
		Data:                 m.data,
		State:                s,
		Width:                m.width,
		Height:               height,
		Begin:                0,
		End:                  1,
		YMin:                 s.YMinMinimap,
		YMax:                 s.YMaxMinimap,
		YMinSecond:           s.YMinMinimapSecond,
		YMaxSecond:           s.YMaxMinimapSecond,
		YPadding:             1,
		Window:               points.Window{From: 0, To: s.TotalXWidth},
		Minimap:              true,
		SimplificationFactor: m.factor,
		LineWidth:            1,
	}), true
}

// Ruler returns the selector geometry in pixels.
func (m *Minimap) Ruler() render.Ruler {
	return render.Ruler{
		Begin:    m.rng.Begin * m.width,
		End:      m.rng.End * m.width,
		EarWidth: m.earWidth,
	}
}

func (m *Minimap) setRange(next chartdata.Range, external bool) {
	if !external && m.delta > 0 && formulas.IsFinite(m.delta) {
		next = snap(next, m.delta, m.dragTarget())
	}
	if next == m.rng || next.IsEmpty() {
		return
	}

	m.rng = next
	if !external && m.onRange != nil {
		m.onRange(next)
	}
}

func (m *Minimap) dragTarget() Target {
	if m.drag == nil {
		return None
	}
	return m.drag.target
}

// snap rounds both ends to multiples of delta while keeping at least one
// delta between them. The edge being dragged is the one moved apart.
func snap(r chartdata.Range, delta float64, target Target) chartdata.Range {
	delta = math.Min(delta, 1)
	r.Begin = math.Round(r.Begin/delta) * delta
	r.End = math.Round(r.End/delta) * delta

	// Snapped widths are multiples of delta, so anything under half of it
	// is zero.
	if r.End-r.Begin > delta/2 {
		return r
	}

	if target == LeftEar {
		r.Begin = r.End - delta
	} else {
		r.End = r.Begin + delta
	}
	switch {
	case r.Begin < 0:
		r.Begin, r.End = 0, delta
	case r.End > 1:
		r.Begin, r.End = 1-delta, 1
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
