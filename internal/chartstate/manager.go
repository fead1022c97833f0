package chartstate

import (
	"strings"
	"time"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/formulas"
	"github.com/wandb/lovely-chart/internal/frameloop"
	"github.com/wandb/lovely-chart/internal/observability"
	"github.com/wandb/lovely-chart/internal/transition"
)

const opacityPrefix = "opacity#"

// OpacityProp is the animated property name of a dataset's opacity.
func OpacityProp(key string) string {
	return opacityPrefix + key
}

// animatedProp is a render state property interpolated on change.
type animatedProp struct {
	name     string
	duration time.Duration
	options  transition.Options
	field    func(*RenderState) *float64
}

var scalarProps = []animatedProp{
	{"begin", formulas.TransitionFastDuration, transition.Fast,
		func(s *RenderState) *float64 { return &s.Begin }},
	{"end", formulas.TransitionFastDuration, transition.Fast,
		func(s *RenderState) *float64 { return &s.End }},
	{"labelFromIndex", formulas.TransitionFastDuration, transition.Fast | transition.Floor,
		func(s *RenderState) *float64 { return &s.LabelFromIndex }},
	{"labelToIndex", formulas.TransitionFastDuration, transition.Fast | transition.Ceil,
		func(s *RenderState) *float64 { return &s.LabelToIndex }},
	{"xAxisScale", formulas.TransitionAxesDuration, 0,
		func(s *RenderState) *float64 { return &s.XAxisScale }},
	{"yAxisScale", formulas.TransitionAxesDuration, 0,
		func(s *RenderState) *float64 { return &s.YAxisScale }},
	{"yAxisScaleSecond", formulas.TransitionAxesDuration, 0,
		func(s *RenderState) *float64 { return &s.YAxisScaleSecond }},
	{"yMinViewport", formulas.TransitionAxesDuration, 0,
		func(s *RenderState) *float64 { return &s.YMinViewport }},
	{"yMaxViewport", formulas.TransitionAxesDuration, 0,
		func(s *RenderState) *float64 { return &s.YMaxViewport }},
	{"yMinViewportSecond", formulas.TransitionAxesDuration, 0,
		func(s *RenderState) *float64 { return &s.YMinViewportSecond }},
	{"yMaxViewportSecond", formulas.TransitionAxesDuration, 0,
		func(s *RenderState) *float64 { return &s.YMaxViewportSecond }},
	{"yMinMinimap", formulas.TransitionAxesDuration, 0,
		func(s *RenderState) *float64 { return &s.YMinMinimap }},
	{"yMaxMinimap", formulas.TransitionAxesDuration, 0,
		func(s *RenderState) *float64 { return &s.YMaxMinimap }},
	{"yMinMinimapSecond", formulas.TransitionAxesDuration, 0,
		func(s *RenderState) *float64 { return &s.YMinMinimapSecond }},
	{"yMaxMinimapSecond", formulas.TransitionAxesDuration, 0,
		func(s *RenderState) *float64 { return &s.YMaxMinimapSecond }},
}

// Update describes a change of the chart's inputs. Zero fields keep
// their current value.
type Update struct {
	Range        *chartdata.Range
	Filter       chartdata.Filter
	Focus        *Focus
	ClearFocus   bool
	MinimapDelta *float64
}

// Manager owns the target render state and animates between targets.
type Manager struct {
	data     *chartdata.ChartData
	viewport Size
	layout   Layout
	loop     frameloop.Loop
	callback func(*RenderState)
	logger   *observability.CoreLogger

	transitions *transition.Manager
	props       []animatedProp
	state       *RenderState

	callbackPending bool
	stopped         bool
}

type ManagerParams struct {
	Data     *chartdata.ChartData
	Viewport Size
	Layout   Layout
	Loop     frameloop.Loop

	// Callback receives every state to draw.
	Callback func(*RenderState)

	Logger *observability.CoreLogger

	// Range and Filter are the initial inputs. They default to the data's
	// minimap range (or everything) and to all datasets visible.
	Range        *chartdata.Range
	Filter       chartdata.Filter
	MinimapDelta float64

	// MinFPS is the frame rate below which animations are skipped.
	MinFPS float64
}

func NewManager(params ManagerParams) *Manager {
	logger := params.Logger
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}

	m := &Manager{
		data:     params.Data,
		viewport: params.Viewport,
		layout:   params.Layout,
		loop:     params.Loop,
		callback: params.Callback,
		logger:   logger,
	}
	if m.layout == (Layout{}) {
		m.layout = DefaultLayout()
	}

	opts := []transition.ManagerOption{
		transition.WithLogger(logger),
		transition.WithModeChange(m.onModeChange),
	}
	if params.MinFPS > 0 {
		opts = append(opts, transition.WithMinFPS(params.MinFPS))
	}
	m.transitions = transition.NewManager(params.Loop, m.deliver, opts...)

	m.props = append(m.props, scalarProps...)
	for _, key := range params.Data.Keys() {
		m.props = append(m.props, animatedProp{
			name:     OpacityProp(key),
			duration: formulas.TransitionDefaultDuration,
		})
	}

	rng := chartdata.Range{Begin: 0, End: 1}
	switch {
	case params.Range != nil:
		rng = *params.Range
	case params.Data.MinimapRange != nil:
		rng = *params.Data.MinimapRange
	}

	filter := params.Filter
	if filter == nil {
		filter = params.Data.AllVisible()
	}

	m.state = Compute(Input{
		Data:         m.data,
		Viewport:     m.viewport,
		Range:        rng,
		Filter:       filter,
		MinimapDelta: params.MinimapDelta,
		Layout:       m.layout,
	}, nil)

	m.scheduleCallback()
	return m
}

// Update recomputes the target state and animates towards it.
//
// With noTransition the state jumps to the new target.
func (m *Manager) Update(u Update, noTransition bool) {
	if m.stopped {
		return
	}

	prev := m.state

	rng := prev.Range()
	if u.Range != nil {
		if next := u.Range.Clamp(); !next.IsEmpty() {
			rng = next
		} else {
			m.logger.Debug("chartstate: ignoring empty range", "range", next.String())
		}
	}

	filter := prev.Filter
	if u.Filter != nil {
		filter = u.Filter
	}

	focus := prev.FocusOn
	switch {
	case u.ClearFocus:
		focus = nil
	case u.Focus != nil:
		focus = u.Focus
	}

	minimapDelta := prev.MinimapDelta
	if u.MinimapDelta != nil {
		minimapDelta = *u.MinimapDelta
	}

	next := Compute(Input{
		Data:         m.data,
		Viewport:     m.viewport,
		Range:        rng,
		Filter:       filter,
		Focus:        focus,
		MinimapDelta: minimapDelta,
		Layout:       m.layout,
	}, prev)
	m.state = next

	for _, p := range m.props {
		if noTransition {
			m.transitions.Remove(p.name)
			continue
		}

		prevValue, nextValue := p.get(prev), p.get(next)

		currentTarget := prevValue
		running, isRunning := m.transitions.Get(p.name)
		if isRunning {
			currentTarget = running.To
		}
		if currentTarget == nextValue {
			continue
		}

		from := prevValue
		if isRunning && !p.options.Has(transition.Fast) {
			from = running.Current
		}

		m.transitions.Remove(p.name)
		m.transitions.Add(p.name, from, nextValue, p.duration, p.options)
	}

	if !m.transitions.IsRunning() || !m.transitions.IsFast() {
		m.scheduleCallback()
	}
}

// Resize changes the viewport and jumps to the state recomputed for it.
func (m *Manager) Resize(viewport Size) {
	if m.stopped || viewport == m.viewport {
		return
	}
	m.viewport = viewport
	m.Update(Update{}, true)
}

// Viewport returns the viewport size the state is computed for.
func (m *Manager) Viewport() Size {
	return m.viewport
}

// Static returns the target state.
func (m *Manager) Static() *RenderState {
	return m.state
}

// Data returns the chart data the manager was built for.
func (m *Manager) Data() *chartdata.ChartData {
	return m.data
}

// HasAnimations reports whether any property is in flight.
func (m *Manager) HasAnimations() bool {
	return m.transitions.IsRunning()
}

// IsFast reports whether animations are currently shown.
func (m *Manager) IsFast() bool {
	return m.transitions.IsFast()
}

// Stop makes the manager ignore further updates and frames.
func (m *Manager) Stop() {
	m.stopped = true
}

// onModeChange jumps to the target when animations stop being shown, since
// the transitions still in flight no longer deliver frames.
func (m *Manager) onModeChange(fast bool) {
	if !fast {
		m.scheduleCallback()
	}
}

func (m *Manager) scheduleCallback() {
	if m.callbackPending {
		return
	}
	m.callbackPending = true
	m.loop.RequestFrame(func(time.Time) {
		m.callbackPending = false
		m.deliver()
	})
}

func (m *Manager) deliver() {
	if m.stopped || m.callback == nil {
		return
	}
	m.callback(m.current())
}

// current merges the values in flight into a copy of the target state.
func (m *Manager) current() *RenderState {
	state := m.state.Clone()
	state.Static = m.state
	state.Transitions = nil

	if !m.transitions.IsFast() {
		return state
	}

	snapshots := m.transitions.State()
	if len(snapshots) > 0 {
		state.Transitions = snapshots
	}
	for _, p := range m.props {
		if snap, ok := snapshots[p.name]; ok {
			p.set(state, snap.Current)
		}
	}
	return state
}

func (p animatedProp) get(s *RenderState) float64 {
	if p.field != nil {
		return *p.field(s)
	}
	return s.Opacity[strings.TrimPrefix(p.name, opacityPrefix)]
}

func (p animatedProp) set(s *RenderState, v float64) {
	if p.field != nil {
		*p.field(s) = v
		return
	}
	s.Opacity[strings.TrimPrefix(p.name, opacityPrefix)] = v
}
