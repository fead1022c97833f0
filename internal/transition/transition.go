// Package transition interpolates numeric properties over time.
package transition

import (
	"math"
	"time"

	"github.com/wandb/lovely-chart/internal/frameloop"
	"github.com/wandb/lovely-chart/internal/observability"
)

const (
	// FPSProbeInterval is the window over which the frame rate is measured.
	FPSProbeInterval = 500 * time.Millisecond

	// DefaultMinFPS is the frame rate below which animations are
	// considered too slow to show.
	DefaultMinFPS = 30

	easeExponent = 1.675
)

// Options modify how a transition is interpolated and restarted.
type Options uint8

const (
	// Fast transitions restart from the previous target instead of the
	// current value when re-targeted mid-flight.
	Fast Options = 1 << iota

	// Ceil rounds interpolated values up.
	Ceil

	// Floor rounds interpolated values down.
	Floor
)

// Has reports whether all flags in o2 are set.
func (o Options) Has(o2 Options) bool {
	return o&o2 == o2
}

// Transition is one property in flight.
type Transition struct {
	From, To  float64
	Current   float64
	Duration  time.Duration
	StartedAt time.Time
	Progress  float64
	Options   Options

	// StartedSlow is set if the transition was added while the manager
	// was measuring a low frame rate.
	StartedSlow bool
}

// Snapshot is the interpolation status of a property.
type Snapshot struct {
	Current  float64
	From     float64
	To       float64
	Progress float64
}

// Ease is the ease-out curve 1 - (1 - t)^1.675.
func Ease(t float64) float64 {
	return 1 - math.Pow(1-t, easeExponent)
}

// Manager drives transitions from the loop's frames and calls onTick after
// each frame while the frame rate is acceptable.
type Manager struct {
	loop         frameloop.Loop
	onTick       func()
	onModeChange func(fast bool)
	logger       *observability.CoreLogger

	transitions  map[string]*Transition
	framePending bool

	minFPS      float64
	isFast      bool
	probeStart  time.Time
	probeFrames int
}

type ManagerOption func(*Manager)

// WithMinFPS sets the frame rate below which the manager reports being
// slow.
func WithMinFPS(fps float64) ManagerOption {
	return func(m *Manager) { m.minFPS = fps }
}

// WithModeChange registers fn to be called whenever IsFast flips. Ticks
// are not reported while slow, so this is the only notice a caller gets
// that its last drawn frame may be mid-transition.
func WithModeChange(fn func(fast bool)) ManagerOption {
	return func(m *Manager) { m.onModeChange = fn }
}

func WithLogger(logger *observability.CoreLogger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

func NewManager(
	loop frameloop.Loop,
	onTick func(),
	opts ...ManagerOption,
) *Manager {
	m := &Manager{
		loop:        loop,
		onTick:      onTick,
		logger:      observability.NewNoOpLogger(),
		transitions: make(map[string]*Transition),
		minFPS:      DefaultMinFPS,
		isFast:      true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add starts animating prop from one value to another, replacing any
// transition of the same property.
func (m *Manager) Add(
	prop string,
	from, to float64,
	duration time.Duration,
	opts Options,
) {
	m.transitions[prop] = &Transition{
		From:        from,
		To:          to,
		Current:     from,
		Duration:    duration,
		StartedAt:   m.loop.Now(),
		Options:     opts,
		StartedSlow: !m.isFast,
	}
	m.requestFrame()
}

// Remove stops animating prop.
func (m *Manager) Remove(prop string) {
	delete(m.transitions, prop)
}

// Get returns the transition of prop, if it is in flight.
func (m *Manager) Get(prop string) (Transition, bool) {
	t, ok := m.transitions[prop]
	if !ok {
		return Transition{}, false
	}
	return *t, true
}

// State returns a snapshot of every property in flight.
func (m *Manager) State() map[string]Snapshot {
	state := make(map[string]Snapshot, len(m.transitions))
	for prop, t := range m.transitions {
		state[prop] = Snapshot{
			Current:  t.Current,
			From:     t.From,
			To:       t.To,
			Progress: t.Progress,
		}
	}
	return state
}

// IsRunning reports whether any transition is in flight.
func (m *Manager) IsRunning() bool {
	return len(m.transitions) > 0
}

// IsFast reports whether the last frame rate measurement was acceptable.
func (m *Manager) IsFast() bool {
	return m.isFast
}

func (m *Manager) requestFrame() {
	if m.framePending {
		return
	}
	m.framePending = true
	m.loop.RequestFrame(m.tick)
}

func (m *Manager) tick(now time.Time) {
	m.framePending = false

	if len(m.transitions) == 0 {
		m.probeStart = time.Time{}
		return
	}

	m.probe(now)

	var finished []string
	for prop, t := range m.transitions {
		m.advance(t, now)
		if t.Progress >= 1 {
			finished = append(finished, prop)
		}
	}

	if m.isFast && m.onTick != nil {
		m.onTick()
	}

	for _, prop := range finished {
		delete(m.transitions, prop)
	}

	if len(m.transitions) > 0 {
		m.requestFrame()
	} else {
		m.probeStart = time.Time{}
	}
}

func (m *Manager) advance(t *Transition, now time.Time) {
	progress := 1.0
	if t.Duration > 0 {
		progress = float64(now.Sub(t.StartedAt)) / float64(t.Duration)
		progress = min(max(progress, 0), 1)
	}
	t.Progress = progress

	if progress >= 1 {
		t.Current = t.To
		return
	}

	current := t.From + (t.To-t.From)*Ease(progress)
	switch {
	case t.Options.Has(Ceil):
		current = math.Ceil(current)
	case t.Options.Has(Floor):
		current = math.Floor(current)
	}
	t.Current = current
}

// probe counts frames and re-evaluates IsFast once per probe interval.
func (m *Manager) probe(now time.Time) {
	if m.probeStart.IsZero() {
		m.probeStart = now
		m.probeFrames = 0
		return
	}

	m.probeFrames++
	elapsed := now.Sub(m.probeStart)
	if elapsed < FPSProbeInterval {
		return
	}

	fps := float64(m.probeFrames) / elapsed.Seconds()
	wasFast := m.isFast
	m.isFast = fps >= m.minFPS
	if wasFast != m.isFast {
		m.logger.Debug(
			"transition: frame rate changed animation mode",
			"fps", fps,
			"fast", m.isFast,
		)
		if m.onModeChange != nil {
			m.onModeChange(m.isFast)
		}
	}

	m.probeStart = now
	m.probeFrames = 0
}
