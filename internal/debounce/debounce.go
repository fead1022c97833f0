package debounce

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/wandb/lovely-chart/internal/observability"
)

// Debouncer is a rate limiter that can be used to debounce events
// such as tooltip content updates.
type Debouncer struct {
	limiter       *rate.Limiter
	now           func() time.Time
	finished      bool
	needsDebounce bool
	logger        *observability.CoreLogger
}

type Option func(*Debouncer)

// WithClock makes the debouncer read time from now, usually a loop's Now.
func WithClock(now func() time.Time) Option {
	return func(d *Debouncer) { d.now = now }
}

// NewDebouncer creates a new debouncer
func NewDebouncer(
	eventRate rate.Limit,
	burstSize int,
	logger *observability.CoreLogger,
	opts ...Option,
) *Debouncer {
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	d := &Debouncer{
		limiter: rate.NewLimiter(eventRate, burstSize),
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Debouncer) SetNeedsDebounce() {
	if d == nil {
		return
	}
	d.needsDebounce = true
}

func (d *Debouncer) UnsetNeedsDebounce() {
	if d == nil {
		return
	}
	d.needsDebounce = false
}

// NeedsDebounce reports whether an event is waiting to be flushed.
func (d *Debouncer) NeedsDebounce() bool {
	return d != nil && d.needsDebounce
}

// Debounce will call the function f if the rate limiter allows it.
func (d *Debouncer) Debounce(f func()) {
	if d == nil || d.finished {
		return
	}
	if !d.needsDebounce || !d.limiter.AllowN(d.now(), 1) {
		return
	}
	d.Flush(f)
}

// Flush will call the function f if it needs to be called.
func (d *Debouncer) Flush(f func()) {
	if d == nil || d.finished {
		return
	}
	if d.needsDebounce {
		d.logger.Debug("debounce: flushing")
		f()
		d.UnsetNeedsDebounce()
	}
}

// Stop makes all future debounce operations no-ops.
func (d *Debouncer) Stop() {
	d.finished = true
}
