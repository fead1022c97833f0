package debounce

import (
	"time"

	"github.com/wandb/lovely-chart/internal/frameloop"
)

// Trailing runs the last function it was given once no new call has
// arrived for a delay.
type Trailing struct {
	loop   frameloop.Loop
	delay  time.Duration
	cancel func()
	done   bool
}

func NewTrailing(loop frameloop.Loop, delay time.Duration) *Trailing {
	return &Trailing{loop: loop, delay: delay}
}

// Call replaces any pending function with f and restarts the delay.
func (t *Trailing) Call(f func()) {
	if t.done {
		return
	}
	if t.cancel != nil {
		t.cancel()
	}
	t.cancel = t.loop.AfterFunc(t.delay, func() {
		t.cancel = nil
		f()
	})
}

// Pending reports whether a function is waiting for the delay.
func (t *Trailing) Pending() bool {
	return t.cancel != nil
}

// Stop drops the pending function and ignores future calls.
func (t *Trailing) Stop() {
	t.done = true
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
