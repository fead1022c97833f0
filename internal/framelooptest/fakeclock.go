package framelooptest

import (
	"sync"
	"time"

	"github.com/wandb/lovely-chart/internal/frameloop"
)

// FrameInterval is the frame period used by Run.
const FrameInterval = 16 * time.Millisecond

// FakeClock is a clock that only moves when told to.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2019, time.April, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewQueue returns a queue on a fake clock whose off-loop work runs
// synchronously.
func NewQueue() (*frameloop.Queue, *FakeClock) {
	clock := NewFakeClock()
	q := frameloop.NewQueue(
		frameloop.WithClock(clock.Now),
		frameloop.WithSynchronousWork(),
	)
	return q, clock
}

// Run steps the queue at the given frame interval until d has elapsed.
func Run(q *frameloop.Queue, clock *FakeClock, d, frame time.Duration) {
	q.Step()
	for elapsed := time.Duration(0); elapsed < d; elapsed += frame {
		clock.Advance(frame)
		q.Step()
	}
}

// Settle steps the queue at FrameInterval until nothing is pending or
// the limit elapses.
func Settle(q *frameloop.Queue, clock *FakeClock, limit time.Duration) {
	q.Step()
	for elapsed := time.Duration(0); q.Pending() && elapsed < limit; elapsed += FrameInterval {
		clock.Advance(FrameInterval)
		q.Step()
	}
}
