// Package frameloop is the seam between the chart engine and the host's
// event loop.
//
// A chart is single-threaded: every engine call, callback and timer runs
// on the goroutine that owns the chart. The Loop interface is how the
// engine asks that goroutine for animation frames, timeouts and off-loop
// work.
package frameloop

import (
	"sort"
	"sync"
	"time"
)

// Loop schedules work on the goroutine that owns a chart.
type Loop interface {
	// Now returns the loop's current time.
	Now() time.Time

	// RequestFrame runs fn once on the next frame.
	RequestFrame(fn func(now time.Time))

	// AfterFunc runs fn on the loop once d has elapsed.
	//
	// The returned function cancels fn if it has not run yet.
	AfterFunc(d time.Duration, fn func()) (cancel func())

	// Go runs work off the loop, then runs done on the loop.
	Go(work func(), done func())
}

type timer struct {
	seq      uint64
	deadline time.Time
	fn       func()
	canceled bool
}

// Queue is a Loop driven by explicit calls to Step.
//
// Hosts call Step once per frame. Tests pair a Queue with a fake clock to
// control time exactly.
type Queue struct {
	mu sync.Mutex

	now      func() time.Time
	syncWork bool

	frames    []func(time.Time)
	timers    []*timer
	completed []func()
	inflight  int
	seq       uint64

	// wake is signaled when off-loop work completes.
	wake chan struct{}
}

type QueueOption func(*Queue)

// WithClock sets the time source of the queue.
func WithClock(now func() time.Time) QueueOption {
	return func(q *Queue) { q.now = now }
}

// WithSynchronousWork makes Go run work immediately on the calling
// goroutine. Its done callback still waits for the next Step.
func WithSynchronousWork() QueueOption {
	return func(q *Queue) { q.syncWork = true }
}

func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		now:  time.Now,
		wake: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

var _ Loop = &Queue{}

func (q *Queue) Now() time.Time {
	return q.now()
}

func (q *Queue) RequestFrame(fn func(now time.Time)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.frames = append(q.frames, fn)
}

func (q *Queue) AfterFunc(d time.Duration, fn func()) func() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	t := &timer{seq: q.seq, deadline: q.now().Add(d), fn: fn}
	q.timers = append(q.timers, t)

	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		t.canceled = true
	}
}

func (q *Queue) Go(work func(), done func()) {
	q.mu.Lock()
	q.inflight++
	q.mu.Unlock()

	finish := func() {
		q.mu.Lock()
		q.inflight--
		q.completed = append(q.completed, done)
		q.mu.Unlock()

		select {
		case q.wake <- struct{}{}:
		default:
		}
	}

	if q.syncWork {
		work()
		finish()
		return
	}

	go func() {
		work()
		finish()
	}()
}

// Wake returns a channel that receives a value when off-loop work
// completes and Step has callbacks to run.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// Step runs, in order, completed off-loop callbacks, due timers and the
// frames requested before the call.
//
// Frames requested while Step runs are deferred to the next Step.
func (q *Queue) Step() {
	now := q.now()

	q.mu.Lock()
	completed := q.completed
	q.completed = nil
	q.mu.Unlock()

	for _, fn := range completed {
		fn()
	}

	for {
		t := q.popDueTimer(now)
		if t == nil {
			break
		}
		t.fn()
	}

	q.mu.Lock()
	frames := q.frames
	q.frames = nil
	q.mu.Unlock()

	for _, fn := range frames {
		fn(now)
	}
}

func (q *Queue) popDueTimer(now time.Time) *timer {
	q.mu.Lock()
	defer q.mu.Unlock()

	live := q.timers[:0]
	for _, t := range q.timers {
		if !t.canceled {
			live = append(live, t)
		}
	}
	q.timers = live

	sort.Slice(q.timers, func(i, j int) bool {
		a, b := q.timers[i], q.timers[j]
		if !a.deadline.Equal(b.deadline) {
			return a.deadline.Before(b.deadline)
		}
		return a.seq < b.seq
	})

	if len(q.timers) == 0 || q.timers[0].deadline.After(now) {
		return nil
	}

	t := q.timers[0]
	q.timers = q.timers[1:]
	return t
}

// Pending reports whether the queue has frames, timers or off-loop work
// outstanding.
func (q *Queue) Pending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, t := range q.timers {
		if !t.canceled {
			return true
		}
	}
	return len(q.frames) > 0 || len(q.completed) > 0 || q.inflight > 0
}

// HasFrames reports whether a frame has been requested.
func (q *Queue) HasFrames() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames) > 0
}
