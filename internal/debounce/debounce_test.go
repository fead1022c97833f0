package debounce_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/wandb/lovely-chart/internal/debounce"
	"github.com/wandb/lovely-chart/internal/framelooptest"
	"github.com/wandb/lovely-chart/internal/observability"
)

func TestNewDebouncer(t *testing.T) {
	logger := observability.NewNoOpLogger()
	debouncer := debounce.NewDebouncer(rate.Every(time.Second), 1, logger)
	assert.NotNil(t, debouncer)
}

func TestDebouncer(t *testing.T) {
	clock := framelooptest.NewFakeClock()
	debouncer := debounce.NewDebouncer(
		rate.Every(100*time.Millisecond), 1, nil,
		debounce.WithClock(clock.Now),
	)

	count := 0
	increment := func() { count++ }

	debouncer.SetNeedsDebounce()
	debouncer.Debounce(increment)
	assert.Equal(t, 1, count)
	assert.False(t, debouncer.NeedsDebounce())

	debouncer.SetNeedsDebounce()
	debouncer.Debounce(increment)
	assert.Equal(t, 1, count, "rate limited")
	assert.True(t, debouncer.NeedsDebounce())

	clock.Advance(100 * time.Millisecond)
	debouncer.Debounce(increment)
	assert.Equal(t, 2, count)

	debouncer.Debounce(increment)
	assert.Equal(t, 2, count, "nothing to debounce")
}

func TestDebouncer_FlushAndStop(t *testing.T) {
	debouncer := debounce.NewDebouncer(rate.Every(time.Hour), 1, nil)

	count := 0
	debouncer.Flush(func() { count++ })
	assert.Equal(t, 0, count)

	debouncer.SetNeedsDebounce()
	debouncer.Flush(func() { count++ })
	assert.Equal(t, 1, count)

	debouncer.Stop()
	debouncer.SetNeedsDebounce()
	debouncer.Flush(func() { count++ })
	assert.Equal(t, 1, count)
}

func TestDebouncer_Nil(t *testing.T) {
	var debouncer *debounce.Debouncer
	debouncer.SetNeedsDebounce()
	debouncer.Debounce(func() { t.Fatal("called") })
	assert.False(t, debouncer.NeedsDebounce())
}

func TestTrailing(t *testing.T) {
	q, clock := framelooptest.NewQueue()
	trailing := debounce.NewTrailing(q, 150*time.Millisecond)

	var calls []int
	trailing.Call(func() { calls = append(calls, 1) })
	clock.Advance(100 * time.Millisecond)
	q.Step()
	trailing.Call(func() { calls = append(calls, 2) })
	assert.True(t, trailing.Pending())

	clock.Advance(100 * time.Millisecond)
	q.Step()
	assert.Empty(t, calls)

	clock.Advance(50 * time.Millisecond)
	q.Step()
	assert.Equal(t, []int{2}, calls)
	assert.False(t, trailing.Pending())
}

func TestTrailing_Stop(t *testing.T) {
	q, clock := framelooptest.NewQueue()
	trailing := debounce.NewTrailing(q, 10*time.Millisecond)

	trailing.Call(func() { t.Fatal("called after Stop") })
	trailing.Stop()
	trailing.Call(func() { t.Fatal("called after Stop") })

	clock.Advance(time.Second)
	q.Step()
	assert.False(t, q.Pending())
}
