package observability

import (
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"
)

// CaptureRateLimiter drops repeated Sentry captures.
//
// A message is sent at most once per interval. Messages are keyed by their
// hash and the least recently captured ones are forgotten first.
//
// A nil limiter allows everything.
type CaptureRateLimiter struct {
	lastCapture *lru.Cache
	interval    time.Duration
	now         func() time.Time
}

// NewCaptureRateLimiter remembers up to size messages and lets each one
// through at most once per interval.
func NewCaptureRateLimiter(
	size int,
	interval time.Duration,
) (*CaptureRateLimiter, error) {
	lastCapture, err := lru.New(size)
	if err != nil {
		return nil, err
	}

	return &CaptureRateLimiter{
		lastCapture: lastCapture,
		interval:    interval,
		now:         time.Now,
	}, nil
}

// AllowCapture reports whether msg may be sent now, recording the capture
// if so.
func (rl *CaptureRateLimiter) AllowCapture(msg string) bool {
	if rl == nil {
		return true
	}

	key := xxhash.Sum64String(msg)
	now := rl.now()

	if last, ok := rl.lastCapture.Get(key); ok &&
		now.Sub(last.(time.Time)) < rl.interval {
		return false
	}

	rl.lastCapture.Add(key, now)
	return true
}
