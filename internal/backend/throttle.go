package backend

import (
	"context"
	"sync"
	"time"
)

// Throttle ensures a minimum interval between successive operations.
type Throttle struct {
	interval time.Duration

	mu   sync.Mutex
	next time.Time
}

// NewThrottle returns a throttle admitting one operation per interval. A
// non-positive interval never waits.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		return &Throttle{}
	}
	return &Throttle{interval: interval}
}

// Interval returns the configured spacing.
func (t *Throttle) Interval() time.Duration {
	if t == nil {
		return 0
	}
	return t.interval
}

// Wait blocks until the next slot is free or ctx ends.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.interval <= 0 {
		return ctx.Err()
	}
	for {
		t.mu.Lock()
		wait := time.Until(t.next)
		if wait <= 0 {
			t.next = time.Now().Add(t.interval)
			t.mu.Unlock()
			return nil
		}
		t.mu.Unlock()
		if wait > t.interval {
			wait = t.interval
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
