package mocks

import (
	"context"
	"sync"
	"time"
)

// FakeClock advances instantly on Sleep and records every requested
// duration, so pacing behaviour can be asserted without real delays.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration

	// AfterSleep, when set, runs after each recorded sleep with the
	// 1-based sleep count. Tests use it to cancel mid-loop.
	AfterSleep func(n int)
}

// NewFakeClock returns a FakeClock starting at the given instant.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	n := len(c.sleeps)
	hook := c.AfterSleep
	c.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return ctx.Err()
}

// Sleeps returns a copy of every duration passed to Sleep so far.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}
