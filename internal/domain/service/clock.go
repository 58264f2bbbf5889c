package service

import (
	"context"
	"time"
)

// Clock abstracts time so polling and pacing loops can be tested without
// real sleeps.
// Clock 抽象了时间，使轮询和节奏控制循环无需真实睡眠即可测试。
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep waits for d or until ctx is done, whichever comes first.
	// It returns ctx.Err() when interrupted.
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

// NewSystemClock returns a Clock backed by the runtime timer.
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
