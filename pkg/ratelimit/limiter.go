package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter paces outgoing requests
type Limiter interface {
	// Wait blocks until the next request may go out or ctx is done
	Wait(ctx context.Context) error
}

// FixedDelay sleeps a constant delay before every request
type FixedDelay struct {
	delay time.Duration
	sleep func(ctx context.Context, d time.Duration) error

	mu    sync.Mutex
	waits int
}

// NewFixedDelay returns a limiter that sleeps delay on every Wait. A zero
// or negative delay never blocks.
func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{delay: delay, sleep: sleepContext}
}

// Wait sleeps the fixed delay, returning early with ctx.Err() if the
// context is cancelled first.
func (f *FixedDelay) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	f.waits++
	f.mu.Unlock()

	return f.sleep(ctx, f.delay)
}

// Waits reports how many times Wait has been called
func (f *FixedDelay) Waits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.waits
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Nop never blocks. Used when pacing is disabled.
type Nop struct{}

func (Nop) Wait(ctx context.Context) error { return ctx.Err() }
