package ratelimit

import (
	"context"
	"time"
)

// Limiter paces outbound API requests for a single source.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Strategy names a pacing algorithm.
type Strategy string

const (
	StrategyTokenBucket Strategy = "token_bucket"
	StrategyFixedWindow Strategy = "fixed_window"
	StrategyFixedDelay  Strategy = "fixed_delay"
)

// New builds the limiter selected by cfg.Strategy. Unknown strategies fall
// back to a token bucket.
func New(cfg Config) Limiter {
	cfg = applyDefaults(cfg)
	switch cfg.Strategy {
	case StrategyFixedWindow:
		return NewFixedWindow(cfg)
	case StrategyFixedDelay:
		return NewFixedDelay(cfg)
	default:
		return NewTokenBucket(cfg)
	}
}

// Unlimited never blocks. Useful for tests and for sources without limits.
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
