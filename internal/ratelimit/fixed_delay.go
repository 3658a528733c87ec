package ratelimit

import (
	"context"
	"sync"
	"time"
)

// FixedDelay spaces consecutive requests at least FixedDelay apart.
type FixedDelay struct {
	delay       time.Duration
	lastRequest time.Time
	mu          sync.Mutex
}

// NewFixedDelay creates a fixed delay limiter.
func NewFixedDelay(cfg Config) *FixedDelay {
	cfg = applyDefaults(cfg)
	return &FixedDelay{delay: cfg.FixedDelay}
}

// Wait claims the next slot and sleeps until it arrives.
func (fd *FixedDelay) Wait(ctx context.Context) error {
	fd.mu.Lock()
	now := time.Now()
	wait := fd.until(now)
	fd.lastRequest = now.Add(wait)
	fd.mu.Unlock()

	return sleep(ctx, wait)
}

func (fd *FixedDelay) until(now time.Time) time.Duration {
	if fd.lastRequest.IsZero() {
		return 0
	}
	elapsed := now.Sub(fd.lastRequest)
	if elapsed >= fd.delay {
		return 0
	}
	return fd.delay - elapsed
}
