package ratelimit

import (
	"context"
	"sync"
	"time"
)

// FixedWindow allows at most RequestsPerSec requests in each one second window.
type FixedWindow struct {
	limit       int
	window      time.Duration
	count       int
	windowStart time.Time
	mu          sync.Mutex
}

// NewFixedWindow creates a fixed window limiter starting now.
func NewFixedWindow(cfg Config) *FixedWindow {
	cfg = applyDefaults(cfg)

	limit := int(cfg.RequestsPerSec)
	if limit < 1 {
		limit = 1
	}

	return &FixedWindow{
		limit:       limit,
		window:      time.Second,
		windowStart: time.Now(),
	}
}

// Wait blocks until the current or a later window has room.
func (fw *FixedWindow) Wait(ctx context.Context) error {
	for {
		if fw.allow() {
			return nil
		}
		if err := sleep(ctx, fw.reserve()); err != nil {
			return err
		}
	}
}

// allow counts a request against the current window if there is room.
func (fw *FixedWindow) allow() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.resetWindowIfNeeded(time.Now())

	if fw.count < fw.limit {
		fw.count++
		return true
	}
	return false
}

// reserve returns the time until the window rolls over, or 0 if there is room.
func (fw *FixedWindow) reserve() time.Duration {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := time.Now()
	fw.resetWindowIfNeeded(now)

	if fw.count < fw.limit {
		return 0
	}
	return fw.window - now.Sub(fw.windowStart)
}

func (fw *FixedWindow) resetWindowIfNeeded(now time.Time) {
	if now.Sub(fw.windowStart) >= fw.window {
		fw.count = 0
		fw.windowStart = now
	}
}
