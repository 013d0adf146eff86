// Package ratebudget enforces a rolling request quota against the remote
// API's rate window. It complements the per-request token-bucket pacing in
// the collector clients: the budget guarantees the hard window cap is never
// crossed even when individual requests are fast.
package ratebudget

import (
	"context"
	"time"
)

// Budget tracks requests inside a fixed window and blocks the caller when
// the soft cap would be exceeded before the window rolls over. State is
// owned by the instance; there is no package-level counter.
type Budget struct {
	softCap     int
	window      time.Duration
	count       int
	windowStart time.Time

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// New returns a Budget permitting softCap requests per window.
func New(softCap int, window time.Duration) *Budget {
	return &Budget{
		softCap:     softCap,
		window:      window,
		windowStart: time.Now(),
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// Acquire blocks until the next request is permitted, then records it.
// It never fails on its own; the only error is context cancellation during
// a wait.
func (b *Budget) Acquire(ctx context.Context) error {
	now := b.now()
	if now.Sub(b.windowStart) >= b.window {
		b.count = 0
		b.windowStart = now
	}
	if b.count >= b.softCap {
		if remaining := b.window - now.Sub(b.windowStart); remaining > 0 {
			if err := b.sleep(ctx, remaining); err != nil {
				return err
			}
		}
		b.count = 0
		b.windowStart = b.now()
	}
	b.count++
	return nil
}

// Reset restarts the window. Called after a remote rate-limit cooldown so
// the local count does not double-charge the time already served.
func (b *Budget) Reset() {
	b.count = 0
	b.windowStart = b.now()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
