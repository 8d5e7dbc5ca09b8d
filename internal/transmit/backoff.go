package transmit

import (
	"context"
	"time"
)

// backoff implements capped exponential backoff. The k-th delay returned by
// Next is min(base * 2^(k-1), max). Delays are deterministic so retry
// schedules stay predictable.
type backoff struct {
	base    time.Duration
	max     time.Duration
	current time.Duration
}

// newBackoff creates a backoff starting at base and capped at max.
func newBackoff(base, max time.Duration) *backoff {
	return &backoff{
		base:    base,
		max:     max,
		current: base,
	}
}

// Next returns the delay for the current attempt and doubles it for the
// next, capped at max.
func (b *backoff) Next() time.Duration {
	d := b.current
	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Reset restores the initial delay.
func (b *backoff) Reset() {
	b.current = b.base
}

// sleepCtx waits for d or until the context is done, whichever comes first.
// Returns the context error on cancellation so a retry wait can be aborted
// cleanly at any attempt boundary.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
