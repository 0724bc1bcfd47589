package pipeline

import (
	"context"
	"time"
)

// Backoff is a bounded exponential delay schedule. The zero value means
// no retries at all.
type Backoff struct {
	// Attempts is the total call budget, first try included.
	Attempts int
	// Base is the delay before the first retry; each further retry
	// doubles it.
	Base time.Duration
	// Max caps any single delay.
	Max time.Duration
}

// DefaultBackoff suits interactive admin pages: quick, few, capped.
func DefaultBackoff() Backoff {
	return Backoff{Attempts: 3, Base: 200 * time.Millisecond, Max: 2 * time.Second}
}

// Delay returns the wait before retry number retry (1-based). Zero or
// negative retries return 0.
func (b Backoff) Delay(retry int) time.Duration {
	if retry <= 0 || b.Base <= 0 {
		return 0
	}
	d := b.Base
	for i := 1; i < retry; i++ {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}

// Wait sleeps the scheduled delay, bailing early if ctx ends.
func (b Backoff) Wait(ctx context.Context, retry int) error {
	d := b.Delay(retry)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
