// Package retrypolicy models retry/backoff as one injectable policy object.
// Quote sources receive a Policy instead of hard-coding their own loops, so
// tuning lives in configuration rather than in per-venue variants.
package retrypolicy

import (
	"context"
	"math/rand"
	"time"
)

// Policy describes a bounded retry schedule with jitter.
type Policy struct {
	MaxAttempts int           // total attempts including the first
	BaseDelay   time.Duration // delay before the first retry
	MaxDelay    time.Duration // cap on the backoff delay
	Jitter      float64       // 0..1 fraction of the delay randomized
}

// None performs a single attempt with no retries. The scan loop itself is
// the outer retry: a failed quote is re-attempted on the next tick.
func None() Policy {
	return Policy{MaxAttempts: 1}
}

// Default retries idempotent read calls twice with a short backoff.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    2 * time.Second,
		Jitter:      0.2,
	}
}

// Do runs fn up to MaxAttempts times, backing off between attempts. The
// last error is returned; ctx cancellation stops the schedule early.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := p.BaseDelay
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		d := delay
		if p.Jitter > 0 {
			spread := float64(d) * p.Jitter
			d += time.Duration(rand.Float64()*2*spread - spread)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}

		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return err
}
