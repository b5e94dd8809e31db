// Package retry provides the truncated exponential backoff timer the
// session supervisor waits on between reconnect attempts.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Timer is a truncated exponential backoff: the delay starts at the
// configured minimum, doubles on every Wait call, and plateaus at
// min << maxIncrease. Reset drops the next wait to zero so the first
// redial after a healthy session is immediate; the delay then grows
// again from the minimum.
type Timer struct {
	b    *backoff.ExponentialBackOff
	next time.Duration
}

// New builds a Timer. minDelay is the initial wait; maxIncrease bounds
// how many times the delay doubles before it plateaus.
func New(minDelay time.Duration, maxIncrease int) *Timer {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = minDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = minDelay << uint(maxIncrease)
	b.MaxElapsedTime = 0 // never give up; the caller decides when to stop
	b.Reset()
	return &Timer{b: b, next: b.NextBackOff()}
}

// NextDelay reports the delay the next Wait call would use, without
// consuming it.
func (t *Timer) NextDelay() time.Duration {
	return t.next
}

// Wait suspends for the current delay, then doubles it (capped), unless
// ctx is cancelled first.
func (t *Timer) Wait(ctx context.Context) error {
	d := t.next
	t.next = t.b.NextBackOff()
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

// Reset returns the next wait to zero (an immediate retry) and restarts
// the doubling from the minimum, called after a successful bind.
func (t *Timer) Reset() {
	t.b.Reset()
	t.next = 0
}
