// Package admission implements the two admission-control collaborators
// the send pipeline consults before transmitting a PDU: a token-bucket
// rate limiter and an adaptive throttle handler.
package admission

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter suspends the caller until a token is available. Bucket
// capacity equals the configured per-second rate.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter builds a token bucket refilling at sendRate tokens per
// second with a burst capacity of sendRate tokens.
func NewRateLimiter(sendRate float64) *RateLimiter {
	burst := int(sendRate)
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(sendRate), burst)}
}

// Limit suspends until at least one token is available or ctx is done.
func (r *RateLimiter) Limit(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
