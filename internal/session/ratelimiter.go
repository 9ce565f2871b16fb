package session

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"
)

// RateLimiter paces JSON-RPC calls so a shared or public node endpoint is not
// hammered during confirmation polling.
type RateLimiter struct {
	limiter *rate.Limiter
	name    string
}

// NewRateLimiter creates a rate limiter allowing rps requests per second.
func NewRateLimiter(name string, rps int) *RateLimiter {
	slog.Debug("rate limiter created", "endpoint", name, "rps", rps)
	return &RateLimiter{
		// Burst(1) spreads requests evenly across the second instead of
		// letting a receipt-poll loop fire them back to back.
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		name:    name,
	}
}

// Wait blocks until the rate limiter allows another request or ctx is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if err := rl.limiter.Wait(ctx); err != nil {
		slog.Warn("rate limiter wait cancelled", "endpoint", rl.name, "error", err)
		return err
	}
	return nil
}
