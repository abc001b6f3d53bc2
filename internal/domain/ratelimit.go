package domain

import (
	"context"
	"time"
)

// RateLimitDecision is the outcome of one Allow call.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter is a fixed-window counter keyed by an arbitrary string,
// here the submitting client's address.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error)
}
