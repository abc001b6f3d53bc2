package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterEnforcesWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(MemoryLimiterConfig{Now: func() time.Time { return now }})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(ctx, "ip:1.2.3.4", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("request %d denied under the limit", i)
		}
		if decision.Remaining != 3-i-1 {
			t.Fatalf("request %d: remaining %d, want %d", i, decision.Remaining, 3-i-1)
		}
	}

	decision, err := limiter.Allow(ctx, "ip:1.2.3.4", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if decision.Allowed {
		t.Fatal("fourth request allowed over a limit of 3")
	}

	// A different key has its own window.
	decision, err = limiter.Allow(ctx, "ip:5.6.7.8", 3, time.Minute)
	if err != nil || !decision.Allowed {
		t.Fatalf("independent key denied: allowed=%v err=%v", decision.Allowed, err)
	}

	// The window resets once it elapses.
	now = now.Add(2 * time.Minute)
	decision, err = limiter.Allow(ctx, "ip:1.2.3.4", 3, time.Minute)
	if err != nil || !decision.Allowed {
		t.Fatalf("post-window request denied: allowed=%v err=%v", decision.Allowed, err)
	}
}

func TestMemoryLimiterZeroLimitDisables(t *testing.T) {
	limiter := NewMemoryLimiter(MemoryLimiterConfig{})
	decision, err := limiter.Allow(context.Background(), "ip:1.2.3.4", 0, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("zero limit should disable limiting")
	}
}
