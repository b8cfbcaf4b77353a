package arbiter

import (
	"context"
	"time"
)

// RetryPolicy bounds re-prompting of a single provider within a session.
// A retry is allowed only while the session deadline leaves enough room for
// another round trip.
type RetryPolicy struct {
	MaxAttempts  int
	MinRemaining time.Duration
}

// DefaultRetryPolicy matches the session budget tuning: up to three attempts,
// each needing at least five seconds of headroom.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, MinRemaining: 5 * time.Second}
}

// Allows reports whether attempt (1-based) may run under ctx's deadline.
func (p RetryPolicy) Allows(ctx context.Context, attempt int) bool {
	if attempt > p.MaxAttempts {
		return false
	}
	if attempt == 1 {
		return true
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return true
	}
	return time.Until(deadline) >= p.MinRemaining
}
