package repository

import (
	"context"
	"time"

	"eventtickets/internal/domain"
)

// WithRetry runs fn up to attempts times with linear backoff while the
// failure stays transient. Non-transient errors and successes return
// immediately. Safe for conditional writes: a timed-out attempt either
// applied fully or not at all, so a retry never double-applies.
func WithRetry(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = fn()
		if lastErr == nil || !domain.IsTransient(lastErr) {
			return lastErr
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
			}
		}
	}
	return lastErr
}
