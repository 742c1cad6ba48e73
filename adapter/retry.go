package adapter

import (
	"context"
	"fmt"
	"time"
)

// Backoff returns the delay before retry n (n starts at 1).
type Backoff func(n int) time.Duration

// ExponentialBackoff doubles base on every retry: base, 2*base, 4*base...
func ExponentialBackoff(base time.Duration) Backoff {
	return func(n int) time.Duration {
		return time.Duration(1<<uint(n-1)) * base
	}
}

// DefaultBackoff is 500ms doubling.
var DefaultBackoff = ExponentialBackoff(500 * time.Millisecond)

// Retry calls fn up to 1+retries times, sleeping backoff between attempts.
// It stops early when fn succeeds, when permanent(err) is true, or when ctx
// is done. name prefixes every returned error.
func Retry(ctx context.Context, name string, retries int, backoff Backoff, permanent func(error) bool, fn func(context.Context) error) error {
	if backoff == nil {
		backoff = DefaultBackoff
	}
	attempts := 1 + retries

	var lastErr error
	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}

		if i > 0 {
			timer := time.NewTimer(backoff(i))
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-timer.C:
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if permanent != nil && permanent(lastErr) {
			return fmt.Errorf("%s: non-retriable error: %w", name, lastErr)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}
