package llm

import (
	"context"
	"fmt"
	"time"
)

// withRetry calls fn until it succeeds, returns a non-retryable error, or
// maxRetries extra attempts are used. The wait grows linearly and stops early
// when ctx is done.
func withRetry[T any](ctx context.Context, maxRetries int, backoff time.Duration, fn func(attempt int) (T, error)) (T, error) {
	var zero T

	for attempt := 1; ; attempt++ {
		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}

		if attempt > maxRetries || !isRetryable(err) {
			if attempt > 1 {
				return zero, fmt.Errorf("after %d attempts: %w", attempt, err)
			}
			return zero, err
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("after %d attempts: %w", attempt, ctx.Err())
		case <-time.After(backoff * time.Duration(attempt)):
		}
	}
}
