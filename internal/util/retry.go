package util

import (
	"context"
	"fmt"
	"time"
)

// Retry calls fn up to maxRetries+1 times with exponential backoff starting
// at base. fn receives the 0-indexed attempt number and must build any
// request state fresh on each call, so a retry never reuses a dead
// connection context. Returns the context error immediately if cancelled.
func Retry(ctx context.Context, maxRetries int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(base << attempt):
		}
	}
	return fmt.Errorf("failed after %d attempt(s): %w", maxRetries+1, lastErr)
}
