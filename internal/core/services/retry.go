package services

import (
	"context"
	"time"

	"github.com/askdocs/ragserver/internal/logger"
)

// withRetry runs fn up to retries+1 times with exponential backoff
// starting at baseDelay. It returns nil on the first success, the last
// error once attempts are exhausted, and the context error as soon as
// the context is cancelled.
func withRetry(ctx context.Context, retries int, baseDelay time.Duration, op string, fn func() error) error {
	var lastErr error
	delay := baseDelay

	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			logger.Warn("%s failed (attempt %d/%d), retrying in %v: %v",
				op, attempt, retries, delay, lastErr)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			delay *= 2
		}

		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return lastErr
}
