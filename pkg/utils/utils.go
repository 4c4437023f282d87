package utils

import (
	"context"
	"fmt"
	"time"
)

// Retry calls fn up to count times, doubling the sleep between attempts. Only
// errors for which retryable returns true are retried; any other error is
// returned immediately. A cancelled ctx stops the retries.
func Retry(ctx context.Context, count int, sleep time.Duration, retryable func(error) bool, fn func() error) error {
	var err error
	for i := 0; i < count; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry %d cancelled: %w", i, err)
			case <-time.After(sleep):
			}
			sleep *= 2
		}
		err = fn()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
	}
	return fmt.Errorf("failed after %d retries: %w", count, err)
}
