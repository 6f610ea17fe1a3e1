package services

import (
	"context"
	"math/rand"
	"time"
)

// RetryConfig parameterizes RetryWithBackoff
type RetryConfig struct {
	MaxAttempts int           // Total attempts including the first (default: 2)
	BaseDelay   time.Duration // Delay before the first retry, doubled each attempt (default: 1s)
	Jitter      time.Duration // Random extra delay in [0, Jitter) added per retry (default: 500ms)
}

// DefaultRetryConfig returns the retry settings used for AI calls
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 2,
		BaseDelay:   time.Second,
		Jitter:      500 * time.Millisecond,
	}
}

// RetryWithBackoff runs fn up to MaxAttempts times, sleeping between
// attempts with exponential backoff plus jitter. It returns nil on the
// first success, the context error if ctx ends while waiting, and the
// last error from fn otherwise.
func RetryWithBackoff(ctx context.Context, config RetryConfig, fn func() error) error {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 2
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = time.Second
	}

	var lastErr error
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}

		if attempt == config.MaxAttempts-1 {
			break
		}

		wait := config.BaseDelay << attempt
		if config.Jitter > 0 {
			wait += time.Duration(rand.Int63n(int64(config.Jitter)))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return lastErr
}
