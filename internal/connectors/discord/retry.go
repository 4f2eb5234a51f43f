package discord

import (
	"context"
	"time"
)

const (
	// DefaultMaxAttempts bounds retries for transient failures.
	DefaultMaxAttempts = 3

	// DefaultRetryDelay is the base delay between retries.
	DefaultRetryDelay = time.Second
)

// RetryPolicy decides how a failed request is repeated. Rate-limit waits
// are handled separately by the client and never consume an attempt; the
// policy only governs genuinely failed attempts.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// Backoff returns the delay before retry number attempt (1-based).
	Backoff func(attempt int) time.Duration

	// Retryable reports whether the error is worth retrying.
	Retryable func(error) bool
}

// DefaultRetryPolicy retries transient errors a few times with linearly
// increasing backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * DefaultRetryDelay
		},
		Retryable: IsRetryable,
	}
}

// Do runs fn under the policy. It returns the last error once attempts
// are exhausted or fn fails with a non-retryable error.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		delay := DefaultRetryDelay
		if p.Backoff != nil {
			delay = p.Backoff(attempt)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
