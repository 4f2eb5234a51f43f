package discord

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrChannelNotFound indicates the channel does not exist or the token
	// cannot see it.
	ErrChannelNotFound = errors.New("discord: channel not found")

	// ErrUnauthorized indicates the token was rejected.
	ErrUnauthorized = errors.New("discord: unauthorized")
)

// RateLimitError is returned when the API signals a rate limit and the
// caller opted not to wait it out.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("discord: rate limited, retry after %s", e.RetryAfter)
}

// APIError is a non-2xx response from the Discord API.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound checks if the error indicates a missing resource.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return errors.Is(err, ErrChannelNotFound)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsRetryable reports whether a request that failed with err is worth
// repeating. Server-side errors and transport failures are; client errors
// are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	if IsRateLimited(err) {
		return true
	}
	// Anything else at this layer is a transport error.
	return !errors.Is(err, ErrUnauthorized) && !errors.Is(err, ErrChannelNotFound)
}
