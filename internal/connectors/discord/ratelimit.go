package discord

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ProactiveRate is the proactive throttle rate in requests per second.
	// Discord tolerates far more, but scrim channels update slowly and a
	// polite pace keeps user tokens well clear of abuse heuristics.
	ProactiveRate = 2.0

	// HeaderRateRemaining is the per-route remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateResetAfter is the per-route reset delay header (seconds,
	// fractional).
	HeaderRateResetAfter = "X-RateLimit-Reset-After"

	// HeaderRetryAfter is the retry-after header sent with 429s (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter implements dual-strategy rate limiting for the Discord API:
// a token bucket throttles proactively, and header state is tracked
// reactively so the client stops before hitting the route limit.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int
	resetAt   time.Time
	bucket    *rate.Limiter
}

// NewRateLimiter creates a rate limiter with proactive throttling.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		remaining: 1, // Assume headroom until headers say otherwise
		bucket:    rate.NewLimiter(rate.Limit(ProactiveRate), 1),
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	remaining := r.remaining
	resetAt := r.resetAt
	r.mu.Unlock()

	if remaining <= 0 && time.Now().Before(resetAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(resetAt)):
		}
	}

	return nil
}

// UpdateFromResponse updates rate limit state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.remaining = val
		}
	}

	if reset := resp.Header.Get(HeaderRateResetAfter); reset != "" {
		if val, err := strconv.ParseFloat(reset, 64); err == nil {
			r.resetAt = time.Now().Add(time.Duration(val * float64(time.Second)))
		}
	}
}

// CheckRateLimit parses headers and returns a RateLimitError when the
// response is a 429.
func (r *RateLimiter) CheckRateLimit(resp *http.Response) error {
	if resp == nil {
		return nil
	}

	r.UpdateFromResponse(resp)

	if resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}

	retryAfter := time.Second
	if ra := resp.Header.Get(HeaderRetryAfter); ra != "" {
		if seconds, err := strconv.ParseFloat(ra, 64); err == nil {
			retryAfter = time.Duration(seconds * float64(time.Second))
		}
	}

	return &RateLimitError{RetryAfter: retryAfter}
}

// Remaining returns the last observed remaining request count.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}
