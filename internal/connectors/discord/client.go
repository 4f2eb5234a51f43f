package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goforscrim/scrimsync/internal/core/domain"
	"github.com/goforscrim/scrimsync/internal/core/ports/driven"
	"github.com/goforscrim/scrimsync/internal/logger"
)

const (
	// DefaultBaseURL is the Discord REST API root.
	DefaultBaseURL = "https://discord.com/api/v10"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxPageSize is the largest message page Discord serves.
	MaxPageSize = 100
)

// Client implements driven.MessageSource over the Discord REST API.
type Client struct {
	// BaseURL may be overridden before first use, e.g. in tests.
	BaseURL string

	token       string
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retry       RetryPolicy
}

var _ driven.MessageSource = (*Client)(nil)

// NewClient creates an API client authenticated with the given user token.
func NewClient(token string, retry RetryPolicy) *Client {
	return &Client{
		BaseURL:     DefaultBaseURL,
		token:       token,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		rateLimiter: NewRateLimiter(),
		retry:       retry,
	}
}

// channelPayload is the wire shape of GET /channels/{id}.
type channelPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type int    `json:"type"`
}

// messagePayload is the wire shape of one entry in
// GET /channels/{id}/messages.
type messagePayload struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id,omitempty"`
	Author    struct {
		ID         string `json:"id"`
		Username   string `json:"username"`
		GlobalName string `json:"global_name,omitempty"`
	} `json:"author"`
}

// ratePayload is the body Discord sends with a 429.
type ratePayload struct {
	RetryAfter float64 `json:"retry_after"`
}

// FetchChannelInfo returns the channel's metadata.
func (c *Client) FetchChannelInfo(ctx context.Context, channelID string) (*domain.ChannelInfo, error) {
	var payload channelPayload
	endpoint := fmt.Sprintf("%s/channels/%s", c.BaseURL, channelID)
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	return &domain.ChannelInfo{ID: payload.ID, Name: payload.Name}, nil
}

// FetchMessages returns one page of messages for the channel, newest
// first, as Discord serves them.
func (c *Client) FetchMessages(ctx context.Context, channelID string, opts driven.FetchOptions) ([]domain.RawMessage, error) {
	limit := opts.Limit
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if opts.Before != "" {
		q.Set("before", opts.Before)
	}
	if opts.After != "" {
		q.Set("after", opts.After)
	}

	var payload []messagePayload
	endpoint := fmt.Sprintf("%s/channels/%s/messages?%s", c.BaseURL, channelID, q.Encode())
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("fetch messages for channel %s: %w", channelID, err)
	}

	messages := make([]domain.RawMessage, 0, len(payload))
	for _, m := range payload {
		ts, err := time.Parse(time.RFC3339, m.Timestamp)
		if err != nil {
			logger.Warn("Skipping message %s: bad timestamp %q", m.ID, m.Timestamp)
			continue
		}
		messages = append(messages, domain.RawMessage{
			ID:                m.ID,
			Content:           m.Content,
			Timestamp:         ts,
			ChannelID:         m.ChannelID,
			GuildID:           m.GuildID,
			AuthorID:          m.Author.ID,
			AuthorUsername:    m.Author.Username,
			AuthorDisplayName: m.Author.GlobalName,
		})
	}
	return messages, nil
}

// getJSON performs an authenticated GET under the retry policy and
// decodes the response body into out. A 429 response sleeps for the
// provider-specified delay and repeats the request without consuming a
// retry attempt.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	return c.retry.Do(ctx, func() error {
		for {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return err
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return fmt.Errorf("build request: %w", err)
			}
			req.Header.Set("Authorization", c.token)
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("request %s: %w", endpoint, err)
			}

			body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			resp.Body.Close()
			if readErr != nil {
				return fmt.Errorf("read response: %w", readErr)
			}

			if rlErr := c.rateLimiter.CheckRateLimit(resp); rlErr != nil {
				delay := rateLimitDelay(rlErr, body)
				logger.Warn("Rate limited on %s, waiting %s", endpoint, delay)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(delay):
				}
				continue
			}

			logger.Debug("Discord: %d request(s) remaining on route %s", c.rateLimiter.Remaining(), endpoint)

			if resp.StatusCode != http.StatusOK {
				return c.apiError(resp.StatusCode, body, endpoint)
			}

			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decode response from %s: %w", endpoint, err)
			}
			return nil
		}
	})
}

// rateLimitDelay prefers the retry_after value in the 429 body over the
// header-derived one.
func rateLimitDelay(rlErr error, body []byte) time.Duration {
	var payload ratePayload
	if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter > 0 {
		return time.Duration(payload.RetryAfter * float64(time.Second))
	}
	if e, ok := rlErr.(*RateLimitError); ok && e.RetryAfter > 0 {
		return e.RetryAfter
	}
	return time.Second
}

func (c *Client) apiError(status int, body []byte, endpoint string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, status)
	case http.StatusNotFound:
		return ErrChannelNotFound
	}
	msg := string(body)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return &APIError{StatusCode: status, Message: msg, URL: endpoint}
}
