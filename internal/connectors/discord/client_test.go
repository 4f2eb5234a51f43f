package discord

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goforscrim/scrimsync/internal/core/ports/driven"
)

// fastRetry keeps test runs quick.
func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: attempts,
		Backoff:     func(int) time.Duration { return time.Millisecond },
		Retryable:   IsRetryable,
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-token", fastRetry(3))
	c.BaseURL = srv.URL
	// Give tests a generous proactive rate so retries don't stall.
	c.rateLimiter.bucket.SetLimit(1000)
	c.rateLimiter.bucket.SetBurst(1000)
	return c
}

func TestFetchChannelInfo(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/channels/123", r.URL.Path)
		w.Write([]byte(`{"id":"123","name":"eu-scrims","type":0}`))
	}))

	info, err := client.FetchChannelInfo(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "123", info.ID)
	assert.Equal(t, "eu-scrims", info.Name)
	assert.Equal(t, "test-token", gotAuth)
}

func TestFetchMessages(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels/123/messages", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "900", r.URL.Query().Get("after"))
		w.Write([]byte(`[
			{"id":"1002","content":"lfs 3.5k","timestamp":"2026-08-20T19:30:00+00:00",
			 "channel_id":"123","guild_id":"g1",
			 "author":{"id":"a1","username":"cap","global_name":"Cap"}},
			{"id":"1001","content":"scrim 21-23","timestamp":"2026-08-20T18:00:00+00:00",
			 "channel_id":"123","author":{"id":"a2","username":"kit"}}
		]`))
	}))

	msgs, err := client.FetchMessages(context.Background(), "123", driven.FetchOptions{Limit: 50, After: "900"})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "1002", msgs[0].ID)
	assert.Equal(t, "lfs 3.5k", msgs[0].Content)
	assert.Equal(t, time.Date(2026, 8, 20, 19, 30, 0, 0, time.UTC), msgs[0].Timestamp.UTC())
	assert.Equal(t, "g1", msgs[0].GuildID)
	assert.Equal(t, "a1", msgs[0].AuthorID)
	assert.Equal(t, "Cap", msgs[0].AuthorDisplayName)

	assert.Equal(t, "kit", msgs[1].AuthorUsername)
	assert.Empty(t, msgs[1].AuthorDisplayName)
}

func TestFetchMessagesSkipsBadTimestamps(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":"1","content":"x","timestamp":"not-a-time","channel_id":"c","author":{"id":"a"}},
			{"id":"2","content":"y","timestamp":"2026-08-20T18:00:00Z","channel_id":"c","author":{"id":"a"}}
		]`))
	}))

	msgs, err := client.FetchMessages(context.Background(), "c", driven.FetchOptions{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "2", msgs[0].ID)
}

func TestRateLimitRetriesWithoutConsumingAttempts(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.Header().Set(HeaderRetryAfter, "0.01")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"retry_after":0.01}`))
			return
		}
		w.Write([]byte(`{"id":"123","name":"eu-scrims","type":0}`))
	}))
	// One attempt only: the two 429s must not count against it.
	client.retry = fastRetry(1)

	info, err := client.FetchChannelInfo(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "eu-scrims", info.Name)
	assert.Equal(t, 3, calls)
}

func TestServerErrorRetried(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"id":"123","name":"eu-scrims","type":0}`))
	}))

	_, err := client.FetchChannelInfo(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestNotFoundIsNotRetried(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.FetchChannelInfo(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 1, calls)
}

func TestUnauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.FetchChannelInfo(context.Background(), "123")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRetryPolicyExhaustion(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	client.retry = fastRetry(2)

	_, err := client.FetchChannelInfo(context.Background(), "123")
	require.Error(t, err)
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 2, calls)
}
