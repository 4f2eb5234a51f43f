package discord

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterTracksRemaining(t *testing.T) {
	rl := NewRateLimiter()
	assert.Equal(t, 1, rl.Remaining())

	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
	}
	resp.Header.Set(HeaderRateRemaining, "3")
	resp.Header.Set(HeaderRateResetAfter, "1.5")
	rl.UpdateFromResponse(resp)

	assert.Equal(t, 3, rl.Remaining())
}
