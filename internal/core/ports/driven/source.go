package driven

import (
	"context"

	"github.com/goforscrim/scrimsync/internal/core/domain"
)

// FetchOptions bound a message page request. Before and After are message
// ids; at most one is set.
type FetchOptions struct {
	// Limit is the page size. The source caps it at its own maximum.
	Limit int

	// Before fetches messages older than this id (backwards pagination).
	Before string

	// After fetches messages newer than this id (incremental fetch).
	After string
}

// MessageSource fetches channel metadata and message pages from an
// external rate-limited API. Implementations handle rate limiting and
// transient-failure retries internally; a returned error means retries
// were exhausted.
type MessageSource interface {
	// FetchChannelInfo returns the channel's metadata.
	FetchChannelInfo(ctx context.Context, channelID string) (*domain.ChannelInfo, error)

	// FetchMessages returns one page of messages, newest first.
	FetchMessages(ctx context.Context, channelID string, opts FetchOptions) ([]domain.RawMessage, error)
}
