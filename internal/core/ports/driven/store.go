package driven

import (
	"context"
	"time"

	"github.com/goforscrim/scrimsync/internal/core/domain"
)

// RecordStore persists stored records. Implementations must reject an
// insert that duplicates an existing (fingerprint, source timestamp) pair
// with domain.ErrAlreadyExists; the engine converts that into the
// merge-update path.
type RecordStore interface {
	// Insert stores a new record. CreatedAt is assigned by the store.
	Insert(ctx context.Context, rec *domain.StoredRecord) error

	// FindByFingerprint returns all records with the given fingerprint,
	// oldest first. Reposts make the fingerprint non-unique.
	FindByFingerprint(ctx context.Context, fingerprint string) ([]domain.StoredRecord, error)

	// UpdateChannelSet replaces the channel set of the record identified
	// by its source message id.
	UpdateChannelSet(ctx context.Context, sourceMessageID string, channels []string) error

	// Delete removes the record identified by its source message id.
	Delete(ctx context.Context, sourceMessageID string) error

	// ListSince returns records with a source timestamp at or after the
	// cutoff, newest first.
	ListSince(ctx context.Context, cutoff time.Time) ([]domain.StoredRecord, error)

	// DeleteOlderThan removes records whose source timestamp is before
	// the cutoff and returns how many were deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// CursorStore persists the per-channel sync cursors. Cursors are owned
// exclusively by the sync engine.
type CursorStore interface {
	// GetCursor returns the cursor for a channel, or domain.ErrNotFound.
	GetCursor(ctx context.Context, channelID string) (*domain.SyncCursor, error)

	// PutCursor stores or advances a channel's cursor.
	PutCursor(ctx context.Context, cursor domain.SyncCursor) error

	// ListCursors returns all known cursors.
	ListCursors(ctx context.Context) ([]domain.SyncCursor, error)
}
