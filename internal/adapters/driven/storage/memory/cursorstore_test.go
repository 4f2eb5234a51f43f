package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goforscrim/scrimsync/internal/core/domain"
)

func TestCursorStore(t *testing.T) {
	ctx := context.Background()
	store := NewCursorStore()

	_, err := store.GetCursor(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cursor := domain.SyncCursor{
		ChannelID:     "c1",
		ChannelName:   "eu-scrims",
		LastMessageID: "1000",
		LastSyncAt:    time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.PutCursor(ctx, cursor))

	got, err := store.GetCursor(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, cursor, *got)

	// Advancing overwrites.
	cursor.LastMessageID = "2000"
	require.NoError(t, store.PutCursor(ctx, cursor))
	got, err = store.GetCursor(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "2000", got.LastMessageID)

	all, err := store.ListCursors(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
