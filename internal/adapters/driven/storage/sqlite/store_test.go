package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goforscrim/scrimsync/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(msgID, fingerprint string, ts time.Time, channels ...string) *domain.StoredRecord {
	return &domain.StoredRecord{
		ExtractedRecord: domain.ExtractedRecord{
			Kind:            domain.KindScrim,
			Region:          domain.RegionEU,
			Platform:        domain.PlatformPC,
			SkillRating:     "3.5k",
			Rank:            domain.RankMaster,
			AvailabilityDay: "Today",
			TimeStart:       "21:00",
			TimeEnd:         "23:00",
			Timezone:        "CET",
			SourceMessageID: msgID,
			SourceURL:       "https://discord.com/channels/g/c/" + msgID,
			AuthorID:        "author-1",
			AuthorUsername:  "cap",
			SourceTimestamp: ts,
			ChannelID:       "c1",
			ChannelName:     "eu-scrims",
		},
		Fingerprint:      fingerprint,
		PostedInChannels: channels,
	}
}

func TestRecordStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	records := newTestStore(t).RecordStore()
	ts := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)

	rec := testRecord("m1", "fp1", ts, "eu-scrims")
	require.NoError(t, records.Insert(ctx, rec))

	found, err := records.FindByFingerprint(ctx, "fp1")
	require.NoError(t, err)
	require.Len(t, found, 1)

	got := found[0]
	assert.Equal(t, domain.KindScrim, got.Kind)
	assert.Equal(t, "3.5k", got.SkillRating)
	assert.Equal(t, domain.RankMaster, got.Rank)
	assert.Equal(t, "21:00", got.TimeStart)
	assert.Equal(t, "23:00", got.TimeEnd)
	assert.Equal(t, ts, got.SourceTimestamp)
	assert.Equal(t, []string{"eu-scrims"}, got.PostedInChannels)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRecordStoreDuplicateInsert(t *testing.T) {
	ctx := context.Background()
	records := newTestStore(t).RecordStore()
	ts := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)

	require.NoError(t, records.Insert(ctx, testRecord("m1", "fp1", ts)))

	// Same primary key.
	err := records.Insert(ctx, testRecord("m1", "fp2", ts.Add(time.Hour)))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	// Same (fingerprint, timestamp) pair under a new message id.
	err = records.Insert(ctx, testRecord("m2", "fp1", ts))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	// A repost of the same fingerprint at a later timestamp is allowed.
	require.NoError(t, records.Insert(ctx, testRecord("m3", "fp1", ts.Add(time.Hour))))

	found, err := records.FindByFingerprint(ctx, "fp1")
	require.NoError(t, err)
	require.Len(t, found, 2)
	// Oldest first.
	assert.Equal(t, "m1", found[0].SourceMessageID)
	assert.Equal(t, "m3", found[1].SourceMessageID)
}

func TestRecordStoreUpdateChannelSet(t *testing.T) {
	ctx := context.Background()
	records := newTestStore(t).RecordStore()
	ts := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)

	require.NoError(t, records.Insert(ctx, testRecord("m1", "fp1", ts, "eu-scrims")))
	require.NoError(t, records.UpdateChannelSet(ctx, "m1", []string{"eu-scrims", "na-scrims"}))

	found, err := records.FindByFingerprint(ctx, "fp1")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, []string{"eu-scrims", "na-scrims"}, found[0].PostedInChannels)

	assert.ErrorIs(t, records.UpdateChannelSet(ctx, "missing", []string{"x"}), domain.ErrNotFound)
}

func TestRecordStoreDelete(t *testing.T) {
	ctx := context.Background()
	records := newTestStore(t).RecordStore()
	ts := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)

	require.NoError(t, records.Insert(ctx, testRecord("m1", "fp1", ts)))
	require.NoError(t, records.Delete(ctx, "m1"))
	assert.ErrorIs(t, records.Delete(ctx, "m1"), domain.ErrNotFound)
}

func TestRecordStoreListSinceAndRetention(t *testing.T) {
	ctx := context.Background()
	records := newTestStore(t).RecordStore()
	now := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)

	require.NoError(t, records.Insert(ctx, testRecord("stale", "fp1", now.Add(-8*24*time.Hour))))
	require.NoError(t, records.Insert(ctx, testRecord("mid", "fp2", now.Add(-2*time.Hour))))
	require.NoError(t, records.Insert(ctx, testRecord("fresh", "fp3", now)))

	cutoff := now.Add(-7 * 24 * time.Hour)

	listed, err := records.ListSince(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	// Newest first.
	assert.Equal(t, "fresh", listed[0].SourceMessageID)
	assert.Equal(t, "mid", listed[1].SourceMessageID)

	deleted, err := records.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	found, err := records.FindByFingerprint(ctx, "fp1")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCursorStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	cursors := newTestStore(t).CursorStore()

	_, err := cursors.GetCursor(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cursor := domain.SyncCursor{
		ChannelID:     "c1",
		ChannelName:   "eu-scrims",
		LastMessageID: "1000",
		LastSyncAt:    time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC),
	}
	require.NoError(t, cursors.PutCursor(ctx, cursor))

	got, err := cursors.GetCursor(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, cursor, *got)

	// Advance.
	cursor.LastMessageID = "2000"
	require.NoError(t, cursors.PutCursor(ctx, cursor))
	got, err = cursors.GetCursor(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "2000", got.LastMessageID)

	require.NoError(t, cursors.PutCursor(ctx, domain.SyncCursor{ChannelID: "c2", ChannelName: "na-scrims"}))
	all, err := cursors.ListCursors(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "c1", all[0].ChannelID)
	assert.Equal(t, "c2", all[1].ChannelID)
}

func TestStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	ts := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordStore().Insert(ctx, testRecord("m1", "fp1", ts)))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	found, err := reopened.RecordStore().FindByFingerprint(ctx, "fp1")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
