package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goforscrim/scrimsync/internal/adapters/driven/storage/memory"
	"github.com/goforscrim/scrimsync/internal/core/domain"
	"github.com/goforscrim/scrimsync/internal/core/ports/driven"
)

// --- Mock message source ---

type mockSource struct {
	channels map[string]*domain.ChannelInfo
	messages map[string][]domain.RawMessage // per channel, newest first
	infoErr  map[string]error
	fetchErr map[string]error

	fetchCalls []driven.FetchOptions
}

func newMockSource() *mockSource {
	return &mockSource{
		channels: make(map[string]*domain.ChannelInfo),
		messages: make(map[string][]domain.RawMessage),
		infoErr:  make(map[string]error),
		fetchErr: make(map[string]error),
	}
}

func (m *mockSource) addChannel(id, name string) {
	m.channels[id] = &domain.ChannelInfo{ID: id, Name: name}
}

func (m *mockSource) addMessage(channelID string, msg domain.RawMessage) {
	msg.ChannelID = channelID
	// Keep newest first, as the real API serves them.
	m.messages[channelID] = append([]domain.RawMessage{msg}, m.messages[channelID]...)
}

func (m *mockSource) FetchChannelInfo(_ context.Context, channelID string) (*domain.ChannelInfo, error) {
	if err := m.infoErr[channelID]; err != nil {
		return nil, err
	}
	info, ok := m.channels[channelID]
	if !ok {
		return nil, errors.New("unknown channel")
	}
	return info, nil
}

func (m *mockSource) FetchMessages(_ context.Context, channelID string, opts driven.FetchOptions) ([]domain.RawMessage, error) {
	m.fetchCalls = append(m.fetchCalls, opts)
	if err := m.fetchErr[channelID]; err != nil {
		return nil, err
	}
	var out []domain.RawMessage
	for _, msg := range m.messages[channelID] {
		if opts.After != "" && !newerSnowflake(msg.ID, opts.After) {
			continue
		}
		if opts.Before != "" && !newerSnowflake(opts.Before, msg.ID) {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// --- Test fixture ---

type syncFixture struct {
	engine  *SyncEngine
	source  *mockSource
	records *memory.RecordStore
	cursors *memory.CursorStore
	now     time.Time
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{
		source:  newMockSource(),
		records: memory.NewRecordStore(),
		cursors: memory.NewCursorStore(),
		now:     time.Date(2026, 8, 20, 20, 0, 0, 0, time.UTC),
	}
	f.engine = NewSyncEngine(f.source, f.records, f.cursors, SyncOptions{})
	f.engine.now = func() time.Time { return f.now }
	return f
}

func lfsMessage(id, author, content string, ts time.Time) domain.RawMessage {
	return domain.RawMessage{
		ID:             id,
		Content:        content,
		Timestamp:      ts,
		GuildID:        "g1",
		AuthorID:       author,
		AuthorUsername: author,
	}
}

func TestSyncInsertsExtractedRecords(t *testing.T) {
	f := newSyncFixture(t)
	f.source.addChannel("c1", "eu-scrims")
	f.source.addMessage("c1", lfsMessage("1001", "a1", "lfs 3.5k eu pc 21-23 cet", f.now.Add(-time.Hour)))
	f.source.addMessage("c1", lfsMessage("1002", "a2", "warmup demain 4k2", f.now.Add(-30*time.Minute)))

	report, err := f.engine.SyncChannels(context.Background(), []string{"c1"}, domain.SyncIncremental)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Added)
	assert.Zero(t, report.Errors)

	listed, err := f.records.ListSince(context.Background(), f.now.Add(-domain.DefaultRetention))
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Newest first.
	warm := listed[0]
	assert.Equal(t, domain.KindWarmup, warm.Kind)
	assert.Equal(t, "4.2k", warm.SkillRating)
	assert.Equal(t, "Tomorrow", warm.AvailabilityDay)
	assert.Equal(t, []string{"eu-scrims"}, warm.PostedInChannels)

	scrim := listed[1]
	assert.Equal(t, domain.KindScrim, scrim.Kind)
	assert.Equal(t, domain.RankMaster, scrim.Rank)
	assert.Equal(t, "21:00", scrim.TimeStart)
	assert.Equal(t, "CET", scrim.Timezone)
	assert.Equal(t, "eu-scrims", scrim.ChannelName)
}

func TestSyncCrossChannelMergeWithinRun(t *testing.T) {
	f := newSyncFixture(t)
	f.source.addChannel("c1", "eu-scrims")
	f.source.addChannel("c2", "eu-lfs")
	t0 := f.now.Add(-time.Hour)
	f.source.addMessage("c1", lfsMessage("1001", "a1", "lfs 3.5k tonight", t0))
	f.source.addMessage("c2", lfsMessage("2001", "a1", "lfs 3.5k tonight", t0.Add(5*time.Minute)))

	report, err := f.engine.SyncChannels(context.Background(), []string{"c1", "c2"}, domain.SyncIncremental)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Zero(t, report.Errors)

	listed, err := f.records.ListSince(context.Background(), f.now.Add(-domain.DefaultRetention))
	require.NoError(t, err)
	require.Len(t, listed, 1)

	rec := listed[0]
	// The earliest sighting is primary.
	assert.Equal(t, "1001", rec.SourceMessageID)
	assert.Equal(t, t0, rec.SourceTimestamp)
	assert.ElementsMatch(t, []string{"eu-scrims", "eu-lfs"}, rec.PostedInChannels)
}

func TestSyncMergesIntoExistingRecordAcrossRuns(t *testing.T) {
	f := newSyncFixture(t)
	f.source.addChannel("c1", "eu-scrims")
	f.source.addChannel("c2", "eu-lfs")
	t0 := f.now.Add(-time.Hour)
	f.source.addMessage("c1", lfsMessage("1001", "a1", "lfs 3.5k tonight", t0))

	_, err := f.engine.SyncChannels(context.Background(), []string{"c1"}, domain.SyncIncremental)
	require.NoError(t, err)

	// The same post appears in another channel five minutes later.
	f.source.addMessage("c2", lfsMessage("2001", "a1", "lfs 3.5k tonight", t0.Add(5*time.Minute)))

	report, err := f.engine.SyncChannels(context.Background(), []string{"c2"}, domain.SyncIncremental)
	require.NoError(t, err)
	assert.Zero(t, report.Added)
	assert.Equal(t, 1, report.Merged)

	listed, err := f.records.ListSince(context.Background(), f.now.Add(-domain.DefaultRetention))
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.ElementsMatch(t, []string{"eu-scrims", "eu-lfs"}, listed[0].PostedInChannels)
}

func TestSyncRepostAfterWindow(t *testing.T) {
	f := newSyncFixture(t)
	f.source.addChannel("c1", "eu-scrims")
	t0 := f.now.Add(-time.Hour)
	f.source.addMessage("c1", lfsMessage("1001", "a1", "lfs 3.5k tonight", t0))

	_, err := f.engine.SyncChannels(context.Background(), []string{"c1"}, domain.SyncIncremental)
	require.NoError(t, err)

	// Identical text fifteen minutes later is a genuinely new post.
	f.source.addMessage("c1", lfsMessage("1002", "a1", "lfs 3.5k tonight", t0.Add(15*time.Minute)))

	report, err := f.engine.SyncChannels(context.Background(), []string{"c1"}, domain.SyncIncremental)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Zero(t, report.Merged)

	listed, err := f.records.ListSince(context.Background(), f.now.Add(-domain.DefaultRetention))
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestSyncRetractionDeletesPriorRecord(t *testing.T) {
	f := newSyncFixture(t)
	f.source.addChannel("c1", "eu-scrims")
	t0 := f.now.Add(-time.Hour)
	f.source.addMessage("c1", lfsMessage("1001", "a1", "lfs 3.5k tonight", t0))

	_, err := f.engine.SyncChannels(context.Background(), []string{"c1"}, domain.SyncIncremental)
	require.NoError(t, err)
	require.Equal(t, 1, f.records.Len())

	// The author crosses the post out. The marker is stripped by
	// normalization, so the fingerprint still matches.
	f.source.addMessage("c1", lfsMessage("1002", "a1", "~~lfs 3.5k tonight~~", t0.Add(20*time.Minute)))

	report, err := f.engine.SyncChannels(context.Background(), []string{"c1"}, domain.SyncIncremental)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deleted)
	assert.Zero(t, report.Added)
	assert.Equal(t, 0, f.records.Len())
}

func TestSyncRetractionWithoutPriorIsSkipped(t *testing.T) {
	f := newSyncFixture(t)
	f.source.addChannel("c1", "eu-scrims")
	f.source.addMessage("c1", lfsMessage("1001", "a1", "~~lfs 3.5k tonight~~", f.now.Add(-time.Hour)))

	report, err := f.engine.SyncChannels(context.Background(), []string{"c1"}, domain.SyncIncremental)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Added)
	assert.Zero(t, report.Deleted)
	assert.Equal(t, 0, f.records.Len())
}

func TestSyncIdempotentRerun(t *testing.T) {
	f := newSyncFixture(t)
	f.source.addChannel("c1", "eu-scrims")
	f.source.addMessage("c1", lfsMessage("1001", "a1", "lfs 3.5k tonight", f.now.Add(-time.Hour)))
	f.source.addMessage("c1", lfsMessage("1002", "a2", "warmup 4k2 now", f.now.Add(-30*time.Minute)))

	first, err := f.engine.SyncChannels(context.Background(), []string{"c1"}, domain.SyncFullWindow)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Added)

	second, err := f.engine.SyncChannels(context.Background(), []string{"c1"}, domain.SyncFullWindow)
	require.NoError(t, err)
	assert.Zero(t, second.Added)
	assert.Equal(t, 2, f.records.Len())
}

func TestSyncIncrementalUsesCursor(t *testing.T) {
	f := newSyncFixture(t)
	f.source.addChannel("c1", "eu-scrims")
	f.source.addMessage("c1", lfsMessage("1001", "a1", "lfs 3.5k tonight", f.now.Add(-time.Hour)))

	_, err := f.engine.SyncChannels(context.Background(), []string{"c1"}, domain.SyncIncremental)
	require.NoError(t, err)

	cursor, err := f.cursors.GetCursor(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "1001", cursor.LastMessageID)
	assert.Equal(t, "eu-scrims", cursor.ChannelName)

	// Second run fetches only after the bookmark and sees nothing new.
	f.source.fetchCalls = nil
	report, err := f.engine.SyncChannels(context.Background(), []string{"c1"}, domain.SyncIncremental)
	require.NoError(t, err)
	assert.Zero(t, report.Added)
	require.Len(t, f.source.fetchCalls, 1)
	assert.Equal(t, "1001", f.source.fetchCalls[0].After)

	// The bookmark survives a quiet run.
	cursor, err = f.cursors.GetCursor(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "1001", cursor.LastMessageID)
}

func TestSyncChannelErrorIsIsolated(t *testing.T) {
	f := newSyncFixture(t)
	f.source.addChannel("c1", "eu-scrims")
	f.source.addChannel("c2", "na-scrims")
	f.source.addMessage("c1", lfsMessage("1001", "a1", "lfs 3.5k tonight", f.now.Add(-time.Hour)))
	f.source.fetchErr["c2"] = errors.New("boom")

	report, err := f.engine.SyncChannels(context.Background(), []string{"c1", "c2"}, domain.SyncIncremental)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 1, report.Errors)

	require.Len(t, report.Channels, 2)
	assert.False(t, report.Channels[0].Failed)
	assert.True(t, report.Channels[1].Failed)

	// The healthy channel's cursor advanced; the failed one has none.
	_, err = f.cursors.GetCursor(context.Background(), "c1")
	assert.NoError(t, err)
	_, err = f.cursors.GetCursor(context.Background(), "c2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncDiscardsMessagesBeyondRetention(t *testing.T) {
	f := newSyncFixture(t)
	f.source.addChannel("c1", "eu-scrims")
	f.source.addMessage("c1", lfsMessage("0900", "a1", "lfs 3.5k", f.now.Add(-8*24*time.Hour)))
	f.source.addMessage("c1", lfsMessage("1001", "a2", "lfs 4k2", f.now.Add(-time.Hour)))

	report, err := f.engine.SyncChannels(context.Background(), []string{"c1"}, domain.SyncIncremental)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 1, f.records.Len())
}

func TestSyncEmptyBatchIsConfigError(t *testing.T) {
	f := newSyncFixture(t)
	_, err := f.engine.SyncChannels(context.Background(), nil, domain.SyncIncremental)
	assert.ErrorIs(t, err, domain.ErrConfigMissing)
}

func TestCleanup(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	stale := &domain.StoredRecord{
		ExtractedRecord: domain.ExtractedRecord{
			SourceMessageID: "old",
			AuthorID:        "a1",
			SourceTimestamp: f.now.Add(-8 * 24 * time.Hour),
		},
		Fingerprint: "fp-old",
	}
	fresh := &domain.StoredRecord{
		ExtractedRecord: domain.ExtractedRecord{
			SourceMessageID: "new",
			AuthorID:        "a1",
			SourceTimestamp: f.now.Add(-6 * 24 * time.Hour),
		},
		Fingerprint: "fp-new",
	}
	require.NoError(t, f.records.Insert(ctx, stale))
	require.NoError(t, f.records.Insert(ctx, fresh))

	deleted, err := f.engine.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 1, f.records.Len())
}
