package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goforscrim/scrimsync/internal/core/domain"
	"github.com/goforscrim/scrimsync/internal/core/ports/driven"
	"github.com/goforscrim/scrimsync/internal/core/ports/driving"
	"github.com/goforscrim/scrimsync/internal/extract"
	"github.com/goforscrim/scrimsync/internal/logger"
)

// retractionMarker is the strikethrough marker authors use to cross out a
// post they no longer want listed.
const retractionMarker = "~~"

// DefaultFetchConcurrency bounds parallel channel fetches within a run.
const DefaultFetchConcurrency = 3

// SyncOptions are the policy thresholds of the engine. Zero values fall
// back to the domain defaults.
type SyncOptions struct {
	MergeWindow      time.Duration
	Retention        time.Duration
	PageSize         int
	MaxPages         int
	FetchConcurrency int
}

func (o *SyncOptions) applyDefaults() {
	if o.MergeWindow <= 0 {
		o.MergeWindow = domain.DefaultMergeWindow
	}
	if o.Retention <= 0 {
		o.Retention = domain.DefaultRetention
	}
	if o.PageSize <= 0 {
		o.PageSize = domain.DefaultPageSize
	}
	if o.MaxPages <= 0 {
		o.MaxPages = domain.DefaultMaxPages
	}
	if o.FetchConcurrency <= 0 {
		o.FetchConcurrency = DefaultFetchConcurrency
	}
}

// SyncEngine implements driving.Syncer: it fetches messages per channel,
// extracts records, groups them by fingerprint across all channels of the
// run, and applies the merge policy against the store.
type SyncEngine struct {
	source  driven.MessageSource
	records driven.RecordStore
	cursors driven.CursorStore
	opts    SyncOptions

	running atomic.Bool
	now     func() time.Time
}

var _ driving.Syncer = (*SyncEngine)(nil)

// NewSyncEngine creates a sync engine.
func NewSyncEngine(source driven.MessageSource, records driven.RecordStore, cursors driven.CursorStore, opts SyncOptions) *SyncEngine {
	opts.applyDefaults()
	return &SyncEngine{
		source:  source,
		records: records,
		cursors: cursors,
		opts:    opts,
		now:     time.Now,
	}
}

// channelFetch is the outcome of fetching one channel.
type channelFetch struct {
	channelID   string
	channelName string
	messages    []domain.RawMessage
	newestID    string
	err         error
}

// SyncChannels runs one sync over the given channel batch.
//
// Fetches run with bounded concurrency; grouping and store mutation are
// serialized afterwards so that primary selection is stable regardless of
// fetch completion order. Per-channel and per-message failures are
// counted and isolated; only an empty batch or a store snapshot failure
// aborts the run.
func (e *SyncEngine) SyncChannels(ctx context.Context, channelIDs []string, mode domain.SyncMode) (*domain.SyncReport, error) {
	if len(channelIDs) == 0 {
		return nil, fmt.Errorf("%w: channel batch is empty", domain.ErrConfigMissing)
	}
	if !e.running.CompareAndSwap(false, true) {
		return nil, domain.ErrSyncInProgress
	}
	defer e.running.Store(false)

	start := e.now()
	horizon := start.Add(-e.opts.Retention)
	logger.Info("Sync starting: %d channel(s), mode=%s", len(channelIDs), mode)

	// Phase 1: fetch all channels.
	fetches := e.fetchAll(ctx, channelIDs, mode, horizon)

	report := &domain.SyncReport{}
	failed := make(map[string]bool) // channel id -> failed this run

	for _, f := range fetches {
		stat := domain.ChannelStat{
			ChannelID:    f.channelID,
			ChannelName:  f.channelName,
			MessageCount: len(f.messages),
		}
		if f.err != nil {
			logger.Warn("Channel %s failed: %v", f.channelID, f.err)
			stat.Failed = true
			failed[f.channelID] = true
			report.Errors++
		}
		report.Channels = append(report.Channels, stat)
	}

	// Read-once snapshot of existing records within the retention window.
	// It is mutated in memory as the run progresses and never re-validated
	// against the store mid-run.
	existing, err := e.records.ListSince(ctx, horizon)
	if err != nil {
		return nil, fmt.Errorf("loading existing records: %w", err)
	}
	snapshot := make(map[string][]domain.StoredRecord)
	for _, rec := range existing {
		snapshot[rec.Fingerprint] = append(snapshot[rec.Fingerprint], rec)
	}
	for fp := range snapshot {
		sortRecordsByTimestamp(snapshot[fp])
	}

	// Phase 2: group by fingerprint across all fetched channels.
	groups := make(map[string][]domain.RawMessage)
	for _, f := range fetches {
		if f.err != nil {
			continue
		}
		for _, msg := range f.messages {
			fp := extract.Fingerprint(msg.AuthorID, msg.Content)
			groups[fp] = append(groups[fp], msg)
		}
	}

	for _, fp := range orderedFingerprints(groups) {
		e.processGroup(ctx, fp, groups[fp], snapshot, report, failed)
	}

	// Phase 3: advance cursors for channels that fetched and processed
	// cleanly. This is the last action per channel.
	for i, f := range fetches {
		if f.err != nil || failed[f.channelID] {
			report.Channels[i].Failed = true
			continue
		}
		cursor := domain.SyncCursor{
			ChannelID:     f.channelID,
			ChannelName:   f.channelName,
			LastMessageID: f.newestID,
			LastSyncAt:    start,
		}
		if err := e.cursors.PutCursor(ctx, cursor); err != nil {
			logger.Warn("Advancing cursor for channel %s failed: %v", f.channelID, err)
			report.Channels[i].Failed = true
			report.Errors++
		}
	}

	logger.Info("Sync finished: added=%d merged=%d deleted=%d skipped=%d errors=%d",
		report.Added, report.Merged, report.Deleted, report.Skipped, report.Errors)
	return report, nil
}

// Cleanup deletes records older than the retention horizon.
func (e *SyncEngine) Cleanup(ctx context.Context) (int, error) {
	cutoff := e.now().Add(-e.opts.Retention)
	deleted, err := e.records.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention cleanup: %w", err)
	}
	if deleted > 0 {
		logger.Info("Retention cleanup removed %d record(s)", deleted)
	}
	return deleted, nil
}

// fetchAll fetches every channel with bounded concurrency. Results come
// back in the order of channelIDs.
func (e *SyncEngine) fetchAll(ctx context.Context, channelIDs []string, mode domain.SyncMode, horizon time.Time) []channelFetch {
	fetches := make([]channelFetch, len(channelIDs))
	sem := make(chan struct{}, e.opts.FetchConcurrency)
	var wg sync.WaitGroup

	for i, channelID := range channelIDs {
		wg.Add(1)
		go func(i int, channelID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			fetches[i] = e.fetchChannel(ctx, channelID, mode, horizon)
		}(i, channelID)
	}
	wg.Wait()

	return fetches
}

// fetchChannel fetches one channel's metadata and messages, discarding
// anything older than the retention horizon.
func (e *SyncEngine) fetchChannel(ctx context.Context, channelID string, mode domain.SyncMode, horizon time.Time) channelFetch {
	out := channelFetch{channelID: channelID}

	info, err := e.source.FetchChannelInfo(ctx, channelID)
	if err != nil {
		out.err = fmt.Errorf("channel info: %w", err)
		return out
	}
	out.channelName = info.Name

	var pages [][]domain.RawMessage
	switch mode {
	case domain.SyncFullWindow:
		pages, err = e.fetchWindow(ctx, channelID, horizon)
	default:
		pages, err = e.fetchIncremental(ctx, channelID, &out)
	}
	if err != nil {
		out.err = err
		return out
	}

	for _, page := range pages {
		for _, msg := range page {
			if newerSnowflake(msg.ID, out.newestID) {
				out.newestID = msg.ID
			}
			if msg.Timestamp.Before(horizon) {
				continue
			}
			msg.ChannelName = info.Name
			out.messages = append(out.messages, msg)
		}
	}

	logger.Debug("Fetched %d message(s) from #%s", len(out.messages), info.Name)
	return out
}

// fetchIncremental fetches a single page after the channel's cursor. A
// missing cursor means a plain latest-messages fetch.
func (e *SyncEngine) fetchIncremental(ctx context.Context, channelID string, out *channelFetch) ([][]domain.RawMessage, error) {
	opts := driven.FetchOptions{Limit: e.opts.PageSize}
	cursor, err := e.cursors.GetCursor(ctx, channelID)
	switch {
	case err == nil:
		opts.After = cursor.LastMessageID
		// A quiet channel keeps its bookmark.
		out.newestID = cursor.LastMessageID
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, fmt.Errorf("loading cursor: %w", err)
	}

	page, err := e.source.FetchMessages(ctx, channelID, opts)
	if err != nil {
		return nil, fmt.Errorf("fetching messages: %w", err)
	}
	return [][]domain.RawMessage{page}, nil
}

// fetchWindow pages backwards from the newest message until the retention
// horizon or the page bound is reached. Cursors are ignored.
func (e *SyncEngine) fetchWindow(ctx context.Context, channelID string, horizon time.Time) ([][]domain.RawMessage, error) {
	var pages [][]domain.RawMessage
	before := ""

	for page := 0; page < e.opts.MaxPages; page++ {
		batch, err := e.source.FetchMessages(ctx, channelID, driven.FetchOptions{
			Limit:  e.opts.PageSize,
			Before: before,
		})
		if err != nil {
			return nil, fmt.Errorf("fetching messages (page %d): %w", page+1, err)
		}
		if len(batch) == 0 {
			break
		}
		pages = append(pages, batch)

		oldest := batch[len(batch)-1]
		if oldest.Timestamp.Before(horizon) || len(batch) < e.opts.PageSize {
			break
		}
		before = oldest.ID
	}

	return pages, nil
}

// processGroup applies the merge policy to one fingerprint group.
func (e *SyncEngine) processGroup(ctx context.Context, fp string, group []domain.RawMessage, snapshot map[string][]domain.StoredRecord, report *domain.SyncReport, failed map[string]bool) {
	primary := group[0]
	channelSet := make([]string, 0, 2)
	for _, msg := range group {
		if msg.Timestamp.Before(primary.Timestamp) ||
			(msg.Timestamp.Equal(primary.Timestamp) && newerSnowflake(primary.ID, msg.ID)) {
			primary = msg
		}
		channelSet = appendUnique(channelSet, msg.ChannelName)
	}

	markFailed := func() {
		for _, msg := range group {
			failed[msg.ChannelID] = true
		}
	}

	// Retraction: a crossed-out post deletes its prior record and never
	// inserts a new one.
	if strings.Contains(primary.Content, retractionMarker) {
		recs := snapshot[fp]
		if len(recs) == 0 {
			report.Skipped++
			return
		}
		latest := recs[len(recs)-1]
		if err := e.records.Delete(ctx, latest.SourceMessageID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Deleting retracted record %s failed: %v", latest.SourceMessageID, err)
			report.Errors++
			markFailed()
			return
		}
		snapshot[fp] = recs[:len(recs)-1]
		report.Deleted++
		logger.Debug("Retracted record %s", latest.SourceMessageID)
		return
	}

	// Same live post re-observed within the merge window: union the
	// channel set, leave everything else untouched.
	if recs := snapshot[fp]; len(recs) > 0 {
		latest := &snapshot[fp][len(recs)-1]
		if absDuration(primary.Timestamp.Sub(latest.SourceTimestamp)) <= e.opts.MergeWindow {
			if latest.MergeChannels(channelSet) {
				if err := e.records.UpdateChannelSet(ctx, latest.SourceMessageID, latest.PostedInChannels); err != nil {
					logger.Warn("Merging channels into record %s failed: %v", latest.SourceMessageID, err)
					report.Errors++
					markFailed()
					return
				}
			}
			report.Merged++
			return
		}
		// More than the window apart: a repost, stored as its own record.
	}

	rec := domain.StoredRecord{
		ExtractedRecord:  extract.Extract(primary),
		Fingerprint:      fp,
		PostedInChannels: channelSet,
	}
	err := e.records.Insert(ctx, &rec)
	if errors.Is(err, domain.ErrAlreadyExists) {
		// Lost an insert race; converted into the merge-update path.
		e.mergeAfterConflict(ctx, fp, channelSet, snapshot, report, markFailed)
		return
	}
	if err != nil {
		logger.Warn("Inserting record %s failed: %v", rec.SourceMessageID, err)
		report.Errors++
		markFailed()
		return
	}
	snapshot[fp] = append(snapshot[fp], rec)
	report.Added++
}

// mergeAfterConflict re-reads the conflicting record from the store and
// applies the channel-set merge to it.
func (e *SyncEngine) mergeAfterConflict(ctx context.Context, fp string, channelSet []string, snapshot map[string][]domain.StoredRecord, report *domain.SyncReport, markFailed func()) {
	recs, err := e.records.FindByFingerprint(ctx, fp)
	if err != nil || len(recs) == 0 {
		logger.Warn("Resolving insert conflict for fingerprint %s failed: %v", fp, err)
		report.Errors++
		markFailed()
		return
	}
	latest := recs[len(recs)-1]
	if latest.MergeChannels(channelSet) {
		if err := e.records.UpdateChannelSet(ctx, latest.SourceMessageID, latest.PostedInChannels); err != nil {
			logger.Warn("Merging channels into record %s failed: %v", latest.SourceMessageID, err)
			report.Errors++
			markFailed()
			return
		}
	}
	snapshot[fp] = recs
	report.Merged++
}

// orderedFingerprints returns the group keys sorted by primary timestamp,
// then fingerprint, so runs process groups deterministically.
func orderedFingerprints(groups map[string][]domain.RawMessage) []string {
	earliest := make(map[string]time.Time, len(groups))
	fps := make([]string, 0, len(groups))
	for fp, group := range groups {
		ts := group[0].Timestamp
		for _, msg := range group[1:] {
			if msg.Timestamp.Before(ts) {
				ts = msg.Timestamp
			}
		}
		earliest[fp] = ts
		fps = append(fps, fp)
	}
	sort.Slice(fps, func(i, j int) bool {
		if !earliest[fps[i]].Equal(earliest[fps[j]]) {
			return earliest[fps[i]].Before(earliest[fps[j]])
		}
		return fps[i] < fps[j]
	})
	return fps
}

func sortRecordsByTimestamp(recs []domain.StoredRecord) {
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].SourceTimestamp.Before(recs[j].SourceTimestamp)
	})
}

// newerSnowflake reports whether a is a later message id than b. Ids are
// numeric strings that sort chronologically; longer means larger.
func newerSnowflake(a, b string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return a > b
}

func appendUnique(set []string, v string) []string {
	if v == "" {
		return set
	}
	for _, s := range set {
		if s == v {
			return set
		}
	}
	return append(set, v)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
