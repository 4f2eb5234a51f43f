package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/goforscrim/scrimsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/goforscrim/scrimsync/internal/core/domain"
	"github.com/goforscrim/scrimsync/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to all
// store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.scrimsync/data/scrims.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".scrimsync", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "scrims.db")

	// WAL mode lets the HTTP query path read while a sync run writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RecordStore returns a RecordStore interface backed by this store.
func (s *Store) RecordStore() driven.RecordStore {
	return &recordStore{store: s}
}

// CursorStore returns a CursorStore interface backed by this store.
func (s *Store) CursorStore() driven.CursorStore {
	return &cursorStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// isUniqueViolation reports whether the error is a UNIQUE constraint
// failure from the driver.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ==================== Record Store ====================

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

const recordColumns = `source_message_id, content_fingerprint, kind, region, platform,
	skill_rating, rank, availability_day, time_start, time_end, timezone,
	source_url, author_id, author_username, author_display_name,
	source_timestamp, channel_id, channel_name, posted_in_channels, created_at`

// Insert stores a new record. A duplicate source message id or a
// duplicate (fingerprint, source timestamp) pair fails with
// domain.ErrAlreadyExists.
func (s *recordStore) Insert(ctx context.Context, rec *domain.StoredRecord) error {
	channelsJSON, err := json.Marshal(rec.PostedInChannels)
	if err != nil {
		return fmt.Errorf("marshalling channel set: %w", err)
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO scrims (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.SourceMessageID, rec.Fingerprint, string(rec.Kind), rec.Region, rec.Platform,
		rec.SkillRating, rec.Rank, rec.AvailabilityDay, rec.TimeStart, rec.TimeEnd, rec.Timezone,
		rec.SourceURL, rec.AuthorID, rec.AuthorUsername, rec.AuthorDisplayName,
		rec.SourceTimestamp.UTC(), rec.ChannelID, rec.ChannelName, string(channelsJSON), rec.CreatedAt)

	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// FindByFingerprint returns all records with the fingerprint, oldest first.
func (s *recordStore) FindByFingerprint(ctx context.Context, fingerprint string) ([]domain.StoredRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM scrims WHERE content_fingerprint = ?
		ORDER BY source_timestamp ASC
	`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("querying by fingerprint: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// UpdateChannelSet replaces the channel set of the identified record.
func (s *recordStore) UpdateChannelSet(ctx context.Context, sourceMessageID string, channels []string) error {
	channelsJSON, err := json.Marshal(channels)
	if err != nil {
		return fmt.Errorf("marshalling channel set: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE scrims SET posted_in_channels = ? WHERE source_message_id = ?
	`, string(channelsJSON), sourceMessageID)
	if err != nil {
		return fmt.Errorf("updating channel set: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the identified record.
func (s *recordStore) Delete(ctx context.Context, sourceMessageID string) error {
	res, err := s.store.db.ExecContext(ctx, `
		DELETE FROM scrims WHERE source_message_id = ?
	`, sourceMessageID)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListSince returns records at or after the cutoff, newest first.
func (s *recordStore) ListSince(ctx context.Context, cutoff time.Time) ([]domain.StoredRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM scrims WHERE source_timestamp >= ?
		ORDER BY source_timestamp DESC
	`, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// DeleteOlderThan removes records older than the cutoff.
func (s *recordStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.store.db.ExecContext(ctx, `
		DELETE FROM scrims WHERE source_timestamp < ?
	`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting old records: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking delete result: %w", err)
	}
	return int(affected), nil
}

func scanRecords(rows *sql.Rows) ([]domain.StoredRecord, error) {
	var out []domain.StoredRecord
	for rows.Next() {
		var rec domain.StoredRecord
		var kind, channelsJSON string
		var sourceTS, createdAt sql.NullTime

		if err := rows.Scan(&rec.SourceMessageID, &rec.Fingerprint, &kind, &rec.Region, &rec.Platform,
			&rec.SkillRating, &rec.Rank, &rec.AvailabilityDay, &rec.TimeStart, &rec.TimeEnd, &rec.Timezone,
			&rec.SourceURL, &rec.AuthorID, &rec.AuthorUsername, &rec.AuthorDisplayName,
			&sourceTS, &rec.ChannelID, &rec.ChannelName, &channelsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		rec.Kind = domain.Kind(kind)
		if sourceTS.Valid {
			rec.SourceTimestamp = sourceTS.Time.UTC()
		}
		if createdAt.Valid {
			rec.CreatedAt = createdAt.Time.UTC()
		}
		if err := json.Unmarshal([]byte(channelsJSON), &rec.PostedInChannels); err != nil {
			return nil, fmt.Errorf("unmarshaling channel set: %w", err)
		}

		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return out, nil
}

// ==================== Cursor Store ====================

// cursorStore implements driven.CursorStore.
type cursorStore struct {
	store *Store
}

var _ driven.CursorStore = (*cursorStore)(nil)

// GetCursor returns the cursor for a channel.
func (s *cursorStore) GetCursor(ctx context.Context, channelID string) (*domain.SyncCursor, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT channel_id, channel_name, last_message_id, last_sync_at
		FROM channel_sync_state WHERE channel_id = ?
	`, channelID)

	var cursor domain.SyncCursor
	var lastSyncAt sql.NullTime
	if err := row.Scan(&cursor.ChannelID, &cursor.ChannelName, &cursor.LastMessageID, &lastSyncAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning cursor: %w", err)
	}
	if lastSyncAt.Valid {
		cursor.LastSyncAt = lastSyncAt.Time.UTC()
	}
	return &cursor, nil
}

// PutCursor stores or advances a channel's cursor.
func (s *cursorStore) PutCursor(ctx context.Context, cursor domain.SyncCursor) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO channel_sync_state (channel_id, channel_name, last_message_id, last_sync_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(channel_id) DO UPDATE SET
			channel_name = excluded.channel_name,
			last_message_id = excluded.last_message_id,
			last_sync_at = excluded.last_sync_at
	`, cursor.ChannelID, cursor.ChannelName, cursor.LastMessageID, cursor.LastSyncAt.UTC())
	if err != nil {
		return fmt.Errorf("saving cursor: %w", err)
	}
	return nil
}

// ListCursors returns all known cursors.
func (s *cursorStore) ListCursors(ctx context.Context) ([]domain.SyncCursor, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT channel_id, channel_name, last_message_id, last_sync_at
		FROM channel_sync_state ORDER BY channel_id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing cursors: %w", err)
	}
	defer rows.Close()

	var out []domain.SyncCursor
	for rows.Next() {
		var cursor domain.SyncCursor
		var lastSyncAt sql.NullTime
		if err := rows.Scan(&cursor.ChannelID, &cursor.ChannelName, &cursor.LastMessageID, &lastSyncAt); err != nil {
			return nil, fmt.Errorf("scanning cursor: %w", err)
		}
		if lastSyncAt.Valid {
			cursor.LastSyncAt = lastSyncAt.Time.UTC()
		}
		out = append(out, cursor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cursors: %w", err)
	}
	return out, nil
}
