package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goforscrim/scrimsync/internal/core/domain"
	"github.com/goforscrim/scrimsync/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
// Used in tests and as the reference behavior for the sqlite adapter.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]domain.StoredRecord // keyed by source message id
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string]domain.StoredRecord),
	}
}

// Insert stores a new record. A record with the same source message id,
// or the same (fingerprint, source timestamp) pair, already existing
// fails with domain.ErrAlreadyExists.
func (s *RecordStore) Insert(_ context.Context, rec *domain.StoredRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.SourceMessageID]; ok {
		return domain.ErrAlreadyExists
	}
	for _, existing := range s.records {
		if existing.Fingerprint == rec.Fingerprint && existing.SourceTimestamp.Equal(rec.SourceTimestamp) {
			return domain.ErrAlreadyExists
		}
	}

	stored := *rec
	stored.PostedInChannels = append([]string(nil), rec.PostedInChannels...)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.records[rec.SourceMessageID] = stored
	rec.CreatedAt = stored.CreatedAt
	return nil
}

// FindByFingerprint returns all records with the fingerprint, oldest first.
func (s *RecordStore) FindByFingerprint(_ context.Context, fingerprint string) ([]domain.StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.StoredRecord
	for _, rec := range s.records {
		if rec.Fingerprint == fingerprint {
			out = append(out, copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SourceTimestamp.Before(out[j].SourceTimestamp)
	})
	return out, nil
}

// UpdateChannelSet replaces the channel set of the identified record.
func (s *RecordStore) UpdateChannelSet(_ context.Context, sourceMessageID string, channels []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[sourceMessageID]
	if !ok {
		return domain.ErrNotFound
	}
	rec.PostedInChannels = append([]string(nil), channels...)
	s.records[sourceMessageID] = rec
	return nil
}

// Delete removes the identified record.
func (s *RecordStore) Delete(_ context.Context, sourceMessageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[sourceMessageID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.records, sourceMessageID)
	return nil
}

// ListSince returns records at or after the cutoff, newest first.
func (s *RecordStore) ListSince(_ context.Context, cutoff time.Time) ([]domain.StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.StoredRecord
	for _, rec := range s.records {
		if !rec.SourceTimestamp.Before(cutoff) {
			out = append(out, copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SourceTimestamp.After(out[j].SourceTimestamp)
	})
	return out, nil
}

// DeleteOlderThan removes records older than the cutoff.
func (s *RecordStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, rec := range s.records {
		if rec.SourceTimestamp.Before(cutoff) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func copyRecord(rec domain.StoredRecord) domain.StoredRecord {
	out := rec
	out.PostedInChannels = append([]string(nil), rec.PostedInChannels...)
	return out
}
