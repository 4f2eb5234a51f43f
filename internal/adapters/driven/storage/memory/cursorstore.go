package memory

import (
	"context"
	"sync"

	"github.com/goforscrim/scrimsync/internal/core/domain"
	"github.com/goforscrim/scrimsync/internal/core/ports/driven"
)

// Ensure CursorStore implements the interface.
var _ driven.CursorStore = (*CursorStore)(nil)

// CursorStore is an in-memory implementation of driven.CursorStore.
type CursorStore struct {
	mu      sync.RWMutex
	cursors map[string]domain.SyncCursor
}

// NewCursorStore creates a new in-memory cursor store.
func NewCursorStore() *CursorStore {
	return &CursorStore{
		cursors: make(map[string]domain.SyncCursor),
	}
}

// GetCursor returns the cursor for a channel.
func (s *CursorStore) GetCursor(_ context.Context, channelID string) (*domain.SyncCursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cursor, ok := s.cursors[channelID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cursor, nil
}

// PutCursor stores or advances a channel's cursor.
func (s *CursorStore) PutCursor(_ context.Context, cursor domain.SyncCursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[cursor.ChannelID] = cursor
	return nil
}

// ListCursors returns all known cursors.
func (s *CursorStore) ListCursors(_ context.Context) ([]domain.SyncCursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SyncCursor, 0, len(s.cursors))
	for _, cursor := range s.cursors {
		out = append(out, cursor)
	}
	return out, nil
}
