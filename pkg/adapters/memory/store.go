package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/chatlist/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Snapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Snapshot),
	}
}

// Save persists the snapshot in memory.
func (s *Store) Save(ctx context.Context, listID string, snapshot *domain.Snapshot) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := snapshot.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[listID] = copied
	return nil
}

// Load retrieves the snapshot from memory.
func (s *Store) Load(ctx context.Context, listID string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.data[listID]
	if !ok {
		return nil, domain.ErrListNotFound
	}

	// Copy on read so caller can't mutate store state directly by pointer
	return snapshot.Clone(), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, listID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, listID)
	return nil
}

// List returns the stored list IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lists := make([]string, 0, len(s.data))
	for id := range s.data {
		lists = append(lists, id)
	}
	sort.Strings(lists)
	return lists, nil
}
