package recipe

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store used when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	details  map[int]*Detail
	searches []*Search
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{details: make(map[int]*Detail)}
}

// GetDetail returns the cached detail for id, or nil, nil.
func (s *MemoryStore) GetDetail(ctx context.Context, id int) (*Detail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.details[id], nil
}

// SaveDetail caches detail by its ID.
func (s *MemoryStore) SaveDetail(ctx context.Context, detail *Detail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[detail.ID] = detail
	return nil
}

// SaveSearch appends a search to the history.
func (s *MemoryStore) SaveSearch(ctx context.Context, search *Search) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches = append(s.searches, search)
	return nil
}

// RecentSearches returns up to limit searches, newest first.
func (s *MemoryStore) RecentSearches(ctx context.Context, limit int) ([]*Search, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		return []*Search{}, nil
	}
	out := make([]*Search, 0, limit)
	for i := len(s.searches) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.searches[i])
	}
	return out, nil
}
