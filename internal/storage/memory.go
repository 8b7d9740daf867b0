package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/olivierg1729/jobfinder/internal/models"
)

// MemoryStore is the in-process backend used for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	searches []models.SavedSearch
	pairs    map[string]bool
	seen     map[string]bool
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		pairs: make(map[string]bool),
		seen:  make(map[string]bool),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateSearch(_ context.Context, search models.SavedSearch) (models.SavedSearch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair := search.Query + "|" + search.Email
	if s.pairs[pair] {
		return models.SavedSearch{}, models.ErrSearchExists
	}
	s.pairs[pair] = true

	search.ID = uuid.NewString()
	s.searches = append(s.searches, search)
	return search, nil
}

func (s *MemoryStore) ListSearches(_ context.Context) ([]models.SavedSearch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Newest first.
	out := make([]models.SavedSearch, 0, len(s.searches))
	for i := len(s.searches) - 1; i >= 0; i-- {
		out = append(out, s.searches[i])
	}
	return out, nil
}

func (s *MemoryStore) Unseen(_ context.Context, keys []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var unseen []string
	for _, k := range keys {
		if !s.seen[k] {
			unseen = append(unseen, k)
		}
	}
	return unseen, nil
}

func (s *MemoryStore) MarkSeen(_ context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		s.seen[k] = true
	}
	return nil
}
