// Package storage persists the two durable collaborators of the system:
// saved searches and the set of offer identity keys already notified for.
// Three backends implement the same interfaces; which one runs is a
// config choice.
package storage

import (
	"context"

	"github.com/olivierg1729/jobfinder/internal/models"
)

// SearchStore persists saved searches.
type SearchStore interface {
	// CreateSearch stores a new saved search and returns it with its ID
	// assigned. Returns models.ErrSearchExists when the same query and
	// email pair is already saved.
	CreateSearch(ctx context.Context, search models.SavedSearch) (models.SavedSearch, error)
	// ListSearches returns all saved searches, newest first.
	ListSearches(ctx context.Context) ([]models.SavedSearch, error)
}

// SeenStore persists the append-only set of notified identity keys.
type SeenStore interface {
	// Unseen filters keys down to those not yet marked seen, preserving
	// input order.
	Unseen(ctx context.Context, keys []string) ([]string, error)
	// MarkSeen records keys as notified. Marking an already-seen key is
	// a no-op, which keeps the change detector idempotent.
	MarkSeen(ctx context.Context, keys []string) error
}

// Store is the full persistence surface a backend provides.
type Store interface {
	SearchStore
	SeenStore
	Close() error
}
