package detector

import (
	"context"

	"github.com/olivierg1729/jobfinder/internal/models"
	"github.com/olivierg1729/jobfinder/internal/search"
)

// Searcher abstracts the search engine.
type Searcher interface {
	Search(ctx context.Context, query string, page, pageSize int, opts search.Options) (search.Result, error)
}

// SearchSource lists the saved searches to check.
type SearchSource interface {
	ListSearches(ctx context.Context) ([]models.SavedSearch, error)
}

// SeenStore tracks which offer keys have already been notified.
type SeenStore interface {
	Unseen(ctx context.Context, keys []string) ([]string, error)
	MarkSeen(ctx context.Context, keys []string) error
}

// Notifier delivers the offers found new for a saved search.
type Notifier interface {
	Notify(ctx context.Context, search models.SavedSearch, offers []models.Offer) error
}
