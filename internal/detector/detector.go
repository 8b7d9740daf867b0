// Package detector runs saved searches against fresh upstream data and
// notifies on offers not seen before. Keys are marked seen only after
// the notification attempt, so delivery is at-least-once.
package detector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/olivierg1729/jobfinder/internal/models"
	"github.com/olivierg1729/jobfinder/internal/search"
)

// DefaultWindow caps how many top-ranked offers one check inspects.
const DefaultWindow = 50

type Detector struct {
	engine   Searcher
	searches SearchSource
	seen     SeenStore
	notifier Notifier
	window   int
}

func New(engine Searcher, searches SearchSource, seen SeenStore, n Notifier, window int) *Detector {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Detector{
		engine:   engine,
		searches: searches,
		seen:     seen,
		notifier: n,
		window:   window,
	}
}

// Run checks every saved search in turn. One failing search does not
// stop the others; their errors are aggregated.
func (d *Detector) Run(ctx context.Context) error {
	saved, err := d.searches.ListSearches(ctx)
	if err != nil {
		return fmt.Errorf("list saved searches: %w", err)
	}
	slog.Info("Checking saved searches", "count", len(saved))

	var errorMessages []string
	for _, s := range saved {
		n, err := d.Check(ctx, s)
		if err != nil {
			errorMessages = append(errorMessages, err.Error())
			continue
		}
		if n > 0 {
			slog.Info("New offers notified", "query", s.Query, "count", n)
		}
	}

	if len(errorMessages) > 0 {
		return fmt.Errorf("checked with errors: %s", strings.Join(errorMessages, "; "))
	}
	return nil
}

// Check runs one saved search and returns how many new offers it
// notified for.
func (d *Detector) Check(ctx context.Context, saved models.SavedSearch) (int, error) {
	res, err := d.engine.Search(ctx, saved.Query, 1, d.window, search.Options{ForceRefresh: true})
	if err != nil {
		return 0, fmt.Errorf("search %q: %w", saved.Query, err)
	}
	if len(res.Items) == 0 {
		return 0, nil
	}

	byKey := make(map[string]models.Offer, len(res.Items))
	keys := make([]string, 0, len(res.Items))
	for _, o := range res.Items {
		byKey[o.Key] = o
		keys = append(keys, o.Key)
	}

	unseen, err := d.seen.Unseen(ctx, keys)
	if err != nil {
		return 0, fmt.Errorf("filter seen offers for %q: %w", saved.Query, err)
	}
	if len(unseen) == 0 {
		return 0, nil
	}

	fresh := make([]models.Offer, 0, len(unseen))
	for _, k := range unseen {
		fresh = append(fresh, byKey[k])
	}

	if err := d.notifier.Notify(ctx, saved, fresh); err != nil {
		return 0, fmt.Errorf("notify for %q: %w", saved.Query, err)
	}
	if err := d.seen.MarkSeen(ctx, unseen); err != nil {
		return 0, fmt.Errorf("mark seen for %q: %w", saved.Query, err)
	}
	return len(fresh), nil
}
