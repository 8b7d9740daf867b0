package detector

import (
	"context"
	"errors"
	"testing"

	"github.com/olivierg1729/jobfinder/internal/models"
	"github.com/olivierg1729/jobfinder/internal/search"
	"github.com/olivierg1729/jobfinder/internal/storage"
)

type stubEngine struct {
	items       []models.Offer
	err         error
	calls       int
	lastOpts    search.Options
	lastPageSz  int
	lastQueries []string
}

func (s *stubEngine) Search(_ context.Context, query string, page, pageSize int, opts search.Options) (search.Result, error) {
	s.calls++
	s.lastOpts = opts
	s.lastPageSz = pageSize
	s.lastQueries = append(s.lastQueries, query)
	if s.err != nil {
		return search.Result{}, s.err
	}
	return search.Result{Items: s.items, Page: page, PageSize: pageSize}, nil
}

type recordingNotifier struct {
	notified [][]models.Offer
	err      error
}

func (r *recordingNotifier) Notify(_ context.Context, _ models.SavedSearch, offers []models.Offer) error {
	if r.err != nil {
		return r.err
	}
	r.notified = append(r.notified, offers)
	return nil
}

func offers(keys ...string) []models.Offer {
	out := make([]models.Offer, len(keys))
	for i, k := range keys {
		out[i] = models.Offer{Key: k, Title: "offer " + k}
	}
	return out
}

func TestCheckNotifiesOnlyUnseen(t *testing.T) {
	store := storage.NewMemory()
	defer store.Close()
	ctx := context.Background()

	if err := store.MarkSeen(ctx, []string{"id:1"}); err != nil {
		t.Fatal(err)
	}

	engine := &stubEngine{items: offers("id:1", "id:2", "id:3")}
	n := &recordingNotifier{}
	d := New(engine, store, store, n, 0)

	count, err := d.Check(ctx, models.SavedSearch{Query: "analyste"})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if len(n.notified) != 1 || len(n.notified[0]) != 2 {
		t.Fatalf("notified batches = %v", n.notified)
	}
	if n.notified[0][0].Key != "id:2" || n.notified[0][1].Key != "id:3" {
		t.Errorf("notified keys = %s, %s; want id:2, id:3",
			n.notified[0][0].Key, n.notified[0][1].Key)
	}
	if !engine.lastOpts.ForceRefresh {
		t.Error("check must bypass the accumulation cache")
	}
	if engine.lastPageSz != DefaultWindow {
		t.Errorf("window = %d, want %d", engine.lastPageSz, DefaultWindow)
	}
}

func TestCheckSecondRunIsQuiet(t *testing.T) {
	store := storage.NewMemory()
	defer store.Close()
	ctx := context.Background()

	engine := &stubEngine{items: offers("id:1", "id:2")}
	n := &recordingNotifier{}
	d := New(engine, store, store, n, 10)

	if _, err := d.Check(ctx, models.SavedSearch{Query: "x"}); err != nil {
		t.Fatal(err)
	}
	count, err := d.Check(ctx, models.SavedSearch{Query: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("second check notified %d offers, want 0", count)
	}
	if len(n.notified) != 1 {
		t.Errorf("notified %d batches, want 1", len(n.notified))
	}
}

func TestCheckNotifyFailureLeavesKeysUnseen(t *testing.T) {
	store := storage.NewMemory()
	defer store.Close()
	ctx := context.Background()

	engine := &stubEngine{items: offers("id:1")}
	n := &recordingNotifier{err: errors.New("smtp down")}
	d := New(engine, store, store, n, 10)

	if _, err := d.Check(ctx, models.SavedSearch{Query: "x"}); err == nil {
		t.Fatal("expected notify error to surface")
	}

	// Next run with a working channel re-delivers.
	unseen, err := store.Unseen(ctx, []string{"id:1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(unseen) != 1 {
		t.Error("failed notification must not mark keys seen")
	}
}

func TestRunContinuesPastFailingSearch(t *testing.T) {
	store := storage.NewMemory()
	defer store.Close()
	ctx := context.Background()

	for _, q := range []string{"a", "b"} {
		if _, err := store.CreateSearch(ctx, models.SavedSearch{Query: q}); err != nil {
			t.Fatal(err)
		}
	}

	engine := &stubEngine{err: errors.New("upstream unreachable")}
	d := New(engine, store, store, &recordingNotifier{}, 10)

	err := d.Run(ctx)
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if engine.calls != 2 {
		t.Errorf("engine called %d times, want 2 (every search attempted)", engine.calls)
	}
}

func TestRunNoSavedSearches(t *testing.T) {
	store := storage.NewMemory()
	defer store.Close()

	engine := &stubEngine{}
	d := New(engine, store, store, &recordingNotifier{}, 10)

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() with no searches error = %v", err)
	}
	if engine.calls != 0 {
		t.Errorf("engine called %d times, want 0", engine.calls)
	}
}
