package search

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/olivierg1729/jobfinder/internal/fetcher"
	"github.com/olivierg1729/jobfinder/internal/models"
	"github.com/olivierg1729/jobfinder/internal/normalize"
)

const (
	// DefaultMaxPages caps how deep into the upstream's pagination the
	// engine will ever go, regardless of HasMore. Guarantees termination
	// against an upstream that claims more pages forever.
	DefaultMaxPages = 500

	// DefaultConcurrency bounds how many upstream pages one extension
	// batch fetches in flight.
	DefaultConcurrency = 5

	// DefaultPageSize applies when a caller passes 0.
	DefaultPageSize = 50
)

// Options tune one search call.
type Options struct {
	// ForceRefresh discards the cached accumulation for the query first.
	ForceRefresh bool
	// FastMode bypasses accumulation and ranking entirely: the result is
	// exactly one upstream page, in upstream order. Lower latency, weaker
	// pagination stability.
	FastMode bool
}

// Result is one served window over the ranked accumulation.
type Result struct {
	Items    []models.Offer `json:"items"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	// TotalEstimate is the upstream's own count when derivable, 0
	// otherwise. Advisory, never used to bound the accumulation loop.
	TotalEstimate int `json:"total_estimate,omitempty"`
}

// Engine orchestrates the page fetcher and the accumulation cache to
// serve stable page/size windows per query.
type Engine struct {
	fetcher     fetcher.PageFetcher
	cache       *Cache
	maxPages    int
	concurrency int
}

// NewEngine wires an engine. Zero maxPages or concurrency fall back to
// the package defaults.
func NewEngine(f fetcher.PageFetcher, cache *Cache, maxPages, concurrency int) *Engine {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Engine{
		fetcher:     f,
		cache:       cache,
		maxPages:    maxPages,
		concurrency: concurrency,
	}
}

// Search returns the requested window of ranked, deduplicated offers.
//
// page and pageSize below 1 are floored to 1 (pageSize 0 means the
// default). A blank query returns an empty result without touching the
// upstream. A window beyond the available data is an empty slice, not an
// error. Upstream flakiness degrades to partial or empty results; the
// only errors surfaced are context cancellations.
func (e *Engine) Search(ctx context.Context, query string, page, pageSize int, opts Options) (Result, error) {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	res := Result{Items: []models.Offer{}, Page: page, PageSize: pageSize}
	if strings.TrimSpace(query) == "" {
		return res, nil
	}

	if opts.FastMode {
		return e.fastSearch(ctx, query, page, pageSize)
	}

	needed := page * pageSize
	offers, total, err := e.ensure(ctx, query, needed, opts.ForceRefresh)
	if err != nil {
		return res, err
	}

	res.TotalEstimate = total
	lo := (page - 1) * pageSize
	if lo >= len(offers) {
		return res, nil
	}
	hi := min(lo+pageSize, len(offers))
	res.Items = offers[lo:hi]
	return res, nil
}

// fastSearch serves one upstream page verbatim: normalized, but neither
// accumulated, deduplicated across pages, nor re-ranked.
func (e *Engine) fastSearch(ctx context.Context, query string, page, pageSize int) (Result, error) {
	res := Result{Items: []models.Offer{}, Page: page, PageSize: pageSize}

	pr, err := e.fetcher.FetchPage(ctx, query, page)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		slog.Warn("Fast-mode fetch failed, serving empty page", "query", query, "page", page, "error", err)
		return res, nil
	}

	for _, raw := range pr.Offers {
		res.Items = append(res.Items, normalize.Normalize(raw))
	}
	res.TotalEstimate = pr.TotalEstimate
	return res, nil
}

// ensure extends the accumulation for query until it holds at least
// needed ranked offers, the upstream is exhausted, the page ceiling is
// reached, or a page fetch stays broken after its retry. It returns the
// full ranked sequence; callers slice their own window.
func (e *Engine) ensure(ctx context.Context, query string, needed int, force bool) ([]models.Offer, int, error) {
	unlock := e.cache.lockQuery(query)
	defer unlock()

	ent := e.cache.acquire(query, force)

	for len(ent.offers) < needed && !ent.exhausted && ent.lastPage < e.maxPages {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		first := ent.lastPage + 1
		last := min(first+e.concurrency-1, e.maxPages)
		outcomes := e.fetchBatch(ctx, query, first, last)

		stopped := false
		for i, out := range outcomes {
			pageIdx := first + i
			if out.err != nil {
				if ctx.Err() != nil {
					return nil, 0, ctx.Err()
				}
				slog.Warn("Stopping accumulation on transient failure, serving partial results",
					"query", query, "page", pageIdx, "error", out.err)
				stopped = true
				break
			}

			normalized := make([]models.Offer, 0, len(out.result.Offers))
			for _, raw := range out.result.Offers {
				normalized = append(normalized, normalize.Normalize(raw))
			}
			ent.add(normalized)
			ent.lastPage = pageIdx
			if ent.totalEstimate == 0 && out.result.TotalEstimate > 0 {
				ent.totalEstimate = out.result.TotalEstimate
			}

			if !out.result.HasMore || len(out.result.Offers) == 0 {
				ent.exhausted = true
				stopped = true
				break
			}
		}

		e.cache.touch(ent)
		if stopped && !ent.exhausted {
			break
		}
	}

	return RankAndDedupe(ent.offers), ent.totalEstimate, nil
}

type fetchOutcome struct {
	result fetcher.PageResult
	err    error
}

// fetchBatch fetches pages [first, last] concurrently, bounded by the
// engine's concurrency limit, and returns outcomes in page order.
func (e *Engine) fetchBatch(ctx context.Context, query string, first, last int) []fetchOutcome {
	outcomes := make([]fetchOutcome, last-first+1)

	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)
	for i := range outcomes {
		i := i
		pageIdx := first + i
		g.Go(func() error {
			r, err := e.fetcher.FetchPage(ctx, query, pageIdx)
			outcomes[i] = fetchOutcome{result: r, err: err}
			return nil
		})
	}
	// Goroutines never return errors; Wait only joins them.
	_ = g.Wait()

	return outcomes
}
