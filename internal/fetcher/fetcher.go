// Package fetcher retrieves single pages of raw offer records from the
// upstream site. Two implementations exist: AjaxFetcher drives the same
// WordPress admin-ajax action the site's own frontend uses, APIFetcher
// hits the plain JSON endpoint. Both are swappable behind PageFetcher so
// the pagination engine never cares which access mode is configured.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/olivierg1729/jobfinder/internal/models"
	"github.com/olivierg1729/jobfinder/internal/normalize"
	"github.com/olivierg1729/jobfinder/internal/util"
)

// UserAgent identifies this client to the upstream site.
const UserAgent = "JobFinder/1.0 (+https://github.com/OlivierG1729/jobfinder)"

// retryBackoff is the pause before the single retry of a failed page fetch.
const retryBackoff = 500 * time.Millisecond

// PageResult is one upstream page worth of raw records.
type PageResult struct {
	Offers []normalize.RawOffer
	// HasMore reports whether a further page is known to exist. Each
	// implementation documents its heuristic; when ambiguous it must be
	// false, otherwise a drifting upstream could page forever.
	HasMore bool
	// TotalEstimate is the upstream's own result count when it exposes
	// one, 0 otherwise. Advisory only.
	TotalEstimate int
}

// PageFetcher fetches one 1-based page of results for a query.
//
// Contract: an HTTP 404 means "no such page" and yields an empty result
// with HasMore=false, not an error. Transport or parse failures are
// retried exactly once with a freshly built request; a second failure
// surfaces as *models.TransientFetchError.
type PageFetcher interface {
	FetchPage(ctx context.Context, query string, page int) (PageResult, error)
}

// errNoSuchPage signals a 404 inside a fetch attempt so the retry wrapper
// can convert it into a clean end-of-results instead of retrying.
var errNoSuchPage = fmt.Errorf("no such page")

// client wraps the shared HTTP client with a polite rate limit and the
// project User-Agent.
type client struct {
	http    *http.Client
	limiter *rate.Limiter
}

func newClient(timeout time.Duration, rps float64) *client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if rps <= 0 {
		rps = 2
	}
	return &client{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// do waits for the rate limiter, stamps headers, performs the request and
// returns the body. A 404 comes back as errNoSuchPage; any other non-2xx
// status is an error the caller may retry.
func (c *client) do(ctx context.Context, req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.URL, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, errNoSuchPage
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("request %s: status %d", req.URL, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", req.URL, err)
	}
	return body, nil
}

// fetchWithRetry runs one attempt function with the package's retry policy
// and maps terminal failures to the transient error type.
func fetchWithRetry(ctx context.Context, page int, attempt func() (PageResult, error)) (PageResult, error) {
	var result PageResult
	err := util.Retry(ctx, 1, retryBackoff, func(int) error {
		r, err := attempt()
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return PageResult{}, ctx.Err()
	}
	return PageResult{}, &models.TransientFetchError{Page: page, Err: err}
}
