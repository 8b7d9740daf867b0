package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/olivierg1729/jobfinder/internal/normalize"
)

// APIFetcher queries the plain JSON endpoint, GET {base}?q=&page=&limit=.
// Fixed-size pages: HasMore is true iff the returned batch filled the
// requested page size, which errs toward stopping on a short final page.
type APIFetcher struct {
	baseURL  string
	pageSize int
	client   *client
}

// NewAPIFetcher builds a JSON-mode fetcher. baseURL defaults to the CSP
// offers endpoint, pageSize to 50.
func NewAPIFetcher(baseURL string, pageSize int, timeout time.Duration, rps float64) *APIFetcher {
	if baseURL == "" {
		baseURL = normalize.SiteURL + "/api/offres"
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	return &APIFetcher{
		baseURL:  baseURL,
		pageSize: pageSize,
		client:   newClient(timeout, rps),
	}
}

// apiResponse mirrors the JSON endpoint's envelope. The result list has
// been seen under both "results" and "data".
type apiResponse struct {
	Results []normalize.RawOffer `json:"results"`
	Data    []normalize.RawOffer `json:"data"`
	Count   int                  `json:"count"`
}

// FetchPage implements PageFetcher.
func (f *APIFetcher) FetchPage(ctx context.Context, query string, page int) (PageResult, error) {
	return fetchWithRetry(ctx, page, func() (PageResult, error) {
		return f.attempt(ctx, query, page)
	})
}

func (f *APIFetcher) attempt(ctx context.Context, query string, page int) (PageResult, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(f.pageSize))
	if query != "" {
		params.Set("q", query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return PageResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := f.client.do(ctx, req)
	if errors.Is(err, errNoSuchPage) {
		return PageResult{}, nil
	}
	if err != nil {
		return PageResult{}, err
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return PageResult{}, fmt.Errorf("malformed payload: %w", err)
	}

	offers := resp.Results
	if offers == nil {
		offers = resp.Data
	}
	return PageResult{
		Offers:        offers,
		HasMore:       len(offers) >= f.pageSize,
		TotalEstimate: resp.Count,
	}, nil
}
