package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/olivierg1729/jobfinder/internal/normalize"
	"github.com/olivierg1729/jobfinder/internal/util"
)

const (
	ajaxPath    = "/wp-admin/admin-ajax.php"
	listingPath = "/nos-offres/"
	ajaxAction  = "get_offers"
)

// dateLineMarker identifies the card line carrying the publication date.
const dateLineMarker = "En ligne depuis"

var nonceScriptRegex = regexp.MustCompile(`ajax_nonce["']\s*:\s*["']([a-zA-Z0-9]+)["']`)
var nonceInputRegex = regexp.MustCompile(`name=["']nonce["']\s+value=["']([a-zA-Z0-9]+)["']`)

// AjaxFetcher drives the site's own WordPress admin-ajax search action.
// Each fetch loads a public listing page to pick up the current nonce,
// then POSTs the get_offers action with the query and page in the filters
// payload. Depending on the instance, the response body is either a JSON
// envelope or rendered HTML cards; both are handled.
//
// HasMore heuristic: for JSON responses, a batch that filled the page
// size; for HTML, presence of an enabled next-page affordance. Ambiguity
// resolves to false.
type AjaxFetcher struct {
	siteURL   string
	pageSize  int
	client    *client
	selectors SelectorConfig
}

// NewAjaxFetcher builds a scrape-mode fetcher. siteURL defaults to the
// public CSP site, pageSize to 50.
func NewAjaxFetcher(siteURL string, pageSize int, selectors SelectorConfig, timeout time.Duration, rps float64) *AjaxFetcher {
	if siteURL == "" {
		siteURL = normalize.SiteURL
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	return &AjaxFetcher{
		siteURL:   strings.TrimSuffix(siteURL, "/"),
		pageSize:  pageSize,
		client:    newClient(timeout, rps),
		selectors: selectors,
	}
}

// FetchPage implements PageFetcher.
func (f *AjaxFetcher) FetchPage(ctx context.Context, query string, page int) (PageResult, error) {
	return fetchWithRetry(ctx, page, func() (PageResult, error) {
		return f.attempt(ctx, query, page)
	})
}

func (f *AjaxFetcher) attempt(ctx context.Context, query string, page int) (PageResult, error) {
	nonce := f.fetchNonce(ctx)

	form, err := f.buildForm(nonce, query, page)
	if err != nil {
		return PageResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.siteURL+ajaxPath,
		bytes.NewBufferString(form.Encode()))
	if err != nil {
		return PageResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := f.client.do(ctx, req)
	if errors.Is(err, errNoSuchPage) {
		return PageResult{}, nil
	}
	if err != nil {
		return PageResult{}, err
	}

	// Some instances answer JSON, others rendered HTML. Try JSON first.
	if result, ok := f.parseJSON(body); ok {
		return result, nil
	}
	return f.parseHTML(body)
}

// buildForm assembles the same multipart fields the site's frontend sends.
func (f *AjaxFetcher) buildForm(nonce, query string, page int) (url.Values, error) {
	filters := map[string]any{
		"keywords":      query,
		"date":          []string{},
		"contenu":       []string{},
		"thematique":    []string{},
		"geoloc":        []string{},
		"locations":     []string{},
		"domains":       []string{},
		"versants":      []string{},
		"categories":    []string{},
		"organisations": []string{},
		"jobs":          []string{},
		"managements":   []string{},
		"remotes":       []string{},
		"experiences":   []string{},
		"search_order":  "",
		"page":          page,
		"per_page":      f.pageSize,
	}
	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("marshal filters: %w", err)
	}

	rewriteURL := f.siteURL + listingPath
	if query != "" {
		rewriteURL = fmt.Sprintf("%s%sfiltres/mot-cles/%s/", f.siteURL, listingPath, url.PathEscape(query))
	}

	form := url.Values{}
	form.Set("action", ajaxAction)
	form.Set("nonce", nonce)
	form.Set("query", query)
	form.Set("rewrite_url", rewriteURL)
	form.Set("filters", string(filtersJSON))
	return form, nil
}

// fetchNonce loads the public listing page and extracts the admin-ajax
// nonce. Some instances skip nonce verification, so any failure here just
// degrades to an empty nonce rather than failing the whole fetch.
func (f *AjaxFetcher) fetchNonce(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.siteURL+listingPath, nil)
	if err != nil {
		return ""
	}
	body, err := f.client.do(ctx, req)
	if err != nil {
		slog.Warn("Could not load listing page for nonce, proceeding without", "error", err)
		return ""
	}

	if m := nonceScriptRegex.FindSubmatch(body); m != nil {
		return string(m[1])
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		for _, sel := range f.selectors.NonceInputs {
			el := doc.Find(sel).First()
			if el.Length() == 0 {
				continue
			}
			if v, ok := el.Attr("value"); ok && v != "" {
				return v
			}
			if v, ok := el.Attr("content"); ok && v != "" {
				return v
			}
		}
	}

	if m := nonceInputRegex.FindSubmatch(body); m != nil {
		return string(m[1])
	}
	return ""
}

// ajaxEnvelope mirrors the JSON shape seen from admin-ajax instances.
type ajaxEnvelope struct {
	Items   []normalize.RawOffer `json:"items"`
	Results []normalize.RawOffer `json:"results"`
	Data    []normalize.RawOffer `json:"data"`
	Total   int                  `json:"total"`
	Count   int                  `json:"count"`
}

func (f *AjaxFetcher) parseJSON(body []byte) (PageResult, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return PageResult{}, false
	}

	var env ajaxEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return PageResult{}, false
	}

	offers := env.Items
	if offers == nil {
		offers = env.Results
	}
	if offers == nil {
		offers = env.Data
	}
	if offers == nil {
		return PageResult{}, false
	}

	total := env.Total
	if total == 0 {
		total = env.Count
	}
	return PageResult{
		Offers:        offers,
		HasMore:       len(offers) >= f.pageSize,
		TotalEstimate: total,
	}, true
}

// parseHTML extracts offer cards from a rendered listing fragment.
func (f *AjaxFetcher) parseHTML(body []byte) (PageResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return PageResult{}, fmt.Errorf("malformed payload: %w", err)
	}

	var offers []normalize.RawOffer
	doc.Find(f.selectors.Card).Each(func(_ int, card *goquery.Selection) {
		link := card.Find(f.selectors.TitleLink).First()
		if link.Length() == 0 {
			return
		}
		href, _ := link.Attr("href")
		raw := normalize.RawOffer{
			"title": strings.TrimSpace(link.Text()),
			"url":   util.AbsoluteURL(f.siteURL, href),
		}

		card.Find(f.selectors.DateItem).EachWithBreak(func(_ int, li *goquery.Selection) bool {
			text := strings.TrimSpace(li.Text())
			if strings.Contains(text, dateLineMarker) {
				raw["date_text"] = text
				return false
			}
			return true
		})

		offers = append(offers, raw)
	})

	total := 0
	if countSel := doc.Find(f.selectors.ResultCount).First(); countSel.Length() > 0 {
		total = util.SafeAtoi(util.CleanNumericString(countSel.Text()))
	}

	return PageResult{
		Offers:        offers,
		HasMore:       doc.Find(f.selectors.NextPage).Length() > 0,
		TotalEstimate: total,
	}, nil
}
