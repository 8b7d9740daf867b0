package util

import (
	"net/url"
	"strings"
)

// AbsoluteURL resolves href against base when href is relative, and strips
// common tracking parameters. Scraped cards link offers with site-relative
// paths; the API returns absolute URLs. Both come out absolute and clean.
func AbsoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if !u.IsAbs() {
		b, err := url.Parse(base)
		if err != nil {
			return href
		}
		u = b.ResolveReference(u)
	}

	q := u.Query()
	for _, p := range []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"} {
		q.Del(p)
	}
	u.RawQuery = q.Encode()

	if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = ""
	}
	return u.String()
}
