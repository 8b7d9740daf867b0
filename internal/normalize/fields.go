// Package normalize maps raw upstream offer records, whose field names vary
// by access mode and have changed over time, into the canonical Offer shape.
// Field resolution is expressed as ordered candidate-key tables rather than
// branching code, so a new upstream rename is a one-line table edit.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/olivierg1729/jobfinder/internal/models"
)

// RawOffer is an upstream record before normalization. Keys and value types
// are whatever the site returned on that particular day.
type RawOffer map[string]any

// SiteURL is the upstream base, used to rebuild an offer URL from its id.
const SiteURL = "https://choisirleservicepublic.gouv.fr"

// DefaultTitle is substituted when no candidate title key yields text.
const DefaultTitle = "Offre"

// Candidate key tables per logical field, tried in priority order.
// Matching is case-insensitive.
var (
	idKeys       = []string{"id", "_id", "offer_id", "reference", "ref"}
	titleKeys    = []string{"title", "intitule", "intitulé", "titre"}
	dateKeys     = []string{"publication_date", "datePublication", "date_publication", "date"}
	dateTextKeys = []string{"date_text", "date_texte"}
	urlKeys      = []string{"url", "lien", "link"}
	orgKeys      = []string{"organization", "organisation", "org", "employeur", "employer"}
	logoKeys     = []string{"logo", "logo_url", "image"}
	locationKeys = []string{"location", "localisation", "lieu", "ville"}
)

// Offer URLs sometimes embed the reference, e.g.
// /offre-emploi/analyste-fonctionnel-reference-2025-1987563/
var referenceFromURL = regexp.MustCompile(`/offre-emploi/[^/]+-reference-([^/]+?)/?$`)

// lookup returns the first non-blank string value among the candidate keys.
func lookup(raw RawOffer, keys []string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	// Second pass, case-insensitive. Exact matches above stay cheap for the
	// common case where the upstream has not renamed anything.
	for rk, v := range raw {
		for _, k := range keys {
			if strings.EqualFold(rk, k) {
				if s := stringify(v); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		// JSON numbers decode to float64; ids are integral in practice.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

// ExtractID returns the upstream identifier, or "" when none is derivable.
func ExtractID(raw RawOffer) string {
	if id := lookup(raw, idKeys); id != "" {
		return id
	}
	if u := lookup(raw, urlKeys); u != "" {
		if m := referenceFromURL.FindStringSubmatch(u); m != nil {
			return m[1]
		}
	}
	return ""
}

// ExtractTitle never returns an empty string.
func ExtractTitle(raw RawOffer) string {
	if t := lookup(raw, titleKeys); t != "" {
		return t
	}
	return DefaultTitle
}

// ExtractDate returns a normalized ISO-8601 date string, or "" when no
// candidate field parses.
func ExtractDate(raw RawOffer) string {
	if d := lookup(raw, dateKeys); d != "" {
		if t := ParseDate(d); !t.IsZero() {
			return FormatISO(t)
		}
	}
	// Scraped cards only carry a free-text "En ligne depuis le …" line.
	if d := lookup(raw, dateTextKeys); d != "" {
		if t := ParseDate(d); !t.IsZero() {
			return FormatISO(t)
		}
	}
	return ""
}

// ExtractURL returns the offer URL, rebuilding one from the id when the
// record carries none.
func ExtractURL(raw RawOffer) string {
	if u := lookup(raw, urlKeys); u != "" {
		return u
	}
	if id := ExtractID(raw); id != "" {
		return fmt.Sprintf("%s/offre/%s", SiteURL, id)
	}
	return ""
}

// Normalize maps a raw record into the canonical Offer shape. It never
// fails: missing or malformed fields downgrade to zero values, except
// Title which falls back to DefaultTitle.
func Normalize(raw RawOffer) models.Offer {
	o := models.Offer{
		ID:           ExtractID(raw),
		Title:        ExtractTitle(raw),
		Date:         ExtractDate(raw),
		URL:          ExtractURL(raw),
		Organization: lookup(raw, orgKeys),
		Logo:         lookup(raw, logoKeys),
		Location:     lookup(raw, locationKeys),
	}
	o.Published = ParseDate(o.Date)
	o.Key = IdentityKey(o)
	return o
}

// IdentityKey derives the deterministic key used for deduplication and
// ordering tie-breaks. Priority: explicit id, then URL, then a content
// hash of title and date. Two sightings of the same offer across pages
// or field shapes must collapse to the same key.
func IdentityKey(o models.Offer) string {
	if o.ID != "" {
		return "id:" + o.ID
	}
	if o.URL != "" {
		return "url:" + o.URL
	}
	h := sha256.Sum256([]byte(o.Title + "|" + o.Date))
	return "h:" + hex.EncodeToString(h[:])
}
