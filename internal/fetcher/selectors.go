package fetcher

import (
	"encoding/json"
	"fmt"
	"os"
)

// SelectorConfig holds every CSS selector used against the upstream HTML,
// kept as data so a markup change is a config edit, not a code change.
type SelectorConfig struct {
	// Card is one offer card in a listing page (DSFR markup).
	Card string `json:"card"`
	// TitleLink is the anchor inside a card carrying title text and href.
	TitleLink string `json:"title_link"`
	// DateItem is scanned per card for the "En ligne depuis" line.
	DateItem string `json:"date_item"`
	// NextPage is the pagination affordance whose presence means more
	// pages exist. Absent or disabled means stop.
	NextPage string `json:"next_page"`
	// ResultCount is the element carrying the upstream's own total, when
	// the listing page shows one.
	ResultCount string `json:"result_count"`
	// NonceInputs are tried in order to find the admin-ajax nonce when
	// the inline-script regex fails.
	NonceInputs []string `json:"nonce_inputs"`
}

// DefaultSelectors returns the selectors matching the site's current DSFR
// markup. The single source of truth when no override file is configured.
func DefaultSelectors() SelectorConfig {
	return SelectorConfig{
		Card:        ".fr-card",
		TitleLink:   "h3.fr-card__title a[href]",
		DateItem:    "li",
		NextPage:    "a.fr-pagination__link--next:not([aria-disabled=true])",
		ResultCount: ".fr-search-results__count",
		NonceInputs: []string{"input[name=nonce]", "input[name=_ajax_nonce]", "meta[name=nonce]"},
	}
}

// LoadSelectors reads a selector override file.
func LoadSelectors(path string) (SelectorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to read selector config file: %w", err)
	}
	return LoadSelectorsFromBytes(data)
}

// LoadSelectorsFromBytes parses selector configuration from raw JSON.
func LoadSelectorsFromBytes(data []byte) (SelectorConfig, error) {
	var cfg SelectorConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to parse selector config JSON: %w", err)
	}
	return cfg, nil
}
