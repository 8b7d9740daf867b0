// Package search implements the offer-aggregation and stable-pagination
// engine: it accumulates upstream pages per query, deduplicates them by
// identity key, assigns a deterministic total order, and serves arbitrary
// page/size windows over that order.
package search

import (
	"fmt"
	"sort"

	"github.com/olivierg1729/jobfinder/internal/models"
)

// RankAndDedupe keeps the first occurrence of each identity key and sorts
// the survivors date-descending with key-ascending tie-break. The sort is
// stable and deterministic: identical input always yields identical output
// order, which pagination consistency depends on.
//
// First occurrence wins even when a later duplicate carries richer fields;
// the ordering a caller saw once must never be silently rewritten.
func RankAndDedupe(offers []models.Offer) []models.Offer {
	seen := make(map[string]struct{}, len(offers))
	out := make([]models.Offer, 0, len(offers))
	for i, o := range offers {
		if o.Key == "" {
			// Normalization guarantees a key; this guards records built
			// by hand. Position keeps them order-stable in fetch order.
			o.Key = fmt.Sprintf("pos:%d", i)
		}
		if _, dup := seen[o.Key]; dup {
			continue
		}
		seen[o.Key] = struct{}{}
		out = append(out, o)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Published.Equal(out[j].Published) {
			return out[i].Published.After(out[j].Published)
		}
		return out[i].Key < out[j].Key
	})
	return out
}
