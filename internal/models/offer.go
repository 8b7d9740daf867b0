package models

import "time"

// Offer is the canonical shape of a job offer after normalization.
// Upstream field names vary by access mode, so everything except Title
// is best effort. Title is never empty; the normalizer substitutes a
// placeholder when the upstream record carries none.
type Offer struct {
	ID           string    `json:"id,omitempty" firestore:"id,omitempty"`
	Key          string    `json:"-" firestore:"key"` // stable identity key, never empty
	Title        string    `json:"title" firestore:"title" validate:"required"`
	Date         string    `json:"date,omitempty" firestore:"date,omitempty"` // ISO-8601 when parseable
	URL          string    `json:"url,omitempty" firestore:"url,omitempty" validate:"omitempty,url"`
	Organization string    `json:"organization,omitempty" firestore:"organization,omitempty"`
	Logo         string    `json:"logo,omitempty" firestore:"logo,omitempty"`
	Location     string    `json:"location,omitempty" firestore:"location,omitempty"`
	Published    time.Time `json:"-" firestore:"published"` // parsed Date; zero when unparseable
}
