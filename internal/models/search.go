package models

// SavedSearch is a query a subscriber wants re-run periodically.
// Email is optional; a search without one still feeds ntfy notifications.
type SavedSearch struct {
	ID    string `json:"id" firestore:"-"`
	Query string `json:"query" firestore:"query" validate:"required,notblank"`
	Email string `json:"email,omitempty" firestore:"email,omitempty" validate:"omitempty,email"`
}
