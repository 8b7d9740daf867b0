// Package notifier delivers new-offer alerts for saved searches. Email
// and ntfy channels are independent; a saved search without an email
// still reaches the ntfy topic when one is configured.
package notifier

import (
	"context"
	"log/slog"

	"github.com/olivierg1729/jobfinder/internal/models"
)

// Notifier delivers the new offers found for one saved search.
type Notifier interface {
	Notify(ctx context.Context, search models.SavedSearch, offers []models.Offer) error
}

// Multi fans a notification out to every configured channel. A channel
// failure is logged and does not block the others.
type Multi struct {
	channels []Notifier
}

func NewMulti(channels ...Notifier) *Multi {
	return &Multi{channels: channels}
}

func (m *Multi) Notify(ctx context.Context, search models.SavedSearch, offers []models.Offer) error {
	for _, ch := range m.channels {
		if err := ch.Notify(ctx, search, offers); err != nil {
			slog.Error("Notification channel failed", "query", search.Query, "error", err)
		}
	}
	return nil
}
