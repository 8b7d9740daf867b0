package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/olivierg1729/jobfinder/internal/models"
)

// Ntfy posts a plain-text summary to an ntfy.sh topic URL.
type Ntfy struct {
	topicURL string
	client   *http.Client
}

func NewNtfy(topicURL string) *Ntfy {
	return &Ntfy{
		topicURL: topicURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Ntfy) Notify(ctx context.Context, search models.SavedSearch, offers []models.Offer) error {
	if n.topicURL == "" || len(offers) == 0 {
		return nil
	}

	var b strings.Builder
	for _, o := range offers {
		b.WriteString(o.Title)
		if o.URL != "" {
			b.WriteString(" — ")
			b.WriteString(o.URL)
		}
		b.WriteString("\n")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.topicURL, strings.NewReader(b.String()))
	if err != nil {
		return err
	}
	req.Header.Set("Title", fmt.Sprintf("%d nouvelle(s) offre(s) pour « %s »", len(offers), search.Query))
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to ntfy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ntfy status %s: %s", resp.Status, string(body))
	}
	return nil
}
