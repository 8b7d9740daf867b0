package notifier

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/olivierg1729/jobfinder/internal/models"
)

// Email sends alerts over SMTP with STARTTLS when the server offers it.
type Email struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmail(host string, port int, username, password, from string) *Email {
	if from == "" {
		from = username
	}
	return &Email{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (e *Email) Notify(_ context.Context, search models.SavedSearch, offers []models.Offer) error {
	if search.Email == "" || len(offers) == 0 {
		return nil
	}

	subject := fmt.Sprintf("%d nouvelle(s) offre(s) pour « %s »", len(offers), search.Query)
	body := formatHTML(search, offers)

	msg := strings.Builder{}
	msg.WriteString("From: " + e.from + "\r\n")
	msg.WriteString("To: " + search.Email + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}
	if err := smtp.SendMail(addr, auth, e.from, []string{search.Email}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}

func formatHTML(search models.SavedSearch, offers []models.Offer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Nouvelles offres pour <strong>%s</strong> :</p>\n<ul>\n", html.EscapeString(search.Query))
	for _, o := range offers {
		title := html.EscapeString(o.Title)
		if o.URL != "" {
			fmt.Fprintf(&b, "<li><a href=%q>%s</a>", o.URL, title)
		} else {
			fmt.Fprintf(&b, "<li>%s", title)
		}
		if o.Organization != "" {
			fmt.Fprintf(&b, " — %s", html.EscapeString(o.Organization))
		}
		if o.Date != "" {
			fmt.Fprintf(&b, " (%s)", html.EscapeString(o.Date))
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>\n")
	return b.String()
}
