// Package mailer delivers drafted client emails through Resend or SMTP.
package mailer

import (
	"context"
	"errors"
	"html"
	"net/mail"
	"strings"
)

var (
	ErrNotConfigured     = errors.New("mail provider not configured")
	ErrMissingFields     = errors.New("missing required fields: to, subject, content")
	ErrDomainNotVerified = errors.New("sending domain is not verified")
	ErrTestingMode       = errors.New("provider is in testing mode")
)

// Message is an outbound email. From is the configured sending address;
// ReplyTo is the signed-in user so replies reach them directly.
type Message struct {
	From     string
	FromName string
	To       string
	ReplyTo  string
	Subject  string
	Text     string
	HTML     string
}

// Validate reports ErrMissingFields when to, subject or body is blank.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" || strings.TrimSpace(m.Subject) == "" || strings.TrimSpace(m.Text) == "" {
		return ErrMissingFields
	}
	return nil
}

func (m Message) fromHeader() string {
	if m.FromName == "" {
		return m.From
	}
	return (&mail.Address{Name: m.FromName, Address: m.From}).String()
}

// Sender delivers a message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, m Message) (string, error)
	Name() string
}

// FormatHTML renders a plain-text draft as HTML. Subject lines are dropped,
// blank lines become <br>, every other line becomes an escaped paragraph
// and the [Your Name] placeholder is replaced with senderEmail.
func FormatHTML(content, senderEmail string) string {
	var b strings.Builder
	for line := range strings.SplitSeq(content, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "Subject:"):
			continue
		case strings.TrimSpace(line) == "":
			b.WriteString("<br>")
		default:
			escaped := strings.ReplaceAll(html.EscapeString(line), "[Your Name]", html.EscapeString(senderEmail))
			b.WriteString("<p>")
			b.WriteString(escaped)
			b.WriteString("</p>")
		}
	}
	return b.String()
}
