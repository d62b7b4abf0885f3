package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/emersion/go-message/mail"
)

// SMTPConfig addresses a submission server.
type SMTPConfig struct {
	Addr     string // host:port
	Username string
	Password string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender composes MIME messages and submits them over SMTP. The server
// is upgraded to STARTTLS when it advertises it.
type SMTPSender struct {
	cfg  SMTPConfig
	send sendFunc
	now  func() time.Time
}

// NewSMTPSender fails with ErrNotConfigured when no address is set.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Addr == "" {
		return nil, ErrNotConfigured
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return nil, fmt.Errorf("smtp address %q: %w", cfg.Addr, err)
	}
	return &SMTPSender{cfg: cfg, send: smtp.SendMail, now: time.Now}, nil
}

func (s *SMTPSender) Name() string { return "smtp" }

// Send submits m and returns its Message-ID.
func (s *SMTPSender) Send(ctx context.Context, m Message) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, id, err := compose(m, s.now())
	if err != nil {
		return "", err
	}
	var auth smtp.Auth
	if s.cfg.Username != "" {
		host, _, _ := net.SplitHostPort(s.cfg.Addr)
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, host)
	}
	if err := s.send(s.cfg.Addr, auth, m.From, []string{m.To}, raw); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return id, nil
}

// compose renders m as multipart/alternative with text and HTML parts.
func compose(m Message, date time.Time) ([]byte, string, error) {
	var h mail.Header
	h.SetDate(date)
	h.SetSubject(m.Subject)
	h.SetAddressList("From", []*mail.Address{{Name: m.FromName, Address: m.From}})
	h.SetAddressList("To", []*mail.Address{{Address: m.To}})
	if m.ReplyTo != "" {
		h.SetAddressList("Reply-To", []*mail.Address{{Address: m.ReplyTo}})
	}
	if err := h.GenerateMessageID(); err != nil {
		return nil, "", fmt.Errorf("message id: %w", err)
	}
	id, err := h.MessageID()
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, "", fmt.Errorf("create mail writer: %w", err)
	}
	tw, err := mw.CreateInline()
	if err != nil {
		return nil, "", fmt.Errorf("create inline: %w", err)
	}
	if err := writePart(tw, "text/plain", m.Text); err != nil {
		return nil, "", err
	}
	if m.HTML != "" {
		if err := writePart(tw, "text/html", m.HTML); err != nil {
			return nil, "", err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), id, nil
}

func writePart(tw *mail.InlineWriter, contentType, body string) error {
	var ph mail.InlineHeader
	ph.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	w, err := tw.CreatePart(ph)
	if err != nil {
		return fmt.Errorf("create %s part: %w", contentType, err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		return fmt.Errorf("write %s part: %w", contentType, err)
	}
	return w.Close()
}
