package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultResendBaseURL = "https://api.resend.com"

// ResendSender posts messages to the Resend HTTP API.
type ResendSender struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewResendSender fails with ErrNotConfigured when apiKey is empty.
func NewResendSender(apiKey, baseURL string, timeout time.Duration) (*ResendSender, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if baseURL == "" {
		baseURL = DefaultResendBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ResendSender{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (s *ResendSender) Name() string { return "resend" }

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID         string `json:"id"`
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// Send delivers m and returns the Resend email id.
func (s *ResendSender) Send(ctx context.Context, m Message) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	body, err := json.Marshal(resendRequest{
		From:    m.fromHeader(),
		To:      []string{m.To},
		Subject: m.Subject,
		HTML:    m.HTML,
		Text:    m.Text,
		ReplyTo: m.ReplyTo,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("resend request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read resend response: %w", err)
	}

	var out resendResponse
	_ = json.Unmarshal(raw, &out)
	if resp.StatusCode >= 300 {
		return "", classifyResendError(resp.StatusCode, out.Message)
	}
	if out.ID == "" {
		return "", fmt.Errorf("resend: response without id (status %d)", resp.StatusCode)
	}
	return out.ID, nil
}

func classifyResendError(status int, msg string) error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	if status == http.StatusForbidden {
		lower := strings.ToLower(msg)
		switch {
		case strings.Contains(lower, "domain"):
			return fmt.Errorf("%w: %s", ErrDomainNotVerified, msg)
		case strings.Contains(lower, "testing") || strings.Contains(lower, "own email"):
			return fmt.Errorf("%w: %s", ErrTestingMode, msg)
		}
	}
	return fmt.Errorf("resend status %d: %s", status, msg)
}
