package emailgen

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

// ChatConfig configures an OpenAI-compatible chat completions endpoint.
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultGroqConfig returns the Groq endpoint settings.
func DefaultGroqConfig(apiKey string) ChatConfig {
	return ChatConfig{
		APIKey:      apiKey,
		BaseURL:     "https://api.groq.com/openai/v1",
		Model:       "llama3-8b-8192",
		MaxTokens:   500,
		Temperature: 0.7,
		Timeout:     30 * time.Second,
	}
}

// ChatDrafter calls POST {BaseURL}/chat/completions.
type ChatDrafter struct {
	cfg        ChatConfig
	httpClient *http.Client
}

// NewChatDrafter fails with ErrNotConfigured when no API key is set.
func NewChatDrafter(cfg ChatConfig) (*ChatDrafter, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	return &ChatDrafter{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}}, nil
}

func (c *ChatDrafter) Name() string { return "chat:" + c.cfg.Model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Draft sends system and prompt as a two-message conversation.
func (c *ChatDrafter) Draft(ctx context.Context, system, prompt string) (Draft, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "system", Content: system}, {Role: "user", Content: prompt}},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return Draft{}, err
	}
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Draft{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Draft{}, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Draft{}, fmt.Errorf("read chat response: %w", err)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Draft{}, fmt.Errorf("decode chat response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return Draft{}, fmt.Errorf("chat API status %d: %s", resp.StatusCode, msg)
	}
	d := Draft{Usage: out.Usage}
	if len(out.Choices) > 0 {
		d.Text = out.Choices[0].Message.Content
	}
	return d, nil
}
