package emailgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrMissingFields = errors.New("missing required fields: clientName, clientEmail, emailType")
	ErrNotConfigured = errors.New("ai provider not configured")
	ErrProvider      = errors.New("ai provider failed")
	ErrNoContent     = errors.New("no email content generated")
)

// Usage is the token accounting reported by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Draft is a raw model completion.
type Draft struct {
	Text  string
	Usage *Usage
}

// Drafter turns a prompt into a completion.
type Drafter interface {
	Draft(ctx context.Context, system, prompt string) (Draft, error)
	Name() string
}

// Result is a generated email.
type Result struct {
	Email string `json:"email"`
	Usage *Usage `json:"usage,omitempty"`
}

// Generator validates requests, builds prompts and calls the drafter.
type Generator struct {
	drafter Drafter
	log     *zap.Logger
}

// NewGenerator returns a Generator. A nil drafter makes every call fail
// with ErrNotConfigured.
func NewGenerator(d Drafter, log *zap.Logger) *Generator {
	return &Generator{drafter: d, log: log.Named("emailgen")}
}

// Generate drafts an email for req.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if g.drafter == nil {
		return nil, ErrNotConfigured
	}
	d, err := g.drafter.Draft(ctx, SystemPrompt, BuildPrompt(req))
	if err != nil {
		g.log.Error("draft failed", zap.String("provider", g.drafter.Name()), zap.Error(err))
		if errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}
	text := strings.TrimSpace(d.Text)
	if text == "" {
		return nil, ErrNoContent
	}
	g.log.Debug("email drafted", zap.String("provider", g.drafter.Name()), zap.Int("chars", len(text)))
	return &Result{Email: text, Usage: d.Usage}, nil
}
