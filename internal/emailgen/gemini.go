package emailgen

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiDrafter drafts emails with the Gemini API.
type GeminiDrafter struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewGeminiDrafter fails with ErrNotConfigured when apiKey is empty.
func NewGeminiDrafter(ctx context.Context, apiKey, model string) (*GeminiDrafter, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiDrafter{client: client, model: model, maxTokens: 500}, nil
}

func (g *GeminiDrafter) Name() string { return "gemini:" + g.model }

// Draft generates a single candidate.
func (g *GeminiDrafter) Draft(ctx context.Context, system, prompt string) (Draft, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
		MaxOutputTokens:   g.maxTokens,
	})
	if err != nil {
		return Draft{}, fmt.Errorf("GenAI generate failed: %w", err)
	}
	d := Draft{Text: resp.Text()}
	if u := resp.UsageMetadata; u != nil {
		d.Usage = &Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return d, nil
}
