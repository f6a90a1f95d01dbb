package prompt

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenAIBackend asks a Gemini model through google.golang.org/genai
type GenAIBackend struct {
	client *genai.Client
	model  string
}

func NewGenAIBackend(ctx context.Context, apiKey, model string) (*GenAIBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
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
	return &GenAIBackend{client: client, model: model}, nil
}

func (b *GenAIBackend) Complete(ctx context.Context, instruction string) (string, error) {
	temperature := float32(0.9)
	resp, err := b.client.Models.GenerateContent(ctx, b.model,
		genai.Text(instruction),
		&genai.GenerateContentConfig{
			Temperature:     &temperature,
			MaxOutputTokens: 256,
		})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}
