package tokenizer

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used by GeminiCounter when no model is given.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiCounter counts tokens with the Gemini countTokens endpoint.
type GeminiCounter struct {
	client *genai.Client
	model  string
}

// NewGeminiCounter creates a new GeminiCounter with the provided client and model
func NewGeminiCounter(client *genai.Client, model string) *GeminiCounter {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiCounter{
		client: client,
		model:  model,
	}
}

// CountTokens counts the tokens of text as a single user content.
// This makes an API call to Gemini's token counting endpoint
func (t *GeminiCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	if t.client == nil {
		return 0, errors.New("gemini client is required for token counting")
	}

	result, err := t.client.Models.CountTokens(ctx, t.model, genai.Text(text), nil)
	if err != nil {
		return 0, fmt.Errorf("gemini token counting failed: %w", err)
	}

	return int(result.TotalTokens), nil
}

// Name identifies the counter in cache keys and logs.
func (t *GeminiCounter) Name() string {
	return "gemini:" + t.model
}
