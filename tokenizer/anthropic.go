package tokenizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// DefaultAnthropicModel is the model whose tokenizer AnthropicCounter uses
// when none is given.
const DefaultAnthropicModel = "claude-3-5-sonnet-20241022"

// AnthropicCounter counts tokens with Anthropic's token counting endpoint.
// Every call is an API request, so wrap it in a CachedCounter before
// chunking large documents.
type AnthropicCounter struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicCounter creates a new AnthropicCounter with the provided client.
func NewAnthropicCounter(client *anthropic.Client, model string) *AnthropicCounter {
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicCounter{
		client: client,
		model:  model,
	}
}

// CountTokens counts the tokens of text sent as a single user message.
func (t *AnthropicCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	// Client is required for Anthropic token counting
	if t.client == nil {
		return 0, errors.New("anthropic client is required for token counting")
	}

	params := anthropic.MessageCountTokensParams{
		Model: anthropic.Model(t.model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	}

	result, err := t.client.Messages.CountTokens(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("anthropic token counting failed: %w", err)
	}

	return int(result.InputTokens), nil
}

// Name identifies the counter in cache keys and logs.
func (t *AnthropicCounter) Name() string {
	return "anthropic:" + t.model
}
