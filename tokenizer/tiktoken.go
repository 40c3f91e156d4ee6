// Package tokenizer provides token counters for the chunker: local BPE
// encodings through tiktoken and remote count endpoints for Anthropic and
// Gemini models.
package tokenizer

import (
	"context"
	"fmt"

	tiktoken "github.com/tiktoken-go/tokenizer"

	"github.com/botirk38/textchunker/types"
)

// DefaultEncoding is the encoding used when none is given.
const DefaultEncoding = string(tiktoken.Cl100kBase)

// TiktokenCounter counts tokens locally with a tiktoken BPE encoding.
// It is safe for concurrent use.
type TiktokenCounter struct {
	codec    tiktoken.Codec
	encoding string
}

// NewTiktokenCounter creates a counter for the named encoding, such as
// "cl100k_base" or "o200k_base". An empty name selects DefaultEncoding.
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	codec, err := tiktoken.Get(tiktoken.Encoding(encoding))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tokenizer %q: %w", encoding, err)
	}

	return &TiktokenCounter{codec: codec, encoding: encoding}, nil
}

// CountTokens counts the number of tokens in text. This is a local, fast
// operation that doesn't require an API call.
func (t *TiktokenCounter) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	ids, _, err := t.codec.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Encode returns the token ids of text.
func (t *TiktokenCounter) Encode(text string) ([]uint, error) {
	ids, _, err := t.codec.Encode(text)
	return ids, err
}

// Decode turns token ids back into text.
func (t *TiktokenCounter) Decode(ids []uint) (string, error) {
	return t.codec.Decode(ids)
}

// Encoding returns the encoding name.
func (t *TiktokenCounter) Encoding() string {
	return t.encoding
}

// Name identifies the counter in cache keys and logs.
func (t *TiktokenCounter) Name() string {
	return "tiktoken:" + t.encoding
}

// Name returns the name a counter reports about itself, or its Go type when
// it does not implement Name.
func Name(counter types.TokenCounter) string {
	if n, ok := counter.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", counter)
}
