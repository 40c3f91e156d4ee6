package chunker

import (
	"context"
	"fmt"
)

// FixedOverlapChunker implements the Chunker interface using a fixed-size
// token window. Consecutive windows share OverlapPercent of GoalLength tokens.
type FixedOverlapChunker struct {
	config  ChunkConfig
	codec   Codec
	overlap int
}

// NewFixedOverlapChunker creates a new FixedOverlapChunker with the given configuration.
func NewFixedOverlapChunker(config ChunkConfig, codec Codec) (*FixedOverlapChunker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chunk config: %w", err)
	}
	if codec == nil {
		return nil, ErrCodecRequired
	}

	overlap := 0
	if !config.DisableOverlap {
		overlap = config.GoalLength * ClampOverlapPercent(config.OverlapPercent) / 100
	}

	return &FixedOverlapChunker{
		config:  config,
		codec:   codec,
		overlap: overlap,
	}, nil
}

// CountTokens counts the number of tokens in the given text.
func (c *FixedOverlapChunker) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	return countTokens(ctx, c.codec, text)
}

// ChunkText splits the text into overlapping windows of GoalLength tokens.
func (c *FixedOverlapChunker) ChunkText(ctx context.Context, text string) ([]Chunk, error) {
	tokens, err := c.codec.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenizerFailed, err)
	}

	size := c.config.GoalLength
	totalTokens := len(tokens)

	// If text fits within chunk size, return single chunk
	if totalTokens <= size {
		return []Chunk{{Text: text, TokenCount: totalTokens}}, nil
	}

	stride := size - c.overlap
	if stride <= 0 {
		stride = size
	}

	var chunks []Chunk
	for start := 0; start < totalTokens; start += stride {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+size, totalTokens)
		chunkText, err := c.codec.Decode(tokens[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to decode chunk %d: %w", len(chunks), err)
		}

		chunks = append(chunks, Chunk{
			Text:       chunkText,
			Index:      len(chunks),
			TokenCount: end - start,
		})

		if end >= totalTokens {
			break
		}
	}

	return chunks, nil
}
