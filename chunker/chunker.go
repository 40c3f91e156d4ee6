// Package chunker splits text into token-bounded, overlapping chunks.
package chunker

import (
	"context"
	"fmt"

	"github.com/botirk38/textchunker/logger"
	"github.com/botirk38/textchunker/types"
)

// Chunker defines the interface for text chunking strategies.
type Chunker interface {
	// ChunkText splits text into chunks according to the chunker's
	// strategy and configured goal length.
	ChunkText(ctx context.Context, text string) ([]Chunk, error)

	// CountTokens counts the number of tokens in the given text.
	// This delegates to the underlying token counter.
	CountTokens(ctx context.Context, text string) (int, error)
}

// Codec is a token counter that can also turn text into token ids and back.
// The fixed window strategy needs one.
type Codec interface {
	types.TokenCounter
	Encode(text string) ([]uint, error)
	Decode(ids []uint) (string, error)
}

// ChunkConfig holds configuration for text chunking behavior.
type ChunkConfig struct {
	// GoalLength is the target number of tokens per chunk. Chunks never
	// exceed GoalLength * 1.25 tokens.
	GoalLength int

	// OverlapPercent is the share of GoalLength repeated between adjacent
	// chunks. Zero selects the default of 10; other values are clamped to
	// [10, 100].
	OverlapPercent int

	// DisableOverlap turns overlap off entirely.
	DisableOverlap bool

	// Strategy specifies the chunking algorithm to use.
	// Default: GoalLength
	Strategy ChunkStrategy
}

// ChunkStrategy represents the chunking algorithm type.
type ChunkStrategy string

const (
	// GoalLength searches the separator hierarchy for boundaries that keep
	// each chunk near the goal length.
	GoalLength ChunkStrategy = "goal_length"

	// FixedSizeOverlap slices the token stream into fixed windows.
	FixedSizeOverlap ChunkStrategy = "fixed_overlap"
)

// ParseStrategy maps a strategy name to a ChunkStrategy.
func ParseStrategy(name string) (ChunkStrategy, error) {
	switch s := ChunkStrategy(name); s {
	case GoalLength, FixedSizeOverlap:
		return s, nil
	case "":
		return GoalLength, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Chunk represents a single chunk of text with its metadata.
type Chunk struct {
	// Text is the chunk content, overlap included
	Text string `json:"text"`

	// Index is the chunk's position in the sequence (0-based)
	Index int `json:"index"`

	// TokenCount is the measured length of Text
	TokenCount int `json:"token_count"`
}

// Texts returns the text of each chunk in order.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

// DefaultChunkConfig returns the default chunking configuration.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		GoalLength:     512,
		OverlapPercent: DefaultOverlapPercent,
		Strategy:       GoalLength,
	}
}

// Validate checks if the chunk configuration is valid.
func (c ChunkConfig) Validate() error {
	if c.GoalLength <= 0 {
		return ErrInvalidGoalLength
	}
	if c.OverlapPercent < 0 {
		return ErrInvalidOverlap
	}
	switch c.Strategy {
	case GoalLength, FixedSizeOverlap, "":
		return nil
	default:
		return ErrUnknownStrategy
	}
}

// New builds the Chunker selected by config.Strategy.
func New(config ChunkConfig, counter types.TokenCounter, log logger.Logger) (Chunker, error) {
	switch config.Strategy {
	case GoalLength, "":
		return NewDFSChunker(config, counter, log)
	case FixedSizeOverlap:
		codec, ok := counter.(Codec)
		if !ok {
			return nil, ErrCodecRequired
		}
		return NewFixedOverlapChunker(config, codec)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, config.Strategy)
	}
}
