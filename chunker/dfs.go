package chunker

import (
	"context"
	"errors"
	"fmt"

	"github.com/botirk38/textchunker/logger"
	"github.com/botirk38/textchunker/textclean"
	"github.com/botirk38/textchunker/types"
)

// DFSChunker implements the GoalLength strategy. It walks the separator
// hierarchy from paragraphs down to graphemes and, for each separator,
// searches depth first for boundaries that keep every chunk inside the goal
// band, shrinking the goal by 2% per attempt down to 70% of the original.
//
// A DFSChunker only holds configuration; every call builds its own search
// state, so one instance may be shared between goroutines as long as the
// counter is.
type DFSChunker struct {
	config  ChunkConfig
	counter types.TokenCounter
	log     logger.Logger
}

// NewDFSChunker creates a DFSChunker. A nil log discards output.
func NewDFSChunker(config ChunkConfig, counter types.TokenCounter, log logger.Logger) (*DFSChunker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chunk config: %w", err)
	}
	if counter == nil {
		return nil, errors.New("token counter is required")
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &DFSChunker{config: config, counter: counter, log: log}, nil
}

// ChunkText splits text into ordered strings using the GoalLength strategy.
// overlapPercent 0 selects the default overlap.
func ChunkText(ctx context.Context, counter types.TokenCounter, text string, goalLength, overlapPercent int) ([]string, error) {
	c, err := NewDFSChunker(ChunkConfig{
		GoalLength:     goalLength,
		OverlapPercent: overlapPercent,
		Strategy:       GoalLength,
	}, counter, nil)
	if err != nil {
		return nil, err
	}

	chunks, err := c.ChunkText(ctx, text)
	if err != nil {
		return nil, err
	}
	return Texts(chunks), nil
}

// CountTokens counts the number of tokens in the given text.
func (c *DFSChunker) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	return countTokens(ctx, c.counter, text)
}

// ChunkText cleans text and splits it into chunks. Text that already fits
// under the maximum length, empty text included, comes back as a single chunk.
func (c *DFSChunker) ChunkText(ctx context.Context, text string) ([]Chunk, error) {
	cleaned := textclean.New().Run(text)

	goal := c.config.GoalLength
	percent := ClampOverlapPercent(c.config.OverlapPercent)
	withOverlap := !c.config.DisableOverlap

	total, err := countTokens(ctx, c.counter, cleaned)
	if err != nil {
		return nil, err
	}
	if total < NewThresholds(goal, percent, withOverlap).MaxLength {
		return []Chunk{{Text: cleaned, TokenCount: total}}, nil
	}

	for _, sep := range Separators() {
		splits := sep.Split(cleaned)
		if len(splits) == 0 {
			continue
		}
		largest, err := c.largestSplit(ctx, splits)
		if err != nil {
			return nil, err
		}

		for g := goal; aboveFloor(g, goal); g = decay(g) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			s := newSearch(ctx, c.counter, splits, NewThresholds(g, percent, withOverlap), withOverlap)
			if !s.prefilter(largest, total) {
				c.log.Debug("prefilter rejected separator", "separator", sep, "goal", g, "largest_split", largest)
				continue
			}

			path, ok, err := s.findPath(0)
			if err != nil {
				return nil, err
			}
			if !ok || len(path) < 2 {
				c.log.Debug("no chunk path", "separator", sep, "goal", g, "splits", len(splits))
				continue
			}

			chunks, ok, err := s.assemble(path)
			if err != nil {
				return nil, err
			}
			if ok {
				c.log.Debug("chunked text", "separator", sep, "goal", g, "chunks", len(chunks))
				return chunks, nil
			}
			c.log.Debug("chunk assembly failed", "separator", sep, "goal", g, "path", path)
		}
	}

	c.log.Warn("no valid chunking", "goal", goal, "overlap_percent", percent, "tokens", total)
	return nil, ErrNoValidChunking
}

func (c *DFSChunker) largestSplit(ctx context.Context, splits []string) (int, error) {
	largest := 0
	for _, split := range splits {
		n, err := countTokens(ctx, c.counter, split)
		if err != nil {
			return 0, err
		}
		largest = max(largest, n)
	}
	return largest, nil
}
