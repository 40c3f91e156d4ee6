// Package textchunker splits documents into token-bounded, overlapping chunks
// and caches the results in a pluggable backend.
package textchunker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/botirk38/textchunker/chunker"
	"github.com/botirk38/textchunker/logger"
	"github.com/botirk38/textchunker/options"
	"github.com/botirk38/textchunker/textclean"
	"github.com/botirk38/textchunker/tokenizer"
	"github.com/botirk38/textchunker/types"
)

// TextChunker chunks text with a configured strategy and token counter.
// It is safe for concurrent use.
type TextChunker struct {
	config      chunker.ChunkConfig
	counter     types.TokenCounter
	cleaner     *textclean.Cleaner
	chunker     chunker.Chunker
	backend     options.ResultBackend
	log         logger.Logger
	metrics     *metrics
	concurrency int
}

// ChunkResult holds the result of an async Chunk operation.
type ChunkResult struct {
	Chunks []chunker.Chunk
	Error  error
}

// New creates a TextChunker with functional options.
func New(opts ...options.Option) (*TextChunker, error) {
	cfg := options.NewConfig()

	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return NewTextChunker(cfg)
}

// NewTextChunker creates a TextChunker from an already validated config.
func NewTextChunker(cfg *options.Config) (*TextChunker, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Counter == nil {
		return nil, errors.New("token counter cannot be nil")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	counter := cfg.Counter
	if cfg.CountCacheSize > 0 {
		cached, err := tokenizer.NewCachedCounter(cfg.Counter, cfg.CountCacheSize)
		if err != nil {
			return nil, err
		}
		counter = cached
	}

	m, err := newMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	tc := &TextChunker{
		config:      cfg.Chunk,
		counter:     counter,
		cleaner:     newCleaner(cfg),
		backend:     cfg.Backend,
		log:         log.With("counter", tokenizer.Name(cfg.Counter)),
		metrics:     m,
		concurrency: cfg.Concurrency,
	}
	if tc.concurrency <= 0 {
		tc.concurrency = options.DefaultConcurrency
	}

	tc.chunker, err = tc.newChunker(cfg.Chunk)
	if err != nil {
		return nil, err
	}
	return tc, nil
}

// newCleaner returns the preprocessing step selected in cfg, or nil when
// text goes to the chunker as is.
func newCleaner(cfg *options.Config) *textclean.Cleaner {
	if !cfg.NormalizeUnicode && !cfg.ASCIIOnly {
		return nil
	}
	c := textclean.New().KeepNewlines()
	if cfg.NormalizeUnicode {
		c.NormalizeUnicode()
	}
	if cfg.ASCIIOnly {
		c.RemoveNonBasicASCII()
	}
	return c
}

// newChunker builds a chunker for config. The fixed window strategy gets the
// unwrapped counter since it needs the Codec methods the count cache hides.
func (tc *TextChunker) newChunker(config chunker.ChunkConfig) (chunker.Chunker, error) {
	counter := tc.counter
	if cached, ok := counter.(*tokenizer.CachedCounter); ok && config.Strategy == chunker.FixedSizeOverlap {
		counter = cached.Unwrap()
	}
	return chunker.New(config, counter, tc.log)
}

// Config returns the default chunking configuration.
func (tc *TextChunker) Config() chunker.ChunkConfig {
	return tc.config
}

// Chunk splits text using the configured goal length and overlap.
func (tc *TextChunker) Chunk(ctx context.Context, text string) ([]chunker.Chunk, error) {
	return tc.run(ctx, text, tc.config, tc.chunker)
}

// ChunkWith splits text using config instead of the configured defaults.
func (tc *TextChunker) ChunkWith(ctx context.Context, text string, config chunker.ChunkConfig) ([]chunker.Chunk, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	c, err := tc.newChunker(config)
	if err != nil {
		return nil, err
	}
	return tc.run(ctx, text, config, c)
}

// ChunkHTML extracts the readable text of an HTML document and chunks it.
func (tc *TextChunker) ChunkHTML(ctx context.Context, r io.Reader) ([]chunker.Chunk, error) {
	text, err := textclean.CleanHTML(r)
	if err != nil {
		return nil, err
	}
	return tc.Chunk(ctx, text)
}

// CountTokens counts tokens in text with the configured counter.
func (tc *TextChunker) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.chunker.CountTokens(ctx, text)
}

func (tc *TextChunker) run(ctx context.Context, text string, config chunker.ChunkConfig, c chunker.Chunker) ([]chunker.Chunk, error) {
	if tc.cleaner != nil {
		text = tc.cleaner.Run(text)
	}
	strategy := string(config.Strategy)
	key := tc.cacheKey(text, config)

	if tc.backend != nil {
		entry, found, err := tc.backend.Get(ctx, key)
		switch {
		case err != nil:
			tc.log.Warn("result cache lookup failed", "error", err)
		case found:
			tc.metrics.cacheHits.Inc()
			tc.metrics.requests.WithLabelValues(strategy, "cached").Inc()
			tc.log.Debug("result cache hit", "key", key, "chunks", len(entry.Value))
			return slices.Clone(entry.Value), nil
		default:
			tc.metrics.cacheMisses.Inc()
		}
	}

	start := time.Now()
	chunks, err := c.ChunkText(ctx, text)
	tc.metrics.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		tc.metrics.requests.WithLabelValues(strategy, "error").Inc()
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			tc.log.Error("chunking failed", "goal", config.GoalLength, "error", err)
		}
		return nil, err
	}
	tc.metrics.requests.WithLabelValues(strategy, "ok").Inc()
	tc.metrics.chunks.Add(float64(len(chunks)))

	if tc.backend != nil {
		entry := types.Entry[[]chunker.Chunk]{Value: slices.Clone(chunks), StoredAt: time.Now()}
		if err := tc.backend.Set(ctx, key, entry); err != nil {
			tc.log.Warn("result cache store failed", "error", err)
		}
	}
	return chunks, nil
}

// cacheKey identifies a chunking result by everything that determines it.
func (tc *TextChunker) cacheKey(text string, config chunker.ChunkConfig) string {
	overlap := chunker.ClampOverlapPercent(config.OverlapPercent)
	if config.DisableOverlap {
		overlap = 0
	}
	return fmt.Sprintf("%s:%d:%d:%s:%016x",
		tokenizer.Name(tc.counter), config.GoalLength, overlap, config.Strategy, xxhash.Sum64String(text))
}

// ChunkAsync chunks text in a new goroutine.
// Returns a channel that will receive the result when complete.
func (tc *TextChunker) ChunkAsync(ctx context.Context, text string) <-chan ChunkResult {
	resultCh := make(chan ChunkResult, 1)
	go func() {
		defer close(resultCh)
		chunks, err := tc.Chunk(ctx, text)
		resultCh <- ChunkResult{Chunks: chunks, Error: err}
	}()
	return resultCh
}

// ChunkBatch chunks every text with at most the configured number of
// documents in flight. Results are in input order. The first failure cancels
// the remaining work and is returned with the index of its document.
func (tc *TextChunker) ChunkBatch(ctx context.Context, texts []string) ([][]chunker.Chunk, error) {
	results := make([][]chunker.Chunk, len(texts))
	if len(texts) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tc.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			chunks, err := tc.Chunk(gctx, text)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			results[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ChunkBatchAsync runs ChunkBatch in a new goroutine.
func (tc *TextChunker) ChunkBatchAsync(ctx context.Context, texts []string) <-chan BatchResult {
	resultCh := make(chan BatchResult, 1)
	go func() {
		defer close(resultCh)
		chunks, err := tc.ChunkBatch(ctx, texts)
		resultCh <- BatchResult{Chunks: chunks, Error: err}
	}()
	return resultCh
}

// BatchResult holds the result of an async ChunkBatch operation.
type BatchResult struct {
	Chunks [][]chunker.Chunk
	Error  error
}

// Flush clears the result cache.
func (tc *TextChunker) Flush(ctx context.Context) error {
	if tc.backend == nil {
		return nil
	}
	return tc.backend.Flush(ctx)
}

// CacheLen returns the number of cached results.
func (tc *TextChunker) CacheLen(ctx context.Context) (int, error) {
	if tc.backend == nil {
		return 0, nil
	}
	return tc.backend.Len(ctx)
}

// Close closes the result cache backend.
func (tc *TextChunker) Close() error {
	if tc.backend == nil {
		return nil
	}
	return tc.backend.Close()
}
