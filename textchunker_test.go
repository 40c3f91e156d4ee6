package textchunker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/botirk38/textchunker/chunker"
	"github.com/botirk38/textchunker/options"
	"github.com/botirk38/textchunker/tokenizer"
)

// Mock counter for testing: one token per whitespace separated word
type wordCounter struct {
	calls atomic.Int64
}

func (w *wordCounter) CountTokens(_ context.Context, text string) (int, error) {
	w.calls.Add(1)
	return len(strings.Fields(text)), nil
}

type failingCounter struct{}

func (failingCounter) CountTokens(context.Context, string) (int, error) {
	return 0, errors.New("backend down")
}

// failingOn fails for any text containing word.
type failingOn struct {
	word string
}

func (f failingOn) CountTokens(_ context.Context, text string) (int, error) {
	if strings.Contains(text, f.word) {
		return 0, errors.New("unsupported input")
	}
	return len(strings.Fields(text)), nil
}

func uniqueWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%04d", i)
	}
	return strings.Join(words, " ")
}

func newTestChunker(t *testing.T, counter *wordCounter, opts ...options.Option) *TextChunker {
	t.Helper()
	tc, err := New(append([]options.Option{options.WithTokenCounter(counter)}, opts...)...)
	if err != nil {
		t.Fatalf("Failed to create chunker: %v", err)
	}
	t.Cleanup(func() { _ = tc.Close() })
	return tc
}

func TestNew(t *testing.T) {
	t.Run("RequiresCounter", func(t *testing.T) {
		if _, err := New(); err == nil {
			t.Error("Expected error without token counter")
		}
	})

	t.Run("InvalidOption", func(t *testing.T) {
		_, err := New(options.WithTokenCounter(&wordCounter{}), options.WithGoalLength(-5))
		if !errors.Is(err, chunker.ErrInvalidGoalLength) {
			t.Errorf("Expected ErrInvalidGoalLength, got %v", err)
		}
	})

	t.Run("FixedStrategyNeedsCodec", func(t *testing.T) {
		_, err := New(options.WithTokenCounter(&wordCounter{}), options.WithStrategy(chunker.FixedSizeOverlap))
		if !errors.Is(err, chunker.ErrCodecRequired) {
			t.Errorf("Expected ErrCodecRequired, got %v", err)
		}
	})

	t.Run("NilConfig", func(t *testing.T) {
		if _, err := NewTextChunker(nil); err == nil {
			t.Error("Expected error for nil config")
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		tc := newTestChunker(t, &wordCounter{})
		if tc.Config().GoalLength != chunker.DefaultChunkConfig().GoalLength {
			t.Errorf("Unexpected default config: %+v", tc.Config())
		}
	})
}

func TestChunk(t *testing.T) {
	ctx := context.Background()

	t.Run("ContinuousProse", func(t *testing.T) {
		tc := newTestChunker(t, &wordCounter{}, options.WithGoalLength(300))
		chunks, err := tc.Chunk(ctx, uniqueWords(900))
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		if len(chunks) != 3 {
			t.Fatalf("Expected 3 chunks, got %d", len(chunks))
		}
		for i, c := range chunks {
			if c.Index != i {
				t.Errorf("Chunk %d has index %d", i, c.Index)
			}
			if c.TokenCount > 375 {
				t.Errorf("Chunk %d has %d tokens, above the 375 maximum", i, c.TokenCount)
			}
		}
	})

	t.Run("ShortText", func(t *testing.T) {
		tc := newTestChunker(t, &wordCounter{}, options.WithGoalLength(300))
		chunks, err := tc.Chunk(ctx, "  A short   note.\n\n\n\nTwo paragraphs. ")
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		if len(chunks) != 1 {
			t.Fatalf("Expected 1 chunk, got %d", len(chunks))
		}
		if chunks[0].Text != "A short note.\n\nTwo paragraphs." {
			t.Errorf("Unexpected chunk text %q", chunks[0].Text)
		}
	})

	t.Run("EmptyText", func(t *testing.T) {
		tc := newTestChunker(t, &wordCounter{})
		chunks, err := tc.Chunk(ctx, " \n ")
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		if len(chunks) != 1 || chunks[0].Text != "" {
			t.Errorf("Expected one empty chunk, got %+v", chunks)
		}
	})

	t.Run("TokenizerFailure", func(t *testing.T) {
		tc, err := New(options.WithTokenCounter(failingCounter{}))
		if err != nil {
			t.Fatalf("Failed to create chunker: %v", err)
		}
		if _, err := tc.Chunk(ctx, uniqueWords(50)); !errors.Is(err, chunker.ErrTokenizerFailed) {
			t.Errorf("Expected ErrTokenizerFailed, got %v", err)
		}
	})

	t.Run("NoValidChunking", func(t *testing.T) {
		tc := newTestChunker(t, &wordCounter{}, options.WithGoalLength(300), options.WithOverlapPercent(100))
		if _, err := tc.Chunk(ctx, uniqueWords(900)); !errors.Is(err, chunker.ErrNoValidChunking) {
			t.Errorf("Expected ErrNoValidChunking, got %v", err)
		}
	})
}

func TestChunkWith(t *testing.T) {
	ctx := context.Background()
	tc := newTestChunker(t, &wordCounter{}, options.WithGoalLength(300))

	cfg := tc.Config()
	cfg.GoalLength = 100
	chunks, err := tc.ChunkWith(ctx, uniqueWords(900), cfg)
	if err != nil {
		t.Fatalf("ChunkWith failed: %v", err)
	}
	if len(chunks) != 11 {
		t.Errorf("Expected 11 chunks, got %d", len(chunks))
	}

	cfg.GoalLength = 0
	if _, err := tc.ChunkWith(ctx, uniqueWords(900), cfg); !errors.Is(err, chunker.ErrInvalidGoalLength) {
		t.Errorf("Expected ErrInvalidGoalLength, got %v", err)
	}

	cfg = tc.Config()
	cfg.Strategy = chunker.FixedSizeOverlap
	if _, err := tc.ChunkWith(ctx, uniqueWords(900), cfg); !errors.Is(err, chunker.ErrCodecRequired) {
		t.Errorf("Expected ErrCodecRequired, got %v", err)
	}
}

func TestChunkHTML(t *testing.T) {
	tc := newTestChunker(t, &wordCounter{}, options.WithGoalLength(300))

	doc := "<html><head><title>skip</title></head><body><p>" + uniqueWords(20) + "</p><script>skip()</script></body></html>"
	chunks, err := tc.ChunkHTML(context.Background(), strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ChunkHTML failed: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Text != uniqueWords(20) {
		t.Errorf("Unexpected chunks %+v", chunks)
	}
}

func TestPreprocessing(t *testing.T) {
	ctx := context.Background()

	t.Run("UnicodeNormalization", func(t *testing.T) {
		tc := newTestChunker(t, &wordCounter{}, options.WithUnicodeNormalization())
		chunks, err := tc.Chunk(ctx, "cafe\u0301 au lait")
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		if chunks[0].Text != "caf\u00e9 au lait" {
			t.Errorf("Expected composed text, got %q", chunks[0].Text)
		}
	})

	t.Run("ASCIIOnly", func(t *testing.T) {
		tc := newTestChunker(t, &wordCounter{}, options.WithASCIIOnly())
		chunks, err := tc.Chunk(ctx, "Plain words \u00a9 and symbols \u2122.\n\nNext paragraph.")
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		if chunks[0].Text != "Plain words and symbols .\n\nNext paragraph." {
			t.Errorf("Unexpected text %q", chunks[0].Text)
		}
	})

	t.Run("Off", func(t *testing.T) {
		tc := newTestChunker(t, &wordCounter{})
		if tc.cleaner != nil {
			t.Error("Expected no preprocessing by default")
		}
	})
}

func TestCountTokens(t *testing.T) {
	tc := newTestChunker(t, &wordCounter{})
	n, err := tc.CountTokens(context.Background(), "four words right here")
	if err != nil {
		t.Fatalf("CountTokens failed: %v", err)
	}
	if n != 4 {
		t.Errorf("Expected 4 tokens, got %d", n)
	}
}

func TestResultCache(t *testing.T) {
	ctx := context.Background()

	t.Run("LRU", func(t *testing.T) {
		counter := &wordCounter{}
		reg := prometheus.NewRegistry()
		tc := newTestChunker(t, counter,
			options.WithGoalLength(300),
			options.WithLRUBackend(10),
			options.WithMetrics(reg),
		)

		first, err := tc.Chunk(ctx, uniqueWords(900))
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		calls := counter.calls.Load()

		second, err := tc.Chunk(ctx, uniqueWords(900))
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		if counter.calls.Load() != calls {
			t.Error("Expected cached result to skip the token counter")
		}
		if len(first) != len(second) {
			t.Fatalf("Cached result differs: %d vs %d chunks", len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("Chunk %d differs after caching", i)
			}
		}

		if n, _ := tc.CacheLen(ctx); n != 1 {
			t.Errorf("Expected 1 cached result, got %d", n)
		}
		if got := testutil.ToFloat64(tc.metrics.cacheHits); got != 1 {
			t.Errorf("Expected 1 cache hit, got %v", got)
		}
		if got := testutil.ToFloat64(tc.metrics.cacheMisses); got != 1 {
			t.Errorf("Expected 1 cache miss, got %v", got)
		}

		if err := tc.Flush(ctx); err != nil {
			t.Fatalf("Flush failed: %v", err)
		}
		if n, _ := tc.CacheLen(ctx); n != 0 {
			t.Errorf("Expected empty cache after flush, got %d", n)
		}
	})

	t.Run("CallerCannotMutateCache", func(t *testing.T) {
		tc := newTestChunker(t, &wordCounter{}, options.WithGoalLength(300), options.WithLRUBackend(10))

		miss, err := tc.Chunk(ctx, uniqueWords(900))
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		want := miss[0].Text
		miss[0].Text = "changed after miss"

		hit, err := tc.Chunk(ctx, uniqueWords(900))
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		if hit[0].Text != want {
			t.Fatalf("Cached result changed through the returned slice: %q", hit[0].Text)
		}
		hit[0].Text = "changed after hit"

		again, err := tc.Chunk(ctx, uniqueWords(900))
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		if again[0].Text != want {
			t.Errorf("Cached result changed through a cache hit: %q", again[0].Text)
		}
	})

	t.Run("KeyedByConfig", func(t *testing.T) {
		tc := newTestChunker(t, &wordCounter{}, options.WithGoalLength(300), options.WithLRUBackend(10))
		if _, err := tc.Chunk(ctx, uniqueWords(900)); err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		cfg := tc.Config()
		cfg.GoalLength = 200
		chunks, err := tc.ChunkWith(ctx, uniqueWords(900), cfg)
		if err != nil {
			t.Fatalf("ChunkWith failed: %v", err)
		}
		if len(chunks) != 5 {
			t.Errorf("Expected 5 chunks for goal 200, got %d", len(chunks))
		}
		if n, _ := tc.CacheLen(ctx); n != 2 {
			t.Errorf("Expected 2 cached results, got %d", n)
		}
	})

	t.Run("FailuresNotCached", func(t *testing.T) {
		tc := newTestChunker(t, &wordCounter{}, options.WithGoalLength(300), options.WithOverlapPercent(100), options.WithLRUBackend(10))
		if _, err := tc.Chunk(ctx, uniqueWords(900)); err == nil {
			t.Fatal("Expected chunking to fail")
		}
		if n, _ := tc.CacheLen(ctx); n != 0 {
			t.Errorf("Expected no cached results, got %d", n)
		}
	})

	t.Run("SharedRedis", func(t *testing.T) {
		mr := miniredis.RunT(t)

		writer := newTestChunker(t, &wordCounter{}, options.WithGoalLength(300), options.WithRedisBackend(mr.Addr(), 0))
		want, err := writer.Chunk(ctx, uniqueWords(900))
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}

		counter := &wordCounter{}
		reader := newTestChunker(t, counter, options.WithGoalLength(300), options.WithRedisBackend(mr.Addr(), 0))
		got, err := reader.Chunk(ctx, uniqueWords(900))
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		if counter.calls.Load() != 0 {
			t.Error("Expected second chunker to read the shared result")
		}
		if len(got) != len(want) || got[0].Text != want[0].Text {
			t.Errorf("Shared result differs")
		}
	})
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	tc := newTestChunker(t, &wordCounter{}, options.WithGoalLength(300), options.WithMetrics(reg))

	if _, err := tc.Chunk(ctx, uniqueWords(900)); err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	cfg := tc.Config()
	cfg.OverlapPercent = 100
	if _, err := tc.ChunkWith(ctx, uniqueWords(900), cfg); err == nil {
		t.Fatal("Expected chunking with full overlap to fail")
	}

	if got := testutil.ToFloat64(tc.metrics.requests.WithLabelValues("goal_length", "ok")); got != 1 {
		t.Errorf("Expected 1 ok request, got %v", got)
	}
	if got := testutil.ToFloat64(tc.metrics.requests.WithLabelValues("goal_length", "error")); got != 1 {
		t.Errorf("Expected 1 failed request, got %v", got)
	}
	if got := testutil.ToFloat64(tc.metrics.chunks); got != 3 {
		t.Errorf("Expected 3 chunks counted, got %v", got)
	}

	if _, err := New(options.WithTokenCounter(&wordCounter{}), options.WithMetrics(reg)); err == nil {
		t.Error("Expected duplicate registration to fail")
	}
}

func TestTiktokenIntegration(t *testing.T) {
	ctx := context.Background()

	sentences := []string{
		"The river bends twice before it reaches the old mill at the edge of town.",
		"Nobody remembers who built the mill, but everyone has a story about it.",
		"In spring the water rises high enough to turn the wheel again.",
		"Children dare each other to touch the wheel while it is moving.",
		"The miller's house stands empty, its windows clouded with dust.",
	}
	var paras []string
	for p := 0; p < 20; p++ {
		var sb strings.Builder
		for s := 0; s < 4; s++ {
			fmt.Fprintf(&sb, "%s ", sentences[(p+s)%len(sentences)])
		}
		fmt.Fprintf(&sb, "This is paragraph number %d.", p+1)
		paras = append(paras, sb.String())
	}
	text := strings.Join(paras, "\n\n")

	t.Run("GoalLength", func(t *testing.T) {
		counter, err := tokenizer.NewTiktokenCounter(tokenizer.DefaultEncoding)
		if err != nil {
			t.Fatalf("Failed to create counter: %v", err)
		}
		tc, err := New(
			options.WithTokenCounter(counter),
			options.WithCountCache(1024),
			options.WithGoalLength(200),
		)
		if err != nil {
			t.Fatalf("Failed to create chunker: %v", err)
		}

		chunks, err := tc.Chunk(ctx, text)
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		if len(chunks) < 2 {
			t.Fatalf("Expected several chunks, got %d", len(chunks))
		}
		for i, c := range chunks {
			if c.TokenCount > 250 {
				t.Errorf("Chunk %d has %d tokens, above the 250 maximum", i, c.TokenCount)
			}
			n, err := counter.CountTokens(ctx, c.Text)
			if err != nil {
				t.Fatalf("CountTokens failed: %v", err)
			}
			if n != c.TokenCount {
				t.Errorf("Chunk %d reports %d tokens, counter says %d", i, c.TokenCount, n)
			}
		}
	})

	t.Run("FixedWindowWithCountCache", func(t *testing.T) {
		tc, err := New(
			options.WithTiktokenEncoding(tokenizer.DefaultEncoding),
			options.WithCountCache(1024),
			options.WithStrategy(chunker.FixedSizeOverlap),
			options.WithGoalLength(100),
		)
		if err != nil {
			t.Fatalf("Failed to create chunker: %v", err)
		}

		chunks, err := tc.Chunk(ctx, text)
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		if len(chunks) < 2 {
			t.Fatalf("Expected several chunks, got %d", len(chunks))
		}
		for i, c := range chunks {
			if c.TokenCount > 100 {
				t.Errorf("Chunk %d has %d tokens, above the window size", i, c.TokenCount)
			}
		}
	})
}
