// Package options provides functional options for configuring TextChunker instances.
package options

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/genai"

	"github.com/botirk38/textchunker/backends"
	"github.com/botirk38/textchunker/chunker"
	"github.com/botirk38/textchunker/logger"
	"github.com/botirk38/textchunker/tokenizer"
	"github.com/botirk38/textchunker/types"
)

// DefaultConcurrency bounds ChunkBatch fan-out when WithConcurrency is not used.
const DefaultConcurrency = 4

// ResultBackend stores chunking results keyed by request fingerprint.
type ResultBackend = types.CacheBackend[string, []chunker.Chunk]

// Option represents a configuration option for TextChunker
type Option func(*Config) error

// Config holds the configuration for building a TextChunker
type Config struct {
	Chunk   chunker.ChunkConfig
	Counter types.TokenCounter

	// CountCacheSize > 0 wraps Counter in a tokenizer.CachedCounter.
	CountCacheSize int

	// NormalizeUnicode and ASCIIOnly preprocess text before chunking.
	NormalizeUnicode bool
	ASCIIOnly        bool

	// Backend caches results; nil disables result caching.
	Backend ResultBackend

	Logger      logger.Logger
	Metrics     prometheus.Registerer
	Concurrency int
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Chunk:       chunker.DefaultChunkConfig(),
		Logger:      logger.NewNop(),
		Concurrency: DefaultConcurrency,
	}
}

// Apply applies all the given options to the config
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Counter == nil {
		return errors.New("token counter is required - use WithTiktokenEncoding, WithOpenAIModel, etc.")
	}
	if err := c.Chunk.Validate(); err != nil {
		return fmt.Errorf("invalid chunk config: %w", err)
	}
	if c.Concurrency <= 0 {
		return errors.New("concurrency must be positive")
	}
	return nil
}

// WithGoalLength sets the target chunk length in tokens
func WithGoalLength(tokens int) Option {
	return func(cfg *Config) error {
		if tokens <= 0 {
			return chunker.ErrInvalidGoalLength
		}
		cfg.Chunk.GoalLength = tokens
		return nil
	}
}

// WithOverlapPercent sets the share of the goal length repeated between
// adjacent chunks. Values outside [10, 100] are clamped when chunking.
func WithOverlapPercent(percent int) Option {
	return func(cfg *Config) error {
		if percent < 0 {
			return chunker.ErrInvalidOverlap
		}
		cfg.Chunk.OverlapPercent = percent
		cfg.Chunk.DisableOverlap = false
		return nil
	}
}

// WithoutOverlap produces chunks that share no text
func WithoutOverlap() Option {
	return func(cfg *Config) error {
		cfg.Chunk.DisableOverlap = true
		return nil
	}
}

// WithStrategy selects the chunking algorithm
func WithStrategy(strategy chunker.ChunkStrategy) Option {
	return func(cfg *Config) error {
		s, err := chunker.ParseStrategy(string(strategy))
		if err != nil {
			return err
		}
		cfg.Chunk.Strategy = s
		return nil
	}
}

// WithUnicodeNormalization composes text to NFC before chunking
func WithUnicodeNormalization() Option {
	return func(cfg *Config) error {
		cfg.NormalizeUnicode = true
		return nil
	}
}

// WithASCIIOnly strips everything but letters, digits, basic punctuation and
// whitespace before chunking
func WithASCIIOnly() Option {
	return func(cfg *Config) error {
		cfg.ASCIIOnly = true
		return nil
	}
}

// WithTokenCounter allows using a pre-configured token counter
func WithTokenCounter(counter types.TokenCounter) Option {
	return func(cfg *Config) error {
		if counter == nil {
			return errors.New("token counter cannot be nil")
		}
		cfg.Counter = counter
		return nil
	}
}

// WithTiktokenEncoding counts tokens locally with a tiktoken encoding
func WithTiktokenEncoding(encoding string) Option {
	return func(cfg *Config) error {
		counter, err := tokenizer.NewTiktokenCounter(encoding)
		if err != nil {
			return err
		}
		cfg.Counter = counter
		return nil
	}
}

// WithOpenAIModel counts tokens locally the way the given OpenAI model does
func WithOpenAIModel(model string) Option {
	return func(cfg *Config) error {
		counter, err := tokenizer.NewOpenAICounter(model)
		if err != nil {
			return err
		}
		cfg.Counter = counter
		return nil
	}
}

// WithAnthropicCounter counts tokens with the Anthropic API
func WithAnthropicCounter(apiKey string, model ...string) Option {
	return func(cfg *Config) error {
		if apiKey == "" {
			return errors.New("anthropic API key is required")
		}
		client := anthropic.NewClient(anthropicopt.WithAPIKey(apiKey))
		m := ""
		if len(model) > 0 {
			m = model[0]
		}
		cfg.Counter = tokenizer.NewAnthropicCounter(&client, m)
		return nil
	}
}

// WithGeminiCounter counts tokens with the Gemini API
func WithGeminiCounter(apiKey string, model ...string) Option {
	return func(cfg *Config) error {
		if apiKey == "" {
			return errors.New("gemini API key is required")
		}
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return fmt.Errorf("failed to create gemini client: %w", err)
		}
		m := ""
		if len(model) > 0 {
			m = model[0]
		}
		cfg.Counter = tokenizer.NewGeminiCounter(client, m)
		return nil
	}
}

// WithCountCache memoizes up to size token counts
func WithCountCache(size int) Option {
	return func(cfg *Config) error {
		if size <= 0 {
			return errors.New("count cache size must be positive")
		}
		cfg.CountCacheSize = size
		return nil
	}
}

// WithBackend sets up a result cache of the given type
func WithBackend(backendType types.BackendType, config types.BackendConfig) Option {
	return func(cfg *Config) error {
		factory := &backends.BackendFactory[string, []chunker.Chunk]{}
		backend, err := factory.NewBackend(backendType, config)
		if err != nil {
			return err
		}
		cfg.Backend = backend
		return nil
	}
}

// WithLRUBackend sets up an LRU in-memory result cache
func WithLRUBackend(capacity int) Option {
	return WithBackend(types.BackendLRU, types.BackendConfig{Capacity: capacity})
}

// WithFIFOBackend sets up a FIFO in-memory result cache
func WithFIFOBackend(capacity int) Option {
	return WithBackend(types.BackendFIFO, types.BackendConfig{Capacity: capacity})
}

// WithLFUBackend sets up an LFU in-memory result cache
func WithLFUBackend(capacity int) Option {
	return WithBackend(types.BackendLFU, types.BackendConfig{Capacity: capacity})
}

// WithRedisBackend sets up a Redis result cache
func WithRedisBackend(addr string, db int) Option {
	return WithBackend(types.BackendRedis, types.BackendConfig{
		ConnectionString: addr,
		Database:         db,
	})
}

// WithCustomBackend allows using a pre-configured backend
func WithCustomBackend(backend ResultBackend) Option {
	return func(cfg *Config) error {
		if backend == nil {
			return errors.New("backend cannot be nil")
		}
		cfg.Backend = backend
		return nil
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(cfg *Config) error {
		if l == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.Logger = l
		return nil
	}
}

// WithMetrics registers the chunker's metrics with reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(cfg *Config) error {
		if reg == nil {
			return errors.New("metrics registerer cannot be nil")
		}
		cfg.Metrics = reg
		return nil
	}
}

// WithConcurrency bounds how many documents ChunkBatch processes at once
func WithConcurrency(n int) Option {
	return func(cfg *Config) error {
		if n <= 0 {
			return errors.New("concurrency must be positive")
		}
		cfg.Concurrency = n
		return nil
	}
}
