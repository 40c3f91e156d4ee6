package types

import (
	"context"
	"time"
)

// TokenCounter is the length metric used by every chunking strategy.
// Implementations must be safe for concurrent use.
type TokenCounter interface {
	// CountTokens returns the number of tokens in text.
	CountTokens(ctx context.Context, text string) (int, error)
}

// Entry holds a cached value and when it was stored.
type Entry[V any] struct {
	Value    V         `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// Expired reports whether the entry is older than ttl. A zero ttl never expires.
func (e Entry[V]) Expired(ttl time.Duration, now time.Time) bool {
	return ttl > 0 && !e.StoredAt.IsZero() && now.Sub(e.StoredAt) > ttl
}

// CacheBackend defines the interface for chunk result storage backends.
// This allows for pluggable storage systems including in-memory and Redis.
type CacheBackend[K comparable, V any] interface {
	// Set stores a value in the cache
	Set(ctx context.Context, key K, entry Entry[V]) error

	// Get retrieves an entry by key
	Get(ctx context.Context, key K) (Entry[V], bool, error)

	// Delete removes an entry by key
	Delete(ctx context.Context, key K) error

	// Contains checks if a key exists without retrieving the value
	Contains(ctx context.Context, key K) (bool, error)

	// Flush clears all entries from the cache
	Flush(ctx context.Context) error

	// Len returns the number of entries in the cache
	Len(ctx context.Context) (int, error)

	// Close closes the backend and releases resources
	Close() error

	// Async operations
	// SetAsync stores a value asynchronously
	SetAsync(ctx context.Context, key K, entry Entry[V]) <-chan error

	// GetAsync retrieves an entry asynchronously
	GetAsync(ctx context.Context, key K) <-chan AsyncGetResult[V]

	// DeleteAsync removes an entry asynchronously
	DeleteAsync(ctx context.Context, key K) <-chan error
}

// AsyncGetResult holds the result of an async Get operation at the backend level.
type AsyncGetResult[V any] struct {
	Entry Entry[V]
	Found bool
	Error error
}

// BackendConfig provides configuration options for backends
type BackendConfig struct {
	// For in-memory caches
	Capacity int

	// TTL bounds how long an entry stays valid. Zero keeps entries until evicted.
	TTL time.Duration

	// For Redis
	ConnectionString string
	Username         string
	Password         string
	Database         int

	// Additional options
	Options map[string]any
}

// BackendType represents the type of cache backend
type BackendType string

const (
	BackendLRU   BackendType = "lru"
	BackendFIFO  BackendType = "fifo"
	BackendLFU   BackendType = "lfu"
	BackendRedis BackendType = "redis"
)

// CounterType represents the tokenizer family used to measure text.
type CounterType string

const (
	CounterTiktoken  CounterType = "tiktoken"
	CounterOpenAI    CounterType = "openai"
	CounterAnthropic CounterType = "anthropic"
	CounterGemini    CounterType = "gemini"
)
