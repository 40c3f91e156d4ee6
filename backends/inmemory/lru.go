package inmemory

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/botirk38/textchunker/types"
)

// lruStore is the subset of the plain and expirable LRU caches the backend uses.
type lruStore[K comparable, V any] interface {
	Add(key K, value types.Entry[V]) bool
	Get(key K) (types.Entry[V], bool)
	Peek(key K) (types.Entry[V], bool)
	Remove(key K) bool
	Purge()
	Len() int
}

// LRUBackend implements CacheBackend using LRU eviction policy. With a TTL
// set, entries also expire after TTL.
type LRUBackend[K comparable, V any] struct {
	cache lruStore[K, V]
}

// NewLRUBackend creates a new LRU backend
func NewLRUBackend[K comparable, V any](config types.BackendConfig) (*LRUBackend[K, V], error) {
	if config.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	if config.TTL > 0 {
		return &LRUBackend[K, V]{
			cache: expirable.NewLRU[K, types.Entry[V]](config.Capacity, nil, config.TTL),
		}, nil
	}

	lruCache, err := lru.New[K, types.Entry[V]](config.Capacity)
	if err != nil {
		return nil, err
	}
	return &LRUBackend[K, V]{cache: lruCache}, nil
}

// Set stores an entry in the LRU cache
func (b *LRUBackend[K, V]) Set(ctx context.Context, key K, entry types.Entry[V]) error {
	b.cache.Add(key, entry)
	return nil
}

// Get retrieves an entry from the LRU cache
func (b *LRUBackend[K, V]) Get(ctx context.Context, key K) (types.Entry[V], bool, error) {
	if entry, ok := b.cache.Get(key); ok {
		return entry, true, nil
	}
	return types.Entry[V]{}, false, nil
}

// Delete removes an entry from the LRU cache
func (b *LRUBackend[K, V]) Delete(ctx context.Context, key K) error {
	b.cache.Remove(key)
	return nil
}

// Contains checks if a live key exists without updating its recency
func (b *LRUBackend[K, V]) Contains(ctx context.Context, key K) (bool, error) {
	_, ok := b.cache.Peek(key)
	return ok, nil
}

// Flush clears all entries from the LRU cache
func (b *LRUBackend[K, V]) Flush(ctx context.Context) error {
	b.cache.Purge()
	return nil
}

// Len returns the number of entries in the LRU cache
func (b *LRUBackend[K, V]) Len(ctx context.Context) (int, error) {
	return b.cache.Len(), nil
}

// Close closes the LRU backend (no-op for in-memory)
func (b *LRUBackend[K, V]) Close() error {
	return nil
}

// SetAsync stores an entry asynchronously
func (b *LRUBackend[K, V]) SetAsync(ctx context.Context, key K, entry types.Entry[V]) <-chan error {
	return types.AsyncError(func() error { return b.Set(ctx, key, entry) })
}

// GetAsync retrieves an entry asynchronously
func (b *LRUBackend[K, V]) GetAsync(ctx context.Context, key K) <-chan types.AsyncGetResult[V] {
	return types.AsyncGet(func() (types.Entry[V], bool, error) { return b.Get(ctx, key) })
}

// DeleteAsync removes an entry asynchronously
func (b *LRUBackend[K, V]) DeleteAsync(ctx context.Context, key K) <-chan error {
	return types.AsyncError(func() error { return b.Delete(ctx, key) })
}
