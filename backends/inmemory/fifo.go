package inmemory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/botirk38/textchunker/types"
)

// FIFOBackend implements CacheBackend using FIFO (First In, First Out) eviction policy
type FIFOBackend[K comparable, V any] struct {
	mu       *sync.RWMutex
	entries  map[K]types.Entry[V]
	queue    []K
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewFIFOBackend creates a new FIFO backend
func NewFIFOBackend[K comparable, V any](config types.BackendConfig) (*FIFOBackend[K, V], error) {
	if config.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &FIFOBackend[K, V]{
		mu:       &sync.RWMutex{},
		entries:  make(map[K]types.Entry[V]),
		queue:    make([]K, 0, config.Capacity),
		capacity: config.Capacity,
		ttl:      config.TTL,
		now:      time.Now,
	}, nil
}

// Set stores an entry in the FIFO cache. Updating a key keeps its place in
// the queue.
func (b *FIFOBackend[K, V]) Set(ctx context.Context, key K, entry types.Entry[V]) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if entry.StoredAt.IsZero() {
		entry.StoredAt = b.now()
	}

	if _, exists := b.entries[key]; exists {
		b.entries[key] = entry
		return nil
	}

	// If at capacity, evict the oldest entry (FIFO)
	if len(b.entries) >= b.capacity {
		oldestKey := b.queue[0]
		b.queue = b.queue[1:]
		delete(b.entries, oldestKey)
	}

	b.entries[key] = entry
	b.queue = append(b.queue, key)
	return nil
}

// Get retrieves an entry from the FIFO cache. Expired entries are removed.
func (b *FIFOBackend[K, V]) Get(ctx context.Context, key K) (types.Entry[V], bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.entries[key]
	if !ok {
		return types.Entry[V]{}, false, nil
	}
	if entry.Expired(b.ttl, b.now()) {
		b.remove(key)
		return types.Entry[V]{}, false, nil
	}
	return entry, true, nil
}

// Delete removes an entry from the FIFO cache
func (b *FIFOBackend[K, V]) Delete(ctx context.Context, key K) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.remove(key)
	return nil
}

func (b *FIFOBackend[K, V]) remove(key K) {
	if _, exists := b.entries[key]; !exists {
		return
	}
	delete(b.entries, key)
	if i := slices.Index(b.queue, key); i >= 0 {
		b.queue = slices.Delete(b.queue, i, i+1)
	}
}

// Contains checks if a live key exists in the FIFO cache
func (b *FIFOBackend[K, V]) Contains(ctx context.Context, key K) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entry, exists := b.entries[key]
	return exists && !entry.Expired(b.ttl, b.now()), nil
}

// Flush clears all entries from the FIFO cache
func (b *FIFOBackend[K, V]) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make(map[K]types.Entry[V])
	b.queue = make([]K, 0, b.capacity)
	return nil
}

// Len returns the number of entries in the FIFO cache
func (b *FIFOBackend[K, V]) Len(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.entries), nil
}

// Close closes the FIFO backend (no-op for in-memory)
func (b *FIFOBackend[K, V]) Close() error {
	return nil
}

// SetAsync stores an entry asynchronously
func (b *FIFOBackend[K, V]) SetAsync(ctx context.Context, key K, entry types.Entry[V]) <-chan error {
	return types.AsyncError(func() error { return b.Set(ctx, key, entry) })
}

// GetAsync retrieves an entry asynchronously
func (b *FIFOBackend[K, V]) GetAsync(ctx context.Context, key K) <-chan types.AsyncGetResult[V] {
	return types.AsyncGet(func() (types.Entry[V], bool, error) { return b.Get(ctx, key) })
}

// DeleteAsync removes an entry asynchronously
func (b *FIFOBackend[K, V]) DeleteAsync(ctx context.Context, key K) <-chan error {
	return types.AsyncError(func() error { return b.Delete(ctx, key) })
}
