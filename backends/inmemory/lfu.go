package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/botirk38/textchunker/types"
)

// lfuEntry wraps an entry with frequency tracking
type lfuEntry[V any] struct {
	entry     types.Entry[V]
	frequency int
	// seq orders insertions so ties evict the oldest entry.
	seq uint64
}

// LFUBackend implements CacheBackend using LFU (Least Frequently Used) eviction policy
type LFUBackend[K comparable, V any] struct {
	mu       *sync.Mutex
	entries  map[K]*lfuEntry[V]
	capacity int
	ttl      time.Duration
	seq      uint64
	now      func() time.Time
}

// NewLFUBackend creates a new LFU backend
func NewLFUBackend[K comparable, V any](config types.BackendConfig) (*LFUBackend[K, V], error) {
	if config.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &LFUBackend[K, V]{
		mu:       &sync.Mutex{},
		entries:  make(map[K]*lfuEntry[V]),
		capacity: config.Capacity,
		ttl:      config.TTL,
		now:      time.Now,
	}, nil
}

// Set stores an entry in the LFU cache
func (b *LFUBackend[K, V]) Set(ctx context.Context, key K, entry types.Entry[V]) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if entry.StoredAt.IsZero() {
		entry.StoredAt = b.now()
	}

	// If key already exists, update it and increment frequency
	if existing, exists := b.entries[key]; exists {
		existing.entry = entry
		existing.frequency++
		return nil
	}

	if len(b.entries) >= b.capacity {
		b.evictLFU()
	}

	b.seq++
	b.entries[key] = &lfuEntry[V]{entry: entry, frequency: 1, seq: b.seq}
	return nil
}

// evictLFU removes the least frequently used entry, oldest first on ties
func (b *LFUBackend[K, V]) evictLFU() {
	var victim K
	var found bool
	var minFreq int
	var minSeq uint64

	for key, e := range b.entries {
		if !found || e.frequency < minFreq || (e.frequency == minFreq && e.seq < minSeq) {
			victim, minFreq, minSeq, found = key, e.frequency, e.seq, true
		}
	}
	if found {
		delete(b.entries, victim)
	}
}

// Get retrieves an entry from the LFU cache and increments its frequency
func (b *LFUBackend[K, V]) Get(ctx context.Context, key K) (types.Entry[V], bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[key]
	if !ok {
		return types.Entry[V]{}, false, nil
	}
	if e.entry.Expired(b.ttl, b.now()) {
		delete(b.entries, key)
		return types.Entry[V]{}, false, nil
	}
	e.frequency++
	return e.entry, true, nil
}

// Delete removes an entry from the LFU cache
func (b *LFUBackend[K, V]) Delete(ctx context.Context, key K) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, key)
	return nil
}

// Contains checks if a live key exists in the LFU cache (without incrementing frequency)
func (b *LFUBackend[K, V]) Contains(ctx context.Context, key K) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, exists := b.entries[key]
	return exists && !e.entry.Expired(b.ttl, b.now()), nil
}

// Flush clears all entries from the LFU cache
func (b *LFUBackend[K, V]) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make(map[K]*lfuEntry[V])
	return nil
}

// Len returns the number of entries in the LFU cache
func (b *LFUBackend[K, V]) Len(ctx context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.entries), nil
}

// Close closes the LFU backend (no-op for in-memory)
func (b *LFUBackend[K, V]) Close() error {
	return nil
}

// SetAsync stores an entry asynchronously
func (b *LFUBackend[K, V]) SetAsync(ctx context.Context, key K, entry types.Entry[V]) <-chan error {
	return types.AsyncError(func() error { return b.Set(ctx, key, entry) })
}

// GetAsync retrieves an entry asynchronously
func (b *LFUBackend[K, V]) GetAsync(ctx context.Context, key K) <-chan types.AsyncGetResult[V] {
	return types.AsyncGet(func() (types.Entry[V], bool, error) { return b.Get(ctx, key) })
}

// DeleteAsync removes an entry asynchronously
func (b *LFUBackend[K, V]) DeleteAsync(ctx context.Context, key K) <-chan error {
	return types.AsyncError(func() error { return b.Delete(ctx, key) })
}
