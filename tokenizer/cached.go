package tokenizer

import (
	"context"
	"errors"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/botirk38/textchunker/types"
)

// DefaultCountCacheSize bounds the number of memoized counts.
const DefaultCountCacheSize = 65536

// CachedCounter memoizes the counts of another counter in an LRU keyed by
// the xxhash of the text. The chunker measures the same spans many times
// while searching, which makes remote counters affordable.
type CachedCounter struct {
	counter types.TokenCounter
	cache   *lru.Cache[uint64, int]
}

// NewCachedCounter wraps counter with a count cache of the given size.
// A size <= 0 selects DefaultCountCacheSize.
func NewCachedCounter(counter types.TokenCounter, size int) (*CachedCounter, error) {
	if counter == nil {
		return nil, errors.New("token counter is required")
	}
	if size <= 0 {
		size = DefaultCountCacheSize
	}

	cache, err := lru.New[uint64, int](size)
	if err != nil {
		return nil, err
	}
	return &CachedCounter{counter: counter, cache: cache}, nil
}

// CountTokens returns the cached count for text, asking the wrapped counter
// on a miss. Errors are not cached.
func (c *CachedCounter) CountTokens(ctx context.Context, text string) (int, error) {
	key := xxhash.Sum64String(text)
	if n, ok := c.cache.Get(key); ok {
		return n, nil
	}

	n, err := c.counter.CountTokens(ctx, text)
	if err != nil {
		return 0, err
	}
	c.cache.Add(key, n)
	return n, nil
}

// Len returns the number of cached counts.
func (c *CachedCounter) Len() int {
	return c.cache.Len()
}

// Unwrap returns the wrapped counter.
func (c *CachedCounter) Unwrap() types.TokenCounter {
	return c.counter
}

// Name reports the wrapped counter's name.
func (c *CachedCounter) Name() string {
	return Name(c.counter)
}
