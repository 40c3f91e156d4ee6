// Package backends builds the caches that hold chunking results, keyed by a
// fingerprint of the text and the chunking parameters.
package backends

import (
	"errors"
	"fmt"
	"strings"

	"github.com/botirk38/textchunker/backends/inmemory"
	"github.com/botirk38/textchunker/backends/remote"
	"github.com/botirk38/textchunker/types"
)

var (
	ErrUnsupportedBackend = errors.New("unsupported backend type")
	ErrNegativeTTL        = errors.New("ttl must not be negative")
)

// ParseBackendType maps a name such as "LRU" or " redis " to a BackendType.
func ParseBackendType(name string) (types.BackendType, error) {
	switch t := types.BackendType(strings.ToLower(strings.TrimSpace(name))); t {
	case types.BackendLRU, types.BackendFIFO, types.BackendLFU, types.BackendRedis:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, name)
	}
}

// BackendFactory creates result caches based on type and configuration.
// A zero TTL keeps results until they are evicted; chunking is deterministic,
// so a stale result is only possible after the counter's vocabulary changes.
type BackendFactory[K comparable, V any] struct{}

// NewBackend creates a new cache backend of the specified type
func (f *BackendFactory[K, V]) NewBackend(backendType types.BackendType, config types.BackendConfig) (types.CacheBackend[K, V], error) {
	if config.TTL < 0 {
		return nil, ErrNegativeTTL
	}
	switch backendType {
	case types.BackendLRU:
		return NewLRUBackend[K, V](config)
	case types.BackendFIFO:
		return NewFIFOBackend[K, V](config)
	case types.BackendLFU:
		return NewLFUBackend[K, V](config)
	case types.BackendRedis:
		return NewRedisBackend[K, V](config)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, backendType)
	}
}

// NewLRUBackend creates an in-memory cache that evicts the least recently
// read result.
func NewLRUBackend[K comparable, V any](config types.BackendConfig) (types.CacheBackend[K, V], error) {
	return inmemory.NewLRUBackend[K, V](config)
}

// NewFIFOBackend creates an in-memory cache that evicts the oldest result.
func NewFIFOBackend[K comparable, V any](config types.BackendConfig) (types.CacheBackend[K, V], error) {
	return inmemory.NewFIFOBackend[K, V](config)
}

// NewLFUBackend creates an in-memory cache that evicts the least read result.
func NewLFUBackend[K comparable, V any](config types.BackendConfig) (types.CacheBackend[K, V], error) {
	return inmemory.NewLFUBackend[K, V](config)
}

// NewRedisBackend creates a cache shared by every process using the same
// Redis database and key prefix.
func NewRedisBackend[K comparable, V any](config types.BackendConfig) (types.CacheBackend[K, V], error) {
	return remote.NewRedisBackend[K, V](config)
}
