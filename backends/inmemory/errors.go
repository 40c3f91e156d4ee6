// Package inmemory provides process-local chunk result caches with LRU,
// FIFO and LFU eviction.
package inmemory

import "errors"

// ErrInvalidCapacity indicates a backend was configured without room for entries.
var ErrInvalidCapacity = errors.New("capacity must be positive")
