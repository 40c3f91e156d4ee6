// Package remote provides chunk result caches backed by external stores.
package remote

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/botirk38/textchunker/types"
)

// DefaultPrefix namespaces every key the backend writes.
const DefaultPrefix = "textchunker:"

// RedisBackend implements CacheBackend with one JSON string per entry.
// Entries expire through Redis TTLs when BackendConfig.TTL is set.
type RedisBackend[K comparable, V any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// parseRedisURL parses a Redis URL and returns redis.Options
func parseRedisURL(connectionString string) (*redis.Options, error) {
	// Handle redis:// or rediss:// URLs
	if strings.HasPrefix(connectionString, "redis://") || strings.HasPrefix(connectionString, "rediss://") {
		parsedURL, err := url.Parse(connectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}

		opts := &redis.Options{
			Addr: parsedURL.Host,
		}

		if parsedURL.Scheme == "rediss" {
			opts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}

		if parsedURL.User != nil {
			opts.Username = parsedURL.User.Username()
			if password, ok := parsedURL.User.Password(); ok {
				opts.Password = password
			}
		}

		// Extract database number from path
		if parsedURL.Path != "" && parsedURL.Path != "/" {
			dbStr := strings.TrimPrefix(parsedURL.Path, "/")
			db, err := strconv.Atoi(dbStr)
			if err != nil {
				return nil, fmt.Errorf("invalid Redis database %q: %w", dbStr, err)
			}
			opts.DB = db
		}

		return opts, nil
	}

	// For simple address format (host:port), return minimal options
	return &redis.Options{
		Addr: connectionString,
	}, nil
}

// NewRedisBackend creates a new Redis backend and checks the connection.
// Options["prefix"] overrides DefaultPrefix.
func NewRedisBackend[K comparable, V any](config types.BackendConfig) (*RedisBackend[K, V], error) {
	if config.ConnectionString == "" {
		return nil, errors.New("redis connection string is required")
	}

	opts, err := parseRedisURL(config.ConnectionString)
	if err != nil {
		return nil, err
	}

	// Override with explicit config values if provided
	if config.Username != "" {
		opts.Username = config.Username
	}
	if config.Password != "" {
		opts.Password = config.Password
	}
	if config.Database != 0 {
		opts.DB = config.Database
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := DefaultPrefix
	if p, ok := config.Options["prefix"].(string); ok && p != "" {
		prefix = p
	}

	return &RedisBackend[K, V]{
		client: client,
		prefix: prefix,
		ttl:    config.TTL,
	}, nil
}

// keyString converts a key to a Redis key string
func (b *RedisBackend[K, V]) keyString(key K) string {
	return fmt.Sprintf("%s%v", b.prefix, key)
}

// Set stores an entry as JSON, with the configured TTL if any
func (b *RedisBackend[K, V]) Set(ctx context.Context, key K, entry types.Entry[V]) error {
	if entry.StoredAt.IsZero() {
		entry.StoredAt = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if err := b.client.Set(ctx, b.keyString(key), data, b.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set entry in Redis: %w", err)
	}
	return nil
}

// Get retrieves an entry from Redis
func (b *RedisBackend[K, V]) Get(ctx context.Context, key K) (types.Entry[V], bool, error) {
	data, err := b.client.Get(ctx, b.keyString(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.Entry[V]{}, false, nil
	}
	if err != nil {
		return types.Entry[V]{}, false, fmt.Errorf("failed to get entry from Redis: %w", err)
	}

	var entry types.Entry[V]
	if err := json.Unmarshal(data, &entry); err != nil {
		return types.Entry[V]{}, false, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return entry, true, nil
}

// Delete removes an entry from Redis
func (b *RedisBackend[K, V]) Delete(ctx context.Context, key K) error {
	if err := b.client.Del(ctx, b.keyString(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete entry from Redis: %w", err)
	}
	return nil
}

// Contains checks if a key exists in Redis
func (b *RedisBackend[K, V]) Contains(ctx context.Context, key K) (bool, error) {
	exists, err := b.client.Exists(ctx, b.keyString(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key existence in Redis: %w", err)
	}
	return exists > 0, nil
}

// scanKeys returns every key under the backend prefix.
func (b *RedisBackend[K, V]) scanKeys(ctx context.Context) ([]string, error) {
	pattern := b.prefix + "*"
	var keys []string
	var cursor uint64

	for {
		result, nextCursor, err := b.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys from Redis: %w", err)
		}

		keys = append(keys, result...)
		cursor = nextCursor
		if cursor == 0 {
			return keys, nil
		}
	}
}

// Flush clears all entries with the configured prefix from Redis
func (b *RedisBackend[K, V]) Flush(ctx context.Context) error {
	keys, err := b.scanKeys(ctx)
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := b.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to flush Redis: %w", err)
		}
	}
	return nil
}

// Len returns the number of entries in Redis with our prefix
func (b *RedisBackend[K, V]) Len(ctx context.Context) (int, error) {
	keys, err := b.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Close closes the Redis connection
func (b *RedisBackend[K, V]) Close() error {
	return b.client.Close()
}

// SetAsync stores an entry asynchronously
func (b *RedisBackend[K, V]) SetAsync(ctx context.Context, key K, entry types.Entry[V]) <-chan error {
	return types.AsyncError(func() error { return b.Set(ctx, key, entry) })
}

// GetAsync retrieves an entry asynchronously
func (b *RedisBackend[K, V]) GetAsync(ctx context.Context, key K) <-chan types.AsyncGetResult[V] {
	return types.AsyncGet(func() (types.Entry[V], bool, error) { return b.Get(ctx, key) })
}

// DeleteAsync removes an entry asynchronously
func (b *RedisBackend[K, V]) DeleteAsync(ctx context.Context, key K) <-chan error {
	return types.AsyncError(func() error { return b.Delete(ctx, key) })
}
