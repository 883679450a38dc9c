// Package cache keeps rendered read responses in Redis. A nil *Cache is a
// valid no-op cache.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPrefix = "property:"
	scanCount     = 100
)

type Cache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func New(client redis.UniversalClient, prefix string, ttl time.Duration) *Cache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

// Key hashes a route and its query parameters. Parameter order does not
// change the key.
func (c *Cache) Key(route string, query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(route)
	sb.WriteString(":")
	for _, key := range keys {
		values := append([]string(nil), query[key]...)
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	rawKey := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(rawKey))
	return c.prefixOrDefault() + hex.EncodeToString(sum[:])
}

func (c *Cache) prefixOrDefault() string {
	if c == nil {
		return DefaultPrefix
	}
	return c.prefix
}

// Get returns the cached body and whether it was found. Redis errors are
// logged and reported as a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		log.Debug().Str("key", key).Msg("Cache hit")
		return data, true
	}
	if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("key", key).Msg("Redis GET error")
	}
	return nil, false
}

func (c *Cache) Set(ctx context.Context, key string, body []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, key, body, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache response")
	}
}

// Invalidate deletes every key under the cache prefix and returns how many
// were removed.
func (c *Cache) Invalidate(ctx context.Context) (int, error) {
	if c == nil {
		return 0, nil
	}
	pattern := c.prefix + "*"

	var (
		keysToDelete []string
		cursor       uint64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return 0, err
		}
		keysToDelete = append(keysToDelete, keys...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(keysToDelete) == 0 {
		return 0, nil
	}

	pipe := c.client.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	log.Debug().Int("keys", len(keysToDelete)).Str("pattern", pattern).Msg("Property cache invalidated")
	return len(keysToDelete), nil
}

// InvalidateAsync runs Invalidate in the background with its own deadline.
func (c *Cache) InvalidateAsync() {
	if c == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := c.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("Property cache invalidation failed")
		}
	}()
}
