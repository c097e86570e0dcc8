// Package cache provides a Redis-backed result cache for analysis runs.
// Identical dataset bytes under an identical configuration always produce
// the same result, so the cache key is the SHA-256 of the raw dataset plus
// the configuration fingerprint. The cache degrades gracefully: any Redis
// failure is logged and treated as a miss.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mullbar/fraudgraph/internal/service/analysis"
)

const keyPrefix = "fraudgraph:result:"

// ResultCache stores serialized analysis results keyed by dataset content.
type ResultCache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewResultCache creates the cache. A nil client yields a disabled cache
// whose Get always misses and whose Set is a no-op.
func NewResultCache(client *redis.Client, logger *slog.Logger, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, logger: logger, ttl: ttl}
}

// Key derives the cache key for a dataset under a configuration.
func Key(dataset []byte, fingerprint string) string {
	h := sha256.New()
	h.Write(dataset)
	h.Write([]byte("|"))
	h.Write([]byte(fingerprint))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for the key, or nil on a miss.
func (c *ResultCache) Get(ctx context.Context, key string) *analysis.Result {
	if c.client == nil {
		return nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "result cache read failed", "error", err)
		}
		return nil
	}
	var result analysis.Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.WarnContext(ctx, "result cache entry corrupt, evicting", "key", key, "error", err)
		c.client.Del(ctx, key)
		return nil
	}
	return &result
}

// Set stores the result under the key with the configured TTL.
func (c *ResultCache) Set(ctx context.Context, key string, result *analysis.Result) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.WarnContext(ctx, "result cache marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "result cache write failed", "error", err)
	}
}
