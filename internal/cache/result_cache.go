// internal/cache/result_cache.go
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"entity-dedup-workers/internal/common/database"
	"entity-dedup-workers/internal/common/logger"
	"entity-dedup-workers/internal/common/metrics"
	"entity-dedup-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dedup:result:"

// ResultCache stores deduplication results keyed by a content hash of the
// input, so an identical entity list served twice skips the pipeline. The
// cache is best-effort: any Redis failure degrades to an uncached run.
type ResultCache struct {
	client *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewResultCache(client *database.RedisClient, ttl time.Duration, log logger.Logger) *ResultCache {
	return &ResultCache{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "result-cache"}),
	}
}

// Key derives the cache key from the entity type and the serialized input.
// Equal inputs in equal order map to the same key; order changes the hash,
// which is acceptable since results are order-sensitive too.
func Key(entityType string, input interface{}) (string, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to serialize cache input: %w", err)
	}
	sum := sha256.Sum256(payload)
	return keyPrefix + entityType + ":" + hex.EncodeToString(sum[:]), nil
}

// Get returns the cached result for key, or ok=false on a miss. Transient
// Redis errors are logged and reported as misses.
func (c *ResultCache) Get(ctx context.Context, key string) (*models.DeduplicationResult, bool) {
	raw, err := c.client.Get(ctx, key)
	if err == redis.Nil {
		metrics.ResultCacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).Warn("cache lookup failed, treating as miss", map[string]interface{}{"key": key})
		metrics.ResultCacheHits.WithLabelValues("error").Inc()
		return nil, false
	}

	var result models.DeduplicationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.logger.WithError(err).Warn("cached result corrupt, evicting", map[string]interface{}{"key": key})
		_ = c.client.Del(ctx, key)
		metrics.ResultCacheHits.WithLabelValues("error").Inc()
		return nil, false
	}

	metrics.ResultCacheHits.WithLabelValues("hit").Inc()
	result.CacheHit = true
	return &result, true
}

// Set stores a result under key with the configured TTL. Failures are logged
// and swallowed so caching never fails the pipeline.
func (c *ResultCache) Set(ctx context.Context, key string, result *models.DeduplicationResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		c.logger.WithError(err).Warn("failed to serialize result for cache", map[string]interface{}{"key": key})
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl); err != nil {
		c.logger.WithError(err).Warn("failed to store result in cache", map[string]interface{}{"key": key})
	}
}

// Invalidate removes a cached result, used after review decisions change what
// a rerun should produce.
func (c *ResultCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key)
}
