package persistence

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

const statsCacheKey = "helpdesk:stats:dashboard"

// StatsCache stores the serialized dashboard aggregation in Redis for a short
// TTL. Every failure degrades to a cache miss; the store remains the source
// of truth.
type StatsCache struct {
	redis  *Redis
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsCache constructs the cache. A zero TTL disables caching entirely.
func NewStatsCache(redis *Redis, ttl time.Duration, logger *zap.Logger) *StatsCache {
	return &StatsCache{redis: redis, ttl: ttl, logger: logger}
}

// Get unmarshals cached stats into dest and reports whether a value was found.
func (c *StatsCache) Get(ctx context.Context, dest any) bool {
	if !c.enabled() {
		return false
	}
	raw, err := c.redis.Client.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("corrupt stats cache entry", zap.Error(err))
		return false
	}
	return true
}

// Set stores the stats value under the cache TTL.
func (c *StatsCache) Set(ctx context.Context, value any) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Client.Set(ctx, statsCacheKey, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("stats cache set failed", zap.Error(err))
	}
}

// Invalidate drops the cached stats entry.
func (c *StatsCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.redis.Client.Del(ctx, statsCacheKey).Err(); err != nil {
		c.logger.Debug("stats cache invalidate failed", zap.Error(err))
	}
}

func (c *StatsCache) enabled() bool {
	return c != nil && c.redis != nil && c.redis.Client != nil && c.ttl > 0
}
