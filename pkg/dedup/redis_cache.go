package dedup

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "newdevice:dedup:"

// RedisCache implements Cache on a Redis instance so that every process in
// a multi-instance deployment shares one dedup window. Loss of the Redis
// backend degrades to "not seen": the engine would rather send a duplicate
// notification than miss one.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache creates a dedup cache on the given Redis client.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// SeenRecently reports whether key exists in Redis. Any backend error is
// logged and reported as a miss.
func (c *RedisCache) SeenRecently(ctx context.Context, key string) bool {
	n, err := c.client.Exists(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		slog.Warn("Dedup cache unavailable, treating as not seen", "err", err)
		return false
	}
	return n > 0
}

// MarkSeen records key with ttl. Failures are logged and dropped.
func (c *RedisCache) MarkSeen(ctx context.Context, key string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	// SetNX keeps the timestamp of the first sighting; a later sighting
	// inside the window must not extend it.
	ok, err := c.client.SetNX(ctx, redisKeyPrefix+key, time.Now().UTC().Unix(), ttl).Result()
	if err != nil {
		slog.Warn("Failed to record dedup entry", "err", err)
		return
	}
	if !ok {
		slog.Debug("Dedup entry already present", "key", key)
	}
}
