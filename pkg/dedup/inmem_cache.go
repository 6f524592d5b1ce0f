package dedup

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// InMemCache implements Cache using an in-memory map with per-entry expiry.
// Suitable for single-process deployments and tests; multi-process
// deployments should use RedisCache so all instances share one window.
type InMemCache struct {
	entries map[string]time.Time // key -> expiry instant
	mu      sync.Mutex
	now     func() time.Time
}

// NewInMemCache creates a new in-memory dedup cache.
func NewInMemCache() *InMemCache {
	return &InMemCache{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// NewInMemCacheWithClock creates an in-memory dedup cache with a custom
// clock, for tests that need to step through TTL expiry.
func NewInMemCacheWithClock(now func() time.Time) *InMemCache {
	return &InMemCache{
		entries: make(map[string]time.Time),
		now:     now,
	}
}

// SeenRecently reports whether key was marked and has not yet expired.
func (c *InMemCache) SeenRecently(ctx context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiry, ok := c.entries[key]
	if !ok {
		return false
	}
	if c.now().After(expiry) {
		delete(c.entries, key)
		return false
	}
	return true
}

// MarkSeen records key until now+ttl, sweeping any expired entries while
// it holds the lock.
func (c *InMemCache) MarkSeen(ctx context.Context, key string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, expiry := range c.entries {
		if now.After(expiry) {
			delete(c.entries, k)
		}
	}

	c.entries[key] = now.Add(ttl)
	slog.Debug("Dedup entry recorded", "key", key, "ttl", ttl)
}
