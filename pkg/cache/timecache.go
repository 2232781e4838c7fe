package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// TimeCache is a TTL cache backed by a plain map with absolute expiry
// instants. Eviction is lazy: an expired entry is removed on the next Get
// that touches it, or by an explicit Cleanup sweep. There is no background
// timer.
type TimeCache struct {
	mu      sync.Mutex
	entries map[string]timeEntry
	now     func() time.Time
	logger  *zap.Logger
}

type timeEntry struct {
	value     interface{}
	expiresAt time.Time
}

// NewTimeCache creates a TimeCache. The clock function is used for all
// expiry decisions; pass nil to use time.Now.
func NewTimeCache(clock func() time.Time, logger *zap.Logger) *TimeCache {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TimeCache{
		entries: make(map[string]timeEntry),
		now:     clock,
		logger:  logger,
	}
}

// Get retrieves a value. An entry past its expiry is evicted and reported
// as absent.
func (c *TimeCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		CacheMissesTotal.Inc()
		return nil, false
	}

	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		CacheMissesTotal.Inc()
		c.logger.Debug("cache-expired", zap.String("key", key))
		return nil, false
	}

	CacheHitsTotal.Inc()
	return entry.value, true
}

// Set stores a value with expiry = now + ttl. A non-positive TTL is a no-op.
func (c *TimeCache) Set(key string, value interface{}, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = timeEntry{
		value:    value,
		expiresAt: c.now().Add(ttl),
	}
	CacheSetsTotal.Inc()
	c.logger.Debug("cache-set",
		zap.String("key", key),
		zap.Duration("ttl", ttl))

	return true
}

// Delete removes a value from the cache.
func (c *TimeCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	CacheDeletesTotal.Inc()
}

// Cleanup sweeps all expired entries.
func (c *TimeCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Clear removes all values from the cache.
func (c *TimeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]timeEntry)
	c.logger.Info("cache-cleared")
}

// Close releases resources. TimeCache holds none; it exists to satisfy Cache.
func (c *TimeCache) Close() {
	c.Clear()
}

// Len returns the number of live entries, counting entries that have
// expired but not yet been evicted.
func (c *TimeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
