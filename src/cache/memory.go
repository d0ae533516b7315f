package cache

import (
	"fmt"
	"sync"
	"time"

	"deviation-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// MemoryCache is the default series cache: a keyed in-process map with TTL
// expiry and LRU eviction above a max entry count. Reads take a shared lock,
// so concurrent sessions can hit the cache freely; writes are idempotent
// overwrites.
// -----------------------------------------------------------------------------

type MemoryCache struct {
	ttl        time.Duration
	maxEntries int
	entries    map[string]*memoryEntry
	mu         sync.RWMutex
	now        func() time.Time // injectable for tests
}

type memoryEntry struct {
	bars      []models.MPriceBar
	expiresAt time.Time
	lastUsed  time.Time
}

// -----------------------------------------------------------------------------

func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 64
	}
	return &MemoryCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]*memoryEntry),
		now:        time.Now,
	}
}

// -----------------------------------------------------------------------------

// Key builds the cache key for a symbol and date range.
func Key(symbol, start, end string) string {
	return fmt.Sprintf("%s:%s:%s", symbol, start, end)
}

// -----------------------------------------------------------------------------

func (c *MemoryCache) Get(key string) ([]models.MPriceBar, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	now := c.now()
	if now.After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another session may have refreshed it.
		if cur, ok := c.entries[key]; ok && now.After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	entry.lastUsed = now
	c.mu.Unlock()
	return entry.bars, true
}

// -----------------------------------------------------------------------------

func (c *MemoryCache) Set(key string, bars []models.MPriceBar) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &memoryEntry{
		bars:      bars,
		expiresAt: now.Add(c.ttl),
		lastUsed:  now,
	}

	// LRU eviction once over capacity. Entry counts are small (one per
	// symbol/range), so a linear scan is fine.
	for len(c.entries) > c.maxEntries {
		var oldestKey string
		var oldest time.Time
		first := true
		for k, e := range c.entries {
			if first || e.lastUsed.Before(oldest) {
				oldestKey, oldest = k, e.lastUsed
				first = false
			}
		}
		delete(c.entries, oldestKey)
	}
}

// -----------------------------------------------------------------------------

func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// -----------------------------------------------------------------------------

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
