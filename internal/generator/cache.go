// internal/generator/cache.go
package generator

import (
	"sync"
	"time"
)

const (
	DefaultCacheTTL       = 5 * time.Minute
	DefaultSweepThreshold = 50

	DefaultRenderTimeout = 30 * time.Second
)

type cacheEntry struct {
	result    *Result
	createdAt time.Time
}

// Cache memoizes generation results by fingerprint. Entries expire ttl after
// insertion and are dropped lazily: on lookup, or by a sweep of expired
// entries whenever the cache grows past the sweep threshold. The sweep never
// evicts live entries, so the cache may stay above the threshold until they
// expire.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]cacheEntry
	ttl       time.Duration
	threshold int
	now       func() time.Time
}

// NewCache creates a cache. Non-positive arguments select the defaults.
func NewCache(ttl time.Duration, sweepThreshold int) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if sweepThreshold <= 0 {
		sweepThreshold = DefaultSweepThreshold
	}
	return &Cache{
		entries:   make(map[string]cacheEntry),
		ttl:       ttl,
		threshold: sweepThreshold,
		now:       time.Now,
	}
}

// Get returns a copy of the live result stored under fingerprint.
func (c *Cache) Get(fingerprint string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[fingerprint]
	if !ok {
		cacheMissesTotal.Inc()
		return nil, false
	}
	if c.expired(entry) {
		delete(c.entries, fingerprint)
		cacheMissesTotal.Inc()
		return nil, false
	}
	cacheHitsTotal.Inc()
	r := *entry.result
	return &r, true
}

// peek is Get without touching the hit and miss counters.
func (c *Cache) peek(fingerprint string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[fingerprint]
	if !ok || c.expired(entry) {
		return nil, false
	}
	r := *entry.result
	return &r, true
}

// Set stores result under fingerprint, replacing any previous entry.
func (c *Cache) Set(fingerprint string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := *result
	c.entries[fingerprint] = cacheEntry{result: &r, createdAt: c.now()}
	if len(c.entries) > c.threshold {
		c.sweep()
	}
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func (c *Cache) sweep() {
	for fp, entry := range c.entries {
		if c.expired(entry) {
			delete(c.entries, fp)
		}
	}
}

func (c *Cache) expired(entry cacheEntry) bool {
	return c.now().Sub(entry.createdAt) >= c.ttl
}
