package tryon

import (
	"sync"
	"time"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
)

// DefaultCacheTTL bounds how long a generated composite may be served without
// re-invoking the provider.
const DefaultCacheTTL = 24 * time.Hour

// Cache is an in-memory content-addressed store of finished generations.
// Entries expire after the TTL either lazily on read or proactively through
// SweepExpired. The cache is safe for concurrent use; lookups return copies so
// entries are never shared by reference with callers.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]domain.CacheEntry
	now     func() time.Time
}

// NewCache builds an empty cache. ttl <= 0 selects DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]domain.CacheEntry),
		now:     time.Now,
	}
}

// Get returns the entry for fingerprint, or false on a miss. An entry older
// than the TTL behaves as a miss and is evicted on the spot.
func (c *Cache) Get(fingerprint string) (domain.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[fingerprint]
	if !ok {
		return domain.CacheEntry{}, false
	}
	if c.now().Sub(entry.CreatedAt) > c.ttl {
		delete(c.entries, fingerprint)
		return domain.CacheEntry{}, false
	}
	return entry, true
}

// Put stores entry under fingerprint, stamping CreatedAt when unset.
func (c *Cache) Put(fingerprint string, entry domain.CacheEntry) {
	entry.Fingerprint = fingerprint
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = c.now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = entry
}

// SweepExpired removes every entry past the TTL and reports how many were
// evicted. Intended to be driven by a periodic ticker.
func (c *Cache) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-c.ttl)
	evicted := 0
	for key, entry := range c.entries {
		if entry.CreatedAt.Before(cutoff) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]domain.CacheEntry)
}

// Len reports the number of resident entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
