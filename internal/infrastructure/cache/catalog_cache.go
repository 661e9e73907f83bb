package cache

import (
	"sync"
	"time"

	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
)

// CacheEntry represents a cached currency name with its insertion time
type CacheEntry struct {
	Name      string
	Timestamp time.Time
}

// CatalogCache provides a thread-safe in-memory cache for the currency name catalog
type CatalogCache struct {
	cache      map[string]CacheEntry
	expiration time.Duration
	now        func() time.Time
	mutex      sync.RWMutex
}

// NewCatalogCache creates a new catalog cache
func NewCatalogCache() *CatalogCache {
	return &CatalogCache{
		cache:      make(map[string]CacheEntry),
		expiration: 24 * time.Hour, // Default 24h expiration
		now:        time.Now,
	}
}

// Get returns the name for a code if available and not expired
func (c *CatalogCache) Get(code string) (string, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.cache[code]
	if !exists || c.expired(entry) {
		return "", false
	}

	return entry.Name, true
}

// Put stores a whole catalog, replacing entries with the same code
func (c *CatalogCache) Put(catalog entity.Catalog) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	for code, name := range catalog {
		c.cache[code] = CacheEntry{
			Name:      name,
			Timestamp: now,
		}
	}
}

// Empty reports whether the cache holds no live entry
func (c *CatalogCache) Empty() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	for _, entry := range c.cache {
		if !c.expired(entry) {
			return false
		}
	}
	return true
}

// Clear clears all entries from the cache
func (c *CatalogCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string]CacheEntry)
}

// SetExpiration sets the cache expiration duration
func (c *CatalogCache) SetExpiration(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.expiration = duration
}

// Size returns the number of items in the cache, expired ones included
func (c *CatalogCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CleanExpired removes expired entries from the cache
func (c *CatalogCache) CleanExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	count := 0
	for code, entry := range c.cache {
		if c.expired(entry) {
			delete(c.cache, code)
			count++
		}
	}

	return count
}

// expired must be called with the mutex held
func (c *CatalogCache) expired(entry CacheEntry) bool {
	return c.expiration > 0 && c.now().Sub(entry.Timestamp) > c.expiration
}
