package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache holds recent source checks for the life of the process
type MemoryCache struct {
	items *gocache.Cache
	ttl   time.Duration
}

// NewMemoryCache creates a memory cache whose entries live for ttl unless
// Set is given a shorter lifetime
func NewMemoryCache(ttl time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		items: gocache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.items.Get(key)
	if !found {
		return nil, false
	}
	data, ok := val.([]byte)
	return data, ok
}

// Set stores value for ttl, capped at the cache lifetime. A zero ttl uses
// the cache lifetime.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 || (c.ttl > 0 && ttl > c.ttl) {
		ttl = c.ttl
	}
	c.items.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.items.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.items.Flush()
	return nil
}

// Len reports the number of live entries
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}
