package cache

import (
	"time"
)

// LayeredCache reads through memory to disk and writes to both
type LayeredCache struct {
	memory *MemoryCache
	disk   *DiskCache
}

// NewLayeredCache creates a memory cache in front of a disk cache at diskDir
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	val, expiresAt, found := c.disk.GetWithExpiration(key)
	if !found {
		return nil, false
	}
	// Promote without outliving the disk entry
	if remaining := time.Until(expiresAt); remaining > 0 {
		_ = c.memory.Set(key, val, remaining)
	}
	return val, true
}

func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}

func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}

// Prune drops expired entries from disk
func (c *LayeredCache) Prune() (int, error) {
	return c.disk.Prune()
}
