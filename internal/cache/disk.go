package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const entrySuffix = ".json"

// DiskCache keeps source checks across runs, one JSON file per entry,
// sharded into subdirectories by the first two characters of the key hash
type DiskCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
	mu  sync.RWMutex
}

// NewDiskCache creates a disk cache rooted at dir
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{
		dir: dir,
		ttl: ttl,
		now: time.Now,
	}
}

type diskEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c *DiskCache) Get(key string) ([]byte, bool) {
	data, _, found := c.GetWithExpiration(key)
	return data, found
}

// GetWithExpiration returns the value and the time it stops being valid
func (c *DiskCache) GetWithExpiration(key string) ([]byte, time.Time, bool) {
	c.mu.RLock()
	entry, err := c.read(c.path(key))
	c.mu.RUnlock()
	if err != nil || entry.Key != key {
		return nil, time.Time{}, false
	}
	if !c.now().Before(entry.ExpiresAt) {
		_ = c.Delete(key)
		return nil, time.Time{}, false
	}
	return entry.Data, entry.ExpiresAt, true
}

func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	now := c.now()
	data, err := json.Marshal(diskEntry{
		Key:       key,
		Data:      value,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// Write then rename so readers never see a partial entry
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

func (c *DiskCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (c *DiskCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return os.RemoveAll(c.dir)
}

// Prune removes expired and unreadable entries and returns how many were
// removed. A missing cache directory is not an error.
func (c *DiskCache) Prune() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, entrySuffix) {
			return nil
		}
		entry, err := c.read(path)
		if err == nil && now.Before(entry.ExpiresAt) {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("prune cache: %w", err)
	}
	return removed, nil
}

func (c *DiskCache) read(path string) (*diskEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// path maps a key to <dir>/<shard>/<key>.json
func (c *DiskCache) path(key string) string {
	name := filepath.Base(key)
	shard := "00"
	if i := strings.LastIndex(name, "-"); i >= 0 && len(name)-i > 2 {
		shard = name[i+1 : i+3]
	}
	return filepath.Join(c.dir, shard, name+entrySuffix)
}
