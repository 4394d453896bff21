// Package cache stores source check results between runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key for a value in the given namespace
func CacheKey(namespace, raw string) string {
	hash := sha256.Sum256([]byte(raw))
	return "cartographer-" + namespace + "-v1-" + hex.EncodeToString(hash[:])
}

// GetJSON decodes a cached JSON value into v
func GetJSON(c Cache, key string, v interface{}) bool {
	data, found := c.Get(key)
	if !found {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SetJSON encodes v as JSON and stores it
func SetJSON(c Cache, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(key, data, ttl)
}
