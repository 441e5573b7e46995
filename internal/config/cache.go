package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache memoizes decoded files by path. An entry is dropped as soon as the
// file's modification time or size changes. Instances are independent, so
// every component or test can own one.
type Cache struct {
	items *gocache.Cache
}

type cacheEntry struct {
	value   any
	modTime time.Time
	size    int64
}

// NewCache creates a Cache whose entries expire after ttl. A ttl <= 0 keeps
// entries until their file changes.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return &Cache{items: gocache.New(gocache.NoExpiration, 0)}
	}
	return &Cache{items: gocache.New(ttl, 2*ttl)}
}

func cacheKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Get returns the value cached for path if the file is unchanged.
func (c *Cache) Get(path string) (any, bool) {
	key := cacheKey(path)
	raw, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	e := raw.(cacheEntry)
	info, err := os.Stat(key)
	if err != nil || !info.ModTime().Equal(e.modTime) || info.Size() != e.size {
		c.items.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Put caches v for path, stamped with the file's current state.
func (c *Cache) Put(path string, v any) error {
	key := cacheKey(path)
	info, err := os.Stat(key)
	if err != nil {
		return err
	}
	c.items.Set(key, cacheEntry{value: v, modTime: info.ModTime(), size: info.Size()}, gocache.DefaultExpiration)
	return nil
}

// Load returns the cached value for path, reading and decoding the file on a miss.
func (c *Cache) Load(path string, decode func([]byte) (any, error)) (any, error) {
	if v, ok := c.Get(path); ok {
		return v, nil
	}
	key := cacheKey(path)
	info, err := os.Stat(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(key)
	if err != nil {
		return nil, err
	}
	v, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	c.items.Set(key, cacheEntry{value: v, modTime: info.ModTime(), size: info.Size()}, gocache.DefaultExpiration)
	return v, nil
}

// Invalidate drops path from the cache.
func (c *Cache) Invalidate(path string) {
	c.items.Delete(cacheKey(path))
}

// Clear drops everything.
func (c *Cache) Clear() {
	c.items.Flush()
}

func (c *Cache) Len() int {
	return c.items.ItemCount()
}

// LoadJSON loads path through c and decodes it as JSON into a T.
func LoadJSON[T any](c *Cache, path string) (T, error) {
	v, err := c.Load(path, func(data []byte) (any, error) {
		var out T
		err := json.Unmarshal(data, &out)
		return out, err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s is cached as %T, not %T", path, v, zero)
	}
	return out, nil
}
