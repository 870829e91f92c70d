package cache

import (
	"sync"
	"time"
)

// Cache is a concurrency-safe key-value store with per-item expiration.
type Cache struct {
	mu    sync.RWMutex
	items map[string]item
}

type item struct {
	value      interface{}
	expiration int64
}

const noExpiration time.Duration = 0

// New creates a new empty cache.
func New() *Cache {
	return &Cache{
		items: make(map[string]item),
	}
}

// Set adds an item to the cache with a specified key, value, and expiration time.
// A zero expiration keeps the item until it is deleted or overwritten.
func (c *Cache) Set(key string, value interface{}, expiration time.Duration) {
	var expirationTime int64
	if expiration > noExpiration {
		expirationTime = time.Now().Add(expiration).UnixNano()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		value:      value,
		expiration: expirationTime,
	}
}

// Get retrieves the value associated with a key from the cache. Returns false if the key does not exist
// or has expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[key]
	if !found {
		return nil, false
	}

	if it.expiration > 0 && time.Now().UnixNano() > it.expiration {
		return nil, false
	}

	return it.value, true
}

// Delete removes an item from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// DeleteExpired removes all expired items.
func (c *Cache) DeleteExpired() {
	now := time.Now().UnixNano()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, it := range c.items {
		if it.expiration > 0 && now > it.expiration {
			delete(c.items, key)
		}
	}
}

// Len returns the number of items, expired or not, held by the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}
