package revocation

import (
	"context"
	"sync"
	"time"
)

type cacheItem struct {
	value    string
	deadline time.Time
}

// InMemoryCache implements the Cache interface with an in-process map
type InMemoryCache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
}

// NewInMemoryCache creates a new in-memory cache
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		items: make(map[string]cacheItem),
	}
}

// Get returns the cached value for key, reporting whether it was present
func (c *InMemoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return "", false, nil
	}
	if time.Now().After(item.deadline) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return "", false, nil
	}
	return item.value, true, nil
}

// SetWithTTL stores value under key, expiring after ttl
func (c *InMemoryCache) SetWithTTL(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheItem{
		value:    value,
		deadline: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes key from the cache
func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Len returns the number of live entries. Test helper.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}
