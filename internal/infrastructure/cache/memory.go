package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ecolens/backend/internal/domain"
)

// cacheItem represents a single resolved product with expiration
type cacheItem struct {
	Product    domain.CanonicalProduct
	Expiration time.Time
}

// MemoryCache is a thread-safe in-memory cache for resolved products
// with TTL support.
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		data: make(map[string]cacheItem),
	}

	// Remove expired entries every 10 minutes
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a resolved product from the cache. The returned record
// is a copy; mutating it does not affect the cached value.
func (c *MemoryCache) Get(ctx context.Context, key string) (*domain.CanonicalProduct, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.Expiration) {
		return nil, domain.ErrCacheMiss
	}

	product := copyProduct(item.Product)
	return &product, nil
}

// Set stores a resolved product in the cache with TTL
func (c *MemoryCache) Set(ctx context.Context, key string, product *domain.CanonicalProduct, ttl time.Duration) error {
	if product == nil {
		return domain.ErrInvalidRequest
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheItem{
		Product:    copyProduct(*product),
		Expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return false, nil
	}

	if time.Now().After(item.Expiration) {
		return false, nil
	}

	return true, nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, item := range c.data {
			if now.After(item.Expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem)
}

// copyProduct deep-copies the slice fields so cached records cannot be
// mutated through returned pointers.
func copyProduct(p domain.CanonicalProduct) domain.CanonicalProduct {
	out := p
	if p.Certifications != nil {
		out.Certifications = append([]string(nil), p.Certifications...)
	}
	if p.Alternatives != nil {
		out.Alternatives = append([]domain.Alternative(nil), p.Alternatives...)
	}
	return out
}
