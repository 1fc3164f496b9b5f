package gopack

import (
	"context"
	"errors"
	"sync"
)

// Compile-time interface compliance checks
var _ ModuleCache = NoopCache{}
var _ ModuleCache = (*MemoryCache)(nil)
var _ ModuleCache = (*FailingCache)(nil)

// NoopCache is a cache that discards all writes and always returns cache misses.
// It is the default when no cache is configured.
type NoopCache struct{}

// Get always returns a cache miss.
func (NoopCache) Get(ctx context.Context, key string) (*Module, bool, error) {
	return nil, false, nil
}

// Put discards the module and returns success.
func (NoopCache) Put(ctx context.Context, key string, m *Module) error {
	return nil
}

// MemoryCache is a thread-safe unbounded cache for testing. It counts hits
// so tests can observe reuse.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]*Module
	hits  int
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]*Module),
	}
}

// Get retrieves a cached module.
func (c *MemoryCache) Get(ctx context.Context, key string) (*Module, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.items[key]
	if ok {
		c.hits++
	}
	return m, ok, nil
}

// Put stores a module in the cache.
func (c *MemoryCache) Put(ctx context.Context, key string, m *Module) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = m
	return nil
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*Module)
	c.hits = 0
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Hits returns how many lookups were served from the cache.
func (c *MemoryCache) Hits() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits
}

// FailingCache is a cache that always returns errors.
// Useful for testing error handling paths.
type FailingCache struct {
	GetErr error
	PutErr error
}

// NewFailingCache creates a cache that fails with the given errors.
func NewFailingCache(getErr, putErr error) *FailingCache {
	if getErr == nil {
		getErr = errors.New("cache get failed")
	}
	if putErr == nil {
		putErr = errors.New("cache put failed")
	}
	return &FailingCache{GetErr: getErr, PutErr: putErr}
}

// Get always returns an error.
func (c *FailingCache) Get(ctx context.Context, key string) (*Module, bool, error) {
	return nil, false, c.GetErr
}

// Put always returns an error.
func (c *FailingCache) Put(ctx context.Context, key string, m *Module) error {
	return c.PutErr
}
