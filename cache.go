package gopack

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ModuleCache stores built modules across builds. Keys are content digests
// computed by the module builder, so a hit is always safe to reuse.
//
// Implementations must be safe for concurrent use. Errors are logged by the
// builder and treated as misses.
type ModuleCache interface {
	Get(ctx context.Context, key string) (*Module, bool, error)
	Put(ctx context.Context, key string, m *Module) error
}

var _ ModuleCache = (*LRUCache)(nil)

// LRUCache is a bounded in-memory ModuleCache evicting the least recently
// used module.
type LRUCache struct {
	cache *lru.Cache[string, *Module]
}

// NewLRUCache creates a cache holding at most size modules.
func NewLRUCache(size int) (*LRUCache, error) {
	c, err := lru.New[string, *Module](size)
	if err != nil {
		return nil, fmt.Errorf("%w: cache size %d: %v", ErrInvalidOption, size, err)
	}
	return &LRUCache{cache: c}, nil
}

// Get returns the cached module for key.
func (c *LRUCache) Get(_ context.Context, key string) (*Module, bool, error) {
	m, ok := c.cache.Get(key)
	return m, ok, nil
}

// Put stores m under key.
func (c *LRUCache) Put(_ context.Context, key string, m *Module) error {
	c.cache.Add(key, m)
	return nil
}

// Len returns the number of cached modules.
func (c *LRUCache) Len() int {
	return c.cache.Len()
}

// Purge removes every cached module.
func (c *LRUCache) Purge() {
	c.cache.Purge()
}
