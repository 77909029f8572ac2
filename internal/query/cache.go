package query

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// Cache keeps recently parsed queries keyed by their source text.
type Cache struct {
	mu    sync.Mutex
	items *lru.Cache
}

// NewCache creates a cache holding at most maxSize queries. A non-positive
// size disables caching.
func NewCache(maxSize int) *Cache {
	c := &Cache{}
	if maxSize > 0 {
		c.items = lru.New(maxSize)
	}
	return c
}

// Parse returns the cached compilation of src, parsing it on a miss.
// Failed parses are not cached.
func (c *Cache) Parse(src string) (*Query, error) {
	if c == nil || c.items == nil {
		return Parse(src)
	}
	c.mu.Lock()
	v, ok := c.items.Get(src)
	c.mu.Unlock()
	if ok {
		return v.(*Query), nil
	}

	q, err := Parse(src)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.items.Add(src, q)
	c.mu.Unlock()
	return q, nil
}

func (c *Cache) Len() int {
	if c == nil || c.items == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Len()
}

// Clear drops every cached query.
func (c *Cache) Clear() {
	if c == nil || c.items == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Clear()
}
