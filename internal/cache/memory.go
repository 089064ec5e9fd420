package cache

import (
	"context"
	"sync"

	"github.com/peoplebench/people-bench/internal/searcher"
)

// MemoryCache is an LRU cache of candidate lists.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]searcher.Candidate
	maxSize int
	order   []string // LRU order, oldest first
}

// NewMemoryCache creates an in-memory cache bounded to maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &MemoryCache{
		entries: make(map[string][]searcher.Candidate),
		maxSize: maxSize,
		order:   make([]string, 0, maxSize),
	}
}

// Get retrieves cached candidates.
func (c *MemoryCache) Get(ctx context.Context, searcherName, query string, numResults int) ([]searcher.Candidate, bool) {
	k := key(searcherName, query, numResults)

	c.mu.RLock()
	candidates, ok := c.entries[k]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	c.mu.Lock()
	c.moveToEnd(k)
	c.mu.Unlock()

	// Copy so callers cannot mutate the cached slice.
	out := make([]searcher.Candidate, len(candidates))
	copy(out, candidates)
	return out, true
}

// Set stores candidates for a search call.
func (c *MemoryCache) Set(ctx context.Context, searcherName, query string, numResults int, candidates []searcher.Candidate) {
	k := key(searcherName, query, numResults)

	stored := make([]searcher.Candidate, len(candidates))
	copy(stored, candidates)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[k]; exists {
		c.entries[k] = stored
		c.moveToEnd(k)
		return
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[k] = stored
	c.order = append(c.order, k)
}

// moveToEnd moves a key to the end of the LRU order (must hold lock).
func (c *MemoryCache) moveToEnd(k string) {
	for i, existing := range c.order {
		if existing == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, k)
			return
		}
	}
}

// Size returns the current entry count.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close implements Cache.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]searcher.Candidate)
	c.order = c.order[:0]
	return nil
}
