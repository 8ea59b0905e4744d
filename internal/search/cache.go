package search

import "sync"

// DefaultCacheCapacity bounds the number of memoized searches.
const DefaultCacheCapacity = 10

// Cache memoizes search results keyed by Key. Eviction is FIFO by insertion
// order, not LRU: when a new key pushes the cache past capacity the
// oldest-inserted entry is dropped, even if it was read moments ago.
// Lookups never affect eviction order, and overwriting an existing key
// keeps its original insertion position. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string][]Result
	order    []string
}

// NewCache creates a cache bounded to the given capacity. Non-positive
// capacities fall back to DefaultCacheCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string][]Result),
	}
}

// Lookup returns the memoized results for a key, or a miss. A hit does not
// refresh the entry's position in eviction order.
func (c *Cache) Lookup(key string) ([]Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	// Copy so callers can re-sort without corrupting the entry.
	out := make([]Result, len(stored))
	copy(out, stored)
	return out, true
}

// Store memoizes results under a key. Storing an existing key overwrites
// the value in place; a new key beyond capacity evicts the single
// oldest-inserted entry.
func (c *Cache) Store(key string, results []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]Result, len(results))
	copy(stored, results)

	if _, exists := c.entries[key]; exists {
		c.entries[key] = stored
		return
	}

	c.entries[key] = stored
	c.order = append(c.order, key)
	if len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Clear drops every entry. Called when prompts are mutated so stale result
// lists are not replayed.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string][]Result)
	c.order = nil
}

// Len returns the number of memoized entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
