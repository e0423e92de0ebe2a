// Package cache provides the bounded key/value table used for winner,
// game-over, evaluation and move-list memoization and as the search's
// transposition table.
package cache

// DefaultCapacity is used when a cache is created with capacity 0.
const DefaultCapacity = 1_000_000

// Cache is a map with FIFO eviction. Once Len reaches the capacity, inserting
// a new key drops the oldest inserted one. Updating an existing key keeps its
// position in the queue.
//
// A Cache is not safe for concurrent use.
type Cache[K comparable, V any] struct {
	capacity int
	entries  map[K]V
	// ring of insertion order; head is the oldest key
	order []K
	head  int
}

func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[K, V]{
		capacity: capacity,
		entries:  make(map[K]V),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache[K, V]) Has(key K) bool {
	_, ok := c.entries[key]
	return ok
}

func (c *Cache[K, V]) Put(key K, value V) {
	if _, ok := c.entries[key]; ok {
		c.entries[key] = value
		return
	}
	if len(c.order) < c.capacity {
		c.order = append(c.order, key)
	} else {
		delete(c.entries, c.order[c.head])
		c.order[c.head] = key
		c.head++
		if c.head == len(c.order) {
			c.head = 0
		}
	}
	c.entries[key] = value
}

func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}
