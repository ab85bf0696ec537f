// Package cache provides the memoizing layer between the engine and the
// spectral kernel. It wraps a spectral.Provider with two bounded LRU
// maps, one for fingerprints keyed by number and one for coherence
// values keyed by canonical (a, b, n) triples. Wrapping never changes a
// result, only the cost of producing it.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// lru is a mutex-guarded least-recently-used map with a fixed entry
// capacity. Reads promote entries; inserts beyond capacity evict from
// the cold end.
type lru[K comparable, V any] struct {
	mu        sync.Mutex
	capacity  int
	items     map[K]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

func newLRU[K comparable, V any](capacity int) *lru[K, V] {
	return &lru[K, V]{
		capacity:  capacity,
		items:     make(map[K]*list.Element),
		evictList: list.New(),
	}
}

func (c *lru[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry[K, V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

func (c *lru[K, V]) set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		ent.Value.(*entry[K, V]).value = value
		return
	}

	element := c.evictList.PushFront(&entry[K, V]{key: key, value: value})
	c.items[key] = element

	for len(c.items) > c.capacity {
		cold := c.evictList.Back()
		if cold == nil {
			break
		}
		c.evictList.Remove(cold)
		delete(c.items, cold.Value.(*entry[K, V]).key)
	}
}

func (c *lru[K, V]) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*list.Element)
	c.evictList.Init()
}

func (c *lru[K, V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *lru[K, V]) stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
