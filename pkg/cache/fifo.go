// Package cache provides a bounded FIFO container used to hold entities of a
// single kind.
//
// The container maintains a map for O(1) lookup and a container/list holding
// insertion order for eviction. When a capacity limit is configured and an
// insert would exceed it, the oldest inserted entry is evicted first. Updating
// an existing key replaces its value but keeps its place in the eviction
// order, and lookups never change the order either.
//
// Concurrency: all operations are safe for concurrent access.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// FIFO is a generic bounded container with insertion-order eviction.
type FIFO[V any] struct {
	mu      sync.RWMutex
	data    map[string]*entry[V]
	order   *list.List
	limit   int
	onEvict func(key string, value V)

	// Metrics
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type entry[V any] struct {
	key   string
	value V
	elem  *list.Element
}

// New creates a FIFO with the given capacity limit.
// limit <= 0 means unbounded size (no evictions).
func New[V any](limit int) *FIFO[V] {
	return NewWithEvict[V](limit, nil)
}

// NewWithEvict creates a FIFO that invokes onEvict for every entry removed by
// capacity pressure. The callback runs after the container's lock is released,
// so it may safely call back into the container.
func NewWithEvict[V any](limit int, onEvict func(key string, value V)) *FIFO[V] {
	return &FIFO[V]{
		data:    make(map[string]*entry[V]),
		order:   list.New(),
		limit:   limit,
		onEvict: onEvict,
	}
}

// Get returns the value for key if present. Lookups do not affect eviction
// order.
func (c *FIFO[V]) Get(key string) (V, bool) {
	var zero V
	if key == "" {
		c.misses.Add(1)
		return zero, false
	}

	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	c.hits.Add(1)
	return e.value, true
}

// Has reports whether key is present without touching the hit counters.
func (c *FIFO[V]) Has(key string) bool {
	c.mu.RLock()
	_, ok := c.data[key]
	c.mu.RUnlock()
	return ok
}

// Peek returns the value for key without counting the lookup as a hit or
// miss. Internal bookkeeping reads use this so the counters reflect caller
// lookups only.
func (c *FIFO[V]) Peek(key string) (V, bool) {
	var zero V
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	return e.value, true
}

// Set stores the value for key. A new key is appended to the eviction order;
// an existing key keeps its position. If the container is full, the oldest
// entry is evicted to make room before inserting.
func (c *FIFO[V]) Set(key string, v V) {
	if key == "" {
		return
	}

	var evicted []entry[V]

	c.mu.Lock()
	// Update existing in place; size is unchanged so nothing is evicted.
	if e, ok := c.data[key]; ok {
		e.value = v
		c.mu.Unlock()
		return
	}

	if c.limit > 0 {
		for len(c.data) >= c.limit {
			ev, ok := c.evictOldest()
			if !ok {
				break
			}
			evicted = append(evicted, ev)
		}
	}

	elem := c.order.PushBack(key)
	c.data[key] = &entry[V]{key: key, value: v, elem: elem}
	c.mu.Unlock()

	c.notify(evicted)
}

// Delete removes the entry for key if it exists. Explicit removal does not
// count as an eviction and never triggers the eviction callback.
func (c *FIFO[V]) Delete(key string) bool {
	if key == "" {
		return false
	}
	c.mu.Lock()
	e, ok := c.data[key]
	if ok {
		c.order.Remove(e.elem)
		delete(c.data, key)
	}
	c.mu.Unlock()
	return ok
}

// Clear removes all entries without invoking the eviction callback.
func (c *FIFO[V]) Clear() {
	c.mu.Lock()
	clear(c.data)
	c.order = list.New()
	c.mu.Unlock()
}

// Len returns the number of entries currently stored.
func (c *FIFO[V]) Len() int {
	c.mu.RLock()
	n := len(c.data)
	c.mu.RUnlock()
	return n
}

// Keys returns the current keys in insertion order, oldest first.
func (c *FIFO[V]) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.data))
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(string))
	}
	c.mu.RUnlock()
	return keys
}

// Values returns the current values in insertion order, oldest first.
func (c *FIFO[V]) Values() []V {
	c.mu.RLock()
	values := make([]V, 0, len(c.data))
	for el := c.order.Front(); el != nil; el = el.Next() {
		if e, ok := c.data[el.Value.(string)]; ok {
			values = append(values, e.value)
		}
	}
	c.mu.RUnlock()
	return values
}

// Range calls fn for each entry in insertion order until fn returns false.
// The callback runs on a snapshot taken under the read lock, so it may modify
// the container.
func (c *FIFO[V]) Range(fn func(key string, value V) bool) {
	c.mu.RLock()
	snapshot := make([]entry[V], 0, len(c.data))
	for el := c.order.Front(); el != nil; el = el.Next() {
		if e, ok := c.data[el.Value.(string)]; ok {
			snapshot = append(snapshot, *e)
		}
	}
	c.mu.RUnlock()

	for _, e := range snapshot {
		if !fn(e.key, e.value) {
			return
		}
	}
}

// Limit returns the current capacity limit.
func (c *FIFO[V]) Limit() int {
	c.mu.RLock()
	limit := c.limit
	c.mu.RUnlock()
	return limit
}

// SetLimit updates the capacity limit. If the new limit is lower than the
// current size, oldest entries are evicted until the size fits.
func (c *FIFO[V]) SetLimit(limit int) {
	var evicted []entry[V]

	c.mu.Lock()
	c.limit = limit
	if c.limit > 0 {
		for len(c.data) > c.limit {
			ev, ok := c.evictOldest()
			if !ok {
				break
			}
			evicted = append(evicted, ev)
		}
	}
	c.mu.Unlock()

	c.notify(evicted)
}

// evictOldest removes the entry at the front of the insertion order.
// Caller must hold c.mu (write lock).
func (c *FIFO[V]) evictOldest() (entry[V], bool) {
	front := c.order.Front()
	if front == nil {
		return entry[V]{}, false
	}
	key := front.Value.(string)
	e := c.data[key]
	c.order.Remove(front)
	delete(c.data, key)
	c.evictions.Add(1)
	if e == nil {
		return entry[V]{key: key}, true
	}
	return *e, true
}

// notify invokes the eviction callback outside the lock.
func (c *FIFO[V]) notify(evicted []entry[V]) {
	if c.onEvict == nil {
		return
	}
	for _, e := range evicted {
		c.onEvict(e.key, e.value)
	}
}

// Stats summarizes a container's state and counters.
type Stats struct {
	Size        int     `json:"size"`
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Evictions   uint64  `json:"evictions"`
	Limit       int     `json:"limit"`
	HitRate     float64 `json:"hit_rate"`
	MissRate    float64 `json:"miss_rate"`
	EntriesSeen uint64  `json:"entries_seen"`
}

// Stats returns a snapshot of the container's counters and configuration.
// EntriesSeen = Hits + Misses; HitRate/MissRate computed when EntriesSeen > 0.
func (c *FIFO[V]) Stats() Stats {
	h := c.hits.Load()
	m := c.misses.Load()
	e := c.evictions.Load()
	size := c.Len()

	total := h + m
	var hitRate, missRate float64
	if total > 0 {
		hitRate = float64(h) / float64(total)
		missRate = float64(m) / float64(total)
	}

	c.mu.RLock()
	limit := c.limit
	c.mu.RUnlock()

	return Stats{
		Size:        size,
		Hits:        h,
		Misses:      m,
		Evictions:   e,
		Limit:       limit,
		HitRate:     hitRate,
		MissRate:    missRate,
		EntriesSeen: total,
	}
}
