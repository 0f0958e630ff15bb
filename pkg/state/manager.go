package state

import (
	"sync"

	"github.com/small-frappuccino/discordstate/pkg/cache"
	"github.com/small-frappuccino/discordstate/pkg/payload"
)

// Manager owns the cache for one entity kind. Upsert is the only ingestion
// path: it either merges the payload into the already-cached entity or
// constructs a new one, so at most one representative exists per identity key
// and every holder of the pointer sees updates.
//
// A single mutex serializes Upsert and Remove. Reads go straight to the
// cache, which has its own lock, so reference resolution between kinds never
// holds more than one lock at a time.
type Manager[E Entity] struct {
	mu    sync.Mutex
	kind  string
	cache *cache.FIFO[E]

	keyOf     func(payload.Object) (string, error)
	construct func(payload.Object) (E, error)
}

func newManager[E Entity](
	kind string,
	limit int,
	onEvict func(key string, entity E),
	keyOf func(payload.Object) (string, error),
	construct func(payload.Object) (E, error),
) *Manager[E] {
	return &Manager[E]{
		kind:      kind,
		cache:     cache.NewWithEvict(limit, onEvict),
		keyOf:     keyOf,
		construct: construct,
	}
}

// Upsert ingests a raw payload. If an entity with the payload's identity key
// is cached, the payload is merged into it in place and the same pointer is
// returned. Otherwise a new entity is constructed, which validates the kind's
// required fields. A malformed payload leaves the cache untouched.
func (m *Manager[E]) Upsert(o payload.Object) (E, error) {
	var zero E
	if o == nil {
		return zero, &payload.MalformedPayloadError{Kind: m.kind, Reason: "nil payload"}
	}

	key, err := m.keyOf(o)
	if err != nil {
		return zero, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.cache.Peek(key); ok {
		existing.Update(o)
		return existing, nil
	}

	entity, err := m.construct(o)
	if err != nil {
		return zero, err
	}
	m.cache.Set(key, entity)
	return entity, nil
}

// Get returns the cached entity for key. It is a pure cache read; a miss is
// reported as false and never triggers any I/O.
func (m *Manager[E]) Get(key string) (E, bool) {
	return m.cache.Get(key)
}

// Peek is Get without touching the cache's hit and miss counters. Index
// maintenance and other internal reads use it so stats reflect caller
// lookups only.
func (m *Manager[E]) Peek(key string) (E, bool) {
	return m.cache.Peek(key)
}

// Remove evicts the entity for key. Subsequent upserts for the same key
// construct a fresh representative.
func (m *Manager[E]) Remove(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache.Delete(key)
}

// Len returns the number of cached entities.
func (m *Manager[E]) Len() int {
	return m.cache.Len()
}

// Keys returns cached identity keys in insertion order.
func (m *Manager[E]) Keys() []string {
	return m.cache.Keys()
}

// Values returns cached entities in insertion order.
func (m *Manager[E]) Values() []E {
	return m.cache.Values()
}

// SetLimit adjusts the cache capacity, evicting oldest entries if needed.
func (m *Manager[E]) SetLimit(limit int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.SetLimit(limit)
}

// Stats returns the cache's counter snapshot.
func (m *Manager[E]) Stats() cache.Stats {
	return m.cache.Stats()
}
