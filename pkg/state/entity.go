package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/small-frappuccino/discordstate/pkg/payload"
)

// Entity is the contract every cached kind satisfies.
type Entity interface {
	// Key returns the stable identity key the entity is cached under. It
	// never changes for the lifetime of the entity.
	Key() string

	// Update merges a partial payload into the entity in place. Fields absent
	// from the patch keep their value; fields present overwrite, with JSON
	// null clearing the field.
	Update(patch payload.Object)

	// Payload returns a deep copy of the entity's current raw payload.
	Payload() payload.Object

	fmt.Stringer
}

// base carries the raw payload and its lock, shared by every entity kind.
// Accessors take the read lock; Update takes the write lock. The containing
// type adds its typed accessors and operations on top.
type base struct {
	mu   sync.RWMutex
	data payload.Object
}

func newBase(o payload.Object) base {
	return base{data: o.Clone()}
}

func (b *base) merge(patch payload.Object) {
	b.mu.Lock()
	b.data.Merge(patch)
	b.mu.Unlock()
}

func (b *base) str(key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data.Str(key)
}

func (b *base) intv(key string) (int64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data.Int(key)
}

func (b *base) boolv(key string) (bool, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data.Bool(key)
}

func (b *base) timev(key string) (time.Time, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data.Time(key)
}

func (b *base) obj(key string) (payload.Object, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data.Obj(key)
}

func (b *base) strs(key string) ([]string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data.Strs(key)
}

func (b *base) snapshot() payload.Object {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data.Clone()
}
