package ecs

import (
	"github.com/google/btree"
)

// Storage holds the components of one type, keyed by entity. Iteration is in
// entity order so rendering and snapshots are deterministic.
type Storage[T any] struct {
	data  map[Entity]*T
	order *btree.BTreeG[Entity]
}

func newStorage[T any]() *Storage[T] {
	return &Storage[T]{
		data:  make(map[Entity]*T),
		order: btree.NewG[Entity](8, Entity.Less),
	}
}

// ReadStorage is a read-only view of a Storage.
type ReadStorage[T any] struct {
	s *Storage[T]
}

// Get returns a copy of e's component.
func (r ReadStorage[T]) Get(e Entity) (T, bool) {
	c, ok := r.s.data[e]
	if !ok {
		var zero T
		return zero, false
	}
	return *c, true
}

// Has reports whether e has a component in this storage.
func (r ReadStorage[T]) Has(e Entity) bool {
	_, ok := r.s.data[e]
	return ok
}

// Len returns the number of components stored.
func (r ReadStorage[T]) Len() int {
	return len(r.s.data)
}

// Entities returns the entities holding a component, in entity order.
func (r ReadStorage[T]) Entities() []Entity {
	out := make([]Entity, 0, r.s.order.Len())
	r.s.order.Ascend(func(e Entity) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Each calls fn for every component in entity order until fn returns false.
func (r ReadStorage[T]) Each(fn func(Entity, T) bool) {
	r.s.order.Ascend(func(e Entity) bool {
		return fn(e, *r.s.data[e])
	})
}

// WriteStorage is a mutable view of a Storage.
type WriteStorage[T any] struct {
	ReadStorage[T]
}

// Insert sets e's component, returning the previous value if there was one.
func (w WriteStorage[T]) Insert(e Entity, c T) (T, bool) {
	prev, had := w.Get(e)
	w.s.data[e] = &c
	w.s.order.ReplaceOrInsert(e)
	return prev, had
}

// Remove deletes e's component, returning it if it existed.
func (w WriteStorage[T]) Remove(e Entity) (T, bool) {
	prev, had := w.Get(e)
	if had {
		delete(w.s.data, e)
		w.s.order.Delete(e)
	}
	return prev, had
}

// GetMut returns a pointer to e's component for in-place updates.
func (w WriteStorage[T]) GetMut(e Entity) (*T, bool) {
	c, ok := w.s.data[e]
	return c, ok
}

// Clear removes every component.
func (w WriteStorage[T]) Clear() {
	clear(w.s.data)
	w.s.order.Clear(false)
}
