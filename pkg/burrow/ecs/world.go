package ecs

import (
	"fmt"
	"reflect"

	"github.com/randalmurphal/burrow/pkg/burrow/registry"
)

// TypeError reports a fetch for a component or resource type the World does
// not hold. It is raised as a panic value.
type TypeError struct {
	Kind string // "storage" or "resource"
	Type reflect.Type
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("ecs: %s %v is not registered", e.Kind, e.Type)
}

// erased is the type-independent surface of a Storage, used when deleting an
// entity from every storage at once.
type erased interface {
	remove(Entity)
}

func (s *Storage[T]) remove(e Entity) {
	if _, ok := s.data[e]; ok {
		delete(s.data, e)
		s.order.Delete(e)
	}
}

// World is the entity-component store. The type tables are safe for
// concurrent lookup; the storages and resources they point to are not.
type World struct {
	storages  *registry.Registry[reflect.Type, erased]
	resources *registry.Registry[reflect.Type, any]
}

// NewWorld returns an empty World holding only the Entities resource.
func NewWorld() *World {
	w := &World{
		storages:  registry.New[reflect.Type, erased](),
		resources: registry.New[reflect.Type, any](),
	}
	InsertResource(w, Entities{})
	return w
}

// Register adds a storage for component type T. Registering twice keeps the
// existing storage.
func Register[T any](w *World) {
	w.storages.GetOrCreate(reflect.TypeFor[T](), func() erased {
		return newStorage[T]()
	})
}

// Registered reports whether a storage for T exists.
func Registered[T any](w *World) bool {
	return w.storages.Has(reflect.TypeFor[T]())
}

func storageOf[T any](w *World) *Storage[T] {
	t := reflect.TypeFor[T]()
	s, ok := w.storages.Get(t)
	if !ok {
		panic(&TypeError{Kind: "storage", Type: t})
	}
	return s.(*Storage[T])
}

// FetchStorage returns a read view of T's storage. It panics with a
// *TypeError if T was never registered.
func FetchStorage[T any](w *World) ReadStorage[T] {
	return ReadStorage[T]{s: storageOf[T](w)}
}

// FetchStorageMut returns a write view of T's storage. It panics with a
// *TypeError if T was never registered.
func FetchStorageMut[T any](w *World) WriteStorage[T] {
	return WriteStorage[T]{ReadStorage[T]{s: storageOf[T](w)}}
}

// CreateEntity allocates an entity. It is meant for world construction and
// tests; running code creates entities through the Entities resource.
func (w *World) CreateEntity() Entity {
	return FetchResourceMut[Entities](w).Get().Create()
}

// Insert attaches component c to e, registering T if needed. Like
// CreateEntity it is a construction helper.
func Insert[T any](w *World, e Entity, c T) {
	Register[T](w)
	FetchStorageMut[T](w).Insert(e, c)
}

// Delete kills e and strips its components from every storage. It reports
// false if e was not alive.
func (w *World) Delete(e Entity) bool {
	if !FetchResourceMut[Entities](w).Get().Kill(e) {
		return false
	}
	w.storages.Range(func(_ reflect.Type, s erased) bool {
		s.remove(e)
		return true
	})
	return true
}

// IsAlive reports whether e is a live entity.
func (w *World) IsAlive(e Entity) bool {
	return FetchResource[Entities](w).Get().IsAlive(e)
}
