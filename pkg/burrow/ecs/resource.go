package ecs

import "reflect"

// Fetch is a read view of a singleton resource.
type Fetch[T any] struct {
	v *T
}

// Get returns the resource. Callers must not mutate through it.
func (f Fetch[T]) Get() *T { return f.v }

// FetchMut is a write view of a singleton resource.
type FetchMut[T any] struct {
	v *T
}

// Get returns the resource for in-place mutation.
func (f FetchMut[T]) Get() *T { return f.v }

// Set replaces the resource value.
func (f FetchMut[T]) Set(v T) { *f.v = v }

// InsertResource stores v as the singleton of type T, overwriting any
// existing value in place so that outstanding views observe the change.
func InsertResource[T any](w *World, v T) {
	cell, _ := w.resources.GetOrCreate(reflect.TypeFor[T](), func() any {
		return new(T)
	})
	*cell.(*T) = v
}

// HasResource reports whether a resource of type T exists.
func HasResource[T any](w *World) bool {
	return w.resources.Has(reflect.TypeFor[T]())
}

func resourceOf[T any](w *World) *T {
	t := reflect.TypeFor[T]()
	cell, ok := w.resources.Get(t)
	if !ok {
		panic(&TypeError{Kind: "resource", Type: t})
	}
	return cell.(*T)
}

// FetchResource returns a read view of the T singleton. It panics with a
// *TypeError if no such resource was inserted.
func FetchResource[T any](w *World) Fetch[T] {
	return Fetch[T]{v: resourceOf[T](w)}
}

// FetchResourceMut returns a write view of the T singleton. It panics with a
// *TypeError if no such resource was inserted.
func FetchResourceMut[T any](w *World) FetchMut[T] {
	return FetchMut[T]{v: resourceOf[T](w)}
}
