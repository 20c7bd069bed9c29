package access

import "github.com/randalmurphal/burrow/pkg/burrow/ecs"

// ReadStorage blocks until g's key admits readers, acquires it for reading
// and returns the read view of T's storage.
//
// The key is not checked against T. If T is not registered the world panics
// with *ecs.TypeError after the guard is acquired; a deferred Release still
// returns it.
func ReadStorage[T any](g *Guard, w *ecs.World) ecs.ReadStorage[T] {
	g.acquire(ModeRead)
	return ecs.FetchStorage[T](w)
}

// WriteStorage blocks until g's key is free, acquires it exclusively and
// returns the write view of T's storage.
func WriteStorage[T any](g *Guard, w *ecs.World) ecs.WriteStorage[T] {
	g.acquire(ModeWrite)
	return ecs.FetchStorageMut[T](w)
}

// WithReadStorage acquires key for reading, calls fn with T's storage and
// releases the guard however fn returns.
func WithReadStorage[T any](r *Registry, key Key, fn func(ecs.ReadStorage[T]) error) error {
	g := r.RequestAccess(key)
	defer g.Release()
	return fn(ReadStorage[T](g, r.world))
}

// WithWriteStorage is WithReadStorage for exclusive access.
func WithWriteStorage[T any](r *Registry, key Key, fn func(ecs.WriteStorage[T]) error) error {
	g := r.RequestAccess(key)
	defer g.Release()
	return fn(WriteStorage[T](g, r.world))
}
