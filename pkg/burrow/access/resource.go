package access

import "github.com/randalmurphal/burrow/pkg/burrow/ecs"

// ReadResource blocks until g's key admits readers, acquires it for reading
// and returns the read view of the T singleton.
func ReadResource[T any](g *Guard, w *ecs.World) ecs.Fetch[T] {
	g.acquire(ModeRead)
	return ecs.FetchResource[T](w)
}

// WriteResource blocks until g's key is free, acquires it exclusively and
// returns the write view of the T singleton.
func WriteResource[T any](g *Guard, w *ecs.World) ecs.FetchMut[T] {
	g.acquire(ModeWrite)
	return ecs.FetchResourceMut[T](w)
}

// WithReadResource acquires key for reading, calls fn with the T singleton
// and releases the guard however fn returns.
func WithReadResource[T any](r *Registry, key Key, fn func(ecs.Fetch[T]) error) error {
	g := r.RequestAccess(key)
	defer g.Release()
	return fn(ReadResource[T](g, r.world))
}

// WithWriteResource is WithReadResource for exclusive access.
func WithWriteResource[T any](r *Registry, key Key, fn func(ecs.FetchMut[T]) error) error {
	g := r.RequestAccess(key)
	defer g.Release()
	return fn(WriteResource[T](g, r.world))
}
