// Package access arbitrates concurrent access to the shared ecs.World.
//
// Every storage partition and singleton resource is named by a Key. A
// Registry lazily creates one Accessor per key; each Accessor admits any
// number of readers or one writer. Callers never touch the world directly:
// they request a Guard for a key and acquire it through a typed function,
// which blocks until the access is permitted and returns a typed view.
//
//	g := reg.RequestAccess(access.KeyMap)
//	defer g.Release()
//	m := access.WriteResource[gameworld.Map](g, reg.World())
//	m.Get().Dirty = true
//
// The With helpers wrap the request, acquisition and deferred release:
//
//	err := access.WithReadStorage(reg, access.KeyPosition,
//	    func(pos ecs.ReadStorage[gameworld.Position]) error {
//	        ...
//	    })
//
// # Blocking
//
// Acquisition parks the goroutine on the accessor's condition variable. It
// has no timeout and cannot be cancelled; the context passed to
// RequestAccessContext only feeds tracing and metrics. Waiters are not
// queued in order and writers can starve under a continuous stream of
// readers.
//
// Keys are independent: holding one never blocks another. A goroutine that
// needs several keys at once should acquire them in ascending Key order so
// two such goroutines cannot deadlock.
//
// # Failure
//
// Nothing in this package returns an error. A lock poisoned by an earlier
// panic raises *PoisonError, a release that finds impossible accessor state
// raises *InvariantError, and misuse of a guard raises *GuardError. Pairing a
// key with a type the world does not hold raises the world's *ecs.TypeError.
// The intended key/type pairs are listed in Pairings.
package access
