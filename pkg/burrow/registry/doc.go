// Package registry provides a generic thread-safe, grow-only registry for
// values indexed by key.
//
// Registry is designed for read-heavy workloads using sync.RWMutex. Entries
// are created lazily and never removed, which makes it a fit for tables whose
// key space is finite and fixed for the life of the process: the access
// layer's key → Accessor map and the ECS world's type → storage table.
//
// # Lazy Initialization
//
// Use GetOrCreate for thread-safe lazy initialization:
//
//	accessors := registry.New[access.Key, *access.Accessor]()
//
//	// First call creates the accessor, subsequent calls return the same one
//	a, _ := accessors.GetOrCreate(access.KeyPosition, func() *access.Accessor {
//	    return access.NewAccessor(access.KeyPosition)
//	})
//
// GetOrCreate is atomic - the factory function is called at most once per key,
// even under concurrent access. Its second result reports whether the call
// created the entry.
//
// # Poisoning
//
// If a factory panics while the write lock is held, the registry is marked
// poisoned and the panic continues to unwind. Every later call on a poisoned
// registry panics with ErrPoisoned: the table may be missing an entry that
// other goroutines rely on, so its contents can no longer be trusted.
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use. The Range method iterates
// over a snapshot of the registry, so GetOrCreate may be called from inside
// the callback:
//
//	r.Range(func(key string, value int) bool {
//	    fmt.Println(key, value)
//	    return true // continue iteration
//	})
package registry
