package registry

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrPoisoned is the panic value raised by every method of a registry whose
// write lock was held by a panicking factory.
var ErrPoisoned = errors.New("registry: poisoned by a panic while locked")

// Registry is a thread-safe, grow-only registry for values indexed by key.
// It uses sync.RWMutex for optimal read-heavy workloads.
type Registry[K comparable, V any] struct {
	mu       sync.RWMutex
	entries  map[K]V
	poisoned atomic.Bool
}

// New creates a new empty registry.
func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{
		entries: make(map[K]V),
	}
}

// Get returns the value for a key and whether it exists.
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.checkPoison()
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	return v, ok
}

// Has returns true if the key exists in the registry.
func (r *Registry[K, V]) Has(key K) bool {
	r.checkPoison()
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[key]
	return ok
}

// Keys returns all keys in the registry.
// The order is not guaranteed.
func (r *Registry[K, V]) Keys() []K {
	r.checkPoison()
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]K, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of entries in the registry.
func (r *Registry[K, V]) Len() int {
	r.checkPoison()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Range iterates over all entries in the registry.
// The function fn is called for each entry. If fn returns false,
// iteration stops.
//
// Range iterates over a snapshot of the registry, so it is safe
// to call GetOrCreate during iteration.
func (r *Registry[K, V]) Range(fn func(K, V) bool) {
	r.checkPoison()

	r.mu.RLock()
	snapshot := make(map[K]V, len(r.entries))
	for k, v := range r.entries {
		snapshot[k] = v
	}
	r.mu.RUnlock()

	for k, v := range snapshot {
		if !fn(k, v) {
			return
		}
	}
}

// GetOrCreate returns the value for a key, creating it with the factory
// function if it doesn't exist. This operation is atomic - the factory
// is called at most once per key, even under concurrent access.
//
// The second return value reports whether this call created the entry.
func (r *Registry[K, V]) GetOrCreate(key K, factory func() V) (V, bool) {
	r.checkPoison()

	// Fast path: check if already exists
	r.mu.RLock()
	v, ok := r.entries[key]
	r.mu.RUnlock()
	if ok {
		return v, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.poisonOnPanic()

	// Double-check after acquiring write lock
	if v, ok := r.entries[key]; ok {
		return v, false
	}

	v = factory()
	r.entries[key] = v
	return v, true
}

// Poisoned reports whether a panic escaped while the write lock was held.
func (r *Registry[K, V]) Poisoned() bool {
	return r.poisoned.Load()
}

func (r *Registry[K, V]) checkPoison() {
	if r.poisoned.Load() {
		panic(ErrPoisoned)
	}
}

// poisonOnPanic must be deferred after the write lock is taken so it runs
// before the unlock.
func (r *Registry[K, V]) poisonOnPanic() {
	if p := recover(); p != nil {
		r.poisoned.Store(true)
		panic(p)
	}
}
