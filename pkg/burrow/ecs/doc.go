// Package ecs is burrow's in-memory entity-component store.
//
// A World holds one Storage per component type and one cell per singleton
// resource type, both keyed by the Go type. Storages and resources are
// registered while the world is built, before any goroutine other than the
// builder can see it:
//
//	w := ecs.NewWorld()
//	ecs.Register[Position](w)
//	ecs.InsertResource(w, gameMap)
//
// After construction the World performs no synchronization of its own.
// Concurrent callers must go through the access layer (package access), which
// hands out typed views only while the matching per-key guard is held:
//
//	positions := ecs.FetchStorage[Position](w)       // ReadStorage view
//	m := ecs.FetchResourceMut[gameworld.Map](w)      // FetchMut view
//
// Fetching a type that was never registered panics with a *TypeError. That
// panic is the store's own type enforcement; the access layer relies on it to
// surface key/type mismatches.
package ecs
