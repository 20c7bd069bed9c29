package ecs

import "fmt"

// Entity identifies one game object. Gen distinguishes a recycled ID from
// the entity that previously held it.
type Entity struct {
	ID  uint32 `cbor:"1,keyasint"`
	Gen uint32 `cbor:"2,keyasint"`
}

// String implements fmt.Stringer.
func (e Entity) String() string {
	return fmt.Sprintf("%d:%d", e.ID, e.Gen)
}

// Less orders entities by ID, then generation.
func (e Entity) Less(o Entity) bool {
	if e.ID != o.ID {
		return e.ID < o.ID
	}
	return e.Gen < o.Gen
}

// Entities is the entity allocator. It is stored in the World as a resource
// so that runtime creation and deletion go through the same access rules as
// every other resource.
type Entities struct {
	gens  []uint32
	alive []bool
	free  []uint32
}

// Create allocates a new entity, reusing a freed ID when one is available.
func (es *Entities) Create() Entity {
	if n := len(es.free); n > 0 {
		id := es.free[n-1]
		es.free = es.free[:n-1]
		es.gens[id]++
		es.alive[id] = true
		return Entity{ID: id, Gen: es.gens[id]}
	}
	id := uint32(len(es.gens))
	es.gens = append(es.gens, 0)
	es.alive = append(es.alive, true)
	return Entity{ID: id}
}

// Kill marks e dead and frees its ID. Killing a dead or stale entity is a no-op
// and reports false.
func (es *Entities) Kill(e Entity) bool {
	if !es.IsAlive(e) {
		return false
	}
	es.alive[e.ID] = false
	es.free = append(es.free, e.ID)
	return true
}

// IsAlive reports whether e refers to a live entity of the current generation.
func (es *Entities) IsAlive(e Entity) bool {
	return int(e.ID) < len(es.gens) && es.alive[e.ID] && es.gens[e.ID] == e.Gen
}

// Len returns the number of live entities.
func (es *Entities) Len() int {
	return len(es.gens) - len(es.free)
}
