package gameworld

import (
	"fmt"

	"github.com/randalmurphal/burrow/pkg/burrow/ecs"
	"github.com/randalmurphal/burrow/pkg/burrow/message"
)

// PlayerGlyph is how the player is drawn.
var PlayerGlyph = Renderable{Glyph: '@', FG: "11"}

// BuildPlayer creates the player entity at the given tile and records it in
// the map's tile contents. It runs while the world is being built, before
// any guard exists.
func BuildPlayer(w *ecs.World, at message.Coords) (ecs.Entity, error) {
	m := ecs.FetchResourceMut[Map](w).Get()
	idx, err := m.CoordsToIdx(at)
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("spawn player: %w", err)
	}

	e := w.CreateEntity()
	ecs.Insert(w, e, Player{})
	ecs.Insert(w, e, Position{Coords: at})
	ecs.Insert(w, e, PlayerGlyph)
	ecs.Insert(w, e, Name{Name: "Player"})
	ecs.Insert(w, e, BlocksTile{})

	if err := m.Place(idx, e); err != nil {
		w.Delete(e)
		return ecs.Entity{}, fmt.Errorf("spawn player: %w", err)
	}
	if err := m.SetBlocked(idx, true); err != nil {
		return ecs.Entity{}, err
	}
	return e, nil
}

// NewWorld builds a complete world from a layout: every storage registered,
// the map inserted and the player spawned.
func NewWorld(p Precon) (*ecs.World, error) {
	m, err := NewMapBuilder().WithPrecon(p).Build()
	if err != nil {
		return nil, err
	}
	return NewWorldFromMap(m)
}

// NewWorldFromMap is NewWorld for an already built map.
func NewWorldFromMap(m *Map) (*ecs.World, error) {
	w := ecs.NewWorld()
	RegisterAll(w)
	InsertAllResources(w, m)
	if _, err := BuildPlayer(w, m.SpawnPoint()); err != nil {
		return nil, err
	}
	return w, nil
}
