package gameworld

import (
	"github.com/randalmurphal/burrow/pkg/burrow/ecs"
	"github.com/randalmurphal/burrow/pkg/burrow/message"
)

// Position places an entity on a map tile.
type Position struct {
	message.Coords
}

// Player marks the entity controlled by the user.
type Player struct{}

// Renderable is how an entity is drawn. FG and BG are terminal colors in any
// form lipgloss accepts ("#ffcc00", "11"); empty means the terminal default.
type Renderable struct {
	Glyph rune
	FG    string
	BG    string
}

// Name is a display name.
type Name struct {
	Name string
}

// BlocksTile marks an entity that prevents others from entering its tile.
type BlocksTile struct{}

// Marker is a tag component with no data. Commands attach it to entities to
// exercise write access from the simulation.
type Marker struct{}

// RegisterAll registers a storage for every component type.
func RegisterAll(w *ecs.World) {
	ecs.Register[Position](w)
	ecs.Register[Player](w)
	ecs.Register[Renderable](w)
	ecs.Register[Name](w)
	ecs.Register[BlocksTile](w)
	ecs.Register[Marker](w)
}

// InsertAllResources inserts the singleton resources. The world takes
// ownership of m.
func InsertAllResources(w *ecs.World, m *Map) {
	ecs.InsertResource(w, *m)
}
