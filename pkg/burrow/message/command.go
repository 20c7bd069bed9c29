package message

import "github.com/randalmurphal/burrow/pkg/burrow/ecs"

// MutateCommand asks the simulation to change the world. The concrete types
// are Move, InsertMarker, MapMutation and Exit.
type MutateCommand interface {
	isMutateCommand()
}

// Move steps every player entity one tile in Dir.
type Move struct {
	Dir Dir
}

// InsertMarker attaches a Marker component to Target.
type InsertMarker struct {
	Target ecs.Entity
}

// MapMutation edits the contents of one tile. Add and Remove are applied
// when non-nil, Remove first.
type MapMutation struct {
	Idx    int
	Add    *ecs.Entity
	Remove *ecs.Entity
}

// Exit stops the simulation.
type Exit struct{}

func (Move) isMutateCommand()         {}
func (InsertMarker) isMutateCommand() {}
func (MapMutation) isMutateCommand()  {}
func (Exit) isMutateCommand()         {}

// DeltaNotification tells the presentation what changed. The only concrete
// type is MapDelta.
type DeltaNotification interface {
	isDeltaNotification()
}

// MapDelta lists changed tiles and their contents after the change.
// Contents[i] belongs to Indices[i].
type MapDelta struct {
	Indices  []int
	Contents [][]ecs.Entity
}

func (MapDelta) isDeltaNotification() {}

// Add appends one tile to the delta.
func (d *MapDelta) Add(idx int, contents []ecs.Entity) {
	d.Indices = append(d.Indices, idx)
	d.Contents = append(d.Contents, contents)
}

// Empty reports whether the delta lists no tiles.
func (d MapDelta) Empty() bool {
	return len(d.Indices) == 0
}
