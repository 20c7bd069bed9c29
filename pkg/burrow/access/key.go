package access

import (
	"fmt"
	"reflect"

	"github.com/randalmurphal/burrow/pkg/burrow/ecs"
	"github.com/randalmurphal/burrow/pkg/burrow/gameworld"
)

// Key names one storage partition or singleton resource of the world. The
// set is closed; extend it by adding a constant and a Pairings entry.
type Key uint8

const (
	KeyEntities Key = iota
	KeyPosition
	KeyPlayer
	KeyRenderable
	KeyName
	KeyBlocksTile
	KeyMarker
	KeyMap

	numKeys
)

var keyNames = [numKeys]string{
	KeyEntities:   "Entities",
	KeyPosition:   "Position",
	KeyPlayer:     "Player",
	KeyRenderable: "Renderable",
	KeyName:       "Name",
	KeyBlocksTile: "BlocksTile",
	KeyMarker:     "Marker",
	KeyMap:        "Map",
}

// String implements fmt.Stringer.
func (k Key) String() string {
	if k < numKeys {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", uint8(k))
}

// Valid reports whether k is one of the declared keys.
func (k Key) Valid() bool {
	return k < numKeys
}

// Keys returns every declared key in order.
func Keys() []Key {
	out := make([]Key, numKeys)
	for i := range out {
		out[i] = Key(i)
	}
	return out
}

// Kind says whether a key names a component storage or a singleton resource.
type Kind uint8

const (
	KindStorage Kind = iota
	KindResource
)

func (k Kind) String() string {
	if k == KindResource {
		return "resource"
	}
	return "storage"
}

// Pairing is the data type a key guards and how it is fetched.
type Pairing struct {
	Kind Kind
	Type reflect.Type
}

// Pairings is the single table mapping each key to the type it guards.
// Typed acquisition does not consult it; a caller that pairs a key with the
// wrong type gets the world's *ecs.TypeError panic, or silently guards the
// wrong partition if both types exist. Tests and tooling use the table to
// audit call sites.
var Pairings = map[Key]Pairing{
	KeyEntities:   {KindResource, reflect.TypeFor[ecs.Entities]()},
	KeyPosition:   {KindStorage, reflect.TypeFor[gameworld.Position]()},
	KeyPlayer:     {KindStorage, reflect.TypeFor[gameworld.Player]()},
	KeyRenderable: {KindStorage, reflect.TypeFor[gameworld.Renderable]()},
	KeyName:       {KindStorage, reflect.TypeFor[gameworld.Name]()},
	KeyBlocksTile: {KindStorage, reflect.TypeFor[gameworld.BlocksTile]()},
	KeyMarker:     {KindStorage, reflect.TypeFor[gameworld.Marker]()},
	KeyMap:        {KindResource, reflect.TypeFor[gameworld.Map]()},
}

// KeyFor returns the key whose Pairings entry guards type T.
func KeyFor[T any]() (Key, bool) {
	t := reflect.TypeFor[T]()
	for k, p := range Pairings {
		if p.Type == t {
			return k, true
		}
	}
	return 0, false
}
