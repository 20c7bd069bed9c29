package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/burrow/pkg/burrow/ecs"
	"github.com/randalmurphal/burrow/pkg/burrow/gameworld"
)

func TestKeyString(t *testing.T) {
	assert.Equal(t, "Position", KeyPosition.String())
	assert.Equal(t, "Map", KeyMap.String())
	assert.Equal(t, "Key(200)", Key(200).String())
	assert.True(t, KeyMarker.Valid())
	assert.False(t, numKeys.Valid())
}

func TestKeysInOrder(t *testing.T) {
	keys := Keys()
	require.Len(t, keys, int(numKeys))
	for i, k := range keys {
		assert.Equal(t, Key(i), k)
	}
}

func TestPairingsCoverEveryKey(t *testing.T) {
	for _, k := range Keys() {
		_, ok := Pairings[k]
		assert.True(t, ok, "no pairing for %s", k)
	}
	assert.Len(t, Pairings, int(numKeys))
}

// Every paired type must exist in a fully built world, with the kind the
// table claims.
func TestPairingsMatchWorld(t *testing.T) {
	w, err := gameworld.NewWorld(gameworld.Empty10x10())
	require.NoError(t, err)

	checks := map[Key]bool{
		KeyEntities:   ecs.HasResource[ecs.Entities](w),
		KeyPosition:   ecs.Registered[gameworld.Position](w),
		KeyPlayer:     ecs.Registered[gameworld.Player](w),
		KeyRenderable: ecs.Registered[gameworld.Renderable](w),
		KeyName:       ecs.Registered[gameworld.Name](w),
		KeyBlocksTile: ecs.Registered[gameworld.BlocksTile](w),
		KeyMarker:     ecs.Registered[gameworld.Marker](w),
		KeyMap:        ecs.HasResource[gameworld.Map](w),
	}
	for k, present := range checks {
		assert.True(t, present, "%s (%s %v) missing from world", k, Pairings[k].Kind, Pairings[k].Type)
	}
	assert.Equal(t, KindResource, Pairings[KeyMap].Kind)
	assert.Equal(t, KindStorage, Pairings[KeyPosition].Kind)
}

func TestKeyFor(t *testing.T) {
	k, ok := KeyFor[gameworld.Renderable]()
	require.True(t, ok)
	assert.Equal(t, KeyRenderable, k)

	k, ok = KeyFor[ecs.Entities]()
	require.True(t, ok)
	assert.Equal(t, KeyEntities, k)

	_, ok = KeyFor[string]()
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "storage", KindStorage.String())
	assert.Equal(t, "resource", KindResource.String())
}
