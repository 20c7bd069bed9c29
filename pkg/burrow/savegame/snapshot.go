package savegame

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/randalmurphal/burrow/pkg/burrow/access"
	"github.com/randalmurphal/burrow/pkg/burrow/ecs"
	"github.com/randalmurphal/burrow/pkg/burrow/gameworld"
	"github.com/randalmurphal/burrow/pkg/burrow/message"
)

// Snapshot is the persistent form of a world.
type Snapshot struct {
	Version   int            `cbor:"1,keyasint"`
	SessionID string         `cbor:"2,keyasint"`
	Turn      uint64         `cbor:"3,keyasint"`
	MapSize   uint16         `cbor:"4,keyasint"`
	Layout    string         `cbor:"5,keyasint"`
	Entities  []EntityRecord `cbor:"6,keyasint"`
	SavedAt   time.Time      `cbor:"7,keyasint"`
}

// EntityRecord holds the components of one entity. Entity handles are not
// saved; Restore allocates new ones in record order.
type EntityRecord struct {
	Position   *message.Coords       `cbor:"1,keyasint,omitempty"`
	Player     bool                  `cbor:"2,keyasint,omitempty"`
	Renderable *gameworld.Renderable `cbor:"3,keyasint,omitempty"`
	Name       string                `cbor:"4,keyasint,omitempty"`
	BlocksTile bool                  `cbor:"5,keyasint,omitempty"`
	Marker     bool                  `cbor:"6,keyasint,omitempty"`
}

// Player returns the first record marked as the player.
func (s *Snapshot) Player() (EntityRecord, bool) {
	for _, r := range s.Entities {
		if r.Player {
			return r, true
		}
	}
	return EntityRecord{}, false
}

// Capture reads the whole world into a snapshot. It takes a read guard on
// every key in ascending order, so it waits for in-flight writers and holds
// off new ones until it returns.
func Capture(ctx context.Context, reg *access.Registry, sessionID string, turn uint64) *Snapshot {
	w := reg.World()

	guards := make(map[access.Key]*access.Guard, len(access.Keys()))
	for _, k := range access.Keys() {
		guards[k] = reg.RequestAccessContext(ctx, k)
	}
	defer func() {
		for _, g := range guards {
			g.Release()
		}
	}()

	entities := access.ReadResource[ecs.Entities](guards[access.KeyEntities], w).Get()
	positions := access.ReadStorage[gameworld.Position](guards[access.KeyPosition], w)
	players := access.ReadStorage[gameworld.Player](guards[access.KeyPlayer], w)
	renderables := access.ReadStorage[gameworld.Renderable](guards[access.KeyRenderable], w)
	names := access.ReadStorage[gameworld.Name](guards[access.KeyName], w)
	blockers := access.ReadStorage[gameworld.BlocksTile](guards[access.KeyBlocksTile], w)
	markers := access.ReadStorage[gameworld.Marker](guards[access.KeyMarker], w)
	gm := access.ReadResource[gameworld.Map](guards[access.KeyMap], w).Get()

	var all []ecs.Entity
	for _, es := range [][]ecs.Entity{
		positions.Entities(), players.Entities(), renderables.Entities(),
		names.Entities(), blockers.Entities(), markers.Entities(),
	} {
		all = append(all, es...)
	}
	slices.SortFunc(all, compareEntities)
	all = slices.Compact(all)

	snap := &Snapshot{
		Version:   Version,
		SessionID: sessionID,
		Turn:      turn,
		MapSize:   gm.Size(),
		Layout:    gm.Layout(),
		SavedAt:   time.Now().UTC(),
	}
	for _, e := range all {
		if !entities.IsAlive(e) {
			continue
		}
		var rec EntityRecord
		if p, ok := positions.Get(e); ok {
			c := p.Coords
			rec.Position = &c
		}
		if r, ok := renderables.Get(e); ok {
			rec.Renderable = &r
		}
		if n, ok := names.Get(e); ok {
			rec.Name = n.Name
		}
		rec.Player = players.Has(e)
		rec.BlocksTile = blockers.Has(e)
		rec.Marker = markers.Has(e)
		snap.Entities = append(snap.Entities, rec)
	}
	return snap
}

func compareEntities(a, b ecs.Entity) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}

// Restore builds a new world from a snapshot. The world is complete but not
// yet shared: wrap it in an access.Registry before handing it to goroutines.
func Restore(s *Snapshot) (*ecs.World, error) {
	if s.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, s.Version)
	}
	m, err := gameworld.NewMapBuilder().WithLayout(s.MapSize, s.Layout).Build()
	if err != nil {
		return nil, fmt.Errorf("restore map: %w", err)
	}
	// Build blocks the spawn tile for the player; the records say who is
	// actually standing where.
	if err := m.SetBlocked(m.SpawnIdx(), false); err != nil {
		return nil, err
	}

	w := ecs.NewWorld()
	gameworld.RegisterAll(w)
	gameworld.InsertAllResources(w, m)
	gm := ecs.FetchResourceMut[gameworld.Map](w).Get()

	for i, rec := range s.Entities {
		e := w.CreateEntity()
		if rec.Player {
			ecs.Insert(w, e, gameworld.Player{})
		}
		if rec.Renderable != nil {
			ecs.Insert(w, e, *rec.Renderable)
		}
		if rec.Name != "" {
			ecs.Insert(w, e, gameworld.Name{Name: rec.Name})
		}
		if rec.BlocksTile {
			ecs.Insert(w, e, gameworld.BlocksTile{})
		}
		if rec.Marker {
			ecs.Insert(w, e, gameworld.Marker{})
		}
		if rec.Position == nil {
			continue
		}
		ecs.Insert(w, e, gameworld.Position{Coords: *rec.Position})
		idx, err := gm.CoordsToIdx(*rec.Position)
		if err != nil {
			return nil, fmt.Errorf("restore entity %d: %w", i, err)
		}
		if err := gm.Place(idx, e); err != nil {
			return nil, fmt.Errorf("restore entity %d: %w", i, err)
		}
		if rec.BlocksTile {
			_ = gm.SetBlocked(idx, true)
		}
	}
	gm.Clean()
	return w, nil
}

// Write captures reg, encodes the snapshot and stores it under slot,
// retrying a busy store per DefaultRetry. It returns the encoded size.
func Write(ctx context.Context, s Store, reg *access.Registry, sessionID, slot string, turn uint64) (int, error) {
	data, err := Encode(Capture(ctx, reg, sessionID, turn))
	if err != nil {
		return 0, err
	}
	_, err = DefaultRetry.Do(ctx, func(context.Context) error {
		return s.Save(sessionID, slot, data)
	})
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// Read loads a save and restores it. An empty slot loads the session's most
// recent save.
func Read(s Store, sessionID, slot string) (*ecs.World, *Snapshot, error) {
	var (
		data []byte
		err  error
	)
	if slot == "" {
		data, _, err = LoadLatest(s, sessionID)
	} else {
		data, err = s.Load(sessionID, slot)
	}
	if err != nil {
		return nil, nil, err
	}
	snap, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}
	w, err := Restore(snap)
	if err != nil {
		return nil, nil, err
	}
	return w, snap, nil
}
