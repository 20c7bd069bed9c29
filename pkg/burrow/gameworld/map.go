package gameworld

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/randalmurphal/burrow/pkg/burrow/ecs"
	"github.com/randalmurphal/burrow/pkg/burrow/message"
)

// MaxTileContents is how many entities one tile can hold.
const MaxTileContents = 8

var (
	// ErrOutOfBounds is returned for coordinates or indices off the map.
	ErrOutOfBounds = errors.New("gameworld: out of bounds")

	// ErrTileFull is returned when placing onto a tile that already holds
	// MaxTileContents entities.
	ErrTileFull = errors.New("gameworld: tile full")
)

// Map is the square tile grid. Each tile is addressed by a row-major index,
// idx = x + y*size, which keys every per-tile field.
type Map struct {
	size     uint16
	spawn    int
	walls    []bool
	blocked  []bool
	contents map[int][]ecs.Entity
	dirty    bool
}

// NewMap returns an open size×size map with the spawn point at (1,1).
func NewMap(size uint16) *Map {
	n := int(size) * int(size)
	m := &Map{
		size:     size,
		walls:    make([]bool, n),
		blocked:  make([]bool, n),
		contents: make(map[int][]ecs.Entity),
	}
	if size > 1 {
		m.spawn = int(size) + 1
	}
	return m
}

// Size returns the length of one side.
func (m *Map) Size() uint16 { return m.size }

// Len returns the number of tiles.
func (m *Map) Len() int { return len(m.walls) }

// CoordsToIdx converts coordinates to a tile index.
func (m *Map) CoordsToIdx(c message.Coords) (int, error) {
	if c.X >= m.size || c.Y >= m.size {
		return 0, fmt.Errorf("%w: (%d,%d) on %d×%d map", ErrOutOfBounds, c.X, c.Y, m.size, m.size)
	}
	return int(c.X) + int(c.Y)*int(m.size), nil
}

// IdxToCoords converts a tile index to coordinates.
func (m *Map) IdxToCoords(idx int) (message.Coords, error) {
	if err := m.check(idx); err != nil {
		return message.Coords{}, err
	}
	s := int(m.size)
	return message.Coords{X: uint16(idx % s), Y: uint16(idx / s)}, nil
}

func (m *Map) check(idx int) error {
	if idx < 0 || idx >= len(m.walls) {
		return fmt.Errorf("%w: index %d of %d", ErrOutOfBounds, idx, len(m.walls))
	}
	return nil
}

// SpawnIdx returns the player spawn tile.
func (m *Map) SpawnIdx() int { return m.spawn }

// SpawnPoint returns the player spawn coordinates.
func (m *Map) SpawnPoint() message.Coords {
	c, _ := m.IdxToCoords(m.spawn)
	return c
}

// IsWall reports whether idx is a wall. Off-map indices count as walls.
func (m *Map) IsWall(idx int) bool {
	return m.check(idx) != nil || m.walls[idx]
}

// IsBlocked reports whether idx can not be entered. Off-map indices are
// blocked.
func (m *Map) IsBlocked(idx int) bool {
	return m.check(idx) != nil || m.blocked[idx]
}

// SetBlocked marks idx blocked or clear. Walls stay blocked.
func (m *Map) SetBlocked(idx int, blocked bool) error {
	if err := m.check(idx); err != nil {
		return err
	}
	m.blocked[idx] = blocked || m.walls[idx]
	m.dirty = true
	return nil
}

// Contents returns a copy of the entities on idx.
func (m *Map) Contents(idx int) []ecs.Entity {
	return slices.Clone(m.contents[idx])
}

// Place adds e to idx.
func (m *Map) Place(idx int, e ecs.Entity) error {
	if err := m.check(idx); err != nil {
		return err
	}
	if len(m.contents[idx]) >= MaxTileContents {
		return fmt.Errorf("%w: index %d", ErrTileFull, idx)
	}
	m.contents[idx] = append(m.contents[idx], e)
	m.dirty = true
	return nil
}

// Remove takes e off idx, reporting whether it was there.
func (m *Map) Remove(idx int, e ecs.Entity) bool {
	list := m.contents[idx]
	i := slices.Index(list, e)
	if i < 0 {
		return false
	}
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(m.contents, idx)
	} else {
		m.contents[idx] = list
	}
	m.dirty = true
	return true
}

// IsDirty reports whether the map changed since the last Clean.
func (m *Map) IsDirty() bool { return m.dirty }

// MarkDirty flags the map as changed.
func (m *Map) MarkDirty() { m.dirty = true }

// Clean clears the dirty flag.
func (m *Map) Clean() { m.dirty = false }

// Layout renders the terrain in the precon format: one row per line, '#'
// for walls, '@' for the spawn point and '.' for floor.
func (m *Map) Layout() string {
	var b strings.Builder
	s := int(m.size)
	for y := range s {
		for x := range s {
			idx := x + y*s
			switch {
			case m.walls[idx]:
				b.WriteByte('#')
			case idx == m.spawn:
				b.WriteByte('@')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
