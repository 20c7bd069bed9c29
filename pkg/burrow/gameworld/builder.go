package gameworld

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrBadLayout is returned when a layout does not describe a valid map.
var ErrBadLayout = errors.New("gameworld: bad layout")

// Precon is a hand-made square map.
type Precon struct {
	Name   string
	Size   uint16
	Layout string
}

// Empty10x10 is a walled 10×10 room with the spawn point near the middle.
func Empty10x10() Precon {
	return Precon{
		Name: "empty_10x10",
		Size: 10,
		Layout: `
		##########
		#........#
		#........#
		#........#
		#...@....#
		#........#
		#........#
		#........#
		#........#
		##########`,
	}
}

// Test3x3 is a solid 3×3 block of wall.
func Test3x3() Precon {
	return Precon{
		Name: "test_3x3",
		Size: 3,
		Layout: `
		###
		###
		###`,
	}
}

// Precons returns every built-in layout.
func Precons() []Precon {
	return []Precon{Empty10x10(), Test3x3()}
}

// PreconByName looks up a built-in layout.
func PreconByName(name string) (Precon, bool) {
	for _, p := range Precons() {
		if p.Name == name {
			return p, true
		}
	}
	return Precon{}, false
}

// MapBuilder assembles a Map from a layout.
//
//	m, err := gameworld.NewMapBuilder().WithPrecon(gameworld.Empty10x10()).Build()
type MapBuilder struct {
	size   uint16
	layout string
	set    bool
}

// NewMapBuilder returns an empty builder.
func NewMapBuilder() *MapBuilder {
	return &MapBuilder{}
}

// WithPrecon uses a hand-made layout.
func (b *MapBuilder) WithPrecon(p Precon) *MapBuilder {
	return b.WithLayout(p.Size, p.Layout)
}

// WithLayout uses a size and layout string. Whitespace in the layout is
// ignored, so rows may be indented and separated by newlines.
func (b *MapBuilder) WithLayout(size uint16, layout string) *MapBuilder {
	b.size, b.layout, b.set = size, layout, true
	return b
}

// Build returns the map. Walls block their tile, as does the spawn point,
// which the player will occupy.
func (b *MapBuilder) Build() (*Map, error) {
	if !b.set {
		return nil, fmt.Errorf("%w: no layout given", ErrBadLayout)
	}
	cells := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, b.layout)

	want := int(b.size) * int(b.size)
	if len(cells) != want {
		return nil, fmt.Errorf("%w: %d tiles for a %d×%d map", ErrBadLayout, len(cells), b.size, b.size)
	}

	m := NewMap(b.size)
	for idx, c := range []byte(cells) {
		switch c {
		case '#':
			m.walls[idx] = true
			m.blocked[idx] = true
		case '.':
		case '@':
			m.spawn = idx
			m.blocked[idx] = true
		default:
			return nil, fmt.Errorf("%w: unexpected %q at tile %d", ErrBadLayout, c, idx)
		}
	}
	return m, nil
}
