package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/randalmurphal/burrow/pkg/burrow/access"
	"github.com/randalmurphal/burrow/pkg/burrow/ecs"
	"github.com/randalmurphal/burrow/pkg/burrow/gameworld"
)

// Styles holds the lipgloss styles used to draw a frame.
type Styles struct {
	r      *lipgloss.Renderer
	Wall   lipgloss.Style
	Floor  lipgloss.Style
	Status lipgloss.Style
}

// NewStyles returns the default styles bound to r. A nil renderer means the
// lipgloss default renderer.
func NewStyles(r *lipgloss.Renderer) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Styles{
		r:      r,
		Wall:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Floor:  r.NewStyle().Foreground(lipgloss.Color("236")),
		Status: r.NewStyle().Faint(true),
	}
}

func (s Styles) glyph(rd gameworld.Renderable) string {
	st := s.r.NewStyle()
	if rd.FG != "" {
		st = st.Foreground(lipgloss.Color(rd.FG))
	}
	if rd.BG != "" {
		st = st.Background(lipgloss.Color(rd.BG))
	}
	return st.Render(string(rd.Glyph))
}

// Render draws the map with every positioned renderable on top. It takes
// read guards on Position, Renderable and Map, in that order, and releases
// them before returning.
func Render(reg *access.Registry, styles Styles) (string, error) {
	w := reg.World()

	pg := reg.RequestAccess(access.KeyPosition)
	defer pg.Release()
	rg := reg.RequestAccess(access.KeyRenderable)
	defer rg.Release()
	mg := reg.RequestAccess(access.KeyMap)
	defer mg.Release()

	positions := access.ReadStorage[gameworld.Position](pg, w)
	renderables := access.ReadStorage[gameworld.Renderable](rg, w)
	m := access.ReadResource[gameworld.Map](mg, w).Get()

	cells := make([]string, m.Len())
	for idx := range cells {
		if m.IsWall(idx) {
			cells[idx] = styles.Wall.Render("#")
		} else {
			cells[idx] = styles.Floor.Render(".")
		}
	}

	var err error
	renderables.Each(func(e ecs.Entity, rd gameworld.Renderable) bool {
		p, ok := positions.Get(e)
		if !ok {
			return true
		}
		idx, cerr := m.CoordsToIdx(p.Coords)
		if cerr != nil {
			err = cerr
			return false
		}
		cells[idx] = styles.glyph(rd)
		return true
	})
	if err != nil {
		return "", err
	}

	size := int(m.Size())
	rows := make([]string, size)
	for y := range size {
		rows[y] = strings.Join(cells[y*size:(y+1)*size], "")
	}
	return strings.Join(rows, "\n"), nil
}
