package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/randalmurphal/burrow/pkg/burrow/message"
)

// KeyMap defines the key bindings translated into input events.
type KeyMap struct {
	// Vi keys and arrows (HJKL events).
	North key.Binding
	South key.Binding
	East  key.Binding
	West  key.Binding

	// The WASD cluster, with q/e/z/c for diagonals (WASD events).
	WASD [8]key.Binding

	Cancel  key.Binding
	Confirm key.Binding
	Tab     key.Binding
	BackTab key.Binding
	Delete  key.Binding
	Menu    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	North: key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "north")),
	South: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "south")),
	East:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "east")),
	West:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "west")),

	WASD: [8]key.Binding{
		message.N:  key.NewBinding(key.WithKeys("w")),
		message.NE: key.NewBinding(key.WithKeys("e")),
		message.E:  key.NewBinding(key.WithKeys("d")),
		message.SE: key.NewBinding(key.WithKeys("c")),
		message.S:  key.NewBinding(key.WithKeys("s")),
		message.SW: key.NewBinding(key.WithKeys("z")),
		message.W:  key.NewBinding(key.WithKeys("a")),
		message.NW: key.NewBinding(key.WithKeys("q")),
	},

	Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "mark")),
	Tab:     key.NewBinding(key.WithKeys("tab")),
	BackTab: key.NewBinding(key.WithKeys("shift+tab")),
	Delete:  key.NewBinding(key.WithKeys("backspace", "delete")),
	Menu: key.NewBinding(
		key.WithKeys("f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12"),
		key.WithHelp("F1", "menu"),
	),
	Quit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("C-c", "quit")),
}

// Translate maps a key press to an input event. Unbound keys yield a Null
// event.
func (k KeyMap) Translate(msg tea.KeyMsg) message.InputEvent {
	switch {
	case key.Matches(msg, k.Quit):
		return message.Key(message.InputExit)
	case key.Matches(msg, k.North):
		return message.HJKL(message.N)
	case key.Matches(msg, k.South):
		return message.HJKL(message.S)
	case key.Matches(msg, k.East):
		return message.HJKL(message.E)
	case key.Matches(msg, k.West):
		return message.HJKL(message.W)
	case key.Matches(msg, k.Cancel):
		return message.Key(message.InputCancel)
	case key.Matches(msg, k.Confirm):
		return message.Key(message.InputConfirm)
	case key.Matches(msg, k.Tab):
		return message.Key(message.InputTab)
	case key.Matches(msg, k.BackTab):
		return message.Key(message.InputBackTab)
	case key.Matches(msg, k.Delete):
		return message.Key(message.InputDelete)
	case key.Matches(msg, k.Menu):
		return message.Key(message.InputMenu)
	}
	for d, b := range k.WASD {
		if key.Matches(msg, b) {
			return message.WASD(message.Dir(d))
		}
	}
	return message.InputEvent{}
}

// Translate maps a key press using DefaultKeyMap.
func Translate(msg tea.KeyMsg) message.InputEvent {
	return DefaultKeyMap.Translate(msg)
}
