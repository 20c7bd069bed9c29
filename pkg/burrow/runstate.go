package burrow

import "github.com/randalmurphal/burrow/pkg/burrow/message"

// RunState is the controller's view of where the game is.
type RunState uint8

const (
	PreRun RunState = iota
	MainMenu
	MapGeneration
	AwaitingInput
	GameWorld
	Tui
	NextLevel
	GameOver
)

var runStateNames = [...]string{
	PreRun:        "pre_run",
	MainMenu:      "main_menu",
	MapGeneration: "map_generation",
	AwaitingInput: "awaiting_input",
	GameWorld:     "game_world",
	Tui:           "tui",
	NextLevel:     "next_level",
	GameOver:      "game_over",
}

func (s RunState) String() string {
	if int(s) < len(runStateNames) {
		return runStateNames[s]
	}
	return "unknown"
}

// transition returns the state after ev, given the current state and the
// state that was current before it. Every event is forwarded to the view
// regardless; the state only tracks what the player is doing.
func transition(cur, prev RunState, ev message.InputEvent) RunState {
	switch {
	case ev.Kind == message.InputExit:
		return GameOver
	case cur == GameOver:
		return GameOver
	case ev.Kind == message.InputMenu:
		if cur == MainMenu {
			return resume(prev)
		}
		return MainMenu
	case cur == MainMenu:
		switch ev.Kind {
		case message.InputConfirm:
			return AwaitingInput
		case message.InputCancel:
			return resume(prev)
		}
		return MainMenu
	case ev.IsMove(), ev.Kind == message.InputConfirm, ev.Kind == message.InputDelete:
		return GameWorld
	case ev.Kind == message.InputTab, ev.Kind == message.InputBackTab:
		return Tui
	}
	return AwaitingInput
}

func resume(prev RunState) RunState {
	switch prev {
	case PreRun, MainMenu, GameOver:
		return AwaitingInput
	}
	return prev
}
