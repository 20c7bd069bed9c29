package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randalmurphal/burrow/pkg/burrow/message"
)

type frameMsg string

type quitMsg struct{}

// inputBacklog is how many translated key presses may wait for the
// controller before further presses are dropped.
const inputBacklog = 64

// App is the bubbletea model that owns the terminal. Key presses are
// translated and queued for the controller; frames drawn by the View are
// shown as they arrive. Update never blocks on the controller.
type App struct {
	keys  KeyMap
	queue chan message.InputEvent
	input chan<- message.InputEvent
	done  <-chan struct{}
	frame string
}

// NewApp returns an App that sends translated input on input. Once done is
// closed, key presses are dropped and the program quits.
func NewApp(input chan<- message.InputEvent, done <-chan struct{}) App {
	return App{
		keys:  DefaultKeyMap,
		queue: make(chan message.InputEvent, inputBacklog),
		input: input,
		done:  done,
	}
}

// Init starts the command that feeds queued input to the controller in
// press order.
func (a App) Init() tea.Cmd {
	return a.pump
}

func (a App) pump() tea.Msg {
	for {
		select {
		case ev := <-a.queue:
			select {
			case a.input <- ev:
			case <-a.done:
				return quitMsg{}
			}
		case <-a.done:
			return quitMsg{}
		}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		select {
		case <-a.done:
			return a, tea.Quit
		default:
		}
		ev := a.keys.Translate(msg)
		if ev.Kind == message.InputNull {
			return a, nil
		}
		select {
		case a.queue <- ev:
		default:
			// controller is behind; drop the press
		}
		return a, nil
	case frameMsg:
		a.frame = string(msg)
		return a, nil
	case quitMsg:
		return a, tea.Quit
	}
	return a, nil
}

func (a App) View() string {
	return a.frame
}

// ProgramScreen draws frames into a running bubbletea program.
type ProgramScreen struct {
	P *tea.Program
}

// Draw implements Screen.
func (s ProgramScreen) Draw(frame string) {
	s.P.Send(frameMsg(frame))
}

// Quit asks the program to exit.
func (s ProgramScreen) Quit() {
	s.P.Send(quitMsg{})
}

// ChanInput reads input events from a channel.
type ChanInput <-chan message.InputEvent

// Next blocks for the next event. It returns io.EOF once the channel is
// closed and ctx.Err() on cancellation.
func (c ChanInput) Next(ctx context.Context) (message.InputEvent, error) {
	select {
	case ev, ok := <-c:
		if !ok {
			return message.InputEvent{}, io.EOF
		}
		return ev, nil
	case <-ctx.Done():
		return message.InputEvent{}, ctx.Err()
	}
}
