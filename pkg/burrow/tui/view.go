package tui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/burrow/pkg/burrow/access"
	"github.com/randalmurphal/burrow/pkg/burrow/ecs"
	"github.com/randalmurphal/burrow/pkg/burrow/gameworld"
	"github.com/randalmurphal/burrow/pkg/burrow/message"
)

// Screen receives finished frames.
type Screen interface {
	Draw(frame string)
}

// View is the presentation goroutine. It turns input events into commands
// for the simulation and redraws whenever the simulation reports a change.
type View struct {
	reg      *access.Registry
	ui       <-chan message.InputEvent
	deltas   <-chan message.DeltaNotification
	commands chan<- message.MutateCommand
	screen   Screen
	styles   Styles
	logger   *slog.Logger

	last   message.InputEvent
	frames int
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithStyles sets the frame styles.
func WithStyles(s Styles) ViewOption {
	return func(v *View) { v.styles = s }
}

// WithViewLogger sets the logger.
func WithViewLogger(logger *slog.Logger) ViewOption {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewView returns a View. It closes commands when Run returns.
func NewView(
	reg *access.Registry,
	ui <-chan message.InputEvent,
	deltas <-chan message.DeltaNotification,
	commands chan<- message.MutateCommand,
	screen Screen,
	opts ...ViewOption,
) *View {
	v := &View{
		reg:      reg,
		ui:       ui,
		deltas:   deltas,
		commands: commands,
		screen:   screen,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.styles.r == nil {
		v.styles = NewStyles(nil)
	}
	return v
}

// Frames returns how many frames have been drawn.
func (v *View) Frames() int {
	return v.frames
}

// Run draws the first frame and ticks until an Exit event, a closed input
// channel or cancellation. On the way out it closes the command channel and
// drains deltas until the simulation closes them.
func (v *View) Run(ctx context.Context) error {
	defer func() {
		close(v.commands)
		for range v.deltas {
		}
	}()

	if err := v.redraw(); err != nil {
		return err
	}
	for {
		ticker, err := v.Tick(ctx)
		if err != nil {
			return err
		}
		if ticker == message.ExitProgram {
			return nil
		}
	}
}

// Tick handles one input event or delta.
func (v *View) Tick(ctx context.Context) (message.Ticker, error) {
	select {
	case ev, ok := <-v.ui:
		if !ok {
			return v.exit(ctx)
		}
		return v.handle(ctx, ev)
	case d, ok := <-v.deltas:
		if !ok {
			return message.ExitProgram, nil
		}
		return message.Continue, v.apply(d)
	case <-ctx.Done():
		return message.ExitProgram, ctx.Err()
	}
}

func (v *View) handle(ctx context.Context, ev message.InputEvent) (message.Ticker, error) {
	v.last = ev
	switch {
	case ev.Kind == message.InputExit:
		return v.exit(ctx)
	case ev.IsMove():
		return message.Continue, v.send(ctx, message.Move{Dir: ev.Dir})
	case ev.Kind == message.InputConfirm:
		player, ok := v.player()
		if !ok {
			return message.Continue, nil
		}
		return message.Continue, v.send(ctx, message.InsertMarker{Target: player})
	case ev.Kind == message.InputNull:
		return message.Continue, nil
	default:
		return message.Continue, v.redraw()
	}
}

func (v *View) exit(ctx context.Context) (message.Ticker, error) {
	if err := v.send(ctx, message.Exit{}); err != nil {
		return message.ExitProgram, err
	}
	return message.ExitProgram, nil
}

// send delivers cmd while still consuming deltas, so a simulation blocked on
// a full delta channel can make room for the command.
func (v *View) send(ctx context.Context, cmd message.MutateCommand) error {
	for {
		select {
		case v.commands <- cmd:
			return nil
		case d, ok := <-v.deltas:
			if !ok {
				return fmt.Errorf("tui: simulation stopped before %T was delivered", cmd)
			}
			if err := v.apply(d); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (v *View) apply(d message.DeltaNotification) error {
	if md, ok := d.(message.MapDelta); ok && md.Empty() {
		return nil
	}
	return v.redraw()
}

func (v *View) player() (ecs.Entity, bool) {
	g := v.reg.RequestAccess(access.KeyPlayer)
	defer g.Release()
	players := access.ReadStorage[gameworld.Player](g, v.reg.World()).Entities()
	if len(players) == 0 {
		return ecs.Entity{}, false
	}
	return players[0], true
}

func (v *View) redraw() error {
	frame, err := Render(v.reg, v.styles)
	if err != nil {
		return err
	}
	status := "hjkl/wasd move · enter mark · C-c quit"
	if v.last.Kind != message.InputNull {
		status = "last: " + v.last.String()
	}
	v.screen.Draw(frame + "\n" + v.styles.Status.Render(status))
	v.frames++
	return nil
}
