package burrow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/burrow/pkg/burrow/access"
	"github.com/randalmurphal/burrow/pkg/burrow/message"
	"github.com/randalmurphal/burrow/pkg/burrow/observability"
	"github.com/randalmurphal/burrow/pkg/burrow/savegame"
	"github.com/randalmurphal/burrow/pkg/burrow/sim"
	"github.com/randalmurphal/burrow/pkg/burrow/tui"
)

// InputSource yields translated user input. Next blocks until an event is
// available. It returns io.EOF when no more input will arrive.
type InputSource interface {
	Next(ctx context.Context) (message.InputEvent, error)
}

// Game runs the controller, view and simulation goroutines over one shared
// world.
type Game struct {
	reg    *access.Registry
	input  InputSource
	screen tui.Screen

	logger    *slog.Logger
	spans     observability.SpanManager
	metrics   observability.MetricsRecorder
	styles    *tui.Styles
	capacity  int
	sessionID string
	store     savegame.Store
	saveEvery uint64
	baseTurn  uint64

	mu    sync.Mutex
	state RunState
	prev  RunState
	ticks atomic.Uint64
}

// NewGame returns a Game over reg. Input is read from input and frames are
// drawn on screen.
func NewGame(reg *access.Registry, input InputSource, screen tui.Screen, opts ...Option) (*Game, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	if screen == nil {
		return nil, ErrNoScreen
	}
	g := &Game{
		reg:       reg,
		input:     input,
		screen:    screen,
		logger:    slog.Default(),
		spans:     observability.NoopSpanManager{},
		metrics:   observability.NoopMetrics{},
		capacity:  DefaultChannelCapacity,
		sessionID: uuid.NewString(),
		state:     PreRun,
		prev:      PreRun,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// SessionID returns the ID used in logs and saves.
func (g *Game) SessionID() string {
	return g.sessionID
}

// State returns the current run state.
func (g *Game) State() RunState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Turn returns the start turn plus the number of input events forwarded so
// far.
func (g *Game) Turn() uint64 {
	return g.baseTurn + g.ticks.Load()
}

func (g *Game) setState(s RunState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s != g.state {
		g.prev, g.state = g.state, s
	}
}

func (g *Game) advance(ev message.InputEvent) RunState {
	g.mu.Lock()
	defer g.mu.Unlock()
	next := transition(g.state, g.prev, ev)
	if next != g.state {
		g.prev, g.state = g.state, next
	}
	return next
}

// Run starts the three goroutines and blocks until they have all finished.
// A clean exit (an Exit event or the end of input) returns nil and, with a
// save store configured, writes a "final" save. If any goroutine fails or
// panics the others are shut down and the first failure is returned as a
// *ThreadError or *PanicError. Cancelling ctx returns ctx.Err().
func (g *Game) Run(ctx context.Context) error {
	g.setState(MainMenu)

	ui := make(chan message.InputEvent, g.capacity)
	commands := make(chan message.MutateCommand, g.capacity)
	deltas := make(chan message.DeltaNotification, g.capacity)

	model := sim.New(g.reg, commands, deltas,
		sim.WithLogger(observability.EnrichLogger(g.logger, "simulation", g.sessionID)),
		sim.WithTracing(g.spans),
	)
	viewOpts := []tui.ViewOption{
		tui.WithViewLogger(observability.EnrichLogger(g.logger, "tui", g.sessionID)),
	}
	if g.styles != nil {
		viewOpts = append(viewOpts, tui.WithStyles(*g.styles))
	}
	view := tui.NewView(g.reg, ui, deltas, commands, g.screen, viewOpts...)

	parent := ctx
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(g.supervise(ctx, "simulation", model.Run))
	eg.Go(g.supervise(ctx, "tui", view.Run))
	eg.Go(g.supervise(ctx, "controller", func(ctx context.Context) error {
		return g.control(ctx, ui)
	}))

	err := eg.Wait()
	g.setState(GameOver)
	if err != nil {
		return err
	}
	if err := parent.Err(); err != nil {
		return err
	}
	g.save(parent, "final")
	return nil
}

// supervise turns a goroutine body into an errgroup function. Panics are
// recovered into *PanicError, errors other than cancellation are wrapped in
// *ThreadError.
func (g *Game) supervise(ctx context.Context, name string, fn func(context.Context) error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{Thread: name, Value: r, Stack: string(debug.Stack())}
				observability.LogFatal(g.logger, name, err)
			}
		}()
		if err := fn(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			observability.LogFatal(g.logger, name, err)
			return &ThreadError{Thread: name, Err: err}
		}
		return nil
	}
}

// control is the controller loop. It reads input and passes every event on
// to the view. An Exit event or the end of input forwards Exit and returns.
func (g *Game) control(ctx context.Context, ui chan<- message.InputEvent) error {
	defer close(ui)
	logger := observability.EnrichLogger(g.logger, "controller", g.sessionID)
	g.setState(AwaitingInput)

	for {
		ev, err := g.input.Next(ctx)
		switch {
		case errors.Is(err, io.EOF):
			ev = message.Key(message.InputExit)
		case err != nil:
			return fmt.Errorf("read input: %w", err)
		}

		select {
		case ui <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}

		state := g.advance(ev)
		if ev.Kind == message.InputExit {
			logger.Debug("exit requested", slog.Uint64("turn", g.Turn()))
			return nil
		}

		n := g.ticks.Add(1)
		observability.LogTick(logger, g.Turn(), state.String())
		if g.saveEvery > 0 && n%g.saveEvery == 0 {
			g.save(ctx, fmt.Sprintf("turn-%d", g.Turn()))
		}
	}
}

// save writes a snapshot if a store is configured. Failures are logged and
// recorded, never returned.
func (g *Game) save(ctx context.Context, slot string) {
	if g.store == nil {
		return
	}
	turn := g.Turn()
	n, err := savegame.Write(ctx, g.store, g.reg, g.sessionID, slot, turn)
	g.metrics.RecordSave(ctx, int64(n), err)
	if err != nil {
		observability.LogSaveError(g.logger, g.sessionID, "save "+slot, err)
		return
	}
	observability.LogSaved(g.logger, g.sessionID, turn, n)
}
