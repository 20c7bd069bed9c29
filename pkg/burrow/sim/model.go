// Package sim is burrow's simulation goroutine: it applies MutateCommands to
// the shared world and reports what changed.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/burrow/pkg/burrow/access"
	"github.com/randalmurphal/burrow/pkg/burrow/ecs"
	"github.com/randalmurphal/burrow/pkg/burrow/gameworld"
	"github.com/randalmurphal/burrow/pkg/burrow/message"
	"github.com/randalmurphal/burrow/pkg/burrow/observability"
)

var (
	// ErrNoSuchEntity is returned when a command targets a dead entity.
	ErrNoSuchEntity = errors.New("sim: no such entity")

	// ErrUnknownCommand is returned for a command type the model does not
	// handle.
	ErrUnknownCommand = errors.New("sim: unknown command")
)

// Model owns the simulation side of the game loop.
type Model struct {
	reg      *access.Registry
	commands <-chan message.MutateCommand
	deltas   chan<- message.DeltaNotification

	logger *slog.Logger
	spans  observability.SpanManager
	turn   uint64
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTracing sets the span manager used for per-turn spans.
func WithTracing(s observability.SpanManager) Option {
	return func(m *Model) {
		if s != nil {
			m.spans = s
		}
	}
}

// New returns a Model reading commands and writing deltas. The Model closes
// deltas when Run returns.
func New(reg *access.Registry, commands <-chan message.MutateCommand, deltas chan<- message.DeltaNotification, opts ...Option) *Model {
	m := &Model{
		reg:      reg,
		commands: commands,
		deltas:   deltas,
		logger:   slog.Default(),
		spans:    observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Turn returns the number of commands applied so far.
func (m *Model) Turn() uint64 {
	return m.turn
}

// Run ticks until an Exit command arrives, the command channel closes or ctx
// is cancelled. Command failures are logged and do not stop the loop.
func (m *Model) Run(ctx context.Context) error {
	defer close(m.deltas)
	for {
		ticker, err := m.Tick(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			m.logger.Warn("command failed",
				slog.Uint64("turn", m.turn),
				slog.String("error", err.Error()))
		}
		if ticker == message.ExitProgram {
			return nil
		}
	}
}

// Tick waits for one command, applies it and forwards any delta.
func (m *Model) Tick(ctx context.Context) (message.Ticker, error) {
	var cmd message.MutateCommand
	select {
	case c, ok := <-m.commands:
		if !ok {
			return message.ExitProgram, nil
		}
		cmd = c
	case <-ctx.Done():
		return message.ExitProgram, ctx.Err()
	}

	delta, ticker, err := m.Apply(ctx, cmd)
	if err != nil || delta == nil {
		return ticker, err
	}

	select {
	case m.deltas <- delta:
		return ticker, nil
	case <-ctx.Done():
		return message.ExitProgram, ctx.Err()
	}
}

// Apply executes one command against the world. The returned delta is nil
// when nothing visible changed.
func (m *Model) Apply(ctx context.Context, cmd message.MutateCommand) (message.DeltaNotification, message.Ticker, error) {
	m.turn++
	ctx, span := m.spans.StartTurnSpan(ctx, m.turn)

	var (
		delta message.DeltaNotification
		err   error
	)
	switch c := cmd.(type) {
	case message.Move:
		delta, err = m.move(ctx, c.Dir)
	case message.InsertMarker:
		err = m.insertMarker(ctx, c.Target)
	case message.MapMutation:
		delta, err = m.mutateMap(ctx, c)
	case message.Exit:
		m.spans.EndSpanWithError(span, nil)
		m.logger.Debug("simulation exiting", slog.Uint64("turn", m.turn))
		return nil, message.ExitProgram, nil
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}

	m.spans.EndSpanWithError(span, err)
	return delta, message.Continue, err
}

// move steps every player one tile. Keys are taken in ascending order:
// Position, Player, BlocksTile, Map.
func (m *Model) move(ctx context.Context, dir message.Dir) (message.DeltaNotification, error) {
	w := m.reg.World()

	pg := m.reg.RequestAccessContext(ctx, access.KeyPosition)
	defer pg.Release()
	plg := m.reg.RequestAccessContext(ctx, access.KeyPlayer)
	defer plg.Release()
	bg := m.reg.RequestAccessContext(ctx, access.KeyBlocksTile)
	defer bg.Release()
	mg := m.reg.RequestAccessContext(ctx, access.KeyMap)
	defer mg.Release()

	positions := access.WriteStorage[gameworld.Position](pg, w)
	players := access.ReadStorage[gameworld.Player](plg, w)
	blockers := access.ReadStorage[gameworld.BlocksTile](bg, w)
	gm := access.WriteResource[gameworld.Map](mg, w).Get()

	var delta message.MapDelta
	for _, e := range players.Entities() {
		p, ok := positions.GetMut(e)
		if !ok {
			continue
		}
		from, err := gm.CoordsToIdx(p.Coords)
		if err != nil {
			return nil, fmt.Errorf("player %s: %w", e, err)
		}
		next, ok := p.Step(dir)
		if !ok {
			continue
		}
		to, err := gm.CoordsToIdx(next)
		if err != nil || gm.IsBlocked(to) {
			continue
		}

		gm.Remove(from, e)
		if err := gm.Place(to, e); err != nil {
			_ = gm.Place(from, e)
			return nil, err
		}
		p.Coords = next

		if blockers.Has(e) {
			_ = gm.SetBlocked(to, true)
			_ = gm.SetBlocked(from, anyBlocks(blockers, gm.Contents(from)))
		}
		delta.Add(from, gm.Contents(from))
		delta.Add(to, gm.Contents(to))
	}

	if delta.Empty() {
		return nil, nil
	}
	return delta, nil
}

func anyBlocks(blockers ecs.ReadStorage[gameworld.BlocksTile], es []ecs.Entity) bool {
	for _, e := range es {
		if blockers.Has(e) {
			return true
		}
	}
	return false
}

// insertMarker takes Entities then Marker.
func (m *Model) insertMarker(ctx context.Context, target ecs.Entity) error {
	w := m.reg.World()

	eg := m.reg.RequestAccessContext(ctx, access.KeyEntities)
	defer eg.Release()
	mk := m.reg.RequestAccessContext(ctx, access.KeyMarker)
	defer mk.Release()

	if !access.ReadResource[ecs.Entities](eg, w).Get().IsAlive(target) {
		return fmt.Errorf("%w: %s", ErrNoSuchEntity, target)
	}
	access.WriteStorage[gameworld.Marker](mk, w).Insert(target, gameworld.Marker{})
	return nil
}

func (m *Model) mutateMap(ctx context.Context, c message.MapMutation) (message.DeltaNotification, error) {
	var delta message.MapDelta
	err := access.WithWriteResource(m.reg, access.KeyMap, func(f ecs.FetchMut[gameworld.Map]) error {
		gm := f.Get()
		if _, err := gm.IdxToCoords(c.Idx); err != nil {
			return err
		}
		if c.Remove != nil {
			gm.Remove(c.Idx, *c.Remove)
		}
		if c.Add != nil {
			if err := gm.Place(c.Idx, *c.Add); err != nil {
				return err
			}
		}
		delta.Add(c.Idx, gm.Contents(c.Idx))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return delta, nil
}
