package burrow

import (
	"log/slog"

	"github.com/randalmurphal/burrow/pkg/burrow/observability"
	"github.com/randalmurphal/burrow/pkg/burrow/savegame"
	"github.com/randalmurphal/burrow/pkg/burrow/tui"
)

// DefaultChannelCapacity is the buffer size of the three game channels.
// One slot keeps the goroutines close to lockstep.
const DefaultChannelCapacity = 1

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the logger. Each goroutine gets a child logger tagged with
// its name and the session ID.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Game) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithChannelCapacity sets the buffer size of the input, command and delta
// channels. Values below zero are ignored.
func WithChannelCapacity(n int) Option {
	return func(g *Game) {
		if n >= 0 {
			g.capacity = n
		}
	}
}

// WithTracing sets the span manager used by the simulation.
func WithTracing(s observability.SpanManager) Option {
	return func(g *Game) {
		if s != nil {
			g.spans = s
		}
	}
}

// WithMetrics sets the recorder used for savegame metrics.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(g *Game) {
		if m != nil {
			g.metrics = m
		}
	}
}

// WithSessionID sets the session ID used in logs and saves. By default each
// Game gets a random UUID.
func WithSessionID(id string) Option {
	return func(g *Game) {
		if id != "" {
			g.sessionID = id
		}
	}
}

// WithSaveStore enables saving. The world is written to the store when Run
// finishes cleanly and, if every is above zero, after every that many
// turns.
func WithSaveStore(store savegame.Store, every uint64) Option {
	return func(g *Game) {
		g.store = store
		g.saveEvery = every
	}
}

// WithStyles sets the frame styles for the view.
func WithStyles(s tui.Styles) Option {
	return func(g *Game) {
		g.styles = &s
	}
}

// WithStartTurn sets the turn number the game resumes from, typically the
// Turn of a restored snapshot.
func WithStartTurn(turn uint64) Option {
	return func(g *Game) {
		g.baseTurn = turn
	}
}
