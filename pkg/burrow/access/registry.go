package access

import (
	"context"
	"errors"
	"log/slog"

	"github.com/randalmurphal/burrow/pkg/burrow/ecs"
	"github.com/randalmurphal/burrow/pkg/burrow/observability"
	"github.com/randalmurphal/burrow/pkg/burrow/registry"
)

// Registry owns the shared world and one Accessor per key. Accessors are
// created on first request and live as long as the Registry.
//
// Build one Registry after the world is fully constructed and hand it to
// every goroutine that touches the world.
type Registry struct {
	world     *ecs.World
	accessors *registry.Registry[Key, *Accessor]

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for accessor and guard events.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the recorder for acquisition metrics.
// Default: observability.NoopMetrics{}
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(r *Registry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithTracing sets the span manager for guard spans.
// Default: observability.NoopSpanManager{}
func WithTracing(s observability.SpanManager) Option {
	return func(r *Registry) {
		if s != nil {
			r.spans = s
		}
	}
}

// NewRegistry returns a Registry over world.
func NewRegistry(world *ecs.World, opts ...Option) *Registry {
	r := &Registry{
		world:     world,
		accessors: registry.New[Key, *Accessor](),
		logger:    slog.Default(),
		metrics:   observability.NoopMetrics{},
		spans:     observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// World returns the shared world. Its contents may only be touched through
// views returned by the typed acquisition functions.
func (r *Registry) World() *ecs.World {
	return r.world
}

// RequestAccess returns an unacquired guard for key, creating the key's
// accessor on first use. It never blocks on other guards.
func (r *Registry) RequestAccess(key Key) *Guard {
	return r.RequestAccessContext(context.Background(), key)
}

// RequestAccessContext is RequestAccess with a context carried into the
// guard's span and metrics. Acquisition ignores cancellation.
//
// If a previous accessor creation panicked, the key map is poisoned and this
// panics with a *PoisonError.
func (r *Registry) RequestAccessContext(ctx context.Context, key Key) *Guard {
	return &Guard{acc: r.accessor(ctx, key), reg: r, ctx: ctx}
}

func (r *Registry) accessor(ctx context.Context, key Key) *Accessor {
	defer func() {
		if p := recover(); p != nil {
			if err, ok := p.(error); ok && errors.Is(err, registry.ErrPoisoned) {
				panic(&PoisonError{Key: key, Op: "request", Err: err})
			}
			panic(p)
		}
	}()

	a, created := r.accessors.GetOrCreate(key, func() *Accessor {
		return NewAccessor(key)
	})
	if created {
		observability.LogAccessorCreated(r.logger, key.String())
		r.metrics.RecordAccessorCreated(ctx, key.String())
	}
	return a
}

// Len returns the number of accessors created so far.
func (r *Registry) Len() int {
	return r.accessors.Len()
}

// State returns a snapshot of key's accessor, or false if it has not been
// created yet.
func (r *Registry) State(key Key) (State, bool) {
	a, ok := r.accessors.Get(key)
	if !ok {
		return State{}, false
	}
	return a.State(), true
}
