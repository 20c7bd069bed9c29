package access

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/burrow/pkg/burrow/observability"
)

// Guard is a handle on one key's accessor. It is acquired once, through one
// of the typed functions (ReadStorage, WriteResource, ...), and released once.
//
//	g := reg.RequestAccess(access.KeyPosition)
//	defer g.Release()
//	positions := access.ReadStorage[gameworld.Position](g, reg.World())
//
// Release may be called from any goroutine and any number of times. If it
// runs while the owner is still waiting to acquire, the owner hands the
// access straight back once granted and panics with a *GuardError.
type Guard struct {
	acc *Accessor
	reg *Registry
	ctx context.Context

	mu         sync.Mutex
	mode       Mode
	acquiring  bool
	released   bool
	span       trace.Span
	acquiredAt time.Time
}

// Key returns the key this guard covers.
func (g *Guard) Key() Key {
	return g.acc.key
}

// Mode returns the mode the guard was acquired in, or ModeNone.
func (g *Guard) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// begin claims the guard for one acquisition.
func (g *Guard) begin(mode Mode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case g.released:
		panic(&GuardError{Key: g.acc.key, Reason: "acquired after release"})
	case g.mode != ModeNone:
		panic(&GuardError{Key: g.acc.key, Reason: "already acquired for " + g.mode.String()})
	case g.acquiring:
		panic(&GuardError{Key: g.acc.key, Reason: "already acquiring"})
	}
	g.acquiring = true
}

// acquire blocks until the accessor grants mode, then records it on the guard.
func (g *Guard) acquire(mode Mode) {
	g.begin(mode)

	key, name := g.acc.key.String(), mode.String()
	_, span := g.reg.spans.StartAccessSpan(g.ctx, key, name)
	defer func() {
		if r := recover(); r != nil {
			g.mu.Lock()
			g.acquiring = false
			g.mu.Unlock()
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			g.reg.spans.EndSpanWithError(span, err)
			panic(r)
		}
	}()

	start := time.Now()
	if mode == ModeWrite {
		g.acc.acquireWrite()
	} else {
		g.acc.acquireRead()
	}
	now := time.Now()

	g.mu.Lock()
	g.acquiring = false
	if g.released {
		g.mu.Unlock()
		g.acc.release(mode)
		panic(&GuardError{Key: g.acc.key, Reason: "released while acquiring"})
	}
	g.mode = mode
	g.span = span
	g.acquiredAt = now
	g.mu.Unlock()

	wait := now.Sub(start)
	g.reg.metrics.RecordAcquire(g.ctx, key, name, wait)
	observability.LogAcquired(g.reg.logger, key, name, float64(wait.Microseconds())/1000)
}

// Release gives the access back and wakes every waiter on the key. Only the
// first call has an effect. Releasing a guard that was never acquired does
// nothing to the accessor.
func (g *Guard) Release() {
	g.mu.Lock()
	if g.released {
		g.mu.Unlock()
		return
	}
	g.released = true
	mode, span, acquiredAt := g.mode, g.span, g.acquiredAt
	g.mu.Unlock()

	if mode == ModeNone {
		return
	}
	g.acc.release(mode)

	key, name := g.acc.key.String(), mode.String()
	held := time.Since(acquiredAt)
	g.reg.metrics.RecordRelease(g.ctx, key, name, held)
	observability.LogReleased(g.reg.logger, key, name, float64(held.Microseconds())/1000)
	g.reg.spans.EndSpanWithError(span, nil)
}
