package access

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/randalmurphal/burrow/pkg/burrow/ecs"
	"github.com/randalmurphal/burrow/pkg/burrow/gameworld"
	"github.com/randalmurphal/burrow/pkg/burrow/message"
	"github.com/randalmurphal/burrow/pkg/burrow/registry"
)

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	w, err := gameworld.NewWorld(gameworld.Empty10x10())
	require.NoError(t, err)
	return NewRegistry(w, opts...)
}

func playerEntity(t *testing.T, r *Registry) ecs.Entity {
	t.Helper()
	g := r.RequestAccess(KeyPlayer)
	defer g.Release()
	players := ReadStorage[gameworld.Player](g, r.World()).Entities()
	require.Len(t, players, 1)
	return players[0]
}

func TestRequestAccessCreatesAccessorLazily(t *testing.T) {
	r := newTestRegistry(t)
	assert.Equal(t, 0, r.Len())

	_, ok := r.State(KeyPosition)
	assert.False(t, ok)

	g := r.RequestAccess(KeyPosition)
	assert.Equal(t, KeyPosition, g.Key())
	assert.Equal(t, ModeNone, g.Mode())
	assert.Equal(t, 1, r.Len())

	s, ok := r.State(KeyPosition)
	require.True(t, ok)
	assert.True(t, s.Idle(), "requesting does not acquire")
}

func TestOneAccessorPerKey(t *testing.T) {
	r := newTestRegistry(t)

	const n = 64
	guards := make([]*Guard, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guards[i] = r.RequestAccess(KeyMap)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, r.Len())

	// A writer on the first guard excludes a reader on a guard from a later,
	// separate request for the same key.
	WriteResource[gameworld.Map](guards[0], r.World())
	later := r.RequestAccess(KeyMap)
	entered := make(chan struct{})
	go func() {
		ReadResource[gameworld.Map](later, r.World())
		close(entered)
	}()

	assert.Never(t, func() bool {
		select {
		case <-entered:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond, "reader entered while the writer held the key")

	guards[0].Release()
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("reader was not admitted after the writer released")
	}
	later.Release()

	s, _ := r.State(KeyMap)
	assert.True(t, s.Idle())
}

func TestGuardWriteReleaseReturnsIdle(t *testing.T) {
	r := newTestRegistry(t)

	g := r.RequestAccess(KeyMap)
	WriteResource[gameworld.Map](g, r.World())
	assert.Equal(t, ModeWrite, g.Mode())

	s, _ := r.State(KeyMap)
	assert.Equal(t, State{ReadAllowed: false, WriteAllowed: false}, s)

	g.Release()
	s, _ = r.State(KeyMap)
	assert.True(t, s.Idle())
}

func TestGuardReadReleaseDecrementsByOne(t *testing.T) {
	r := newTestRegistry(t)

	guards := make([]*Guard, 3)
	for i := range guards {
		guards[i] = r.RequestAccess(KeyPosition)
		ReadStorage[gameworld.Position](guards[i], r.World())
	}
	s, _ := r.State(KeyPosition)
	assert.Equal(t, 3, s.Readers)
	assert.False(t, s.WriteAllowed)

	guards[0].Release()
	s, _ = r.State(KeyPosition)
	assert.Equal(t, 2, s.Readers)
	assert.False(t, s.WriteAllowed, "only the last reader re-enables writes")

	guards[1].Release()
	guards[2].Release()
	s, _ = r.State(KeyPosition)
	assert.True(t, s.Idle())
}

func TestReleaseRunsOnce(t *testing.T) {
	r := newTestRegistry(t)

	a := r.RequestAccess(KeyPosition)
	b := r.RequestAccess(KeyPosition)
	ReadStorage[gameworld.Position](a, r.World())
	ReadStorage[gameworld.Position](b, r.World())

	a.Release()
	a.Release()
	a.Release()

	s, _ := r.State(KeyPosition)
	assert.Equal(t, 1, s.Readers, "repeat releases must not drop other readers")
	b.Release()
}

func TestReleaseUnacquiredGuardIsNoop(t *testing.T) {
	r := newTestRegistry(t)

	g := r.RequestAccess(KeyMap)
	assert.NotPanics(t, g.Release)

	s, _ := r.State(KeyMap)
	assert.True(t, s.Idle())
}

func TestGuardMisuse(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("acquire twice", func(t *testing.T) {
		g := r.RequestAccess(KeyName)
		defer g.Release()
		ReadStorage[gameworld.Name](g, r.World())

		assert.PanicsWithError(t, "access: guard for Name: already acquired for read", func() {
			WriteStorage[gameworld.Name](g, r.World())
		})
	})

	t.Run("acquire after release", func(t *testing.T) {
		g := r.RequestAccess(KeyName)
		g.Release()

		assert.PanicsWithError(t, "access: guard for Name: acquired after release", func() {
			ReadStorage[gameworld.Name](g, r.World())
		})
	})

	s, _ := r.State(KeyName)
	assert.True(t, s.Idle())
}

func TestReleaseWhileWaitingGivesAccessBack(t *testing.T) {
	r := newTestRegistry(t)

	w := r.RequestAccess(KeyMap)
	WriteResource[gameworld.Map](w, r.World())

	g := r.RequestAccess(KeyMap)
	panicked := make(chan any, 1)
	go func() {
		defer func() { panicked <- recover() }()
		ReadResource[gameworld.Map](g, r.World())
	}()
	require.Eventually(t, func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		return g.acquiring
	}, time.Second, time.Millisecond)

	g.Release()
	w.Release()

	var p any
	select {
	case p = <-panicked:
	case <-time.After(time.Second):
		t.Fatal("waiting reader never woke")
	}
	ge, ok := p.(*GuardError)
	require.True(t, ok, "panic value should be *GuardError, got %T", p)
	assert.Equal(t, "released while acquiring", ge.Reason)
	assert.Equal(t, ModeNone, g.Mode())

	s, _ := r.State(KeyMap)
	assert.True(t, s.Idle(), "the late grant must be handed back")

	g.Release()
	next := r.RequestAccess(KeyMap)
	acquired := make(chan struct{})
	go func() {
		WriteResource[gameworld.Map](next, r.World())
		close(acquired)
	}()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("writer blocked after the released guard woke")
	}
	next.Release()
}

func TestConcurrentReleaseRunsOnce(t *testing.T) {
	r := newTestRegistry(t)

	a := r.RequestAccess(KeyPosition)
	b := r.RequestAccess(KeyPosition)
	ReadStorage[gameworld.Position](a, r.World())
	ReadStorage[gameworld.Position](b, r.World())

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Release()
		}()
	}
	wg.Wait()

	s, _ := r.State(KeyPosition)
	assert.Equal(t, 1, s.Readers)
	b.Release()
}

func TestTypeMismatchPanicsWithWorldTypeError(t *testing.T) {
	r := newTestRegistry(t)
	type unregistered struct{}

	g := r.RequestAccess(KeyPosition)
	func() {
		defer func() {
			_, ok := recover().(*ecs.TypeError)
			assert.True(t, ok)
		}()
		ReadStorage[unregistered](g, r.World())
	}()

	s, _ := r.State(KeyPosition)
	assert.Equal(t, 1, s.Readers, "the guard was acquired before the fetch")
	g.Release()
	s, _ = r.State(KeyPosition)
	assert.True(t, s.Idle())
}

// The Position scenario: three readers hold the key, a writer blocks until
// all three release, and a later reader sees the write.
func TestPositionReadersThenWriter(t *testing.T) {
	r := newTestRegistry(t)
	player := playerEntity(t, r)

	readers := make([]*Guard, 3)
	for i := range readers {
		readers[i] = r.RequestAccess(KeyPosition)
		pos := ReadStorage[gameworld.Position](readers[i], r.World())
		require.True(t, pos.Has(player))
	}

	var wrote atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		g := r.RequestAccess(KeyPosition)
		defer g.Release()
		pos := WriteStorage[gameworld.Position](g, r.World())
		p, _ := pos.GetMut(player)
		p.X = 5
		wrote.Store(true)
	}()

	for i, g := range readers {
		time.Sleep(20 * time.Millisecond)
		assert.False(t, wrote.Load(), "writer ran with %d readers active", len(readers)-i)
		g.Release()
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("writer never ran")
	}

	g := r.RequestAccess(KeyPosition)
	defer g.Release()
	p, _ := ReadStorage[gameworld.Position](g, r.World()).Get(player)
	assert.Equal(t, uint16(5), p.X)
}

func TestDistinctKeysAreIndependent(t *testing.T) {
	r := newTestRegistry(t)

	m := r.RequestAccess(KeyMap)
	WriteResource[gameworld.Map](m, r.World())
	defer m.Release()

	done := make(chan struct{})
	go func() {
		defer close(done)
		g := r.RequestAccess(KeyPlayer)
		defer g.Release()
		WriteStorage[gameworld.Player](g, r.World())

		h := r.RequestAccess(KeyPosition)
		defer h.Release()
		ReadStorage[gameworld.Position](h, r.World())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Player access blocked behind the Map writer")
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	player := playerEntity(t, r)

	func() {
		g := r.RequestAccess(KeyMarker)
		defer g.Release()
		WriteStorage[gameworld.Marker](g, r.World()).Insert(player, gameworld.Marker{})
	}()
	func() {
		g := r.RequestAccess(KeyMap)
		defer g.Release()
		WriteResource[gameworld.Map](g, r.World()).Get().MarkDirty()
	}()

	g := r.RequestAccess(KeyMarker)
	assert.True(t, ReadStorage[gameworld.Marker](g, r.World()).Has(player))
	g.Release()

	g = r.RequestAccess(KeyMap)
	assert.True(t, ReadResource[gameworld.Map](g, r.World()).Get().IsDirty())
	g.Release()
}

// Many readers and writers hammer one key; any overlap of a writer with
// another holder is a violation.
func TestReadersAndWritersNeverOverlap(t *testing.T) {
	r := newTestRegistry(t)

	var (
		activeReaders atomic.Int32
		activeWriters atomic.Int32
		violations    atomic.Int32
		wg            sync.WaitGroup
	)

	reader := func() {
		defer wg.Done()
		for range 200 {
			g := r.RequestAccess(KeyPosition)
			ReadStorage[gameworld.Position](g, r.World())
			activeReaders.Add(1)
			if activeWriters.Load() != 0 {
				violations.Add(1)
			}
			activeReaders.Add(-1)
			g.Release()
		}
	}
	writer := func() {
		defer wg.Done()
		for range 100 {
			g := r.RequestAccess(KeyPosition)
			WriteStorage[gameworld.Position](g, r.World())
			if activeWriters.Add(1) != 1 || activeReaders.Load() != 0 {
				violations.Add(1)
			}
			activeWriters.Add(-1)
			g.Release()
		}
	}

	for range 8 {
		wg.Add(1)
		go reader()
	}
	for range 3 {
		wg.Add(1)
		go writer()
	}
	wg.Wait()

	assert.Zero(t, violations.Load())
	s, _ := r.State(KeyPosition)
	assert.True(t, s.Idle())
}

func TestWithHelpersRelease(t *testing.T) {
	r := newTestRegistry(t)
	errBoom := errors.New("boom")

	err := WithReadStorage(r, KeyPosition, func(pos ecs.ReadStorage[gameworld.Position]) error {
		s, _ := r.State(KeyPosition)
		assert.Equal(t, 1, s.Readers)
		return nil
	})
	require.NoError(t, err)

	err = WithWriteStorage(r, KeyMarker, func(ecs.WriteStorage[gameworld.Marker]) error {
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	err = WithReadResource(r, KeyMap, func(m ecs.Fetch[gameworld.Map]) error {
		assert.Equal(t, uint16(10), m.Get().Size())
		return nil
	})
	require.NoError(t, err)

	assert.Panics(t, func() {
		_ = WithWriteResource(r, KeyMap, func(ecs.FetchMut[gameworld.Map]) error {
			panic("unwind")
		})
	})

	for _, k := range []Key{KeyPosition, KeyMarker, KeyMap} {
		s, ok := r.State(k)
		require.True(t, ok)
		assert.True(t, s.Idle(), "%s left held", k)
	}
}

func TestEntitiesResourceAccess(t *testing.T) {
	r := newTestRegistry(t)

	var e ecs.Entity
	err := WithWriteResource(r, KeyEntities, func(es ecs.FetchMut[ecs.Entities]) error {
		e = es.Get().Create()
		return nil
	})
	require.NoError(t, err)

	err = WithReadResource(r, KeyEntities, func(es ecs.Fetch[ecs.Entities]) error {
		assert.True(t, es.Get().IsAlive(e))
		return nil
	})
	require.NoError(t, err)
}

func TestPoisonedKeyMap(t *testing.T) {
	r := newTestRegistry(t)

	assert.Panics(t, func() {
		r.accessors.GetOrCreate(KeyMap, func() *Accessor { panic("factory failed") })
	})

	defer func() {
		p, ok := recover().(*PoisonError)
		require.True(t, ok)
		assert.Equal(t, KeyPosition, p.Key)
		assert.Equal(t, "request", p.Op)
		assert.ErrorIs(t, p, registry.ErrPoisoned)
	}()
	r.RequestAccess(KeyPosition)
}

type recordingMetrics struct {
	mu       sync.Mutex
	acquires []string
	releases []string
	created  []string
}

func (m *recordingMetrics) RecordAcquire(_ context.Context, key, mode string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acquires = append(m.acquires, key+"/"+mode)
}

func (m *recordingMetrics) RecordRelease(_ context.Context, key, mode string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases = append(m.releases, key+"/"+mode)
}

func (m *recordingMetrics) RecordAccessorCreated(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, key)
}

func (m *recordingMetrics) RecordSave(context.Context, int64, error) {}

type recordingSpans struct {
	started []string
	ended   int
}

func (s *recordingSpans) StartAccessSpan(ctx context.Context, key, mode string) (context.Context, trace.Span) {
	s.started = append(s.started, key+"/"+mode)
	return ctx, noop.Span{}
}

func (s *recordingSpans) StartTurnSpan(ctx context.Context, _ uint64) (context.Context, trace.Span) {
	return ctx, noop.Span{}
}

func (s *recordingSpans) EndSpanWithError(trace.Span, error) { s.ended++ }

func (s *recordingSpans) AddSpanEvent(context.Context, string, ...attribute.KeyValue) {}

func TestObservabilityHooks(t *testing.T) {
	metrics := &recordingMetrics{}
	spans := &recordingSpans{}
	r := newTestRegistry(t, WithMetrics(metrics), WithTracing(spans), WithLogger(nil))

	g := r.RequestAccessContext(context.Background(), KeyMap)
	ReadResource[gameworld.Map](g, r.World())
	g.Release()
	g.Release()

	h := r.RequestAccess(KeyMap)
	WriteResource[gameworld.Map](h, r.World())
	h.Release()

	r.RequestAccess(KeyPlayer).Release()

	assert.Equal(t, []string{"Map", "Player"}, metrics.created)
	assert.Equal(t, []string{"Map/read", "Map/write"}, metrics.acquires)
	assert.Equal(t, []string{"Map/read", "Map/write"}, metrics.releases)
	assert.Equal(t, []string{"Map/read", "Map/write"}, spans.started)
	assert.Equal(t, 2, spans.ended)
}

func TestPoisonedAcquireEndsSpan(t *testing.T) {
	spans := &recordingSpans{}
	r := newTestRegistry(t, WithTracing(spans))

	// Releasing an idle accessor is an invariant violation and poisons it.
	g := r.RequestAccess(KeyMarker)
	assert.Panics(t, func() { g.acc.release(ModeRead) })

	h := r.RequestAccess(KeyMarker)
	func() {
		defer func() {
			_, ok := recover().(*PoisonError)
			assert.True(t, ok)
		}()
		ReadStorage[gameworld.Marker](h, r.World())
	}()
	h.Release()

	assert.Equal(t, []string{"Marker/read"}, spans.started)
	assert.Equal(t, 1, spans.ended)
}

func TestMovePlayerAcrossKeys(t *testing.T) {
	r := newTestRegistry(t)
	player := playerEntity(t, r)

	// Ascending key order: Position, then Map.
	pg := r.RequestAccess(KeyPosition)
	mg := r.RequestAccess(KeyMap)
	pos := WriteStorage[gameworld.Position](pg, r.World())
	m := WriteResource[gameworld.Map](mg, r.World()).Get()

	p, _ := pos.GetMut(player)
	from, err := m.CoordsToIdx(p.Coords)
	require.NoError(t, err)
	p.Coords = message.Coords{X: p.X + 1, Y: p.Y}
	to, err := m.CoordsToIdx(p.Coords)
	require.NoError(t, err)
	require.True(t, m.Remove(from, player))
	require.NoError(t, m.Place(to, player))

	mg.Release()
	pg.Release()

	g := r.RequestAccess(KeyMap)
	defer g.Release()
	assert.Equal(t, []ecs.Entity{player}, ReadResource[gameworld.Map](g, r.World()).Get().Contents(to))
}
