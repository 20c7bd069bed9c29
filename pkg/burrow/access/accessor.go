package access

import "sync"

// Mode is the kind of access a guard holds.
type Mode uint8

const (
	ModeNone Mode = iota
	ModeRead
	ModeWrite
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	default:
		return "none"
	}
}

// State is a point-in-time copy of an accessor's bookkeeping.
type State struct {
	Readers      int
	ReadAllowed  bool
	WriteAllowed bool
}

// Idle reports whether nobody holds the key.
func (s State) Idle() bool {
	return s.Readers == 0 && s.ReadAllowed && s.WriteAllowed
}

// Accessor arbitrates access to one key: any number of readers or a single
// writer. Waiters park on a condition variable bound to the accessor's mutex
// and re-check their predicate after every broadcast.
//
// There is no fairness: a steady stream of readers can starve a writer.
type Accessor struct {
	key  Key
	mu   sync.Mutex
	cond *sync.Cond

	readers      int
	readAllowed  bool
	writeAllowed bool
	poisoned     bool
}

// NewAccessor returns an idle accessor for key.
func NewAccessor(key Key) *Accessor {
	a := &Accessor{
		key:          key,
		readAllowed:  true,
		writeAllowed: true,
	}
	a.cond = sync.NewCond(&a.mu)
	return a
}

// Key returns the key this accessor guards.
func (a *Accessor) Key() Key {
	return a.key
}

// State returns a snapshot of the accessor's bookkeeping.
func (a *Accessor) State() State {
	var s State
	a.withLock("state", func() {
		s = State{Readers: a.readers, ReadAllowed: a.readAllowed, WriteAllowed: a.writeAllowed}
	})
	return s
}

// withLock runs fn with the mutex held. A panic inside fn poisons the
// accessor, wakes every waiter so it observes the poison, and keeps
// unwinding.
func (a *Accessor) withLock(op string, fn func()) {
	a.mu.Lock()
	defer func() {
		if r := recover(); r != nil {
			a.poisoned = true
			a.cond.Broadcast()
			a.mu.Unlock()
			panic(r)
		}
		a.mu.Unlock()
	}()
	a.checkPoison(op)
	fn()
}

// checkPoison must be called with mu held.
func (a *Accessor) checkPoison(op string) {
	if a.poisoned {
		panic(&PoisonError{Key: a.key, Op: op})
	}
}

func (a *Accessor) acquireRead() {
	a.withLock("read", func() {
		for !a.readAllowed {
			a.cond.Wait()
			a.checkPoison("read")
		}
		a.writeAllowed = false
		a.readAllowed = true
		a.readers++
	})
}

// acquireWrite waits on writeAllowed for storages and resources alike. A
// writer never enters while readers hold the key.
func (a *Accessor) acquireWrite() {
	a.withLock("write", func() {
		for !a.writeAllowed {
			a.cond.Wait()
			a.checkPoison("write")
		}
		a.readAllowed = false
		a.writeAllowed = false
	})
}

// release undoes one acquisition made in mode. The flag pair identifies
// what is held; a pair that disagrees with mode is unreachable and panics.
func (a *Accessor) release(mode Mode) {
	a.withLock("release", func() {
		switch {
		case !a.writeAllowed && !a.readAllowed && mode == ModeWrite:
			a.readAllowed = true
			a.writeAllowed = true
		case !a.writeAllowed && a.readAllowed && mode == ModeRead && a.readers > 0:
			a.readers--
			if a.readers == 0 {
				a.writeAllowed = true
			}
		default:
			panic(&InvariantError{
				Key:          a.key,
				Mode:         mode,
				Readers:      a.readers,
				ReadAllowed:  a.readAllowed,
				WriteAllowed: a.writeAllowed,
			})
		}
		a.cond.Broadcast()
	})
}
