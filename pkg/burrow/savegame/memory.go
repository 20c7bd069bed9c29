package savegame

import (
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps saves in memory. Data is lost when the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]storedSave // sessionID -> slot -> save
	closed   bool
}

type storedSave struct {
	data      []byte
	sequence  int
	timestamp time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]map[string]storedSave),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(sessionID, slot string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	saves := m.sessions[sessionID]
	if saves == nil {
		saves = make(map[string]storedSave)
		m.sessions[sessionID] = saves
	}

	seq := 1
	for _, s := range saves {
		seq = max(seq, s.sequence+1)
	}

	saves[slot] = storedSave{
		data:      slices.Clone(data),
		sequence:  seq,
		timestamp: time.Now().UTC(),
	}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(sessionID, slot string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	s, ok := m.sessions[sessionID][slot]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(s.data), nil
}

// List implements Store.
func (m *MemoryStore) List(sessionID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	saves := m.sessions[sessionID]
	infos := make([]Info, 0, len(saves))
	for slot, s := range saves {
		infos = append(infos, Info{
			SessionID: sessionID,
			Slot:      slot,
			Sequence:  s.sequence,
			Timestamp: s.timestamp,
			Size:      int64(len(s.data)),
		})
	}
	slices.SortFunc(infos, func(a, b Info) int { return a.Sequence - b.Sequence })
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(sessionID, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.sessions[sessionID], slot)
	return nil
}

// DeleteSession implements Store.
func (m *MemoryStore) DeleteSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.sessions, sessionID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.sessions = nil
	return nil
}

// Len returns the number of saves across all sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, saves := range m.sessions {
		n += len(saves)
	}
	return n
}
