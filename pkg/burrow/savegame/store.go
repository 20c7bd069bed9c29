// Package savegame persists world snapshots so a game can be resumed.
//
// A Store holds opaque snapshot bytes keyed by session and slot. Snapshots are
// produced by Capture, which reads the shared world under guards, encoded
// with Encode and turned back into a fresh world with Restore.
package savegame

import (
	"errors"
	"time"
)

// Store persists encoded snapshots.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a snapshot for a session under a slot name.
	// Overwrites if (sessionID, slot) already exists.
	Save(sessionID, slot string, data []byte) error

	// Load retrieves a snapshot.
	// Returns ErrNotFound if it doesn't exist.
	Load(sessionID, slot string) ([]byte, error)

	// List returns all saves for a session, oldest write first.
	// Returns empty slice (not error) if the session has no saves.
	List(sessionID string) ([]Info, error)

	// Delete removes one save.
	// Returns nil if it doesn't exist.
	Delete(sessionID, slot string) error

	// DeleteSession removes all saves for a session.
	DeleteSession(sessionID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info describes a save without loading it.
type Info struct {
	SessionID string
	Slot      string
	Sequence  int
	Timestamp time.Time
	Size      int64
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates a save doesn't exist.
	ErrNotFound = errors.New("savegame not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("savegame store closed")
)

// LoadLatest returns the most recently written save of a session and its
// slot name.
func LoadLatest(s Store, sessionID string) ([]byte, string, error) {
	infos, err := s.List(sessionID)
	if err != nil {
		return nil, "", err
	}
	if len(infos) == 0 {
		return nil, "", ErrNotFound
	}
	slot := infos[len(infos)-1].Slot
	data, err := s.Load(sessionID, slot)
	if err != nil {
		return nil, "", err
	}
	return data, slot, nil
}
