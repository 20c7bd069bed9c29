package savegame

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Version is the snapshot format written by Encode.
const Version = 1

// ErrVersion is returned when decoding a snapshot of an unknown format.
var ErrVersion = errors.New("savegame: unsupported snapshot version")

// encMode uses Core Deterministic Encoding so equal snapshots encode to
// equal bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	encMode, err = opts.EncMode()
	if err != nil {
		panic("savegame: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("savegame: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode serializes a snapshot.
func Encode(s *Snapshot) ([]byte, error) {
	data, err := encMode.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot written by Encode.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := decMode.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, s.Version)
	}
	return &s, nil
}
