package message

// Dir is one of the eight compass directions. North is toward row 0.
type Dir uint8

const (
	N Dir = iota
	NE
	E
	SE
	S
	SW
	W
	NW
)

var dirNames = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

var dirDeltas = [...][2]int{
	N:  {0, -1},
	NE: {1, -1},
	E:  {1, 0},
	SE: {1, 1},
	S:  {0, 1},
	SW: {-1, 1},
	W:  {-1, 0},
	NW: {-1, -1},
}

func (d Dir) String() string {
	if int(d) < len(dirNames) {
		return dirNames[d]
	}
	return "Dir(?)"
}

// Delta returns the column and row offsets of one step in d.
func (d Dir) Delta() (dx, dy int) {
	if int(d) >= len(dirDeltas) {
		return 0, 0
	}
	return dirDeltas[d][0], dirDeltas[d][1]
}

// Coords is a tile position, x across and y down.
type Coords struct {
	X uint16 `cbor:"1,keyasint"`
	Y uint16 `cbor:"2,keyasint"`
}

// Step returns the neighbour of c in direction d. It reports false when the
// step would leave the non-negative quadrant.
func (c Coords) Step(d Dir) (Coords, bool) {
	dx, dy := d.Delta()
	x, y := int(c.X)+dx, int(c.Y)+dy
	if x < 0 || y < 0 || x > 0xFFFF || y > 0xFFFF {
		return c, false
	}
	return Coords{X: uint16(x), Y: uint16(y)}, true
}
