package model

// ShipClass is the coarse size category reported to clients
type ShipClass string

const (
	ShipSmall  ShipClass = "small"
	ShipMedium ShipClass = "medium"
	ShipLarge  ShipClass = "large"
	ShipHuge   ShipClass = "huge"
)

// ClassForLength maps a ship length to its class, defaulting to small
func ClassForLength(length int) ShipClass {
	switch length {
	case 2:
		return ShipMedium
	case 3:
		return ShipLarge
	case 4:
		return ShipHuge
	default:
		return ShipSmall
	}
}

// DefaultFleet is the classic fleet composition: one battleship, two
// cruisers, three destroyers and four single-cell boats.
func DefaultFleet() []int {
	return []int{4, 3, 3, 2, 2, 2, 1, 1, 1, 1}
}

// ShipSpec is the flat wire-level description of a ship placement
type ShipSpec struct {
	Position  Position  `json:"position"`
	Direction bool      `json:"direction"` // true = vertical
	Length    int       `json:"length"`
	Type      ShipClass `json:"type"`
}

// Ship is a single fleet unit: an anchor position, a length along one
// axis and per-segment damage state. The occupied and surrounding cell
// lists are derived from the geometry and rebuilt whenever it changes.
type Ship struct {
	anchor   Position
	length   int
	vertical bool
	health   []bool

	positions []Position
	around    []Position
}

// NewShip creates a ship with all segments intact
func NewShip(anchor Position, length int, vertical bool) *Ship {
	s := &Ship{
		anchor:   anchor,
		length:   length,
		vertical: vertical,
		health:   make([]bool, length),
	}
	for i := range s.health {
		s.health[i] = true
	}
	s.rebuild()
	return s
}

// NewShipFromSpec builds a ship from its wire-level description
func NewShipFromSpec(spec ShipSpec) *Ship {
	return NewShip(spec.Position, spec.Length, spec.Direction)
}

// Spec returns the wire-level description of this ship
func (s *Ship) Spec() ShipSpec {
	return ShipSpec{
		Position:  s.anchor,
		Direction: s.vertical,
		Length:    s.length,
		Type:      ClassForLength(s.length),
	}
}

// Anchor returns the ship's anchor position
func (s *Ship) Anchor() Position {
	return s.anchor
}

// Length returns the number of segments
func (s *Ship) Length() int {
	return s.length
}

// Vertical reports the orientation
func (s *Ship) Vertical() bool {
	return s.vertical
}

// SetAnchor moves the ship and rebuilds the derived cell lists.
// Random placement probes candidate anchors by moving one instance.
func (s *Ship) SetAnchor(pos Position) {
	s.anchor = pos
	s.rebuild()
}

// SetVertical flips or sets the orientation and rebuilds the derived cell lists
func (s *Ship) SetVertical(vertical bool) {
	s.vertical = vertical
	s.rebuild()
}

// Positions returns the occupied cells: length consecutive cells from
// the anchor along the orientation axis.
func (s *Ship) Positions() []Position {
	return s.positions
}

// AroundPositions returns the one-cell buffer surrounding the ship.
// The list is not clipped to any board; callers filter with Board.Contains.
func (s *Ship) AroundPositions() []Position {
	return s.around
}

// Shot reports whether pos lies on this ship and, if so, marks that
// segment destroyed. Not idempotent: re-shooting a dead segment marks it
// dead again and still reports true. Callers must resolve duplicate
// shots against the board before calling.
func (s *Ship) Shot(pos Position) bool {
	if !s.covers(pos) {
		return false
	}
	distance := pos.X - s.anchor.X
	if s.vertical {
		distance = pos.Y - s.anchor.Y
	}
	s.health[distance] = false
	return true
}

// IsDestroyed returns true once every segment has been hit
func (s *Ship) IsDestroyed() bool {
	for _, alive := range s.health {
		if alive {
			return false
		}
	}
	return true
}

func (s *Ship) covers(pos Position) bool {
	dx := pos.X - s.anchor.X
	dy := pos.Y - s.anchor.Y
	if s.vertical {
		return dx == 0 && dy >= 0 && dy < s.length
	}
	return dy == 0 && dx >= 0 && dx < s.length
}

// rebuild recomputes the occupied and surrounding cell lists after any
// geometry change
func (s *Ship) rebuild() {
	positions := make([]Position, 0, s.length)
	for i := 0; i < s.length; i++ {
		if s.vertical {
			positions = append(positions, Position{X: s.anchor.X, Y: s.anchor.Y + i})
		} else {
			positions = append(positions, Position{X: s.anchor.X + i, Y: s.anchor.Y})
		}
	}
	s.positions = positions

	topLeft := Position{X: s.anchor.X - 1, Y: s.anchor.Y - 1}
	bottomRight := Position{X: s.anchor.X + 1, Y: s.anchor.Y + s.length}
	if !s.vertical {
		bottomRight = Position{X: s.anchor.X + s.length, Y: s.anchor.Y + 1}
	}

	var around []Position
	for y := topLeft.Y; y <= bottomRight.Y; y++ {
		for x := topLeft.X; x <= bottomRight.X; x++ {
			pos := Position{X: x, Y: y}
			if !s.covers(pos) {
				around = append(around, pos)
			}
		}
	}
	s.around = around
}
