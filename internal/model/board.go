package model

import "github.com/gridfleet/seabattle/internal/dependencies/random"

// DefaultBoardSize is the classic 10x10 grid
const DefaultBoardSize = 10

// Board represents one player's grid for a single game.
// It only tracks attack resolution; ship geometry lives on the fleet.
type Board struct {
	size  int
	cells [][]CellState
}

// NewBoard creates an empty board of the given size
func NewBoard(size int) *Board {
	cells := make([][]CellState, size)
	for i := range cells {
		cells[i] = make([]CellState, size)
	}
	return &Board{size: size, cells: cells}
}

// Size returns the grid dimension
func (b *Board) Size() int {
	return b.size
}

// Contains returns true if the position is within bounds
func (b *Board) Contains(pos Position) bool {
	return pos.X >= 0 && pos.X < b.size && pos.Y >= 0 && pos.Y < b.size
}

// Get returns the cell state at the given position, or CellUnknown if out of bounds
func (b *Board) Get(pos Position) CellState {
	if !b.Contains(pos) {
		return CellUnknown
	}
	return b.cells[pos.Y][pos.X]
}

// Set records a cell state. Out-of-bounds positions are ignored.
func (b *Board) Set(pos Position, state CellState) {
	if b.Contains(pos) {
		b.cells[pos.Y][pos.X] = state
	}
}

// SetAll records a cell state for every given position, skipping out-of-bounds ones
func (b *Board) SetAll(positions []Position, state CellState) {
	for _, pos := range positions {
		b.Set(pos, state)
	}
}

// IsEmpty returns true if the position is in bounds and not yet resolved
func (b *Board) IsEmpty(pos Position) bool {
	return b.Contains(pos) && b.cells[pos.Y][pos.X] == CellUnknown
}

// AllEmpty returns true if every given position is in bounds and unresolved
func (b *Board) AllEmpty(positions []Position) bool {
	for _, pos := range positions {
		if !b.IsEmpty(pos) {
			return false
		}
	}
	return true
}

// EmptyPositions returns all unresolved cells in row-major order
func (b *Board) EmptyPositions() []Position {
	var result []Position
	for y := 0; y < b.size; y++ {
		for x := 0; x < b.size; x++ {
			if b.cells[y][x] == CellUnknown {
				result = append(result, Position{X: x, Y: y})
			}
		}
	}
	return result
}

// RandomEmptyPosition picks uniformly among the unresolved cells.
// The second return value is false if the board has no empty cell left.
func (b *Board) RandomEmptyPosition(rnd random.Random) (Position, bool) {
	positions := b.EmptyPositions()
	if len(positions) == 0 {
		return Position{}, false
	}
	return positions[rnd.Intn(len(positions))], true
}
