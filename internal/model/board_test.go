package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridfleet/seabattle/internal/dependencies/mocks"
)

func TestBoardSetAndGet(t *testing.T) {
	board := NewBoard(10)

	assert.Equal(t, CellUnknown, board.Get(Position{X: 3, Y: 4}))
	board.Set(Position{X: 3, Y: 4}, CellHit)
	assert.Equal(t, CellHit, board.Get(Position{X: 3, Y: 4}))
	assert.False(t, board.IsEmpty(Position{X: 3, Y: 4}))
}

func TestBoardOutOfBoundsIsInert(t *testing.T) {
	board := NewBoard(10)

	board.Set(Position{X: -1, Y: 0}, CellHit)
	board.Set(Position{X: 0, Y: 10}, CellHit)

	assert.Equal(t, CellUnknown, board.Get(Position{X: -1, Y: 0}))
	assert.Equal(t, CellUnknown, board.Get(Position{X: 0, Y: 10}))
	assert.False(t, board.IsEmpty(Position{X: -1, Y: 0}))
	assert.False(t, board.Contains(Position{X: 10, Y: 0}))
}

func TestBoardEmptyPositionsRowMajor(t *testing.T) {
	board := NewBoard(2)
	board.Set(Position{X: 1, Y: 0}, CellMiss)

	positions := board.EmptyPositions()
	require.Equal(t, []Position{
		{X: 0, Y: 0},
		{X: 0, Y: 1},
		{X: 1, Y: 1},
	}, positions)
}

func TestBoardRandomEmptyPosition(t *testing.T) {
	board := NewBoard(2)
	board.Set(Position{X: 0, Y: 0}, CellMiss)

	rnd := mocks.NewMockRandom()
	rnd.QueueIntn(2)

	pos, ok := board.RandomEmptyPosition(rnd)
	require.True(t, ok)
	assert.Equal(t, Position{X: 1, Y: 1}, pos)
}

func TestBoardRandomEmptyPositionExhausted(t *testing.T) {
	board := NewBoard(1)
	board.Set(Position{X: 0, Y: 0}, CellHit)

	_, ok := board.RandomEmptyPosition(mocks.NewMockRandom())
	assert.False(t, ok)
}

func TestBoardAllEmpty(t *testing.T) {
	board := NewBoard(3)
	board.Set(Position{X: 1, Y: 1}, CellMiss)

	assert.True(t, board.AllEmpty([]Position{{X: 0, Y: 0}, {X: 2, Y: 2}}))
	assert.False(t, board.AllEmpty([]Position{{X: 0, Y: 0}, {X: 1, Y: 1}}))
	assert.False(t, board.AllEmpty([]Position{{X: 0, Y: 0}, {X: 3, Y: 0}}))
}
