package model

import "fmt"

// Game-scoped errors carry the game and player ids so the orchestration
// layer can translate them into a user-facing rejection.

// GameFinishedError is returned when an operation targets an already
// decided game.
type GameFinishedError struct {
	GameID   GameID
	PlayerID PlayerID
}

func (e *GameFinishedError) Error() string {
	return fmt.Sprintf("game %d already finished (player %d)", e.GameID, e.PlayerID)
}

// InvalidPlayerError is returned when the player is not a participant
// of the game.
type InvalidPlayerError struct {
	GameID   GameID
	PlayerID PlayerID
}

func (e *InvalidPlayerError) Error() string {
	return fmt.Sprintf("player %d is not part of game %d", e.PlayerID, e.GameID)
}

// ShipsAlreadyPlacedError is returned when a side tries to place a
// second fleet.
type ShipsAlreadyPlacedError struct {
	GameID   GameID
	PlayerID PlayerID
}

func (e *ShipsAlreadyPlacedError) Error() string {
	return fmt.Sprintf("ships already placed in game %d by player %d", e.GameID, e.PlayerID)
}

// GameNotStartedError is returned on an attack before both fleets are placed
type GameNotStartedError struct {
	GameID   GameID
	PlayerID PlayerID
}

func (e *GameNotStartedError) Error() string {
	return fmt.Sprintf("game %d has not started yet (player %d)", e.GameID, e.PlayerID)
}

// RandomAttackFailedError is returned when no empty target cell remains
type RandomAttackFailedError struct {
	GameID   GameID
	PlayerID PlayerID
}

func (e *RandomAttackFailedError) Error() string {
	return fmt.Sprintf("random attack failed in game %d (player %d)", e.GameID, e.PlayerID)
}

// RandomShipsPlacementFailedError is returned when no legal random
// placement exists for a fleet.
type RandomShipsPlacementFailedError struct {
	GameID   GameID
	PlayerID PlayerID
}

func (e *RandomShipsPlacementFailedError) Error() string {
	return fmt.Sprintf("random ship placement failed in game %d (player %d)", e.GameID, e.PlayerID)
}

// Registry-scoped errors

// PlayerNotFoundError is returned when no player exists with the given id
type PlayerNotFoundError struct {
	PlayerID PlayerID
}

func (e *PlayerNotFoundError) Error() string {
	return fmt.Sprintf("player %d not found", e.PlayerID)
}

// RoomNotFoundError is returned when no room exists with the given id
type RoomNotFoundError struct {
	RoomID RoomID
}

func (e *RoomNotFoundError) Error() string {
	return fmt.Sprintf("room %d not found", e.RoomID)
}

// RoomAlreadyExistsError is returned when a player who already owns an
// open room tries to create another.
type RoomAlreadyExistsError struct {
	RoomID RoomID
}

func (e *RoomAlreadyExistsError) Error() string {
	return fmt.Sprintf("room %d already exists", e.RoomID)
}

// GameNotFoundError is returned when no live game exists with the given id
type GameNotFoundError struct {
	GameID GameID
}

func (e *GameNotFoundError) Error() string {
	return fmt.Sprintf("game %d not found", e.GameID)
}

// IncorrectPasswordError is returned on a failed login for an existing name
type IncorrectPasswordError struct {
	Name string
}

func (e *IncorrectPasswordError) Error() string {
	return fmt.Sprintf("authentication failed for %q", e.Name)
}

// StoreError wraps an unexpected record store failure
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("record store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
