package model

import "time"

// RoomID uniquely identifies an open room
type RoomID int64

// Room is an open invitation by one player awaiting an opponent. It is
// destroyed the moment a second player joins (becoming a game) or when
// its owner disconnects.
type Room struct {
	ID        RoomID
	OwnerID   PlayerID
	OwnerName string
	CreatedAt time.Time
}
