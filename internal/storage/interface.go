package storage

import (
	"context"

	"github.com/gridfleet/seabattle/internal/model"
)

// Store is the record store for players and rooms. Live games are not
// persisted; they are held by the session directory.
type Store interface {
	// Player operations
	CreatePlayer(ctx context.Context, name, passwordHash string) (*model.Player, error)
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByName(ctx context.Context, name string) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error
	// UpdatePlayerID rebinds a player record to a new connection id
	UpdatePlayerID(ctx context.Context, oldID, newID model.PlayerID) (*model.Player, error)
	IncrementPlayerWins(ctx context.Context, id model.PlayerID) (*model.Player, error)
	ListPlayers(ctx context.Context) ([]*model.Player, error)

	// Room operations. CreateRoom performs the "owner already has an
	// open room" check and the insert as one atomic step.
	CreateRoom(ctx context.Context, owner *model.Player) (*model.Room, error)
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	GetRoomByOwner(ctx context.Context, ownerID model.PlayerID) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	ListRooms(ctx context.Context) ([]*model.Room, error)
}
