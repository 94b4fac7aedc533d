package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/coder/quartz"

	"github.com/gridfleet/seabattle/internal/model"
	"github.com/gridfleet/seabattle/internal/storage"
)

// Storage is an in-memory implementation of the record store
type Storage struct {
	clock quartz.Clock

	mu         sync.RWMutex
	players    map[model.PlayerID]*model.Player
	nameIndex  map[string]model.PlayerID
	rooms      map[model.RoomID]*model.Room
	ownerIndex map[model.PlayerID]model.RoomID
	playerSeq  int64
	roomSeq    int64
}

// New creates a new in-memory storage instance
func New(clock quartz.Clock) *Storage {
	return &Storage{
		clock:      clock,
		players:    make(map[model.PlayerID]*model.Player),
		nameIndex:  make(map[string]model.PlayerID),
		rooms:      make(map[model.RoomID]*model.Room),
		ownerIndex: make(map[model.PlayerID]model.RoomID),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, name, passwordHash string) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerSeq++
	player := &model.Player{
		ID:           model.PlayerID(s.playerSeq),
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    s.clock.Now(),
	}
	s.players[player.ID] = player
	s.nameIndex[name] = player.ID
	return player, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, &model.PlayerNotFoundError{PlayerID: id}
	}
	return player, nil
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nameIndex[name]
	if !ok {
		return nil, &model.PlayerNotFoundError{}
	}
	player, ok := s.players[id]
	if !ok {
		return nil, &model.PlayerNotFoundError{PlayerID: id}
	}
	return player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if player, ok := s.players[id]; ok {
		delete(s.nameIndex, player.Name)
		delete(s.players, id)
	}
	return nil
}

func (s *Storage) UpdatePlayerID(ctx context.Context, oldID, newID model.PlayerID) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[oldID]
	if !ok {
		return nil, &model.PlayerNotFoundError{PlayerID: oldID}
	}
	delete(s.players, oldID)
	player.ID = newID
	s.players[newID] = player
	s.nameIndex[player.Name] = newID
	return player, nil
}

func (s *Storage) IncrementPlayerWins(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return nil, &model.PlayerNotFoundError{PlayerID: id}
	}
	player.Wins++
	return player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players, nil
}

// Room operations

func (s *Storage) CreateRoom(ctx context.Context, owner *model.Player) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.ownerIndex[owner.ID]; ok {
		return nil, &model.RoomAlreadyExistsError{RoomID: existing}
	}
	s.roomSeq++
	room := &model.Room{
		ID:        model.RoomID(s.roomSeq),
		OwnerID:   owner.ID,
		OwnerName: owner.Name,
		CreatedAt: s.clock.Now(),
	}
	s.rooms[room.ID] = room
	s.ownerIndex[owner.ID] = room.ID
	return room, nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, &model.RoomNotFoundError{RoomID: id}
	}
	return room, nil
}

// GetRoomByOwner returns the open room owned by the given player, or
// nil without error when the player owns none.
func (s *Storage) GetRoomByOwner(ctx context.Context, ownerID model.PlayerID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.ownerIndex[ownerID]
	if !ok {
		return nil, nil
	}
	return s.rooms[id], nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[id]; ok {
		delete(s.ownerIndex, room.OwnerID)
		delete(s.rooms, id)
	}
	return nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}
