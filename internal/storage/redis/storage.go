package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"

	"github.com/gridfleet/seabattle/internal/model"
	"github.com/gridfleet/seabattle/internal/storage"
)

// Storage is a Redis-backed implementation of the record store
type Storage struct {
	client *redis.Client
	clock  quartz.Clock
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config, clock quartz.Clock) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, clock: clock, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, clock quartz.Clock) *Storage {
	return &Storage{client: client, clock: clock, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, name, passwordHash string) (*model.Player, error) {
	seq, err := s.client.Incr(ctx, playerCounterKey()).Result()
	if err != nil {
		return nil, &model.StoreError{Op: "create player", Err: err}
	}

	player := &model.Player{
		ID:           model.PlayerID(seq),
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.savePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// savePlayer writes the player record and its indexes in one pipeline
func (s *Storage) savePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return &model.StoreError{Op: "marshal player", Err: err}
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKey(player.ID), data, 0)
	pipe.Set(ctx, playerNameIndexKey(player.Name), strconv.FormatInt(int64(player.ID), 10), 0)
	pipe.SAdd(ctx, playersIndexKey(), int64(player.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return &model.StoreError{Op: "save player", Err: err}
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, &model.PlayerNotFoundError{PlayerID: id}
		}
		return nil, &model.StoreError{Op: "get player", Err: err}
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, &model.StoreError{Op: "decode player", Err: err}
	}
	return &player, nil
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	idStr, err := s.client.Get(ctx, playerNameIndexKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, &model.PlayerNotFoundError{}
		}
		return nil, &model.StoreError{Op: "get player by name", Err: err}
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, &model.StoreError{Op: "decode player name index", Err: err}
	}
	return s.GetPlayer(ctx, model.PlayerID(id))
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	player, err := s.GetPlayer(ctx, id)
	if err != nil {
		var notFound *model.PlayerNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, playerKey(id))
	pipe.Del(ctx, playerNameIndexKey(player.Name))
	pipe.SRem(ctx, playersIndexKey(), int64(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return &model.StoreError{Op: "delete player", Err: err}
	}
	return nil
}

func (s *Storage) UpdatePlayerID(ctx context.Context, oldID, newID model.PlayerID) (*model.Player, error) {
	player, err := s.GetPlayer(ctx, oldID)
	if err != nil {
		return nil, err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, playerKey(oldID))
	pipe.SRem(ctx, playersIndexKey(), int64(oldID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, &model.StoreError{Op: "rebind player id", Err: err}
	}

	player.ID = newID
	if err := s.savePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *Storage) IncrementPlayerWins(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	player, err := s.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	player.Wins++
	if err := s.savePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.SMembers(ctx, playersIndexKey()).Result()
	if err != nil {
		return nil, &model.StoreError{Op: "list players", Err: err}
	}
	if len(ids) == 0 {
		return []*model.Player{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, idStr := range ids {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, playerKey(model.PlayerID(id)))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, &model.StoreError{Op: "list players", Err: err}
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Index entry may outlive the record briefly
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			continue
		}
		players = append(players, &player)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players, nil
}

// Room operations

func (s *Storage) CreateRoom(ctx context.Context, owner *model.Player) (*model.Room, error) {
	seq, err := s.client.Incr(ctx, roomCounterKey()).Result()
	if err != nil {
		return nil, &model.StoreError{Op: "create room", Err: err}
	}
	id := model.RoomID(seq)

	// SETNX on the owner index makes the exists-check and the claim one
	// atomic step per player.
	claimed, err := s.client.SetNX(ctx, roomOwnerIndexKey(owner.ID), seq, s.cfg.RoomTTL).Result()
	if err != nil {
		return nil, &model.StoreError{Op: "claim room owner", Err: err}
	}
	if !claimed {
		existing, err := s.client.Get(ctx, roomOwnerIndexKey(owner.ID)).Result()
		if err != nil {
			return nil, &model.StoreError{Op: "read room owner", Err: err}
		}
		existingID, _ := strconv.ParseInt(existing, 10, 64)
		return nil, &model.RoomAlreadyExistsError{RoomID: model.RoomID(existingID)}
	}

	room := &model.Room{
		ID:        id,
		OwnerID:   owner.ID,
		OwnerName: owner.Name,
		CreatedAt: s.clock.Now(),
	}

	data, err := json.Marshal(room)
	if err != nil {
		return nil, &model.StoreError{Op: "marshal room", Err: err}
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, roomKey(id), data, s.cfg.RoomTTL)
	pipe.SAdd(ctx, roomsIndexKey(), seq)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, &model.StoreError{Op: "save room", Err: err}
	}
	return room, nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, &model.RoomNotFoundError{RoomID: id}
		}
		return nil, &model.StoreError{Op: "get room", Err: err}
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, &model.StoreError{Op: "decode room", Err: err}
	}
	return &room, nil
}

// GetRoomByOwner returns the open room owned by the given player, or
// nil without error when the player owns none.
func (s *Storage) GetRoomByOwner(ctx context.Context, ownerID model.PlayerID) (*model.Room, error) {
	idStr, err := s.client.Get(ctx, roomOwnerIndexKey(ownerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, &model.StoreError{Op: "get room by owner", Err: err}
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, &model.StoreError{Op: "decode room owner index", Err: err}
	}

	room, err := s.GetRoom(ctx, model.RoomID(id))
	if err != nil {
		var notFound *model.RoomNotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	room, err := s.GetRoom(ctx, id)
	if err != nil {
		var notFound *model.RoomNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, roomKey(id))
	pipe.Del(ctx, roomOwnerIndexKey(room.OwnerID))
	pipe.SRem(ctx, roomsIndexKey(), int64(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return &model.StoreError{Op: "delete room", Err: err}
	}
	return nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	ids, err := s.client.SMembers(ctx, roomsIndexKey()).Result()
	if err != nil {
		return nil, &model.StoreError{Op: "list rooms", Err: err}
	}
	if len(ids) == 0 {
		return []*model.Room{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, idStr := range ids {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, roomKey(model.RoomID(id)))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, &model.StoreError{Op: "list rooms", Err: err}
	}

	rooms := make([]*model.Room, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Room may have expired
		}
		var room model.Room
		if err := json.Unmarshal([]byte(val.(string)), &room); err != nil {
			continue
		}
		rooms = append(rooms, &room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}
