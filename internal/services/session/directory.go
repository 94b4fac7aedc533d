package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/gridfleet/seabattle/internal/dependencies/random"
	"github.com/gridfleet/seabattle/internal/model"
	"github.com/gridfleet/seabattle/internal/services/bot"
	"github.com/gridfleet/seabattle/internal/storage"
)

// Notifier delivers outbound events to connected players. The directory
// composes every event; the transport only encodes and writes them.
// Deliveries to players without a live connection (the bot included)
// must be dropped silently.
type Notifier interface {
	// Send delivers events to a single player, in order
	Send(player model.PlayerID, events []model.Event)
	// Broadcast delivers events to the given players, or to every
	// connected player when no targets are named
	Broadcast(events []model.Event, players ...model.PlayerID)
}

// Config holds the match parameters applied to every new game
type Config struct {
	BoardSize int
	Fleet     []int
}

// DefaultConfig returns the classic ruleset: a 10x10 board and the
// 4/3/3/2/2/2/1/1/1/1 fleet.
func DefaultConfig() Config {
	return Config{
		BoardSize: model.DefaultBoardSize,
		Fleet:     model.DefaultFleet(),
	}
}

// gameEntry pairs a live game with its own mutex. All mutation of one
// game is serialized on entry.mu; the directory-wide mutex only guards
// the registry map and is never held while an entry lock is taken.
type gameEntry struct {
	mu   sync.Mutex
	game *model.Game
}

// Directory owns every live match and the player/room records around
// them. It is the single writer of game state: transports parse
// commands and call in, the directory mutates games and pushes the
// resulting events back out through the Notifier.
type Directory struct {
	logger    *slog.Logger
	store     storage.Store
	scheduler *bot.Scheduler
	rnd       random.Random
	cfg       Config

	notifier Notifier

	mu      sync.RWMutex
	games   map[model.GameID]*gameEntry
	gameSeq int64
}

// NewDirectory creates a session directory with no live games
func NewDirectory(logger *slog.Logger, store storage.Store, scheduler *bot.Scheduler, rnd random.Random, cfg Config) *Directory {
	return &Directory{
		logger:    logger,
		store:     store,
		scheduler: scheduler,
		rnd:       rnd,
		cfg:       cfg,
		games:     make(map[model.GameID]*gameEntry),
	}
}

// SetNotifier wires the outbound event sink. The transport implements
// Notifier but also calls into the directory, so the link is closed
// after construction.
func (d *Directory) SetNotifier(n Notifier) {
	d.notifier = n
}

// Login authenticates or registers the named player and rebinds the
// record to the caller's connection id. A fresh name creates a player;
// a known name requires the matching password. On success the caller
// receives its registration result plus current leaderboard and room
// list snapshots.
func (d *Directory) Login(ctx context.Context, connID model.PlayerID, name, password string) (*model.Player, error) {
	player, err := d.store.GetPlayerByName(ctx, name)
	var notFound *model.PlayerNotFoundError
	switch {
	case errors.As(err, &notFound):
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, fmt.Errorf("hashing password: %w", hashErr)
		}
		player, err = d.store.CreatePlayer(ctx, name, string(hash))
		if err != nil {
			return nil, err
		}
		player, err = d.store.UpdatePlayerID(ctx, player.ID, connID)
		if err != nil {
			return nil, err
		}
		d.logger.Info("registered new player", "player_id", player.ID, "name", name)
	case err != nil:
		return nil, err
	default:
		if bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)) != nil {
			return nil, &model.IncorrectPasswordError{Name: name}
		}
		player, err = d.store.UpdatePlayerID(ctx, player.ID, connID)
		if err != nil {
			return nil, err
		}
		d.logger.Info("player logged in", "player_id", player.ID, "name", name)
	}

	events := []model.Event{model.NewRegEvent(player.ID, player.Name)}
	if winners, err := d.winnersEvent(ctx); err == nil {
		events = append(events, winners)
	} else {
		d.logger.Error("building leaderboard snapshot", "error", err)
	}
	if rooms, err := d.roomsEvent(ctx); err == nil {
		events = append(events, rooms)
	} else {
		d.logger.Error("building room list snapshot", "error", err)
	}
	d.notifier.Send(player.ID, events)
	return player, nil
}

// CreateRoom opens a room owned by the given player and announces the
// updated room list to everyone. A player may own at most one open room.
func (d *Directory) CreateRoom(ctx context.Context, playerID model.PlayerID) (*model.Room, error) {
	player, err := d.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	room, err := d.store.CreateRoom(ctx, player)
	if err != nil {
		return nil, err
	}
	d.logger.Info("room created", "room_id", room.ID, "owner_id", player.ID)
	d.broadcastRooms(ctx)
	return room, nil
}

// JoinRoom closes the room and starts a game between its owner and the
// joining player. The owner joining their own room is a silent no-op
// returning a nil game. Each participant is told the new game id along
// with their own player id; everyone sees the room disappear.
func (d *Directory) JoinRoom(ctx context.Context, playerID model.PlayerID, roomID model.RoomID) (*model.Game, error) {
	room, err := d.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.OwnerID == playerID {
		return nil, nil
	}
	if _, err := d.store.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	if err := d.store.DeleteRoom(ctx, room.ID); err != nil {
		return nil, err
	}

	entry := d.registerGame([2]model.PlayerID{room.OwnerID, playerID})
	game := entry.game
	d.logger.Info("game created from room",
		"game_id", game.ID(), "room_id", room.ID, "players", game.Players())

	for _, p := range game.Players() {
		d.notifier.Send(p, []model.Event{model.NewCreateGameEvent(game.ID(), p)})
	}
	d.broadcastRooms(ctx)
	return game, nil
}

// SinglePlayer starts a match between the given player and the bot. The
// bot's fleet is placed immediately; the game starts once the human
// places theirs. Any open room owned by the player stays open.
func (d *Directory) SinglePlayer(ctx context.Context, playerID model.PlayerID) (*model.Game, error) {
	if _, err := d.store.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}

	entry := d.registerGame([2]model.PlayerID{model.BotPlayerID, playerID})
	game := entry.game

	entry.mu.Lock()
	err := game.PlaceRandomShips(model.BotPlayerID, d.cfg.Fleet)
	entry.mu.Unlock()
	if err != nil {
		return nil, err
	}

	d.logger.Info("single-player game created", "game_id", game.ID(), "player_id", playerID)
	d.notifier.Send(playerID, []model.Event{model.NewCreateGameEvent(game.ID(), playerID)})
	d.broadcastRooms(ctx)
	return game, nil
}

// AddShips places a player's fleet. When the second fleet lands the game
// starts: each side receives its own fleet and both learn whose turn it
// is. Against the bot, a bot first turn arms the delayed bot move.
func (d *Directory) AddShips(ctx context.Context, gameID model.GameID, playerID model.PlayerID, specs []model.ShipSpec) error {
	entry, err := d.lookup(gameID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	ships := make([]*model.Ship, 0, len(specs))
	for _, spec := range specs {
		ships = append(ships, model.NewShipFromSpec(spec))
	}
	if err := entry.game.PlaceShips(playerID, ships); err != nil {
		return err
	}
	d.logger.Info("fleet placed", "game_id", gameID, "player_id", playerID)

	if entry.game.Status() != model.GameStarted {
		return nil
	}

	for _, p := range entry.game.Players() {
		d.notifier.Send(p, []model.Event{model.NewStartGameEvent(p, entry.game.ShipsOf(p))})
	}
	d.notifier.Broadcast(
		[]model.Event{model.NewTurnEvent(entry.game.CurrentPlayer())},
		entry.game.Players()...)
	d.maybeScheduleBot(entry)
	return nil
}

// Attack resolves one shot for the given player. A nil position requests
// a random shot. Out-of-turn and duplicate shots resolve silently but
// still re-announce whose turn it is.
func (d *Directory) Attack(ctx context.Context, gameID model.GameID, playerID model.PlayerID, pos *model.Position) error {
	entry, err := d.lookup(gameID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return d.attackLocked(ctx, entry, playerID, pos)
}

// attackLocked is the shared attack path for humans and the bot. The
// caller holds entry.mu.
func (d *Directory) attackLocked(ctx context.Context, entry *gameEntry, playerID model.PlayerID, pos *model.Position) error {
	game := entry.game
	results, err := game.Attack(playerID, pos)
	if err != nil {
		return err
	}

	events := make([]model.Event, 0, len(results)+1)
	for _, result := range results {
		events = append(events, model.NewAttackEvent(result))
	}
	events = append(events, model.NewTurnEvent(game.CurrentPlayer()))
	d.notifier.Broadcast(events, game.Players()...)

	if winner, decided := game.Winner(); decided {
		d.finalize(ctx, game)
		d.notifier.Broadcast([]model.Event{model.NewFinishEvent(winner)}, game.Players()...)
		d.broadcastWinners(ctx)
		return nil
	}

	d.maybeScheduleBot(entry)
	return nil
}

// Logout handles a connection going away: the player's open room is
// withdrawn and every live match they are in is forfeited to the
// opponent, with finish and leaderboard events pushed to the survivors.
func (d *Directory) Logout(ctx context.Context, playerID model.PlayerID) error {
	room, err := d.store.GetRoomByOwner(ctx, playerID)
	if err != nil {
		return err
	}
	if room != nil {
		if err := d.store.DeleteRoom(ctx, room.ID); err != nil {
			return err
		}
		d.broadcastRooms(ctx)
	}

	forfeited := 0
	for _, entry := range d.snapshot() {
		entry.mu.Lock()
		game := entry.game
		// The game may have finished between the snapshot and the lock
		if !game.HasPlayer(playerID) || game.Status() == model.GameFinished {
			entry.mu.Unlock()
			continue
		}
		if err := game.Surrender(playerID); err != nil {
			entry.mu.Unlock()
			continue
		}
		winner, _ := game.Winner()
		d.finalize(ctx, game)
		d.notifier.Broadcast([]model.Event{model.NewFinishEvent(winner)}, game.Players()...)
		entry.mu.Unlock()
		forfeited++
	}
	if forfeited > 0 {
		d.logger.Info("player forfeited on disconnect",
			"player_id", playerID, "games", forfeited)
		d.broadcastWinners(ctx)
	}
	return nil
}

// Winners returns the leaderboard: players with at least one win,
// ordered by wins descending.
func (d *Directory) Winners(ctx context.Context) ([]*model.Player, error) {
	players, err := d.store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	winners := make([]*model.Player, 0, len(players))
	for _, p := range players {
		if p.Wins > 0 {
			winners = append(winners, p)
		}
	}
	sort.SliceStable(winners, func(i, j int) bool { return winners[i].Wins > winners[j].Wins })
	return winners, nil
}

// Rooms returns the current open rooms
func (d *Directory) Rooms(ctx context.Context) ([]*model.Room, error) {
	return d.store.ListRooms(ctx)
}

// Game returns the live game with the given id
func (d *Directory) Game(gameID model.GameID) (*model.Game, error) {
	entry, err := d.lookup(gameID)
	if err != nil {
		return nil, err
	}
	return entry.game, nil
}

// registerGame mints a game id and registers a fresh game
func (d *Directory) registerGame(players [2]model.PlayerID) *gameEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gameSeq++
	entry := &gameEntry{
		game: model.NewGame(model.GameID(d.gameSeq), players, d.cfg.BoardSize, d.rnd),
	}
	d.games[entry.game.ID()] = entry
	return entry
}

func (d *Directory) lookup(gameID model.GameID) (*gameEntry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.games[gameID]
	if !ok {
		return nil, &model.GameNotFoundError{GameID: gameID}
	}
	return entry, nil
}

// snapshot returns the current entries without holding the registry lock
// during per-entry work
func (d *Directory) snapshot() []*gameEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entries := make([]*gameEntry, 0, len(d.games))
	for _, entry := range d.games {
		entries = append(entries, entry)
	}
	return entries
}

// finalize retires a decided game: it leaves the registry, any pending
// bot move is dropped and a human winner's tally is bumped. Bot wins are
// never recorded.
func (d *Directory) finalize(ctx context.Context, game *model.Game) {
	winner, decided := game.Winner()
	if !decided {
		return
	}

	d.mu.Lock()
	delete(d.games, game.ID())
	d.mu.Unlock()
	d.scheduler.Cancel(game.ID())

	d.logger.Info("game finished", "game_id", game.ID(), "winner", winner)
	if winner.IsBot() {
		return
	}
	if _, err := d.store.IncrementPlayerWins(ctx, winner); err != nil {
		d.logger.Error("recording win", "player_id", winner, "error", err)
	}
}

// maybeScheduleBot arms the delayed bot move when the bot holds the
// turn. Called with entry.mu held; the fired callback re-acquires locks
// and re-validates, because the match can end in the meantime.
func (d *Directory) maybeScheduleBot(entry *gameEntry) {
	if entry.game.Status() != model.GameStarted || !entry.game.CurrentPlayer().IsBot() {
		return
	}
	gameID := entry.game.ID()
	d.scheduler.Schedule(gameID, func() { d.botMove(gameID) })
}

// botMove performs the bot's random attack. The game may have ended or
// changed hands since the timer was armed, so everything is re-checked
// under the entry lock.
func (d *Directory) botMove(gameID model.GameID) {
	entry, err := d.lookup(gameID)
	if err != nil {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.game.Status() != model.GameStarted || !entry.game.CurrentPlayer().IsBot() {
		return
	}
	if err := d.attackLocked(context.Background(), entry, model.BotPlayerID, nil); err != nil {
		d.logger.Error("bot move failed", "game_id", gameID, "error", err)
	}
}

// broadcastRooms pushes the current room list to every connection
func (d *Directory) broadcastRooms(ctx context.Context) {
	event, err := d.roomsEvent(ctx)
	if err != nil {
		d.logger.Error("building room list snapshot", "error", err)
		return
	}
	d.notifier.Broadcast([]model.Event{event})
}

// broadcastWinners pushes the leaderboard to every connection
func (d *Directory) broadcastWinners(ctx context.Context) {
	event, err := d.winnersEvent(ctx)
	if err != nil {
		d.logger.Error("building leaderboard snapshot", "error", err)
		return
	}
	d.notifier.Broadcast([]model.Event{event})
}

func (d *Directory) roomsEvent(ctx context.Context) (model.Event, error) {
	rooms, err := d.Rooms(ctx)
	if err != nil {
		return model.Event{}, err
	}
	return model.NewUpdateRoomEvent(rooms), nil
}

func (d *Directory) winnersEvent(ctx context.Context) (model.Event, error) {
	winners, err := d.Winners(ctx)
	if err != nil {
		return model.Event{}, err
	}
	return model.NewUpdateWinnersEvent(winners), nil
}
