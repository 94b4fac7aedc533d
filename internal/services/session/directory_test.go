package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/suite"

	"github.com/gridfleet/seabattle/internal/dependencies/mocks"
	"github.com/gridfleet/seabattle/internal/model"
	"github.com/gridfleet/seabattle/internal/services/bot"
	"github.com/gridfleet/seabattle/internal/storage/memory"
	"github.com/gridfleet/seabattle/internal/testutil"
)

// fakeNotifier records deliveries instead of writing to sockets
type fakeNotifier struct {
	mu       sync.Mutex
	sent     map[model.PlayerID][]model.Event
	everyone []model.Event
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(map[model.PlayerID][]model.Event)}
}

func (f *fakeNotifier) Send(player model.PlayerID, events []model.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[player] = append(f.sent[player], events...)
}

func (f *fakeNotifier) Broadcast(events []model.Event, players ...model.PlayerID) {
	if len(players) == 0 {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.everyone = append(f.everyone, events...)
		return
	}
	for _, player := range players {
		f.Send(player, events)
	}
}

func (f *fakeNotifier) eventsFor(player model.PlayerID) []model.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Event(nil), f.sent[player]...)
}

func (f *fakeNotifier) lastOfType(player model.PlayerID, typ model.EventType) (model.Event, bool) {
	events := f.eventsFor(player)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == typ {
			return events[i], true
		}
	}
	return model.Event{}, false
}

func (f *fakeNotifier) everyoneEvents() []model.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Event(nil), f.everyone...)
}

func (f *fakeNotifier) everyoneHasType(typ model.EventType) bool {
	for _, event := range f.everyoneEvents() {
		if event.Type == typ {
			return true
		}
	}
	return false
}

type DirectorySuite struct {
	suite.Suite
	clock     *quartz.Mock
	store     *memory.Storage
	rnd       *mocks.MockRandom
	scheduler *bot.Scheduler
	notifier  *fakeNotifier
	directory *Directory
	ctx       context.Context
}

func TestDirectorySuite(t *testing.T) {
	suite.Run(t, new(DirectorySuite))
}

func (s *DirectorySuite) SetupTest() {
	s.clock = quartz.NewMock(s.T())
	s.store = memory.New(s.clock)
	s.rnd = mocks.NewMockRandom()
	s.scheduler = bot.NewScheduler(s.clock, time.Second, testutil.NopLogger())
	s.notifier = newFakeNotifier()
	s.directory = NewDirectory(testutil.NopLogger(), s.store, s.scheduler, s.rnd, DefaultConfig())
	s.directory.SetNotifier(s.notifier)
	s.ctx = context.Background()
}

func (s *DirectorySuite) login(connID model.PlayerID, name string) *model.Player {
	player, err := s.directory.Login(s.ctx, connID, name, "secret")
	s.Require().NoError(err)
	return player
}

// specAt builds a single-cell ship placement
func specAt(x, y int) model.ShipSpec {
	return model.ShipSpec{
		Position: model.Position{X: x, Y: y},
		Length:   1,
		Type:     model.ShipSmall,
	}
}

// startTwoPlayerGame logs in alice (conn 1) and bob (conn 2), matches
// them through a room and places one single-cell ship each. The queued
// turn rolls make bob the first attacker; alice's ship sits at (0, 0)
// and bob's at (5, 5).
func (s *DirectorySuite) startTwoPlayerGame() *model.Game {
	s.login(1, "alice")
	s.login(2, "bob")

	_, err := s.directory.CreateRoom(s.ctx, 1)
	s.Require().NoError(err)
	rooms, err := s.directory.Rooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 1)

	game, err := s.directory.JoinRoom(s.ctx, 2, rooms[0].ID)
	s.Require().NoError(err)
	s.Require().NotNil(game)

	s.rnd.QueueIntn(0, 1)
	s.Require().NoError(s.directory.AddShips(s.ctx, game.ID(), 1, []model.ShipSpec{specAt(0, 0)}))
	s.Require().NoError(s.directory.AddShips(s.ctx, game.ID(), 2, []model.ShipSpec{specAt(5, 5)}))
	s.Require().Equal(model.PlayerID(2), game.CurrentPlayer())
	return game
}

// Login tests

func (s *DirectorySuite) TestLoginRegistersNewPlayer() {
	player := s.login(7, "alice")
	s.Equal(model.PlayerID(7), player.ID)
	s.Equal("alice", player.Name)

	stored, err := s.store.GetPlayerByName(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID(7), stored.ID)
	s.NotEqual("secret", stored.PasswordHash)

	events := s.notifier.eventsFor(7)
	s.Require().Len(events, 3)
	s.Equal(model.EventReg, events[0].Type)
	s.Equal(model.EventUpdateWinners, events[1].Type)
	s.Equal(model.EventUpdateRoom, events[2].Type)

	reg := events[0].Payload.(model.RegPayload)
	s.False(reg.Error)
	s.Equal(model.PlayerID(7), reg.PlayerID)
}

func (s *DirectorySuite) TestLoginWrongPasswordFails() {
	s.login(7, "alice")

	_, err := s.directory.Login(s.ctx, 8, "alice", "wrong")
	var incorrect *model.IncorrectPasswordError
	s.Require().ErrorAs(err, &incorrect)
	s.Empty(s.notifier.eventsFor(8))
}

func (s *DirectorySuite) TestLoginRebindsToNewConnection() {
	s.login(7, "alice")
	player := s.login(9, "alice")
	s.Equal(model.PlayerID(9), player.ID)

	stored, err := s.store.GetPlayerByName(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID(9), stored.ID)
}

// Room tests

func (s *DirectorySuite) TestCreateRoomBroadcastsRoomList() {
	s.login(1, "alice")

	room, err := s.directory.CreateRoom(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(model.PlayerID(1), room.OwnerID)
	s.True(s.notifier.everyoneHasType(model.EventUpdateRoom))

	_, err = s.directory.CreateRoom(s.ctx, 1)
	var exists *model.RoomAlreadyExistsError
	s.ErrorAs(err, &exists)
}

func (s *DirectorySuite) TestJoinOwnRoomIsNoOp() {
	s.login(1, "alice")
	room, err := s.directory.CreateRoom(s.ctx, 1)
	s.Require().NoError(err)

	game, err := s.directory.JoinRoom(s.ctx, 1, room.ID)
	s.Require().NoError(err)
	s.Nil(game)

	rooms, err := s.directory.Rooms(s.ctx)
	s.Require().NoError(err)
	s.Len(rooms, 1)
}

func (s *DirectorySuite) TestJoinRoomStartsGameAndClosesRoom() {
	s.login(1, "alice")
	s.login(2, "bob")
	room, err := s.directory.CreateRoom(s.ctx, 1)
	s.Require().NoError(err)

	game, err := s.directory.JoinRoom(s.ctx, 2, room.ID)
	s.Require().NoError(err)
	s.Require().NotNil(game)
	s.Equal([]model.PlayerID{1, 2}, game.Players())

	for _, p := range game.Players() {
		event, ok := s.notifier.lastOfType(p, model.EventCreateGame)
		s.Require().True(ok, "player %d missing create_game", p)
		payload := event.Payload.(model.CreateGamePayload)
		s.Equal(game.ID(), payload.GameID)
		s.Equal(p, payload.PlayerID)
	}

	rooms, err := s.directory.Rooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *DirectorySuite) TestJoinMissingRoomFails() {
	s.login(2, "bob")

	_, err := s.directory.JoinRoom(s.ctx, 2, 42)
	var notFound *model.RoomNotFoundError
	s.ErrorAs(err, &notFound)
}

// Game flow tests

func (s *DirectorySuite) TestAddShipsStartsGameAndAnnouncesTurn() {
	game := s.startTwoPlayerGame()

	for _, p := range game.Players() {
		start, ok := s.notifier.lastOfType(p, model.EventStartGame)
		s.Require().True(ok, "player %d missing start_game", p)
		payload := start.Payload.(model.StartGamePayload)
		s.Equal(p, payload.PlayerID)
		s.Len(payload.Ships, 1)

		turn, ok := s.notifier.lastOfType(p, model.EventTurn)
		s.Require().True(ok, "player %d missing turn", p)
		s.Equal(model.PlayerID(2), turn.Payload.(model.TurnPayload).PlayerID)
	}
}

func (s *DirectorySuite) TestAttackOutOfTurnStillAnnouncesTurn() {
	game := s.startTwoPlayerGame()

	before := len(s.notifier.eventsFor(1))
	s.Require().NoError(s.directory.Attack(s.ctx, game.ID(), 1, &model.Position{X: 5, Y: 5}))

	events := s.notifier.eventsFor(1)[before:]
	s.Require().Len(events, 1)
	s.Equal(model.EventTurn, events[0].Type)
	s.Equal(model.PlayerID(2), events[0].Payload.(model.TurnPayload).PlayerID)
}

func (s *DirectorySuite) TestAttackMissPassesTurn() {
	game := s.startTwoPlayerGame()

	s.Require().NoError(s.directory.Attack(s.ctx, game.ID(), 2, &model.Position{X: 9, Y: 0}))

	attack, ok := s.notifier.lastOfType(1, model.EventAttack)
	s.Require().True(ok)
	result := attack.Payload.(model.AttackResult)
	s.Equal(model.AttackMiss, result.Status)

	turn, ok := s.notifier.lastOfType(1, model.EventTurn)
	s.Require().True(ok)
	s.Equal(model.PlayerID(1), turn.Payload.(model.TurnPayload).PlayerID)
}

func (s *DirectorySuite) TestWinFinalizesGameAndUpdatesLeaderboard() {
	game := s.startTwoPlayerGame()

	// Bob kills alice's only ship
	s.Require().NoError(s.directory.Attack(s.ctx, game.ID(), 2, &model.Position{X: 0, Y: 0}))

	for _, p := range game.Players() {
		finish, ok := s.notifier.lastOfType(p, model.EventFinish)
		s.Require().True(ok, "player %d missing finish", p)
		s.Equal(model.PlayerID(2), finish.Payload.(model.FinishPayload).Winner)
	}

	bob, err := s.store.GetPlayerByName(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(1, bob.Wins)
	s.True(s.notifier.everyoneHasType(model.EventUpdateWinners))

	_, err = s.directory.Game(game.ID())
	var notFound *model.GameNotFoundError
	s.ErrorAs(err, &notFound)
}

func (s *DirectorySuite) TestLogoutForfeitsMatchesAndWithdrawsRoom() {
	game := s.startTwoPlayerGame()

	// Alice also has an open room of her own
	_, err := s.directory.CreateRoom(s.ctx, 1)
	s.Require().NoError(err)

	s.Require().NoError(s.directory.Logout(s.ctx, 1))

	rooms, err := s.directory.Rooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)

	finish, ok := s.notifier.lastOfType(2, model.EventFinish)
	s.Require().True(ok)
	s.Equal(model.PlayerID(2), finish.Payload.(model.FinishPayload).Winner)

	bob, err := s.store.GetPlayerByName(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(1, bob.Wins)

	_, err = s.directory.Game(game.ID())
	var notFound *model.GameNotFoundError
	s.ErrorAs(err, &notFound)
}

// Single-player tests

func (s *DirectorySuite) TestSinglePlayerBotWinsWithoutLeaderboardCredit() {
	s.login(3, "carol")

	game, err := s.directory.SinglePlayer(s.ctx, 3)
	s.Require().NoError(err)
	s.Require().NotNil(game)
	s.Equal([]model.PlayerID{model.BotPlayerID, 3}, game.Players())

	created, ok := s.notifier.lastOfType(3, model.EventCreateGame)
	s.Require().True(ok)
	s.Equal(game.ID(), created.Payload.(model.CreateGamePayload).GameID)

	// The exhausted random queue rolls 0 for the turn, handing it to the
	// bot, whose random shot will land on (0, 0): carol's only ship.
	s.Require().NoError(s.directory.AddShips(s.ctx, game.ID(), 3, []model.ShipSpec{specAt(0, 0)}))
	s.Require().True(s.scheduler.Pending(game.ID()))

	s.clock.Advance(time.Second).MustWait(s.ctx)

	finish, ok := s.notifier.lastOfType(3, model.EventFinish)
	s.Require().True(ok)
	s.Equal(model.BotPlayerID, finish.Payload.(model.FinishPayload).Winner)

	carol, err := s.store.GetPlayerByName(s.ctx, "carol")
	s.Require().NoError(err)
	s.Equal(0, carol.Wins)

	_, err = s.directory.Game(game.ID())
	var notFound *model.GameNotFoundError
	s.ErrorAs(err, &notFound)
	s.False(s.scheduler.Pending(game.ID()))
}

func (s *DirectorySuite) TestSinglePlayerBotMissPassesTurn() {
	s.login(3, "carol")

	game, err := s.directory.SinglePlayer(s.ctx, 3)
	s.Require().NoError(err)

	// Carol's ship is away from (0, 0), so the bot's first shot misses
	s.Require().NoError(s.directory.AddShips(s.ctx, game.ID(), 3, []model.ShipSpec{specAt(5, 5)}))
	s.Require().True(s.scheduler.Pending(game.ID()))

	s.clock.Advance(time.Second).MustWait(s.ctx)

	attack, ok := s.notifier.lastOfType(3, model.EventAttack)
	s.Require().True(ok)
	result := attack.Payload.(model.AttackResult)
	s.Equal(model.AttackMiss, result.Status)
	s.Equal(model.Position{X: 0, Y: 0}, result.Position)

	turn, ok := s.notifier.lastOfType(3, model.EventTurn)
	s.Require().True(ok)
	s.Equal(model.PlayerID(3), turn.Payload.(model.TurnPayload).PlayerID)
	s.False(s.scheduler.Pending(game.ID()))
}

// Leaderboard tests

func (s *DirectorySuite) TestWinnersFiltersAndSortsByWins() {
	alice, err := s.store.CreatePlayer(s.ctx, "alice", "hash")
	s.Require().NoError(err)
	bob, err := s.store.CreatePlayer(s.ctx, "bob", "hash")
	s.Require().NoError(err)
	_, err = s.store.CreatePlayer(s.ctx, "idle", "hash")
	s.Require().NoError(err)

	_, err = s.store.IncrementPlayerWins(s.ctx, alice.ID)
	s.Require().NoError(err)
	for i := 0; i < 3; i++ {
		_, err = s.store.IncrementPlayerWins(s.ctx, bob.ID)
		s.Require().NoError(err)
	}

	winners, err := s.directory.Winners(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(winners, 2)
	s.Equal("bob", winners[0].Name)
	s.Equal("alice", winners[1].Name)
}
