package model

// EventType identifies an outbound event kind
type EventType string

const (
	EventReg           EventType = "reg"
	EventUpdateWinners EventType = "update_winners"
	EventCreateGame    EventType = "create_game"
	EventUpdateRoom    EventType = "update_room"
	EventStartGame     EventType = "start_game"
	EventAttack        EventType = "attack"
	EventTurn          EventType = "turn"
	EventFinish        EventType = "finish"
)

// Event is one semantic outbound notification. The transport layer owns
// the wire encoding; these payloads are plain domain data.
type Event struct {
	Type    EventType
	Payload any
}

// RegPayload is the registration result for one connection
type RegPayload struct {
	PlayerID  PlayerID
	Name      string
	Error     bool
	ErrorText string
}

// WinnerEntry is one leaderboard row
type WinnerEntry struct {
	Name string
	Wins int
}

// CreateGamePayload announces a new game to one of its participants
type CreateGamePayload struct {
	GameID   GameID
	PlayerID PlayerID
}

// RoomEntry is one open room in a room list snapshot
type RoomEntry struct {
	RoomID    RoomID
	OwnerID   PlayerID
	OwnerName string
}

// StartGamePayload carries a player's own fleet at match start
type StartGamePayload struct {
	PlayerID PlayerID
	Ships    []ShipSpec
}

// TurnPayload names the current turn holder
type TurnPayload struct {
	PlayerID PlayerID
}

// FinishPayload names the winner of a decided game
type FinishPayload struct {
	Winner PlayerID
}

// Event constructors keep payload shapes in one place.

func NewRegEvent(playerID PlayerID, name string) Event {
	return Event{Type: EventReg, Payload: RegPayload{PlayerID: playerID, Name: name}}
}

func NewRegErrorEvent(playerID PlayerID, name, errorText string) Event {
	return Event{Type: EventReg, Payload: RegPayload{
		PlayerID:  playerID,
		Name:      name,
		Error:     true,
		ErrorText: errorText,
	}}
}

func NewUpdateWinnersEvent(players []*Player) Event {
	entries := make([]WinnerEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, WinnerEntry{Name: p.Name, Wins: p.Wins})
	}
	return Event{Type: EventUpdateWinners, Payload: entries}
}

func NewCreateGameEvent(gameID GameID, playerID PlayerID) Event {
	return Event{Type: EventCreateGame, Payload: CreateGamePayload{GameID: gameID, PlayerID: playerID}}
}

func NewUpdateRoomEvent(rooms []*Room) Event {
	entries := make([]RoomEntry, 0, len(rooms))
	for _, r := range rooms {
		entries = append(entries, RoomEntry{RoomID: r.ID, OwnerID: r.OwnerID, OwnerName: r.OwnerName})
	}
	return Event{Type: EventUpdateRoom, Payload: entries}
}

func NewStartGameEvent(playerID PlayerID, ships []*Ship) Event {
	specs := make([]ShipSpec, 0, len(ships))
	for _, ship := range ships {
		specs = append(specs, ship.Spec())
	}
	return Event{Type: EventStartGame, Payload: StartGamePayload{PlayerID: playerID, Ships: specs}}
}

func NewAttackEvent(result AttackResult) Event {
	return Event{Type: EventAttack, Payload: result}
}

func NewTurnEvent(playerID PlayerID) Event {
	return Event{Type: EventTurn, Payload: TurnPayload{PlayerID: playerID}}
}

func NewFinishEvent(winner PlayerID) Event {
	return Event{Type: EventFinish, Payload: FinishPayload{Winner: winner}}
}
