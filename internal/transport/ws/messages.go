package ws

import (
	"encoding/json"
	"fmt"

	"github.com/gridfleet/seabattle/internal/model"
)

// The wire protocol is double-encoded JSON: every frame is an envelope
// whose data field holds the JSON-encoded payload as a string. An empty
// payload is the empty string. The id field is always zero; clients echo
// it and nothing reads it.
type envelope struct {
	Type string `json:"type"`
	Data string `json:"data"`
	ID   int    `json:"id"`
}

// Command types accepted from clients
const (
	cmdReg          = "reg"
	cmdCreateRoom   = "create_room"
	cmdAddToRoom    = "add_user_to_room"
	cmdAddShips     = "add_ships"
	cmdAttack       = "attack"
	cmdRandomAttack = "randomAttack"
	cmdSinglePlay   = "single_play"
)

// Inbound payload shapes

type regRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type addToRoomRequest struct {
	IndexRoom model.RoomID `json:"indexRoom"`
}

type addShipsRequest struct {
	GameID      model.GameID     `json:"gameId"`
	Ships       []model.ShipSpec `json:"ships"`
	IndexPlayer model.PlayerID   `json:"indexPlayer"`
}

type attackRequest struct {
	GameID      model.GameID   `json:"gameId"`
	X           int            `json:"x"`
	Y           int            `json:"y"`
	IndexPlayer model.PlayerID `json:"indexPlayer"`
}

type randomAttackRequest struct {
	GameID      model.GameID   `json:"gameId"`
	IndexPlayer model.PlayerID `json:"indexPlayer"`
}

// Outbound payload shapes

type regResponse struct {
	Name      string         `json:"name"`
	Index     model.PlayerID `json:"index"`
	Error     bool           `json:"error"`
	ErrorText string         `json:"errorText"`
}

type winnerEntry struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

type roomUser struct {
	Name  string         `json:"name"`
	Index model.PlayerID `json:"index"`
}

type roomEntry struct {
	RoomID    model.RoomID `json:"roomId"`
	RoomUsers []roomUser   `json:"roomUsers"`
}

type createGameResponse struct {
	IDGame   model.GameID   `json:"idGame"`
	IDPlayer model.PlayerID `json:"idPlayer"`
}

type startGameResponse struct {
	Ships              []model.ShipSpec `json:"ships"`
	CurrentPlayerIndex model.PlayerID   `json:"currentPlayerIndex"`
}

type attackResponse struct {
	Position      model.Position     `json:"position"`
	CurrentPlayer model.PlayerID     `json:"currentPlayer"`
	Status        model.AttackStatus `json:"status"`
}

type turnResponse struct {
	CurrentPlayer model.PlayerID `json:"currentPlayer"`
}

type finishResponse struct {
	WinPlayer model.PlayerID `json:"winPlayer"`
}

// encodeFrame wraps a payload in the envelope, JSON-encoding it twice
func encodeFrame(typ model.EventType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", typ, err)
	}
	return json.Marshal(envelope{Type: string(typ), Data: string(data)})
}

// encodeEvent translates a domain event into its wire frame
func encodeEvent(event model.Event) ([]byte, error) {
	switch payload := event.Payload.(type) {
	case model.RegPayload:
		return encodeFrame(event.Type, regResponse{
			Name:      payload.Name,
			Index:     payload.PlayerID,
			Error:     payload.Error,
			ErrorText: payload.ErrorText,
		})
	case []model.WinnerEntry:
		entries := make([]winnerEntry, 0, len(payload))
		for _, w := range payload {
			entries = append(entries, winnerEntry{Name: w.Name, Wins: w.Wins})
		}
		return encodeFrame(event.Type, entries)
	case []model.RoomEntry:
		entries := make([]roomEntry, 0, len(payload))
		for _, r := range payload {
			entries = append(entries, roomEntry{
				RoomID:    r.RoomID,
				RoomUsers: []roomUser{{Name: r.OwnerName, Index: r.OwnerID}},
			})
		}
		return encodeFrame(event.Type, entries)
	case model.CreateGamePayload:
		return encodeFrame(event.Type, createGameResponse{
			IDGame:   payload.GameID,
			IDPlayer: payload.PlayerID,
		})
	case model.StartGamePayload:
		return encodeFrame(event.Type, startGameResponse{
			Ships:              payload.Ships,
			CurrentPlayerIndex: payload.PlayerID,
		})
	case model.AttackResult:
		return encodeFrame(event.Type, attackResponse{
			Position:      payload.Position,
			CurrentPlayer: payload.Player,
			Status:        payload.Status,
		})
	case model.TurnPayload:
		return encodeFrame(event.Type, turnResponse{CurrentPlayer: payload.PlayerID})
	case model.FinishPayload:
		return encodeFrame(event.Type, finishResponse{WinPlayer: payload.Winner})
	default:
		return nil, fmt.Errorf("no wire encoding for event %s", event.Type)
	}
}
