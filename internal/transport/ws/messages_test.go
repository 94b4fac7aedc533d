package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridfleet/seabattle/internal/model"
)

// decodeFrame unwraps the double-encoded envelope into the inner payload
func decodeFrame(t *testing.T, frame []byte, payload any) string {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	assert.Equal(t, 0, env.ID)
	require.NoError(t, json.Unmarshal([]byte(env.Data), payload))
	return env.Type
}

func TestEncodeRegEvent(t *testing.T) {
	frame, err := encodeEvent(model.NewRegEvent(7, "alice"))
	require.NoError(t, err)

	var payload regResponse
	assert.Equal(t, "reg", decodeFrame(t, frame, &payload))
	assert.Equal(t, regResponse{Name: "alice", Index: 7}, payload)
}

func TestEncodeRegErrorEvent(t *testing.T) {
	frame, err := encodeEvent(model.NewRegErrorEvent(7, "alice", "incorrect password"))
	require.NoError(t, err)

	var payload regResponse
	decodeFrame(t, frame, &payload)
	assert.True(t, payload.Error)
	assert.Equal(t, "incorrect password", payload.ErrorText)
}

func TestEncodeUpdateWinnersEvent(t *testing.T) {
	frame, err := encodeEvent(model.NewUpdateWinnersEvent([]*model.Player{
		{ID: 1, Name: "alice", Wins: 3},
		{ID: 2, Name: "bob", Wins: 1},
	}))
	require.NoError(t, err)

	var payload []winnerEntry
	assert.Equal(t, "update_winners", decodeFrame(t, frame, &payload))
	assert.Equal(t, []winnerEntry{{Name: "alice", Wins: 3}, {Name: "bob", Wins: 1}}, payload)
}

func TestEncodeUpdateRoomEvent(t *testing.T) {
	frame, err := encodeEvent(model.NewUpdateRoomEvent([]*model.Room{
		{ID: 4, OwnerID: 9, OwnerName: "alice"},
	}))
	require.NoError(t, err)

	var payload []roomEntry
	assert.Equal(t, "update_room", decodeFrame(t, frame, &payload))
	require.Len(t, payload, 1)
	assert.Equal(t, model.RoomID(4), payload[0].RoomID)
	assert.Equal(t, []roomUser{{Name: "alice", Index: 9}}, payload[0].RoomUsers)
}

func TestEncodeCreateGameEvent(t *testing.T) {
	frame, err := encodeEvent(model.NewCreateGameEvent(3, 7))
	require.NoError(t, err)

	var payload createGameResponse
	assert.Equal(t, "create_game", decodeFrame(t, frame, &payload))
	assert.Equal(t, createGameResponse{IDGame: 3, IDPlayer: 7}, payload)
}

func TestEncodeStartGameEvent(t *testing.T) {
	ships := []*model.Ship{model.NewShip(model.Position{X: 1, Y: 2}, 3, true)}
	frame, err := encodeEvent(model.NewStartGameEvent(7, ships))
	require.NoError(t, err)

	var payload startGameResponse
	assert.Equal(t, "start_game", decodeFrame(t, frame, &payload))
	assert.Equal(t, model.PlayerID(7), payload.CurrentPlayerIndex)
	require.Len(t, payload.Ships, 1)
	assert.Equal(t, model.ShipSpec{
		Position:  model.Position{X: 1, Y: 2},
		Direction: true,
		Length:    3,
		Type:      model.ShipLarge,
	}, payload.Ships[0])
}

func TestEncodeAttackEvent(t *testing.T) {
	frame, err := encodeEvent(model.NewAttackEvent(model.AttackResult{
		Player:   7,
		Status:   model.AttackKilled,
		Position: model.Position{X: 4, Y: 6},
	}))
	require.NoError(t, err)

	var payload attackResponse
	assert.Equal(t, "attack", decodeFrame(t, frame, &payload))
	assert.Equal(t, attackResponse{
		Position:      model.Position{X: 4, Y: 6},
		CurrentPlayer: 7,
		Status:        model.AttackKilled,
	}, payload)
}

func TestEncodeTurnAndFinishEvents(t *testing.T) {
	frame, err := encodeEvent(model.NewTurnEvent(7))
	require.NoError(t, err)
	var turn turnResponse
	assert.Equal(t, "turn", decodeFrame(t, frame, &turn))
	assert.Equal(t, model.PlayerID(7), turn.CurrentPlayer)

	frame, err = encodeEvent(model.NewFinishEvent(9))
	require.NoError(t, err)
	var finish finishResponse
	assert.Equal(t, "finish", decodeFrame(t, frame, &finish))
	assert.Equal(t, model.PlayerID(9), finish.WinPlayer)
}

func TestEncodeUnknownPayloadFails(t *testing.T) {
	_, err := encodeEvent(model.Event{Type: "mystery", Payload: struct{ A int }{1}})
	assert.Error(t, err)
}

func TestDataFieldIsStringEncoded(t *testing.T) {
	frame, err := encodeEvent(model.NewTurnEvent(7))
	require.NoError(t, err)

	// The envelope's data field must be a JSON string, not an object
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(frame, &raw))
	assert.Equal(t, byte('"'), raw["data"][0])
}
