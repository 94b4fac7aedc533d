package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gridfleet/seabattle/internal/model"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Ping period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size accepted from a peer
	maxMessageSize = 8192

	// Outbound frame buffer per connection
	sendBuffer = 256
)

// connection is one client socket. Its id doubles as the player id once
// the client registers: login rebinds the player record to it.
type connection struct {
	id     model.PlayerID
	server *Server
	sock   *websocket.Conn
	logger *slog.Logger

	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newConnection(id model.PlayerID, server *Server, sock *websocket.Conn) *connection {
	return &connection{
		id:     id,
		server: server,
		sock:   sock,
		logger: server.logger.With("conn_id", id),
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
}

// enqueue hands a frame to the write pump. A full buffer drops the
// connection rather than blocking the caller.
func (c *connection) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	case <-c.closed:
	default:
		c.logger.Warn("send buffer full, dropping connection")
		c.close()
	}
}

func (c *connection) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.sock.Close()
	})
}

// readPump reads frames until the socket dies, then triggers logout
func (c *connection) readPump(ctx context.Context) {
	defer func() {
		c.close()
		c.server.unregister(c)
	}()

	c.sock.SetReadLimit(maxMessageSize)
	_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("websocket read failed", "error", err)
			}
			return
		}
		c.handleFrame(ctx, frame)
	}
}

// writePump serializes all writes to the socket
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Error("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}

// handleFrame parses one inbound envelope and dispatches the command.
// Malformed frames and failed commands never kill the connection: the
// reg command reports errors in-band, everything else only logs.
func (c *connection) handleFrame(ctx context.Context, frame []byte) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		c.logger.Warn("malformed frame", "error", err)
		return
	}
	c.logger.Debug("command received", "type", env.Type)

	directory := c.server.directory
	switch env.Type {
	case cmdReg:
		var req regRequest
		if err := json.Unmarshal([]byte(env.Data), &req); err != nil {
			c.sendRegError("", err.Error())
			return
		}
		if _, err := directory.Login(ctx, c.id, req.Name, req.Password); err != nil {
			c.sendRegError(req.Name, err.Error())
		}

	case cmdCreateRoom:
		if _, err := directory.CreateRoom(ctx, c.id); err != nil {
			c.logger.Warn("create room failed", "error", err)
		}

	case cmdAddToRoom:
		var req addToRoomRequest
		if err := json.Unmarshal([]byte(env.Data), &req); err != nil {
			c.logger.Warn("malformed add_user_to_room payload", "error", err)
			return
		}
		if _, err := directory.JoinRoom(ctx, c.id, req.IndexRoom); err != nil {
			c.logger.Warn("join room failed", "room_id", req.IndexRoom, "error", err)
		}

	case cmdAddShips:
		var req addShipsRequest
		if err := json.Unmarshal([]byte(env.Data), &req); err != nil {
			c.logger.Warn("malformed add_ships payload", "error", err)
			return
		}
		if err := directory.AddShips(ctx, req.GameID, req.IndexPlayer, req.Ships); err != nil {
			c.logger.Warn("add ships failed", "game_id", req.GameID, "error", err)
		}

	case cmdAttack:
		var req attackRequest
		if err := json.Unmarshal([]byte(env.Data), &req); err != nil {
			c.logger.Warn("malformed attack payload", "error", err)
			return
		}
		pos := &model.Position{X: req.X, Y: req.Y}
		if err := directory.Attack(ctx, req.GameID, req.IndexPlayer, pos); err != nil {
			c.logger.Warn("attack failed", "game_id", req.GameID, "error", err)
		}

	case cmdRandomAttack:
		var req randomAttackRequest
		if err := json.Unmarshal([]byte(env.Data), &req); err != nil {
			c.logger.Warn("malformed randomAttack payload", "error", err)
			return
		}
		if err := directory.Attack(ctx, req.GameID, req.IndexPlayer, nil); err != nil {
			c.logger.Warn("random attack failed", "game_id", req.GameID, "error", err)
		}

	case cmdSinglePlay:
		if _, err := directory.SinglePlayer(ctx, c.id); err != nil {
			c.logger.Warn("single play failed", "error", err)
		}

	default:
		c.logger.Warn("unknown command", "type", env.Type)
	}
}

// sendRegError reports a failed registration in-band
func (c *connection) sendRegError(name, reason string) {
	frame, err := encodeEvent(model.NewRegErrorEvent(c.id, name, reason))
	if err != nil {
		c.logger.Error("encoding reg error", "error", err)
		return
	}
	c.enqueue(frame)
}
