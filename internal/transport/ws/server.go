package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/gridfleet/seabattle/internal/model"
	"github.com/gridfleet/seabattle/internal/services/session"
)

// Server upgrades websocket connections, tracks them by connection id
// and pushes directory events back out. It is the session directory's
// Notifier: the directory decides what to send, the server decides how.
type Server struct {
	logger    *slog.Logger
	directory *session.Directory
	upgrader  websocket.Upgrader

	connSeq atomic.Int64
	mu      sync.RWMutex
	conns   map[model.PlayerID]*connection
}

// NewServer creates a websocket server bound to the given directory
func NewServer(logger *slog.Logger, directory *session.Directory) *Server {
	return &Server{
		logger:    logger,
		directory: directory,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The game trusts its transport boundary; origin checks stay open
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[model.PlayerID]*connection),
	}
}

// Ensure the server satisfies the directory's outbound interface
var _ session.Notifier = (*Server)(nil)

// ServeHTTP upgrades the request and runs the connection until it drops
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sock, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	conn := newConnection(model.PlayerID(s.connSeq.Add(1)), s, sock)
	s.mu.Lock()
	s.conns[conn.id] = conn
	total := len(s.conns)
	s.mu.Unlock()
	conn.logger.Info("client connected", "total", total)

	go conn.writePump()
	conn.readPump(r.Context())
}

// unregister drops the connection and forfeits the player's matches.
// Cleanup runs on a fresh context: the request context dies with the
// socket.
func (s *Server) unregister(conn *connection) {
	s.mu.Lock()
	if _, ok := s.conns[conn.id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.conns, conn.id)
	total := len(s.conns)
	s.mu.Unlock()
	conn.logger.Info("client disconnected", "total", total)

	if err := s.directory.Logout(context.Background(), conn.id); err != nil {
		s.logger.Error("logout cleanup failed", "conn_id", conn.id, "error", err)
	}
}

// CloseAll drops every connection, typically during shutdown
func (s *Server) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		conn.close()
	}
}

// Send delivers events to one player. Players without a connection (the
// bot included) are dropped silently.
func (s *Server) Send(player model.PlayerID, events []model.Event) {
	s.mu.RLock()
	conn := s.conns[player]
	s.mu.RUnlock()
	if conn == nil {
		return
	}
	s.deliver(conn, events)
}

// Broadcast delivers events to the named players, or to every
// connection when no targets are given.
func (s *Server) Broadcast(events []model.Event, players ...model.PlayerID) {
	if len(players) == 0 {
		s.mu.RLock()
		targets := make([]*connection, 0, len(s.conns))
		for _, conn := range s.conns {
			targets = append(targets, conn)
		}
		s.mu.RUnlock()
		for _, conn := range targets {
			s.deliver(conn, events)
		}
		return
	}

	for _, player := range players {
		s.Send(player, events)
	}
}

func (s *Server) deliver(conn *connection, events []model.Event) {
	for _, event := range events {
		frame, err := encodeEvent(event)
		if err != nil {
			s.logger.Error("encoding event", "type", event.Type, "error", err)
			continue
		}
		conn.enqueue(frame)
	}
}
