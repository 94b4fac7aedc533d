package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gridfleet/seabattle/internal/middleware"
)

// RouterConfig holds the handlers composed into the HTTP surface
type RouterConfig struct {
	Logger *slog.Logger

	// WSHandler serves the game websocket at /ws
	WSHandler http.Handler

	// StaticDir, when non-empty, is served at / for the web client
	StaticDir string
}

// NewRouter builds the route tree: health check, game websocket and the
// static client, wrapped in recovery and request logging.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.Handle("/ws", cfg.WSHandler)

	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
	}

	var handler http.Handler = r
	handler = middleware.Logging(cfg.Logger)(handler)
	handler = middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler)(handler)
	return handler
}
