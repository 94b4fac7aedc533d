package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/coder/quartz"

	"github.com/gridfleet/seabattle/internal/dependencies/random"
	"github.com/gridfleet/seabattle/internal/services/bot"
	"github.com/gridfleet/seabattle/internal/services/session"
	"github.com/gridfleet/seabattle/internal/storage"
	"github.com/gridfleet/seabattle/internal/storage/memory"
	redisstorage "github.com/gridfleet/seabattle/internal/storage/redis"
	"github.com/gridfleet/seabattle/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Store storage.Store

	// External dependencies
	Clock  quartz.Clock
	Random random.Random

	// Services
	Scheduler *bot.Scheduler
	Directory *session.Directory
	WSServer  *ws.Server
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// BotDelay is the pause before the bot fires its move
	// If zero, defaults to one second
	BotDelay time.Duration
	// Session holds match parameters; the zero value means defaults
	Session session.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clk := quartz.NewReal()

	var store storage.Store
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New(clk)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig, clk)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	botDelay := cfg.BotDelay
	if botDelay == 0 {
		botDelay = time.Second
	}

	sessionCfg := cfg.Session
	if sessionCfg.BoardSize == 0 {
		sessionCfg = session.DefaultConfig()
	}

	return newWithDependencies(store, clk, random.New(), botDelay, sessionCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, clk quartz.Clock, rnd random.Random, botDelay time.Duration, sessionCfg session.Config, logger *slog.Logger) *App {
	scheduler := bot.NewScheduler(clk, botDelay, logger)
	directory := session.NewDirectory(logger, store, scheduler, rnd, sessionCfg)
	wsServer := ws.NewServer(logger, directory)
	directory.SetNotifier(wsServer)

	return &App{
		Store:     store,
		Clock:     clk,
		Random:    rnd,
		Scheduler: scheduler,
		Directory: directory,
		WSServer:  wsServer,
	}
}
