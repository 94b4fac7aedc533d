package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration, loaded from the environment
type Config struct {
	// Addr is the HTTP listen address
	Addr string `env:"SEABATTLE_ADDR" envDefault:":8181"`

	// StaticDir is served at / for the bundled web client
	StaticDir string `env:"SEABATTLE_STATIC_DIR" envDefault:"web/static"`

	// Storage selects the record store backend: memory or redis
	Storage string `env:"SEABATTLE_STORAGE" envDefault:"memory"`

	// RedisURL is the Redis connection URL, used when Storage is redis
	RedisURL string `env:"SEABATTLE_REDIS_URL" envDefault:"redis://localhost:6379"`

	// BotDelay is how long the bot waits before firing its move
	BotDelay time.Duration `env:"SEABATTLE_BOT_DELAY" envDefault:"1s"`

	// BoardSize is the square board dimension for every match
	BoardSize int `env:"SEABATTLE_BOARD_SIZE" envDefault:"10"`

	// Fleet is the list of ship lengths placed by every side
	Fleet []int `env:"SEABATTLE_FLEET" envDefault:"4,3,3,2,2,2,1,1,1,1" envSeparator:","`

	// LogLevel is the minimum slog level: debug, info, warn or error
	LogLevel string `env:"SEABATTLE_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.BoardSize < 1 {
		return Config{}, fmt.Errorf("board size must be positive, got %d", cfg.BoardSize)
	}
	for _, length := range cfg.Fleet {
		if length < 1 || length > cfg.BoardSize {
			return Config{}, fmt.Errorf("ship length %d does not fit a %dx%d board", length, cfg.BoardSize, cfg.BoardSize)
		}
	}
	return cfg, nil
}
