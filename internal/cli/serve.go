package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gridfleet/seabattle/internal/config"
	"github.com/gridfleet/seabattle/internal/factory"
	"github.com/gridfleet/seabattle/internal/httpserver"
	"github.com/gridfleet/seabattle/internal/services/session"
	redisstorage "github.com/gridfleet/seabattle/internal/storage/redis"
)

func newServeCmd() *cobra.Command {
	var (
		addr    string
		storage string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// Flags override the environment
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("storage") {
				cfg.Storage = storage
			}
			return serve(cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8181", "Listen address (env: SEABATTLE_ADDR)")
	cmd.Flags().StringVar(&storage, "storage", "memory", "Storage backend: memory, redis (env: SEABATTLE_STORAGE)")
	return cmd
}

func serve(cfg config.Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.Storage,
		BotDelay:    cfg.BotDelay,
		Session: session.Config{
			BoardSize: cfg.BoardSize,
			Fleet:     cfg.Fleet,
		},
	}
	if cfg.Storage == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return fmt.Errorf("wiring application: %w", err)
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:    logger,
		WSHandler: app.WSServer,
		StaticDir: staticDir(cfg.StaticDir),
	})

	serverCfg := httpserver.DefaultConfig()
	serverCfg.Addr = cfg.Addr
	server := httpserver.NewServer(router, serverCfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		app.WSServer.CloseAll()
		if err := server.Shutdown(context.Background()); err != nil {
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// staticDir returns the configured directory when it exists, or empty
// so the router skips the static client
func staticDir(dir string) string {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir
	}
	return ""
}
