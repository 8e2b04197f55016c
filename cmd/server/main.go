package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/foolgame/durak-server-go/internal/config"
	"github.com/foolgame/durak-server-go/internal/game"
	"github.com/foolgame/durak-server-go/internal/repository"
	"github.com/foolgame/durak-server-go/internal/server"
	"github.com/foolgame/durak-server-go/internal/storage"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting durak server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var recorders []game.MatchRecorder

	// Optional match history database.
	var matches *repository.MatchRepository
	if cfg.Database.Enabled {
		pool, err := repository.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		matches = repository.NewMatchRepository(pool, logger)
		if err := matches.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare database schema", zap.Error(err))
		}
		recorders = append(recorders, matches)
		logger.Info("match history database initialized")
	}

	// Optional redis leaderboard.
	var leaderboard *storage.Leaderboard
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()

		leaderboard = storage.NewLeaderboard(client, logger)
		recorders = append(recorders, leaderboard)
		logger.Info("leaderboard initialized", zap.String("addr", cfg.Redis.Addr))
	}

	manager := game.NewManager(logger, cfg.Game.RestartDelay, recorders...)
	logger.Info("session manager initialized",
		zap.Duration("restart_delay", cfg.Game.RestartDelay),
		zap.Int("default_players_limit", cfg.Game.DefaultPlayersLimit),
	)

	srv := server.New(cfg.Server, manager, leaderboard, matches, cfg.Game.DefaultPlayersLimit, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("http server error", zap.Error(err))
		}
	}()

	logger.Info("durak server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	logger.Info("durak server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
