// cmd/server/main.go
package main

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/yana-pv/exploding-kittens/internal/auth"
	"github.com/yana-pv/exploding-kittens/internal/cache"
	"github.com/yana-pv/exploding-kittens/internal/config"
	"github.com/yana-pv/exploding-kittens/internal/database"
	"github.com/yana-pv/exploding-kittens/internal/game"
	"github.com/yana-pv/exploding-kittens/internal/server"
	"github.com/yana-pv/exploding-kittens/internal/web"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := auth.Init(); err != nil {
		logger.Fatalf("auth init: %v", err)
	}

	ctx := context.Background()

	opts := server.Options{
		Logger:  logger,
		Store:   game.NewSessionStore(),
		Timings: cfg.Timings,
	}

	if cfg.HistoryEnabled() {
		historian := cache.NewHistorian(cfg.RedisAddr, cfg.RedisDB, cfg.HistoryQueue, logger)
		if err := historian.Connect(ctx); err != nil {
			logger.Fatalf("redis connect: %v", err)
		}
		defer historian.Close()
		opts.HistoryFn = historian.PublishAsync
		logger.WithField("queue", cfg.HistoryQueue).Info("action history enabled")
	}

	if cfg.ResultsEnabled() {
		results, err := database.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatalf("database connect: %v", err)
		}
		defer results.Close()
		opts.OnGameEnd = func(s *game.GameSession, winnerID uuid.UUID) {
			results.RecordGameResultAsync(s.ID, s.Players, winnerID, s.Age())
		}
		logger.Info("results ledger enabled")
	}

	srv := server.New(opts)
	go func() {
		if err := srv.ListenAndServe(cfg.TCPAddr); err != nil {
			logger.Fatalf("game server exited: %v", err)
		}
	}()

	mux := web.NewHandlers(logger, opts.Store, srv.Hub()).Mux()
	logger.Infof("Running on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, mux); err != nil {
		logger.Fatalf("http server exited: %v", err)
	}
}
