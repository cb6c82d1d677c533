// internal/database/results.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/yana-pv/exploding-kittens/internal/models"
)

// Store is the Postgres results ledger. One row per finished game plus one
// per participant. The server runs fine without it; recording happens on a
// background goroutine after GameOver and failures only log.
type Store struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

// Connect opens a pgx pool against the given URL.
func Connect(ctx context.Context, url string, log *logrus.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// RecordGameResult upserts the final outcome of a game: the game row with its
// winner and duration, and one result row per seated player.
func (s *Store) RecordGameResult(ctx context.Context, gameID uuid.UUID, players []*models.Player, winnerID uuid.UUID, duration time.Duration) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, status, winner_id, player_count, duration_ms, finished_at)
			VALUES ($1, 'completed', $2, $3, $4, NOW())
			ON CONFLICT (id) DO UPDATE
			SET status = 'completed', winner_id = $2, duration_ms = $4, finished_at = NOW()
		`
		var winner interface{}
		if winnerID != uuid.Nil {
			winner = winnerID
		}
		if _, e := tx.Exec(ctx, upsertGame, gameID, winner, len(players), duration.Milliseconds()); e != nil {
			return e
		}

		for _, pl := range players {
			q := `
				INSERT INTO game_results (game_id, player_id, player_name, survived, did_win)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (game_id, player_id)
				DO UPDATE SET survived = $4, did_win = $5
			`
			if _, e := tx.Exec(ctx, q, gameID, pl.ID, pl.Name, pl.IsAlive, pl.ID == winnerID); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game or results: %w", err)
	}
	return nil
}

// RecordGameResultAsync runs RecordGameResult on its own goroutine, logging
// failures. Called from the session's game-end hook.
func (s *Store) RecordGameResultAsync(gameID uuid.UUID, players []*models.Player, winnerID uuid.UUID, duration time.Duration) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.RecordGameResult(ctx, gameID, players, winnerID, duration); err != nil {
			s.log.WithError(err).WithField("game", gameID).Warn("failed to record game result")
		}
	}()
}
