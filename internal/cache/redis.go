// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yana-pv/exploding-kittens/internal/game"
)

// DefaultQueueName is the Redis list (queue) name for game action logs.
const DefaultQueueName = "kittens_actions"

// Historian pushes applied game actions onto a Redis list for the history
// consumer. Publishing is fire-and-forget relative to game logic: a failed
// push is logged and dropped, never surfaced to players.
type Historian struct {
	rdb   *redis.Client
	queue string
	log   *logrus.Logger
}

// NewHistorian builds a historian for the given Redis address and queue name.
// An empty queue name falls back to DefaultQueueName.
func NewHistorian(addr string, db int, queue string, log *logrus.Logger) *Historian {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Historian{
		rdb:   redis.NewClient(&redis.Options{Addr: addr, DB: db}),
		queue: queue,
		log:   log,
	}
}

// Connect verifies the Redis connection.
func (h *Historian) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}

// Close releases the Redis client.
func (h *Historian) Close() error {
	return h.rdb.Close()
}

// Publish serializes the record to JSON and pushes it onto the queue.
func (h *Historian) Publish(ctx context.Context, rec game.HistoryRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal history record: %w", err)
	}
	if err := h.rdb.RPush(ctx, h.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", h.queue, err)
	}
	return nil
}

// PublishAsync pushes the record on its own goroutine. Sessions call this
// from inside their lock; the push must not block game logic.
func (h *Historian) PublishAsync(rec game.HistoryRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := h.Publish(ctx, rec); err != nil {
			h.log.WithError(err).WithFields(logrus.Fields{
				"game":   rec.GameID,
				"action": rec.Action,
			}).Warn("dropping history record")
		}
	}()
}
