// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/yana-pv/exploding-kittens/internal/game"
)

// Config collects every tunable the server reads from the environment.
// Optional integrations (Redis history, Postgres results) stay disabled when
// their address variables are unset.
type Config struct {
	// TCPAddr is the game-protocol listener address.
	TCPAddr string
	// HTTPAddr is the spectator/admin listener address.
	HTTPAddr string

	RedisAddr    string
	RedisDB      int
	HistoryQueue string

	DatabaseURL string

	Timings game.Timings
}

// Load reads the environment into a Config, applying defaults.
func Load() Config {
	return Config{
		TCPAddr:      getEnv("TCP_ADDR", ":4000"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		HistoryQueue: getEnv("HISTORY_QUEUE_NAME", "kittens_actions"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		Timings:      loadTimings(),
	}
}

// HistoryEnabled reports whether the Redis action-history queue is configured.
func (c Config) HistoryEnabled() bool { return c.RedisAddr != "" }

// ResultsEnabled reports whether the Postgres results ledger is configured.
func (c Config) ResultsEnabled() bool { return c.DatabaseURL != "" }

func loadTimings() game.Timings {
	t := game.DefaultTimings()
	t.NopeWindow = getEnvDuration("NOPE_WINDOW", t.NopeWindow)
	t.ExplosionTimeout = getEnvDuration("EXPLOSION_TIMEOUT", t.ExplosionTimeout)
	t.FavorTimeout = getEnvDuration("FAVOR_TIMEOUT", t.FavorTimeout)
	t.ChoiceTimeout = getEnvDuration("CHOICE_TIMEOUT", t.ChoiceTimeout)
	return t
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// getEnvDuration is a helper to parse an environment variable as a duration,
// else a default value.
func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
