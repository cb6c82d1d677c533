// internal/web/server.go
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yana-pv/exploding-kittens/internal/auth"
	"github.com/yana-pv/exploding-kittens/internal/game"
)

// EventSource is the spectator feed the web layer subscribes to; the TCP
// server's event hub satisfies it.
type EventSource interface {
	Subscribe(gameID uuid.UUID, buf int) (<-chan game.Event, func())
}

// Handlers is the read-only HTTP surface: a session listing for admins and a
// token-gated WebSocket feed for spectators. It never mutates game state.
type Handlers struct {
	log    *logrus.Logger
	store  *game.SessionStore
	events EventSource
}

func NewHandlers(log *logrus.Logger, store *game.SessionStore, events EventSource) *Handlers {
	return &Handlers{log: log, store: store, events: events}
}

// Mux builds the HTTP mux with request logging on every route.
func (h *Handlers) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	wrap := logMiddleware(h.log)
	mux.Handle("/sessions", wrap(http.HandlerFunc(h.listSessions)))
	mux.Handle("/spectate/token", wrap(http.HandlerFunc(h.mintToken)))
	mux.Handle("/spectate/ws/", wrap(http.HandlerFunc(h.spectate)))
	return mux
}

// sessionSummary is one row of the /sessions listing.
type sessionSummary struct {
	GameID      uuid.UUID `json:"gameId"`
	State       string    `json:"state"`
	PlayerCount int       `json:"playerCount"`
	AgeSeconds  int64     `json:"ageSeconds"`
}

// listSessions returns every registered session, active or not.
func (h *Handlers) listSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	out := make([]sessionSummary, 0)
	for _, sess := range h.store.List() {
		snap := sess.Snapshot()
		out = append(out, sessionSummary{
			GameID:      snap.GameID,
			State:       snap.State,
			PlayerCount: len(snap.Players),
			AgeSeconds:  int64(sess.Age().Seconds()),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// mintToken issues a spectator JWT for one session.
// POST /spectate/token?game=<uuid>.
func (h *Handlers) mintToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	gameID, err := uuid.Parse(r.URL.Query().Get("game"))
	if err != nil {
		http.Error(w, "missing or invalid game id", http.StatusBadRequest)
		return
	}
	if _, ok := h.store.Get(gameID); !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	token, err := auth.CreateSpectatorToken(gameID)
	if err != nil {
		h.log.WithError(err).Error("failed to mint spectator token")
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// spectateMessage is one frame of the spectator feed.
type spectateMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// spectate upgrades to WebSocket and streams the session's events.
// GET /spectate/ws/{gameID}?token=<jwt>. The token must have been minted for
// this exact session.
func (h *Handlers) spectate(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/spectate/ws/")
	gameID, err := uuid.Parse(strings.Trim(idStr, "/"))
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	grantedID, err := auth.VerifySpectatorToken(r.URL.Query().Get("token"))
	if err != nil || grantedID != gameID {
		http.Error(w, "invalid spectator token", http.StatusUnauthorized)
		return
	}

	sess, ok := h.store.Get(gameID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"spectate"},
		OriginPatterns: []string{"*"}, // Adjust for production security.
	})
	if err != nil {
		h.log.WithError(err).Warn("websocket accept failed")
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler exit")

	h.log.WithFields(logrus.Fields{
		"remote":  r.RemoteAddr,
		"session": gameID,
	}).Info("spectator connected")

	ctx := r.Context()

	// Opening snapshot so the spectator has something to render immediately.
	if err := writeSpectateMessage(ctx, c, spectateMessage{
		Type:    string(game.EventStateUpdate),
		Payload: sess.Snapshot(),
	}); err != nil {
		return
	}

	events, cancel := h.events.Subscribe(gameID, 64)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "bye")
			return
		case ev, ok := <-events:
			if !ok {
				c.Close(websocket.StatusGoingAway, "session feed closed")
				return
			}
			if err := writeSpectateMessage(ctx, c, spectateMessage{
				Type:    string(ev.Type),
				Payload: ev.Payload,
			}); err != nil {
				h.log.WithError(err).Debug("spectator write failed")
				return
			}
			if ev.Type == game.EventGameOver {
				c.Close(websocket.StatusNormalClosure, "game over")
				return
			}
		}
	}
}

func writeSpectateMessage(ctx context.Context, c *websocket.Conn, msg spectateMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.Write(writeCtx, websocket.MessageText, data)
}
