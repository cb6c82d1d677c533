// internal/game/events.go
package game

import (
	"time"

	"github.com/google/uuid"
)

// EventType is an enum-like type for broadcasting session events.
type EventType string

const (
	EventGameStarted      EventType = "game_started"
	EventStateUpdate      EventType = "game_state"
	EventHandUpdate       EventType = "hand_update"
	EventCardPlayed       EventType = "card_played"
	EventPlayerEliminated EventType = "player_eliminated"
	EventGameOver         EventType = "game_over"
	EventMessage          EventType = "message"
	EventNeedToDraw       EventType = "need_to_draw"
)

// Event is one notification for connected clients. Payload is a DTO from the
// protocol package, or a plain string for EventMessage; the transport layer
// owns encoding and delivery. Delivery is fire-and-forget relative to the
// mutating command: a failed send never rolls back game state.
type Event struct {
	Type    EventType
	Payload interface{}
}

// HistoryRecord captures one applied game action for the history queue.
type HistoryRecord struct {
	GameID      uuid.UUID              `json:"game_id"`
	ActionIndex int                    `json:"action_index"`
	PlayerID    uuid.UUID              `json:"player_id"`
	Action      string                 `json:"action"`
	Detail      map[string]interface{} `json:"detail,omitempty"`
	Timestamp   int64                  `json:"timestamp"`
}

// fireEvent broadcasts an event to all connected players.
// Assumes the session lock is held.
func (s *GameSession) fireEvent(ev Event) {
	if s.BroadcastFn != nil {
		s.BroadcastFn(ev)
	}
}

// fireEventToPlayer sends an event to a single player.
// Assumes the session lock is held.
func (s *GameSession) fireEventToPlayer(playerID uuid.UUID, ev Event) {
	if s.BroadcastToPlayerFn != nil {
		s.BroadcastToPlayerFn(playerID, ev)
	}
}

// message broadcasts a plain-text notice to everyone in the session.
// Assumes the session lock is held.
func (s *GameSession) message(text string) {
	s.fireEvent(Event{Type: EventMessage, Payload: text})
}

// messageTo sends a plain-text notice to one player.
// Assumes the session lock is held.
func (s *GameSession) messageTo(playerID uuid.UUID, text string) {
	s.fireEventToPlayer(playerID, Event{Type: EventMessage, Payload: text})
}

// logAction records an applied action into the history sink, if one is wired.
// Assumes the session lock is held.
func (s *GameSession) logAction(playerID uuid.UUID, action string, detail map[string]interface{}) {
	if s.HistoryFn == nil {
		return
	}
	s.actionIndex++
	s.HistoryFn(HistoryRecord{
		GameID:      s.ID,
		ActionIndex: s.actionIndex,
		PlayerID:    playerID,
		Action:      action,
		Detail:      detail,
		Timestamp:   time.Now().UnixMilli(),
	})
}
