// internal/protocol/payloads.go
package protocol

import "github.com/google/uuid"

// Rich server->client payloads are UTF-8 JSON; simple commands use
// colon-delimited text fields instead (see the server dispatch layer).

// CardInfo describes one card to a client.
type CardInfo struct {
	ID     uuid.UUID `json:"id"`
	Type   string    `json:"type"`
	IconID int       `json:"iconId"`
}

// PlayerInfo is the public view of a player in a session.
type PlayerInfo struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	IsAlive    bool      `json:"isAlive"`
	HandSize   int       `json:"handSize"`
	ExtraTurns int       `json:"extraTurns"`
	TurnOrder  int       `json:"turnOrder"`
}

// HandUpdate is unicast to a player whenever their hand changes.
type HandUpdate struct {
	PlayerID uuid.UUID  `json:"playerId"`
	Cards    []CardInfo `json:"cards"`
}

// GameStateUpdate is the broadcast snapshot of a session.
type GameStateUpdate struct {
	GameID          uuid.UUID    `json:"gameId"`
	State           string       `json:"state"`
	Players         []PlayerInfo `json:"players"`
	CurrentPlayerID uuid.UUID    `json:"currentPlayerId,omitempty"`
	DrawPileSize    int          `json:"drawPileSize"`
	DiscardPileSize int          `json:"discardPileSize"`
	TopDiscard      *CardInfo    `json:"topDiscard,omitempty"`
}

// CardPlayedInfo announces a resolved or pending card play.
type CardPlayedInfo struct {
	GameID   uuid.UUID  `json:"gameId"`
	PlayerID uuid.UUID  `json:"playerId"`
	Cards    []CardInfo `json:"cards"`
	ActionID uuid.UUID  `json:"actionId,omitempty"`
	Pending  bool       `json:"pending"`
	Canceled bool       `json:"canceled"`
	Detail   string     `json:"detail,omitempty"`
}

// EliminationInfo announces a player's elimination.
type EliminationInfo struct {
	GameID   uuid.UUID `json:"gameId"`
	PlayerID uuid.UUID `json:"playerId"`
	Reason   string    `json:"reason"`
}

// GameOverInfo announces the end of a session. WinnerID is the zero UUID when
// nobody survived.
type GameOverInfo struct {
	GameID   uuid.UUID `json:"gameId"`
	WinnerID uuid.UUID `json:"winnerId,omitempty"`
}

// AvailableGame is one entry in the GetAvailableGames listing.
type AvailableGame struct {
	GameID      uuid.UUID `json:"gameId"`
	PlayerCount int       `json:"playerCount"`
	State       string    `json:"state"`
}
