// internal/game/session.go
package game

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yana-pv/exploding-kittens/internal/deck"
	"github.com/yana-pv/exploding-kittens/internal/models"
	"github.com/yana-pv/exploding-kittens/internal/protocol"
)

// SessionState is the lifecycle phase of a session.
type SessionState int

const (
	StateWaitingForPlayers SessionState = iota
	StatePlayerTurn
	StateResolvingAction
	StateGameOver
)

var stateNames = map[SessionState]string{
	StateWaitingForPlayers: "WaitingForPlayers",
	StatePlayerTurn:        "PlayerTurn",
	StateResolvingAction:   "ResolvingAction",
	StateGameOver:          "GameOver",
}

func (st SessionState) String() string {
	if name, ok := stateNames[st]; ok {
		return name
	}
	return "Unknown"
}

// Timings collects every timed window the session schedules. Tests shrink
// these to keep runs fast.
type Timings struct {
	NopeWindow       time.Duration // counter window on cancelable plays
	ExplosionTimeout time.Duration // time to defuse a drawn kitten
	FavorTimeout     time.Duration // time for a favor target to pick a card
	ChoiceTimeout    time.Duration // time for steal-target / discard choices
}

// DefaultTimings is a short nope window with 30-second pending sub-actions.
func DefaultTimings() Timings {
	return Timings{
		NopeWindow:       3 * time.Second,
		ExplosionTimeout: 30 * time.Second,
		FavorTimeout:     30 * time.Second,
		ChoiceTimeout:    30 * time.Second,
	}
}

// OnGameEndFunc receives the finished session and the winner (uuid.Nil when
// nobody survived). Invoked outside the session lock.
type OnGameEndFunc func(s *GameSession, winnerID uuid.UUID)

// GameSession holds the entire state of one game. All exported methods
// serialize on the session mutex: any player's connection goroutine may call
// into the same session concurrently, and one in-flight command at a time is
// the correctness discipline. Internal helpers assume the lock is held.
type GameSession struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu sync.Mutex

	Players            []*models.Player
	CurrentPlayerIndex int
	State              SessionState
	Deck               *deck.Deck
	Winner             *models.Player

	Timings Timings

	turn turnState

	// At most one pending sub-action is open at a time (the explosion map is
	// keyed by player but in practice only the drawing player can explode).
	activeAction      *ActionRecord
	pendingFavor      *pendingFavor
	pendingSteal      *pendingSteal
	pendingChoice     *pendingDiscardChoice
	pendingExplosions map[uuid.UUID]*pendingExplosion

	nopeTimer   actionTimer
	favorTimer  actionTimer
	choiceTimer actionTimer

	actionIndex int

	// BroadcastFn sends an event to every connected player. Nil disables
	// broadcasting (tests install a recorder).
	BroadcastFn func(ev Event)

	// BroadcastToPlayerFn sends an event to a single player.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev Event)

	// HistoryFn receives every applied action for the history queue.
	HistoryFn func(rec HistoryRecord)

	// OnGameEnd is invoked once when the session reaches GameOver.
	OnGameEnd OnGameEndFunc
}

// NewGameSession builds an empty session in the lobby phase.
func NewGameSession(timings Timings) *GameSession {
	id, _ := uuid.NewRandom()
	return &GameSession{
		ID:                id,
		CreatedAt:         time.Now(),
		State:             StateWaitingForPlayers,
		Timings:           timings,
		pendingExplosions: make(map[uuid.UUID]*pendingExplosion),
	}
}

// AddPlayer seats a new player while the session is waiting for players.
func (s *GameSession) AddPlayer(name string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != StateWaitingForPlayers {
		return nil, ErrGameAlreadyStarted
	}
	if len(s.Players) >= deck.MaxPlayers {
		return nil, ErrGameFull
	}

	id, _ := uuid.NewRandom()
	p := &models.Player{
		ID:        id,
		Name:      name,
		IsAlive:   true,
		TurnOrder: len(s.Players),
	}
	s.Players = append(s.Players, p)
	s.logAction(p.ID, "player_join", map[string]interface{}{"name": name})
	s.message(name + " joined the game.")
	return p, nil
}

// RemovePlayer takes a player out of the lobby. Only legal before the game
// starts; mid-game departures go through HandleDisconnect.
func (s *GameSession) RemovePlayer(playerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != StateWaitingForPlayers {
		return ErrGameAlreadyStarted
	}
	for i, p := range s.Players {
		if p.ID == playerID {
			s.Players = append(s.Players[:i], s.Players[i+1:]...)
			for j := i; j < len(s.Players); j++ {
				s.Players[j].TurnOrder = j
			}
			s.logAction(playerID, "player_leave", nil)
			s.message(p.Name + " left the game.")
			return nil
		}
	}
	return ErrPlayerNotFound
}

// Start deals the deck and begins the first turn. Any seated player may start
// once enough players have joined.
func (s *GameSession) Start(requesterID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != StateWaitingForPlayers {
		return ErrGameAlreadyStarted
	}
	if s.playerByID(requesterID) == nil {
		return ErrPlayerNotFound
	}
	if len(s.Players) < deck.MinPlayers {
		return ErrNotEnoughCards
	}

	d, hands, err := deck.Setup(len(s.Players))
	if err != nil {
		return err
	}
	s.Deck = d
	for i, p := range s.Players {
		p.Hand = hands[i]
	}

	s.State = StatePlayerTurn
	s.CurrentPlayerIndex = 0
	s.turn.reset()
	s.logAction(requesterID, "game_start", map[string]interface{}{"players": len(s.Players)})

	s.fireEvent(Event{Type: EventGameStarted, Payload: s.snapshotLocked()})
	for _, p := range s.Players {
		s.broadcastHand(p)
	}
	s.broadcastState()
	s.fireEventToPlayer(s.Players[0].ID, Event{Type: EventNeedToDraw})
	return nil
}

// DrawCard draws for the current player, ending their turn unless the card
// is an Exploding Kitten or they owe extra turns.
func (s *GameSession) DrawCard(playerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.requireCurrentPlayer(playerID)
	if err != nil {
		return err
	}
	if !s.turn.canPlayCard() {
		return ErrInvalidAction
	}

	card := s.Deck.Draw()
	if card == nil {
		return ErrNotEnoughCards
	}
	s.logAction(playerID, "card_drawn", map[string]interface{}{"type": card.Type.String()})

	if card.Type == models.ExplodingKitten {
		s.beginExplosion(player, card)
		return nil
	}

	player.Hand = append(player.Hand, card)
	s.broadcastHand(player)
	s.cardDrawn()
	return nil
}

// EndTurn is the explicit end-of-turn command. Turns end on their own after
// drawing or playing Skip/Attack, so the only useful answer here is the
// reminder that a draw is still owed.
func (s *GameSession) EndTurn(playerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireCurrentPlayer(playerID); err != nil {
		return err
	}
	if s.turn.mustDrawCard() {
		s.fireEventToPlayer(playerID, Event{Type: EventNeedToDraw})
		return ErrMustDrawCard
	}
	return ErrInvalidAction
}

// PlayCard plays a single action card from the current player's hand.
// targetID is uuid.Nil unless the card requires or names a target.
func (s *GameSession) PlayCard(playerID uuid.UUID, cardIdx int, targetID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.requireCurrentPlayer(playerID)
	if err != nil {
		return err
	}
	if !s.turn.canPlayAnotherCard() {
		return ErrInvalidAction
	}

	card := player.CardAt(cardIdx)
	if card == nil {
		return ErrCardNotFound
	}

	var target *models.Player
	if targetID != uuid.Nil {
		if target = s.playerByID(targetID); target == nil {
			return ErrPlayerNotFound
		}
	}

	switch card.Type {
	case models.Skip:
		return s.playSkip(player, cardIdx, card)
	case models.Attack:
		return s.playAttack(player, cardIdx, card, target)
	case models.Shuffle:
		return s.playShuffle(player, cardIdx, card)
	case models.SeeTheFuture:
		return s.playSeeTheFuture(player, cardIdx, card)
	case models.Favor:
		return s.playFavor(player, cardIdx, card, target)
	default:
		// Cats only act in combos; Nope, Defuse and kittens have their own
		// entry points.
		return ErrInvalidAction
	}
}

// HandleDisconnect processes a dropped connection. In the lobby the player is
// silently removed; mid-game a disconnect is a forfeit and eliminates them.
func (s *GameSession) HandleDisconnect(playerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player := s.playerByID(playerID)
	if player == nil {
		return
	}

	switch s.State {
	case StateWaitingForPlayers:
		for i, p := range s.Players {
			if p.ID == playerID {
				s.Players = append(s.Players[:i], s.Players[i+1:]...)
				for j := i; j < len(s.Players); j++ {
					s.Players[j].TurnOrder = j
				}
				break
			}
		}
		s.logAction(playerID, "player_disconnect_lobby", nil)
	case StatePlayerTurn, StateResolvingAction:
		if player.IsAlive {
			log.Printf("session %s: player %s disconnected mid-game, forfeiting", s.ID, playerID)
			s.eliminatePlayer(player, "disconnected")
		}
	}
}

// eliminatePlayer marks a player dead, disperses their hand back into the
// deck (kittens go to the discard pile instead), clears any pending
// sub-action that involves them, advances the turn if it was theirs, and
// re-checks the win condition.
// Assumes the session lock is held.
func (s *GameSession) eliminatePlayer(player *models.Player, reason string) {
	player.IsAlive = false
	player.ExtraTurns = 0

	for _, c := range player.Hand {
		if c.Type == models.ExplodingKitten {
			s.Deck.Discard(c)
		} else {
			s.Deck.InsertCardRandom(c)
		}
	}
	player.Hand = nil
	s.broadcastHand(player)

	s.clearPendingsFor(player.ID)

	s.logAction(player.ID, "player_eliminated", map[string]interface{}{"reason": reason})
	s.fireEvent(Event{Type: EventPlayerEliminated, Payload: protocol.EliminationInfo{
		GameID:   s.ID,
		PlayerID: player.ID,
		Reason:   reason,
	}})

	if s.checkWinCondition() {
		return
	}

	if s.State != StateWaitingForPlayers && s.currentPlayer() != nil && s.currentPlayer().ID == player.ID {
		s.advanceTurn()
	} else {
		s.broadcastState()
	}
}

// clearPendingsFor drops every pending sub-action involving the player:
// an open counterable play of theirs, their explosion entry, a favor they
// requested or owe, and choices they still had open. Cards of a dropped play
// go to the discard pile; there is no hand to return them to.
// Assumes the session lock is held.
func (s *GameSession) clearPendingsFor(playerID uuid.UUID) {
	if s.activeAction != nil && s.activeAction.PlayerID == playerID {
		rec := s.activeAction
		s.activeAction = nil
		s.nopeTimer.cancel()
		for _, c := range rec.Cards {
			s.Deck.Discard(c)
		}
	}
	if pe, ok := s.pendingExplosions[playerID]; ok {
		pe.timer.cancel()
		delete(s.pendingExplosions, playerID)
	}
	if s.pendingFavor != nil && (s.pendingFavor.requesterID == playerID || s.pendingFavor.targetID == playerID) {
		s.favorTimer.cancel()
		s.pendingFavor = nil
	}
	if s.pendingSteal != nil && s.pendingSteal.initiatorID == playerID {
		s.choiceTimer.cancel()
		s.pendingSteal = nil
	}
	if s.pendingChoice != nil && s.pendingChoice.initiatorID == playerID {
		s.choiceTimer.cancel()
		s.pendingChoice = nil
	}
	if s.State == StateResolvingAction && !s.hasOpenPending() && s.activeAction == nil {
		s.State = StatePlayerTurn
	}
}

// hasOpenPending reports whether any pending sub-action is open.
// Assumes the session lock is held.
func (s *GameSession) hasOpenPending() bool {
	return len(s.pendingExplosions) > 0 || s.pendingFavor != nil || s.pendingSteal != nil || s.pendingChoice != nil
}

// checkWinCondition ends the game when at most one player is alive. Returns
// true if the game ended.
// Assumes the session lock is held.
func (s *GameSession) checkWinCondition() bool {
	if s.State == StateGameOver || s.State == StateWaitingForPlayers {
		return s.State == StateGameOver
	}
	var alive []*models.Player
	for _, p := range s.Players {
		if p.IsAlive {
			alive = append(alive, p)
		}
	}
	switch len(alive) {
	case 0:
		s.endGame(nil)
		return true
	case 1:
		s.endGame(alive[0])
		return true
	}
	return false
}

// endGame finalizes the session. winner may be nil when nobody survived.
// Assumes the session lock is held.
func (s *GameSession) endGame(winner *models.Player) {
	if s.State == StateGameOver {
		return
	}
	s.State = StateGameOver
	s.Winner = winner

	s.nopeTimer.cancel()
	s.favorTimer.cancel()
	s.choiceTimer.cancel()
	for id, pe := range s.pendingExplosions {
		pe.timer.cancel()
		delete(s.pendingExplosions, id)
	}
	s.activeAction = nil
	s.pendingFavor = nil
	s.pendingSteal = nil
	s.pendingChoice = nil

	winnerID := uuid.Nil
	if winner != nil {
		winnerID = winner.ID
	}
	s.logAction(winnerID, "game_over", nil)
	s.fireEvent(Event{Type: EventGameOver, Payload: protocol.GameOverInfo{GameID: s.ID, WinnerID: winnerID}})

	if s.OnGameEnd != nil {
		// Invoke outside the lock; the hook may call back into the session.
		go s.OnGameEnd(s, winnerID)
	}
}

// --- shared lookups ---

// requireCurrentPlayer validates that the command comes from the alive player
// whose turn it is, during the play phase.
// Assumes the session lock is held.
func (s *GameSession) requireCurrentPlayer(playerID uuid.UUID) (*models.Player, error) {
	switch s.State {
	case StateWaitingForPlayers:
		return nil, ErrGameNotStarted
	case StateResolvingAction:
		return nil, ErrInvalidAction
	case StateGameOver:
		return nil, ErrInvalidAction
	}
	player := s.playerByID(playerID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	if !player.IsAlive {
		return nil, ErrPlayerNotAlive
	}
	current := s.currentPlayer()
	if current == nil || current.ID != playerID {
		return nil, ErrNotYourTurn
	}
	return player, nil
}

// currentPlayer returns the player whose turn it is, or nil.
// Assumes the session lock is held.
func (s *GameSession) currentPlayer() *models.Player {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.CurrentPlayerIndex]
}

// playerByID finds a roster player by id, or nil.
// Assumes the session lock is held.
func (s *GameSession) playerByID(id uuid.UUID) *models.Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// indexOf returns the roster index for a player id, or -1.
// Assumes the session lock is held.
func (s *GameSession) indexOf(id uuid.UUID) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// --- snapshots and broadcasts ---

func cardInfo(c *models.Card) protocol.CardInfo {
	return protocol.CardInfo{ID: c.ID, Type: c.Type.String(), IconID: c.IconID}
}

func cardInfos(cards []*models.Card) []protocol.CardInfo {
	out := make([]protocol.CardInfo, len(cards))
	for i, c := range cards {
		out[i] = cardInfo(c)
	}
	return out
}

// snapshotLocked builds the public state DTO.
// Assumes the session lock is held.
func (s *GameSession) snapshotLocked() protocol.GameStateUpdate {
	snap := protocol.GameStateUpdate{
		GameID:          s.ID,
		State:           s.State.String(),
		DrawPileSize:    0,
		DiscardPileSize: 0,
	}
	if s.Deck != nil {
		snap.DrawPileSize = len(s.Deck.DrawPile)
		snap.DiscardPileSize = len(s.Deck.DiscardPile)
		if top := s.Deck.TopDiscard(); top != nil {
			info := cardInfo(top)
			snap.TopDiscard = &info
		}
	}
	for _, p := range s.Players {
		snap.Players = append(snap.Players, protocol.PlayerInfo{
			ID:         p.ID,
			Name:       p.Name,
			IsAlive:    p.IsAlive,
			HandSize:   len(p.Hand),
			ExtraTurns: p.ExtraTurns,
			TurnOrder:  p.TurnOrder,
		})
	}
	if current := s.currentPlayer(); current != nil && s.State != StateWaitingForPlayers {
		snap.CurrentPlayerID = current.ID
	}
	return snap
}

// Snapshot returns the public state DTO for GetGameState.
func (s *GameSession) Snapshot() protocol.GameStateUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// HandOf returns the private hand DTO for a player.
func (s *GameSession) HandOf(playerID uuid.UUID) (protocol.HandUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.playerByID(playerID)
	if p == nil {
		return protocol.HandUpdate{}, ErrPlayerNotFound
	}
	return protocol.HandUpdate{PlayerID: p.ID, Cards: cardInfos(p.Hand)}, nil
}

// broadcastState pushes the public snapshot to everyone.
// Assumes the session lock is held.
func (s *GameSession) broadcastState() {
	s.fireEvent(Event{Type: EventStateUpdate, Payload: s.snapshotLocked()})
}

// broadcastHand pushes a player's private hand to them.
// Assumes the session lock is held.
func (s *GameSession) broadcastHand(p *models.Player) {
	s.fireEventToPlayer(p.ID, Event{Type: EventHandUpdate, Payload: protocol.HandUpdate{
		PlayerID: p.ID,
		Cards:    cardInfos(p.Hand),
	}})
}

// --- registry accessors (used by the session store sweep) ---

// Finished reports whether the session has ended.
func (s *GameSession) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State == StateGameOver
}

// PlayerCount returns the current roster size.
func (s *GameSession) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Players)
}

// Age reports how long ago the session was created.
func (s *GameSession) Age() time.Duration {
	return time.Since(s.CreatedAt)
}
