// internal/server/handlers.go
package server

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/yana-pv/exploding-kittens/internal/game"
	"github.com/yana-pv/exploding-kittens/internal/models"
	"github.com/yana-pv/exploding-kittens/internal/protocol"
)

// Simple client commands carry colon-delimited UTF-8 fields, typically
// "gameID:playerID:..." — see the protocol package for the rich JSON
// payloads going the other way.

func fields(payload []byte) []string {
	return strings.Split(string(payload), ":")
}

// authSession resolves and authorizes the "gameID:playerID" prefix every
// in-session command starts with. The playerID must be the one this
// connection registered at create/join time.
func (s *Server) authSession(c *client, parts []string) (*game.GameSession, uuid.UUID, bool) {
	if len(parts) < 2 {
		c.sendErr(protocol.RespInvalidAction)
		return nil, uuid.Nil, false
	}
	gameID, err := uuid.Parse(parts[0])
	if err != nil {
		c.sendErr(protocol.RespGameNotFound)
		return nil, uuid.Nil, false
	}
	playerID, err := uuid.Parse(parts[1])
	if err != nil {
		c.sendErr(protocol.RespPlayerNotFound)
		return nil, uuid.Nil, false
	}
	if c.playerID == uuid.Nil || c.playerID != playerID || c.gameID != gameID {
		c.sendErr(protocol.RespUnauthorized)
		return nil, uuid.Nil, false
	}
	sess, ok := s.store.Get(gameID)
	if !ok {
		c.sendErr(protocol.RespGameNotFound)
		return nil, uuid.Nil, false
	}
	return sess, playerID, true
}

// reply sends the mapped response code for a session call, or nothing on
// success: successful commands announce themselves through session events.
func (c *client) reply(err error) {
	if err != nil {
		c.sendErr(respFor(err))
	}
}

// handleCreateGame creates a session and seats the caller.
// Payload: "name" (optional display name).
func (s *Server) handleCreateGame(c *client, payload []byte) {
	if c.playerID != uuid.Nil {
		c.sendErr(protocol.RespInvalidAction)
		return
	}
	name := strings.TrimSpace(string(payload))
	if name == "" {
		name = "player"
	}

	sess := game.NewGameSession(s.timings)
	s.wireSession(sess)
	s.store.Add(sess)

	player, err := sess.AddPlayer(name)
	if err != nil {
		s.store.Delete(sess.ID)
		c.sendErr(respFor(err))
		return
	}

	c.gameID = sess.ID
	c.playerID = player.ID
	c.log = c.log.WithField("player", player.ID.String())
	s.addClient(sess.ID, player.ID, c)

	c.send(protocol.CmdGameCreated, []byte(sess.ID.String()+":"+player.ID.String()))
}

// handleJoinGame seats the caller in an existing lobby.
// Payload: "gameID[:name]".
func (s *Server) handleJoinGame(c *client, payload []byte) {
	if c.playerID != uuid.Nil {
		c.sendErr(protocol.RespInvalidAction)
		return
	}
	parts := fields(payload)
	gameID, err := uuid.Parse(parts[0])
	if err != nil {
		c.sendErr(protocol.RespGameNotFound)
		return
	}
	sess, ok := s.store.Get(gameID)
	if !ok {
		c.sendErr(protocol.RespGameNotFound)
		return
	}
	name := "player"
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		name = strings.TrimSpace(parts[1])
	}

	player, err := sess.AddPlayer(name)
	if err != nil {
		c.sendErr(respFor(err))
		return
	}

	c.gameID = sess.ID
	c.playerID = player.ID
	c.log = c.log.WithField("player", player.ID.String())
	s.addClient(sess.ID, player.ID, c)

	c.send(protocol.CmdGameJoined, []byte(sess.ID.String()+":"+player.ID.String()))
}

// handleLeaveGame removes the caller. In the lobby the seat is freed; after
// the start, leaving is a forfeit.
// Payload: "gameID:playerID".
func (s *Server) handleLeaveGame(c *client, payload []byte) {
	sess, playerID, ok := s.authSession(c, fields(payload))
	if !ok {
		return
	}

	if err := sess.RemovePlayer(playerID); err != nil {
		sess.HandleDisconnect(playerID)
	}
	s.removeClient(c.gameID, c.playerID)
	if sess.PlayerCount() == 0 {
		s.store.Delete(sess.ID)
	}
	c.gameID = uuid.Nil
	c.playerID = uuid.Nil
}

// Payload: "gameID:playerID".
func (s *Server) handleStartGame(c *client, payload []byte) {
	sess, playerID, ok := s.authSession(c, fields(payload))
	if !ok {
		return
	}
	c.reply(sess.Start(playerID))
}

// Payload: "gameID:playerID".
func (s *Server) handleEndTurn(c *client, payload []byte) {
	sess, playerID, ok := s.authSession(c, fields(payload))
	if !ok {
		return
	}
	c.reply(sess.EndTurn(playerID))
}

// Payload: "gameID:playerID".
func (s *Server) handleDrawCard(c *client, payload []byte) {
	sess, playerID, ok := s.authSession(c, fields(payload))
	if !ok {
		return
	}
	c.reply(sess.DrawCard(playerID))
}

// handlePlayCard plays one card.
// Payload: "gameID:playerID:cardIdx[:targetID]".
func (s *Server) handlePlayCard(c *client, payload []byte) {
	parts := fields(payload)
	sess, playerID, ok := s.authSession(c, parts)
	if !ok {
		return
	}
	if len(parts) < 3 {
		c.sendErr(protocol.RespInvalidAction)
		return
	}
	cardIdx, err := strconv.Atoi(parts[2])
	if err != nil {
		c.sendErr(protocol.RespCardNotFound)
		return
	}
	targetID := uuid.Nil
	if len(parts) > 3 && parts[3] != "" {
		if targetID, err = uuid.Parse(parts[3]); err != nil {
			c.sendErr(protocol.RespPlayerNotFound)
			return
		}
	}
	c.reply(sess.PlayCard(playerID, cardIdx, targetID))
}

// handleUseCombo plays a card combination.
// Payload: "gameID:playerID:idx,idx[,idx...][:targetID[:cardName]]".
func (s *Server) handleUseCombo(c *client, payload []byte) {
	parts := fields(payload)
	sess, playerID, ok := s.authSession(c, parts)
	if !ok {
		return
	}
	if len(parts) < 3 {
		c.sendErr(protocol.RespInvalidAction)
		return
	}

	var idxs []int
	for _, raw := range strings.Split(parts[2], ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			c.sendErr(protocol.RespCardNotFound)
			return
		}
		idxs = append(idxs, idx)
	}

	targetID := uuid.Nil
	if len(parts) > 3 && parts[3] != "" {
		var err error
		if targetID, err = uuid.Parse(parts[3]); err != nil {
			c.sendErr(protocol.RespPlayerNotFound)
			return
		}
	}

	var named models.CardType
	hasNamed := false
	if len(parts) > 4 && parts[4] != "" {
		if named, hasNamed = models.ParseCardType(parts[4]); !hasNamed {
			c.sendErr(protocol.RespCardNotFound)
			return
		}
	}

	c.reply(sess.PlayCombo(playerID, idxs, targetID, named, hasNamed))
}

// handleTargetPlayer answers a pending pair-combo steal.
// Payload: "gameID:playerID:targetID".
func (s *Server) handleTargetPlayer(c *client, payload []byte) {
	parts := fields(payload)
	sess, playerID, ok := s.authSession(c, parts)
	if !ok {
		return
	}
	if len(parts) < 3 {
		c.sendErr(protocol.RespInvalidAction)
		return
	}
	targetID, err := uuid.Parse(parts[2])
	if err != nil {
		c.sendErr(protocol.RespPlayerNotFound)
		return
	}
	c.reply(sess.ChooseTarget(playerID, targetID))
}

// Payload: "gameID:playerID:cardIdx".
func (s *Server) handlePlayNope(c *client, payload []byte) {
	parts := fields(payload)
	sess, playerID, ok := s.authSession(c, parts)
	if !ok {
		return
	}
	if len(parts) < 3 {
		c.sendErr(protocol.RespInvalidAction)
		return
	}
	cardIdx, err := strconv.Atoi(parts[2])
	if err != nil {
		c.sendErr(protocol.RespCardNotFound)
		return
	}
	c.reply(sess.PlayNope(playerID, cardIdx))
}

// handlePlayDefuse answers a pending explosion.
// Payload: "gameID:playerID:cardIdx:placement[:position]" where placement is
// top|bottom|random|index.
func (s *Server) handlePlayDefuse(c *client, payload []byte) {
	parts := fields(payload)
	sess, playerID, ok := s.authSession(c, parts)
	if !ok {
		return
	}
	if len(parts) < 4 {
		c.sendErr(protocol.RespInvalidAction)
		return
	}
	cardIdx, err := strconv.Atoi(parts[2])
	if err != nil {
		c.sendErr(protocol.RespCardNotFound)
		return
	}
	placement := parts[3]
	position := 0
	if len(parts) > 4 && parts[4] != "" {
		if position, err = strconv.Atoi(parts[4]); err != nil {
			c.sendErr(protocol.RespInvalidAction)
			return
		}
	}
	c.reply(sess.PlayDefuse(playerID, cardIdx, placement, position))
}

// handleGiveCard answers a pending favor.
// Payload: "gameID:playerID:cardIdx".
func (s *Server) handleGiveCard(c *client, payload []byte) {
	parts := fields(payload)
	sess, playerID, ok := s.authSession(c, parts)
	if !ok {
		return
	}
	if len(parts) < 3 {
		c.sendErr(protocol.RespInvalidAction)
		return
	}
	cardIdx, err := strconv.Atoi(parts[2])
	if err != nil {
		c.sendErr(protocol.RespCardNotFound)
		return
	}
	c.reply(sess.GiveCard(playerID, cardIdx))
}

// handleTakeDiscard answers a pending five-combo discard choice.
// Payload: "gameID:playerID:discardIdx".
func (s *Server) handleTakeDiscard(c *client, payload []byte) {
	parts := fields(payload)
	sess, playerID, ok := s.authSession(c, parts)
	if !ok {
		return
	}
	if len(parts) < 3 {
		c.sendErr(protocol.RespInvalidAction)
		return
	}
	discardIdx, err := strconv.Atoi(parts[2])
	if err != nil {
		c.sendErr(protocol.RespCardNotFound)
		return
	}
	c.reply(sess.TakeFromDiscard(playerID, discardIdx))
}

// handleGetGameState replies with the public snapshot, plus the caller's
// private hand when they are seated in the session.
// Payload: "gameID[:playerID]".
func (s *Server) handleGetGameState(c *client, payload []byte) {
	parts := fields(payload)
	if len(parts) < 1 || parts[0] == "" {
		c.sendErr(protocol.RespInvalidAction)
		return
	}
	gameID, err := uuid.Parse(parts[0])
	if err != nil {
		c.sendErr(protocol.RespGameNotFound)
		return
	}
	sess, ok := s.store.Get(gameID)
	if !ok {
		c.sendErr(protocol.RespGameNotFound)
		return
	}

	snap, err := json.Marshal(sess.Snapshot())
	if err != nil {
		c.log.WithError(err).Error("snapshot marshal failed")
		return
	}
	c.send(protocol.CmdGameStateUpdate, snap)

	if c.playerID != uuid.Nil && c.gameID == gameID {
		if hand, err := sess.HandOf(c.playerID); err == nil {
			if data, err := json.Marshal(hand); err == nil {
				c.send(protocol.CmdPlayerHandUpdate, data)
			}
		}
	}
}

// handleGetAvailableGames lists joinable (still-waiting) sessions.
// Payload: empty.
func (s *Server) handleGetAvailableGames(c *client, _ []byte) {
	var out []protocol.AvailableGame
	for _, sess := range s.store.List() {
		snap := sess.Snapshot()
		if snap.State != game.StateWaitingForPlayers.String() {
			continue
		}
		out = append(out, protocol.AvailableGame{
			GameID:      snap.GameID,
			PlayerCount: len(snap.Players),
			State:       snap.State,
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		c.log.WithError(err).Error("available games marshal failed")
		return
	}
	c.send(protocol.CmdAvailableGames, data)
}
