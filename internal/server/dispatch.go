// internal/server/dispatch.go
package server

import (
	"errors"

	"github.com/yana-pv/exploding-kittens/internal/game"
	"github.com/yana-pv/exploding-kittens/internal/protocol"
)

// handlerFunc processes one decoded client frame.
type handlerFunc func(s *Server, c *client, payload []byte)

// newDispatcher builds the command registry once at server construction.
func newDispatcher() map[protocol.Command]handlerFunc {
	return map[protocol.Command]handlerFunc{
		protocol.CmdCreateGame:        (*Server).handleCreateGame,
		protocol.CmdJoinGame:          (*Server).handleJoinGame,
		protocol.CmdLeaveGame:         (*Server).handleLeaveGame,
		protocol.CmdStartGame:         (*Server).handleStartGame,
		protocol.CmdEndTurn:           (*Server).handleEndTurn,
		protocol.CmdPlayCard:          (*Server).handlePlayCard,
		protocol.CmdDrawCard:          (*Server).handleDrawCard,
		protocol.CmdUseCombo:          (*Server).handleUseCombo,
		protocol.CmdTargetPlayer:      (*Server).handleTargetPlayer,
		protocol.CmdPlayNope:          (*Server).handlePlayNope,
		protocol.CmdPlayDefuse:        (*Server).handlePlayDefuse,
		protocol.CmdGiveCard:          (*Server).handleGiveCard,
		protocol.CmdTakeDiscard:       (*Server).handleTakeDiscard,
		protocol.CmdGetGameState:      (*Server).handleGetGameState,
		protocol.CmdGetAvailableGames: (*Server).handleGetAvailableGames,
	}
}

// respFor maps game rule rejections onto wire response codes.
func respFor(err error) protocol.ResponseCode {
	switch {
	case errors.Is(err, game.ErrPlayerNotFound):
		return protocol.RespPlayerNotFound
	case errors.Is(err, game.ErrNotYourTurn):
		return protocol.RespNotYourTurn
	case errors.Is(err, game.ErrGameFull):
		return protocol.RespGameFull
	case errors.Is(err, game.ErrGameAlreadyStarted):
		return protocol.RespGameAlreadyStarted
	case errors.Is(err, game.ErrCardNotFound):
		return protocol.RespCardNotFound
	case errors.Is(err, game.ErrNotEnoughCards):
		return protocol.RespNotEnoughCards
	case errors.Is(err, game.ErrPlayerNotAlive):
		return protocol.RespPlayerNotAlive
	default:
		// ErrGameNotStarted, ErrMustDrawCard and ErrInvalidAction all come
		// down to "you cannot do that right now".
		return protocol.RespInvalidAction
	}
}
