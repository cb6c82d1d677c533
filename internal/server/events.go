// internal/server/events.go
package server

import (
	"encoding/json"

	"github.com/yana-pv/exploding-kittens/internal/game"
	"github.com/yana-pv/exploding-kittens/internal/protocol"
)

// eventCommands maps session event types onto wire commands.
var eventCommands = map[game.EventType]protocol.Command{
	game.EventGameStarted:      protocol.CmdGameStarted,
	game.EventStateUpdate:      protocol.CmdGameStateUpdate,
	game.EventHandUpdate:       protocol.CmdPlayerHandUpdate,
	game.EventCardPlayed:       protocol.CmdCardPlayed,
	game.EventPlayerEliminated: protocol.CmdPlayerEliminated,
	game.EventGameOver:         protocol.CmdGameOver,
	game.EventMessage:          protocol.CmdMessage,
	game.EventNeedToDraw:       protocol.CmdNeedToDraw,
}

// encodeEvent turns a session event into a ready-to-write frame. Message
// payloads go as plain text, NeedToDraw is empty, everything else is the
// JSON DTO the session attached.
func encodeEvent(ev game.Event) ([]byte, bool) {
	cmd, ok := eventCommands[ev.Type]
	if !ok {
		return nil, false
	}

	var payload []byte
	switch ev.Type {
	case game.EventMessage:
		text, _ := ev.Payload.(string)
		payload = []byte(text)
	case game.EventNeedToDraw:
		payload = nil
	default:
		var err error
		if payload, err = json.Marshal(ev.Payload); err != nil {
			return nil, false
		}
	}

	frame, err := protocol.Encode(cmd, payload)
	if err != nil {
		return nil, false
	}
	return frame, true
}
