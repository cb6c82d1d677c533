// internal/protocol/commands.go
package protocol

// Command identifies the operation a frame carries.
type Command byte

// Client -> server commands.
const (
	CmdCreateGame        Command = 0x01
	CmdJoinGame          Command = 0x02
	CmdLeaveGame         Command = 0x03
	CmdStartGame         Command = 0x04
	CmdEndTurn           Command = 0x05
	CmdPlayCard          Command = 0x06
	CmdDrawCard          Command = 0x07
	CmdUseCombo          Command = 0x08
	CmdTargetPlayer      Command = 0x09
	CmdPlayNope          Command = 0x0A
	CmdPlayDefuse        Command = 0x0B
	CmdGiveCard          Command = 0x0C
	CmdTakeDiscard       Command = 0x0D
	CmdGetGameState      Command = 0x10
	CmdGetAvailableGames Command = 0x11
)

// Server -> client commands.
const (
	CmdGameCreated      Command = 0x20
	CmdGameJoined       Command = 0x21
	CmdGameStarted      Command = 0x22
	CmdGameStateUpdate  Command = 0x23
	CmdPlayerHandUpdate Command = 0x24
	CmdCardPlayed       Command = 0x25
	CmdPlayerEliminated Command = 0x26
	CmdGameOver         Command = 0x27
	CmdError            Command = 0x28
	CmdMessage          Command = 0x29
	CmdNeedToDraw       Command = 0x2A
	CmdAvailableGames   Command = 0x2B
)

var commandNames = map[Command]string{
	CmdCreateGame:        "CreateGame",
	CmdJoinGame:          "JoinGame",
	CmdLeaveGame:         "LeaveGame",
	CmdStartGame:         "StartGame",
	CmdEndTurn:           "EndTurn",
	CmdPlayCard:          "PlayCard",
	CmdDrawCard:          "DrawCard",
	CmdUseCombo:          "UseCombo",
	CmdTargetPlayer:      "TargetPlayer",
	CmdPlayNope:          "PlayNope",
	CmdPlayDefuse:        "PlayDefuse",
	CmdGiveCard:          "GiveCard",
	CmdTakeDiscard:       "TakeDiscard",
	CmdGetGameState:      "GetGameState",
	CmdGetAvailableGames: "GetAvailableGames",
	CmdGameCreated:       "GameCreated",
	CmdGameJoined:        "GameJoined",
	CmdGameStarted:       "GameStarted",
	CmdGameStateUpdate:   "GameStateUpdate",
	CmdPlayerHandUpdate:  "PlayerHandUpdate",
	CmdCardPlayed:        "CardPlayed",
	CmdPlayerEliminated:  "PlayerEliminated",
	CmdGameOver:          "GameOver",
	CmdError:             "Error",
	CmdMessage:           "Message",
	CmdNeedToDraw:        "NeedToDraw",
	CmdAvailableGames:    "AvailableGames",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "Unknown"
}

// ResponseCode is the single-byte payload of an Error frame. Every code is
// recoverable: the offending command is rejected and game state is untouched.
type ResponseCode byte

const (
	RespOK                 ResponseCode = 0x00
	RespGameNotFound       ResponseCode = 0x01
	RespPlayerNotFound     ResponseCode = 0x02
	RespNotYourTurn        ResponseCode = 0x03
	RespInvalidAction      ResponseCode = 0x04
	RespGameFull           ResponseCode = 0x05
	RespGameAlreadyStarted ResponseCode = 0x06
	RespCardNotFound       ResponseCode = 0x07
	RespNotEnoughCards     ResponseCode = 0x08
	RespPlayerNotAlive     ResponseCode = 0x09
	RespSessionNotFound    ResponseCode = 0x0A
	RespUnauthorized       ResponseCode = 0x0B
)

var responseNames = map[ResponseCode]string{
	RespOK:                 "OK",
	RespGameNotFound:       "GameNotFound",
	RespPlayerNotFound:     "PlayerNotFound",
	RespNotYourTurn:        "NotYourTurn",
	RespInvalidAction:      "InvalidAction",
	RespGameFull:           "GameFull",
	RespGameAlreadyStarted: "GameAlreadyStarted",
	RespCardNotFound:       "CardNotFound",
	RespNotEnoughCards:     "NotEnoughCards",
	RespPlayerNotAlive:     "PlayerNotAlive",
	RespSessionNotFound:    "SessionNotFound",
	RespUnauthorized:       "Unauthorized",
}

func (r ResponseCode) String() string {
	if name, ok := responseNames[r]; ok {
		return name
	}
	return "Unknown"
}
