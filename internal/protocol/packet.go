// internal/protocol/packet.go
package protocol

import (
	"encoding/binary"
	"fmt"
)

// Frame layout: START(0x02) | CMD(1B) | LEN(2B little-endian) | PAYLOAD | END(0x03).
const (
	StartByte byte = 0x02
	EndByte   byte = 0x03

	// HeaderSize covers START, CMD and LEN. A complete frame is
	// HeaderSize + len(payload) + 1 trailing END byte.
	HeaderSize = 4

	// MinFrameSize is the smallest well-formed frame (zero-length payload).
	MinFrameSize = HeaderSize + 1

	// MaxPayloadSize is the largest payload Encode will accept.
	MaxPayloadSize = 4096
)

// Frame is a single decoded message: the command byte and its raw payload.
type Frame struct {
	Cmd     Command
	Payload []byte
}

// Encode produces a complete wire frame for the given command and payload.
// It fails if the payload exceeds MaxPayloadSize; the caller must reject the
// message rather than truncate it.
func Encode(cmd Command, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload size %d exceeds maximum %d", len(payload), MaxPayloadSize)
	}
	buf := make([]byte, HeaderSize+len(payload)+1)
	buf[0] = StartByte
	buf[1] = byte(cmd)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(payload)))
	copy(buf[HeaderSize:], payload)
	buf[len(buf)-1] = EndByte
	return buf, nil
}
