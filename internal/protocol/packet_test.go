// internal/protocol/packet_test.go
package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFrameLayout(t *testing.T) {
	payload := []byte("abc:def")
	frame, err := Encode(CmdPlayCard, payload)
	require.NoError(t, err)

	require.Len(t, frame, HeaderSize+len(payload)+1)
	assert.Equal(t, StartByte, frame[0])
	assert.Equal(t, byte(CmdPlayCard), frame[1])
	assert.Equal(t, byte(len(payload)), frame[2], "length low byte")
	assert.Equal(t, byte(0), frame[3], "length high byte")
	assert.True(t, bytes.Equal(payload, frame[HeaderSize:HeaderSize+len(payload)]))
	assert.Equal(t, EndByte, frame[len(frame)-1])
}

func TestEncodeEmptyPayload(t *testing.T) {
	frame, err := Encode(CmdDrawCard, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{StartByte, byte(CmdDrawCard), 0x00, 0x00, EndByte}, frame)
}

func TestEncodeLengthLittleEndian(t *testing.T) {
	payload := make([]byte, 0x0123)
	frame, err := Encode(CmdGameStateUpdate, payload)
	require.NoError(t, err)
	assert.Equal(t, byte(0x23), frame[2])
	assert.Equal(t, byte(0x01), frame[3])
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	_, err := Encode(CmdMessage, make([]byte, MaxPayloadSize+1))
	require.Error(t, err)

	_, err = Encode(CmdMessage, make([]byte, MaxPayloadSize))
	assert.NoError(t, err, "payload at the limit must be accepted")
}
