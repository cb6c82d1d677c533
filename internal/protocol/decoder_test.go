// internal/protocol/decoder_test.go
package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEncode(t *testing.T, cmd Command, payload []byte) []byte {
	t.Helper()
	frame, err := Encode(cmd, payload)
	require.NoError(t, err)
	return frame
}

func TestDecodeSingleFrame(t *testing.T) {
	d := NewDecoder()
	frames := d.Feed(mustEncode(t, CmdJoinGame, []byte("game:player")))
	require.Len(t, frames, 1)
	assert.Equal(t, CmdJoinGame, frames[0].Cmd)
	assert.Equal(t, []byte("game:player"), frames[0].Payload)
	assert.Zero(t, d.Buffered())
}

func TestDecodeSplitAcrossReads(t *testing.T) {
	d := NewDecoder()
	frame := mustEncode(t, CmdPlayCard, []byte("id:pid:3"))

	// Feed one byte at a time; only the final byte completes the frame.
	for i := 0; i < len(frame)-1; i++ {
		assert.Empty(t, d.Feed(frame[i:i+1]))
	}
	frames := d.Feed(frame[len(frame)-1:])
	require.Len(t, frames, 1)
	assert.Equal(t, CmdPlayCard, frames[0].Cmd)
	assert.Equal(t, []byte("id:pid:3"), frames[0].Payload)
}

func TestDecodeMultipleFramesInOneRead(t *testing.T) {
	d := NewDecoder()
	buf := append(mustEncode(t, CmdDrawCard, nil), mustEncode(t, CmdEndTurn, []byte("x"))...)
	frames := d.Feed(buf)
	require.Len(t, frames, 2)
	assert.Equal(t, CmdDrawCard, frames[0].Cmd)
	assert.Equal(t, CmdEndTurn, frames[1].Cmd)
}

func TestDecodeSkipsGarbagePrefix(t *testing.T) {
	d := NewDecoder()
	buf := append([]byte{0xFF, 0x00, 0x7A}, mustEncode(t, CmdPlayNope, []byte("g:p"))...)
	frames := d.Feed(buf)
	require.Len(t, frames, 1)
	assert.Equal(t, CmdPlayNope, frames[0].Cmd)
}

func TestDecodeResyncAfterCorruptEndByte(t *testing.T) {
	d := NewDecoder()
	corrupt := mustEncode(t, CmdPlayCard, []byte("bad"))
	corrupt[len(corrupt)-1] = 0x55 // clobber the end byte

	good := mustEncode(t, CmdDrawCard, []byte("ok"))
	frames := d.Feed(append(corrupt, good...))

	// The corrupt frame is dropped byte-by-byte; the good frame still decodes.
	require.Len(t, frames, 1)
	assert.Equal(t, CmdDrawCard, frames[0].Cmd)
	assert.Equal(t, []byte("ok"), frames[0].Payload)
}

func TestDecodeClearsBufferWithNoStartByte(t *testing.T) {
	d := NewDecoder()
	frames := d.Feed([]byte{0x10, 0x11, 0x12, 0x13, 0x14, 0x15})
	assert.Empty(t, frames)
	assert.Zero(t, d.Buffered(), "garbage with no start byte should be discarded")
}

func TestDecodeHoldsPartialFrame(t *testing.T) {
	d := NewDecoder()
	frame := mustEncode(t, CmdUseCombo, []byte("g:p:1,2"))
	assert.Empty(t, d.Feed(frame[:6]))
	assert.Equal(t, 6, d.Buffered())
	frames := d.Feed(frame[6:])
	require.Len(t, frames, 1)
	assert.Equal(t, CmdUseCombo, frames[0].Cmd)
}

func TestDecodeNeverPanicsOnRandomInput(t *testing.T) {
	d := NewDecoder()
	junk := make([]byte, 512)
	for i := range junk {
		junk[i] = byte(i * 31)
	}
	assert.NotPanics(t, func() {
		for i := 0; i < len(junk); i += 7 {
			end := i + 7
			if end > len(junk) {
				end = len(junk)
			}
			d.Feed(junk[i:end])
		}
	})
}
