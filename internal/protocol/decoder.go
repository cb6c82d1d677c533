// internal/protocol/decoder.go
package protocol

import (
	"bytes"
	"encoding/binary"
)

// Decoder reassembles frames from an unbounded byte stream. Socket reads have
// no message boundaries, so the decoder keeps whatever partial frame is left
// between Feed calls and resynchronizes on corrupt input by dropping bytes,
// never by failing. It is not safe for concurrent use; each connection owns
// exactly one Decoder.
type Decoder struct {
	buf []byte
}

// NewDecoder returns a Decoder with an empty reassembly buffer.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Buffered reports how many bytes are waiting for a complete frame.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Feed appends data from a socket read and returns every complete frame now
// available. Partial frames stay buffered until the next call. Corrupt data
// is skipped one byte at a time until a valid frame boundary is found.
func (d *Decoder) Feed(data []byte) []Frame {
	d.buf = append(d.buf, data...)

	var frames []Frame
	for len(d.buf) >= MinFrameSize {
		// Locate the first start byte within the searchable range. A start
		// byte closer to the end than a minimal frame cannot begin a frame yet.
		searchable := d.buf[:len(d.buf)-MinFrameSize+1]
		start := bytes.IndexByte(searchable, StartByte)
		if start < 0 {
			// No frame can begin in the buffered data; drop it.
			d.buf = d.buf[:0]
			return frames
		}
		if start > 0 {
			// Discard the garbage prefix before the start byte.
			d.buf = d.buf[start:]
		}

		length := int(binary.LittleEndian.Uint16(d.buf[2:4]))
		expectedTotal := HeaderSize + length + 1
		if len(d.buf) < expectedTotal {
			// Frame not fully buffered yet; wait for more data.
			return frames
		}
		if d.buf[expectedTotal-1] != EndByte {
			// Corrupt frame: drop one byte and rescan from the next candidate.
			d.buf = d.buf[1:]
			continue
		}

		payload := make([]byte, length)
		copy(payload, d.buf[HeaderSize:HeaderSize+length])
		frames = append(frames, Frame{Cmd: Command(d.buf[1]), Payload: payload})
		d.buf = d.buf[expectedTotal:]
	}
	return frames
}
