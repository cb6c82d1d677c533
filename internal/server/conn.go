// internal/server/conn.go
package server

import (
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yana-pv/exploding-kittens/internal/protocol"
)

// client is one TCP connection. A connection acquires its identity (session
// and seat) on CreateGame or JoinGame; until then only the lobby commands are
// meaningful. Outbound writes are serialized by writeMu because broadcasts
// and command responses come from different goroutines.
type client struct {
	srv  *Server
	conn net.Conn
	dec  *protocol.Decoder
	log  *logrus.Entry

	writeMu sync.Mutex

	gameID   uuid.UUID
	playerID uuid.UUID
}

// handleConn runs the read loop for one connection and cleans up on exit.
func (s *Server) handleConn(conn net.Conn) {
	c := &client{
		srv:  s,
		conn: conn,
		dec:  protocol.NewDecoder(),
		log:  s.log.WithField("remote", conn.RemoteAddr().String()),
	}
	c.log.Info("client connected")

	defer func() {
		_ = conn.Close()
		if c.gameID != uuid.Nil {
			s.removeClient(c.gameID, c.playerID)
			if sess, ok := s.store.Get(c.gameID); ok {
				sess.HandleDisconnect(c.playerID)
				if sess.PlayerCount() == 0 {
					s.store.Delete(c.gameID)
				}
			}
		}
		c.log.Info("client disconnected")
	}()

	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		for _, frame := range c.dec.Feed(buf[:n]) {
			s.handleFrame(c, frame)
		}
	}
}

// handleFrame routes one decoded frame through the dispatch registry.
func (s *Server) handleFrame(c *client, f protocol.Frame) {
	handler, ok := s.dispatch[f.Cmd]
	if !ok {
		c.log.WithField("cmd", f.Cmd.String()).Warn("unknown command")
		c.sendErr(protocol.RespInvalidAction)
		return
	}
	c.log.WithField("cmd", f.Cmd.String()).Debug("dispatch")
	handler(s, c, f.Payload)
}

// send encodes and writes one frame to the client.
func (c *client) send(cmd protocol.Command, payload []byte) {
	frame, err := protocol.Encode(cmd, payload)
	if err != nil {
		c.log.WithError(err).WithField("cmd", cmd.String()).Error("encode failed")
		return
	}
	c.writeRaw(frame)
}

// sendErr writes a single-byte response-code frame.
func (c *client) sendErr(code protocol.ResponseCode) {
	c.send(protocol.CmdError, []byte{byte(code)})
}

// writeRaw writes pre-encoded bytes. Delivery is best-effort; a failed write
// is logged and the read loop notices the dead connection on its own.
func (c *client) writeRaw(frame []byte) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(frame); err != nil {
		c.log.WithError(err).Debug("write failed")
	}
}
