// internal/server/server.go
package server

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yana-pv/exploding-kittens/internal/game"
	"github.com/yana-pv/exploding-kittens/internal/protocol"
)

// Options configures a Server. HistoryFn and OnGameEnd are optional hooks the
// entry point wires to the Redis historian and the Postgres results ledger.
type Options struct {
	Logger  *logrus.Logger
	Store   *game.SessionStore
	Hub     *EventHub
	Timings game.Timings

	HistoryFn func(rec game.HistoryRecord)
	OnGameEnd func(s *game.GameSession, winnerID uuid.UUID)
}

// Server owns the TCP game-protocol listener: one goroutine per connection
// decoding frames and dispatching commands into game sessions.
type Server struct {
	log     *logrus.Logger
	store   *game.SessionStore
	hub     *EventHub
	timings game.Timings

	historyFn func(rec game.HistoryRecord)
	onGameEnd func(s *game.GameSession, winnerID uuid.UUID)

	dispatch map[protocol.Command]handlerFunc

	mu      sync.Mutex
	clients map[uuid.UUID]map[uuid.UUID]*client // gameID -> playerID -> client

	ln     net.Listener
	wg     sync.WaitGroup
	closed chan struct{}
	once   sync.Once
}

// New builds a Server. The dispatch registry is resolved once, here.
func New(opts Options) *Server {
	s := &Server{
		log:       opts.Logger,
		store:     opts.Store,
		hub:       opts.Hub,
		timings:   opts.Timings,
		historyFn: opts.HistoryFn,
		onGameEnd: opts.OnGameEnd,
		clients:   make(map[uuid.UUID]map[uuid.UUID]*client),
		closed:    make(chan struct{}),
	}
	if s.log == nil {
		s.log = logrus.New()
	}
	if s.hub == nil {
		s.hub = NewEventHub()
	}
	s.dispatch = newDispatcher()
	return s
}

// Hub exposes the spectator event hub.
func (s *Server) Hub() *EventHub { return s.hub }

// ListenAndServe accepts connections on addr until Close is called.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.log.WithField("addr", ln.Addr().String()).Info("game server listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.closed:
				s.wg.Wait()
				return nil
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Close stops accepting and waits for connection goroutines to drain.
func (s *Server) Close() {
	s.once.Do(func() {
		close(s.closed)
		if s.ln != nil {
			_ = s.ln.Close()
		}
	})
}

// wireSession installs the server-side hooks on a freshly created session:
// broadcast sinks for TCP clients and the spectator hub, the history queue,
// and the game-end ledger hook.
func (s *Server) wireSession(sess *game.GameSession) {
	gameID := sess.ID
	sess.BroadcastFn = func(ev game.Event) {
		s.broadcastEvent(gameID, ev)
	}
	sess.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.Event) {
		s.unicastEvent(gameID, playerID, ev)
	}
	if s.historyFn != nil {
		sess.HistoryFn = s.historyFn
	}
	sess.OnGameEnd = func(ended *game.GameSession, winnerID uuid.UUID) {
		s.log.WithFields(logrus.Fields{
			"session": ended.ID,
			"winner":  winnerID,
		}).Info("game over")
		if s.onGameEnd != nil {
			s.onGameEnd(ended, winnerID)
		}
	}
}

// --- client registry ---

// addClient binds a connection to its seat in a session.
func (s *Server) addClient(gameID, playerID uuid.UUID, c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[gameID] == nil {
		s.clients[gameID] = make(map[uuid.UUID]*client)
	}
	s.clients[gameID][playerID] = c
}

func (s *Server) removeClient(gameID, playerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients[gameID], playerID)
	if len(s.clients[gameID]) == 0 {
		delete(s.clients, gameID)
	}
}

func (s *Server) clientsOf(gameID uuid.UUID) []*client {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*client, 0, len(s.clients[gameID]))
	for _, c := range s.clients[gameID] {
		out = append(out, c)
	}
	return out
}

// --- event delivery ---

// broadcastEvent encodes a session event once and sends it to every connected
// player plus the spectator hub. Called while the session lock is held, so
// socket writes happen on their own goroutines.
func (s *Server) broadcastEvent(gameID uuid.UUID, ev game.Event) {
	s.hub.Publish(gameID, ev)

	frame, ok := encodeEvent(ev)
	if !ok {
		return
	}
	for _, c := range s.clientsOf(gameID) {
		go c.writeRaw(frame)
	}
}

// unicastEvent sends a session event to a single player's connection.
func (s *Server) unicastEvent(gameID, playerID uuid.UUID, ev game.Event) {
	frame, ok := encodeEvent(ev)
	if !ok {
		return
	}
	s.mu.Lock()
	c := s.clients[gameID][playerID]
	s.mu.Unlock()
	if c != nil {
		go c.writeRaw(frame)
	}
}
