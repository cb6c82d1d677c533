// internal/web/server_test.go
package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yana-pv/exploding-kittens/internal/auth"
	"github.com/yana-pv/exploding-kittens/internal/game"
)

type fakeEvents struct {
	ch chan game.Event
}

func (f *fakeEvents) Subscribe(_ uuid.UUID, _ int) (<-chan game.Event, func()) {
	return f.ch, func() {}
}

func newTestWeb(t *testing.T) (*httptest.Server, *game.SessionStore, *fakeEvents) {
	t.Helper()
	require.NoError(t, auth.Init())

	log := logrus.New()
	log.SetOutput(io.Discard)
	store := game.NewSessionStore()
	t.Cleanup(store.Close)
	events := &fakeEvents{ch: make(chan game.Event, 8)}

	srv := httptest.NewServer(NewHandlers(log, store, events).Mux())
	t.Cleanup(srv.Close)
	return srv, store, events
}

func TestListSessions(t *testing.T) {
	srv, store, _ := newTestWeb(t)

	sess := game.NewGameSession(game.DefaultTimings())
	_, err := sess.AddPlayer("alice")
	require.NoError(t, err)
	store.Add(sess)

	resp, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []sessionSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, sess.ID, out[0].GameID)
	assert.Equal(t, 1, out[0].PlayerCount)
	assert.Equal(t, "WaitingForPlayers", out[0].State)
}

func TestMintTokenValidation(t *testing.T) {
	srv, store, _ := newTestWeb(t)

	resp, err := http.Post(srv.URL+"/spectate/token?game=nope", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/spectate/token?game="+uuid.New().String(), "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	sess := game.NewGameSession(game.DefaultTimings())
	store.Add(sess)
	resp, err = http.Post(srv.URL+"/spectate/token?game="+sess.ID.String(), "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	granted, err := auth.VerifySpectatorToken(body["token"])
	require.NoError(t, err)
	assert.Equal(t, sess.ID, granted)
}

func TestSpectateRejectsBadToken(t *testing.T) {
	srv, store, _ := newTestWeb(t)

	sess := game.NewGameSession(game.DefaultTimings())
	store.Add(sess)

	resp, err := http.Get(srv.URL + "/spectate/ws/" + sess.ID.String() + "?token=garbage")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A token for a different session does not transfer.
	other, err := auth.CreateSpectatorToken(uuid.New())
	require.NoError(t, err)
	resp, err = http.Get(srv.URL + "/spectate/ws/" + sess.ID.String() + "?token=" + other)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSpectateStreamsEvents(t *testing.T) {
	srv, store, events := newTestWeb(t)

	sess := game.NewGameSession(game.DefaultTimings())
	_, err := sess.AddPlayer("alice")
	require.NoError(t, err)
	store.Add(sess)

	token, err := auth.CreateSpectatorToken(sess.ID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/spectate/ws/" + sess.ID.String() + "?token=" + token
	c, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		Subprotocols: []string{"spectate"},
	})
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "done")

	// Opening snapshot arrives first.
	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	var msg spectateMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, string(game.EventStateUpdate), msg.Type)

	events.ch <- game.Event{Type: game.EventMessage, Payload: "alice joined"}
	_, data, err = c.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, string(game.EventMessage), msg.Type)
	assert.Equal(t, "alice joined", msg.Payload)
}
