package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncroom/syncroom"
	"github.com/syncroom/syncroom/broadcast"
	"github.com/syncroom/syncroom/experience"
)

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) broadcast.Message {
	t.Helper()
	var msg broadcast.Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestRoomSocket_JoinAndPush(t *testing.T) {
	sr := syncroom.New(func(o *syncroom.Options) {
		o.Experience = experience.NewBuiltin()
	})
	srv := httptest.NewServer(NewRouter(zerolog.Nop(), sr, "http://localhost:3000"))
	defer srv.Close()

	roomID := createRoom(t, srv)

	conn := dialWS(t, srv)
	require.NoError(t, conn.WriteJSON(map[string]string{
		"type": "join", "roomId": roomID, "username": "alice",
	}))

	joined := readMessage(t, conn)
	require.Equal(t, broadcast.TypeJoined, joined.Type)
	assert.Equal(t, "alice-human-1", joined.ActorID, "kind defaults to human on the push channel")
	assert.Len(t, joined.Tools, 3)
	assert.Contains(t, joined.Participants, "alice-human-1")

	// The connection's own join was published after it subscribed.
	presence := readMessage(t, conn)
	assert.Equal(t, broadcast.TypePresenceUpdate, presence.Type)
	assert.Equal(t, "alice-human-1", presence.ActorID)

	// A mutation from the pull side shows up as a push.
	agentID := joinRoom(t, srv, roomID, "bot", "ai")
	agentPresence := readMessage(t, conn)
	assert.Equal(t, broadcast.TypePresenceUpdate, agentPresence.Type)

	status, _ := postJSON(t, fmt.Sprintf("%s/rooms/%s/tools/counter.increment", srv.URL, roomID),
		map[string]any{"actorId": agentID})
	require.Equal(t, http.StatusOK, status)

	update := readMessage(t, conn)
	assert.Equal(t, broadcast.TypeSharedStateUpdate, update.Type)
	assert.Equal(t, "counter.increment", update.Tool)
	assert.Equal(t, float64(1), update.State["count"])
	require.NotNil(t, update.Event)
	assert.Equal(t, agentID, update.Event.ActorID)
}

func TestRoomSocket_RejectsNonJoinFirstFrame(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "hello"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}

func TestRoomSocket_DisconnectLeavesRoom(t *testing.T) {
	sr := syncroom.New(func(o *syncroom.Options) {
		o.Experience = experience.NewBuiltin()
	})
	srv := httptest.NewServer(NewRouter(zerolog.Nop(), sr, "http://localhost:3000"))
	defer srv.Close()

	roomID := createRoom(t, srv)
	conn := dialWS(t, srv)
	require.NoError(t, conn.WriteJSON(map[string]string{
		"type": "join", "roomId": roomID, "username": "alice",
	}))
	readMessage(t, conn) // joined

	rm, ok := sr.Registry().Get(roomID)
	require.True(t, ok)
	require.True(t, rm.HasParticipant("alice-human-1"))

	conn.Close()

	require.Eventually(t, func() bool {
		return !rm.HasParticipant("alice-human-1")
	}, 5*time.Second, 20*time.Millisecond, "participant removed after disconnect")
}
