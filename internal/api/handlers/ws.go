package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncroom/syncroom/broadcast"
	"github.com/syncroom/syncroom/core"
	"github.com/syncroom/syncroom/internal/metrics"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser sessions and agents connect from anywhere; rooms carry no
	// credentials.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsJoin is the first inbound frame on a push connection.
type wsJoin struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Kind     string `json:"kind,omitempty"` // defaults to human
}

// RoomSocket handles GET /ws. Establishing a push connection is itself a
// join: the first frame must be {type:"join", roomId, username}; it allocates
// a participant identity through the same allocator as the pull join and
// replies with a "joined" snapshot. Afterwards the connection only receives:
// presence_update, shared_state_update and experience_updated. Delivery is
// best-effort; a slow consumer misses pushes and reconciles via pull.
func (h *Handler) RoomSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return // Upgrade already replied
	}
	defer conn.Close()

	metrics.WSConnections.Inc()
	defer metrics.WSConnections.Dec()

	var join wsJoin
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	if err := conn.ReadJSON(&join); err != nil || join.Type != "join" || join.RoomID == "" || join.Username == "" {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected join frame"),
			time.Now().Add(wsWriteWait))
		return
	}
	kind := core.ActorKind(join.Kind)
	if join.Kind == "" {
		kind = core.ActorKindHuman
	}
	if !kind.Valid() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "kind must be human or ai"),
			time.Now().Add(wsWriteWait))
		return
	}

	// Subscribe before joining so the connection observes every mutation
	// committed after its own snapshot.
	sub := h.sync.Broadcaster().Subscribe(join.RoomID)
	defer h.sync.Broadcaster().Unsubscribe(sub)

	actorID, rm := h.sync.JoinRoom(join.RoomID, join.Username, kind)
	defer func() { _ = h.sync.LeaveRoom(rm.ID, actorID) }()

	var catalog []core.ToolDescriptor
	if exp := h.sync.Gate().Experience(); exp != nil {
		catalog = exp.Catalog()
	}

	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(broadcast.Message{
		Type:         broadcast.TypeJoined,
		RoomID:       rm.ID,
		ActorID:      actorID,
		State:        rm.StateSnapshot(),
		Participants: rm.Participants(),
		Tools:        catalog,
		Events:       rm.Events(),
	}); err != nil {
		return
	}

	// Reader: inbound frames are only pong traffic and the eventual close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case msg, ok := <-sub.C():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
