package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncroom/syncroom"
	"github.com/syncroom/syncroom/experience"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	sr := syncroom.New(func(o *syncroom.Options) {
		o.Experience = experience.NewBuiltin()
	})
	srv := httptest.NewServer(NewRouter(zerolog.Nop(), sr, "http://localhost:3000"))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) (int, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

func decodeBody(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}

func createRoom(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	status, body := postJSON(t, srv.URL+"/rooms", map[string]any{})
	require.Equal(t, http.StatusCreated, status)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func joinRoom(t *testing.T, srv *httptest.Server, roomID, username, kind string) string {
	t.Helper()
	status, body := postJSON(t, fmt.Sprintf("%s/rooms/%s/join", srv.URL, roomID),
		map[string]any{"username": username, "kind": kind})
	require.Equal(t, http.StatusOK, status)
	actorID, _ := body["actorId"].(string)
	require.NotEmpty(t, actorID)
	return actorID
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	status, body := getJSON(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestCreateAndGetRoom(t *testing.T) {
	srv := newTestServer(t)
	roomID := createRoom(t, srv)

	status, body := getJSON(t, srv.URL+"/rooms/"+roomID)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, roomID, body["id"])
	assert.Equal(t, "builtin", body["experienceId"])

	status, body = getJSON(t, srv.URL+"/rooms/does-not-exist")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["error"])
}

func TestListRooms(t *testing.T) {
	srv := newTestServer(t)
	createRoom(t, srv)
	createRoom(t, srv)

	status, body := getJSON(t, srv.URL+"/rooms")
	require.Equal(t, http.StatusOK, status)
	rooms, ok := body["rooms"].([]any)
	require.True(t, ok)
	assert.Len(t, rooms, 2)
}

func TestJoinRoom(t *testing.T) {
	srv := newTestServer(t)
	roomID := createRoom(t, srv)

	status, body := postJSON(t, fmt.Sprintf("%s/rooms/%s/join", srv.URL, roomID),
		map[string]any{"username": "claude"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "claude-ai-1", body["actorId"], "kind defaults to ai")
	assert.Contains(t, body["browserUrl"], roomID)

	tools, ok := body["tools"].([]any)
	require.True(t, ok)
	assert.Len(t, tools, 3)
}

func TestJoinRoomValidation(t *testing.T) {
	srv := newTestServer(t)
	roomID := createRoom(t, srv)

	status, _ := postJSON(t, fmt.Sprintf("%s/rooms/%s/join", srv.URL, roomID), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status, "username required")

	status, _ = postJSON(t, fmt.Sprintf("%s/rooms/%s/join", srv.URL, roomID),
		map[string]any{"username": "x", "kind": "robot"})
	assert.Equal(t, http.StatusBadRequest, status, "kind must be human or ai")
}

func TestInvokeTool(t *testing.T) {
	srv := newTestServer(t)
	roomID := createRoom(t, srv)
	actorID := joinRoom(t, srv, roomID, "alice", "human")

	status, body := postJSON(t, fmt.Sprintf("%s/rooms/%s/tools/counter.increment", srv.URL, roomID),
		map[string]any{"actorId": actorID})
	require.Equal(t, http.StatusOK, status)
	output, ok := body["output"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), output["count"])

	// State visible on the room snapshot.
	_, snapshot := getJSON(t, srv.URL+"/rooms/"+roomID)
	state := snapshot["state"].(map[string]any)
	assert.Equal(t, float64(1), state["count"])
}

func TestInvokeToolErrorStatuses(t *testing.T) {
	srv := newTestServer(t)
	roomID := createRoom(t, srv)
	actorID := joinRoom(t, srv, roomID, "alice", "human")

	status, body := postJSON(t, fmt.Sprintf("%s/rooms/%s/tools/pixel.place", srv.URL, roomID),
		map[string]any{"actorId": actorID, "input": map[string]any{"x": 70, "y": 0, "color": "#fff"}})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "invalid_input", body["error"])
	fields, ok := body["fields"].([]any)
	require.True(t, ok)
	require.Len(t, fields, 1)
	assert.Equal(t, "x", fields[0].(map[string]any)["field"])

	status, body = postJSON(t, fmt.Sprintf("%s/rooms/%s/tools/nope.missing", srv.URL, roomID),
		map[string]any{"actorId": actorID})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "tool", body["kind"])

	status, _ = postJSON(t, srv.URL+"/rooms/ghost/tools/counter.increment",
		map[string]any{"actorId": actorID})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = postJSON(t, fmt.Sprintf("%s/rooms/%s/tools/counter.increment", srv.URL, roomID),
		map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status, "actorId required")
}

func TestExperienceUnavailableReturns503(t *testing.T) {
	sr := syncroom.New()
	srv := httptest.NewServer(NewRouter(zerolog.Nop(), sr, "http://localhost:3000"))
	defer srv.Close()

	roomID := createRoom(t, srv)
	actorID := joinRoom(t, srv, roomID, "alice", "human")

	status, _ := postJSON(t, fmt.Sprintf("%s/rooms/%s/tools/counter.increment", srv.URL, roomID),
		map[string]any{"actorId": actorID})
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestGetEvents(t *testing.T) {
	srv := newTestServer(t)
	roomID := createRoom(t, srv)
	actorID := joinRoom(t, srv, roomID, "alice", "human")

	postJSON(t, fmt.Sprintf("%s/rooms/%s/tools/counter.increment", srv.URL, roomID),
		map[string]any{"actorId": actorID})

	status, body := getJSON(t, fmt.Sprintf("%s/rooms/%s/events?since=0", srv.URL, roomID))
	require.Equal(t, http.StatusOK, status)
	events, ok := body["events"].([]any)
	require.True(t, ok)
	require.Len(t, events, 1)
	cursor := body["cursor"].(float64)
	assert.Positive(t, cursor)

	// Strict cursor: re-polling with the returned cursor yields nothing.
	status, body = getJSON(t, fmt.Sprintf("%s/rooms/%s/events?since=%d&timeout=0", srv.URL, roomID, int64(cursor)))
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["events"])

	status, _ = getJSON(t, fmt.Sprintf("%s/rooms/%s/events?since=abc", srv.URL, roomID))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = getJSON(t, srv.URL+"/rooms/ghost/events")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLeaveRoom(t *testing.T) {
	srv := newTestServer(t)
	roomID := createRoom(t, srv)
	actorID := joinRoom(t, srv, roomID, "alice", "human")

	status, _ := postJSON(t, fmt.Sprintf("%s/rooms/%s/leave", srv.URL, roomID),
		map[string]any{"actorId": actorID})
	assert.Equal(t, http.StatusOK, status)

	status, body := postJSON(t, fmt.Sprintf("%s/rooms/%s/leave", srv.URL, roomID),
		map[string]any{"actorId": actorID})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "actor", body["kind"])
}

func TestMemoryEndpoints(t *testing.T) {
	srv := newTestServer(t)

	status, body := getJSON(t, srv.URL+"/memory/builtin/bot-ai-1")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["memory"])

	status, body = postJSON(t, srv.URL+"/memory/builtin/bot-ai-1",
		map[string]any{"seen": 1, "note": "x"})
	require.Equal(t, http.StatusOK, status)
	doc := body["memory"].(map[string]any)
	assert.Equal(t, float64(1), doc["seen"])

	// Merge keeps untouched keys.
	status, body = postJSON(t, srv.URL+"/memory/builtin/bot-ai-1", map[string]any{"seen": 2})
	require.Equal(t, http.StatusOK, status)
	doc = body["memory"].(map[string]any)
	assert.Equal(t, float64(2), doc["seen"])
	assert.Equal(t, "x", doc["note"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
