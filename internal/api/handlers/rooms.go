package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/syncroom/syncroom/core"
	"github.com/syncroom/syncroom/internal/metrics"
)

// RoomInfo summarizes one room for list responses.
type RoomInfo struct {
	ID           string `json:"id"`
	ExperienceID string `json:"experienceId"`
	Participants int    `json:"participants"`
	Events       int    `json:"events"`
}

// RoomSnapshot is the full pull-side view of a room.
type RoomSnapshot struct {
	ID           string                      `json:"id"`
	ExperienceID string                      `json:"experienceId"`
	State        map[string]any              `json:"state"`
	Participants map[string]core.Participant `json:"participants"`
	Events       []core.ToolEvent            `json:"events"`
}

// JoinRequest is the pull-side join body.
type JoinRequest struct {
	Username string `json:"username"`
	Kind     string `json:"kind,omitempty"` // human | ai, defaults to ai
}

// JoinResponse carries everything a fresh participant needs.
type JoinResponse struct {
	ActorID    string                `json:"actorId"`
	Tools      []core.ToolDescriptor `json:"tools"`
	Events     []core.ToolEvent      `json:"events"`
	BrowserURL string                `json:"browserUrl"`
}

// CreateRoom handles POST /rooms.
func (h *Handler) CreateRoom(w http.ResponseWriter, _ *http.Request) {
	rm := h.sync.CreateRoom()
	metrics.RoomsCreated.Inc()
	h.JSON(w, http.StatusCreated, map[string]string{
		"id":           rm.ID,
		"experienceId": rm.ExperienceID,
	})
}

// ListRooms handles GET /rooms.
func (h *Handler) ListRooms(w http.ResponseWriter, _ *http.Request) {
	rooms := h.sync.Registry().List()
	infos := make([]RoomInfo, 0, len(rooms))
	for _, rm := range rooms {
		infos = append(infos, RoomInfo{
			ID:           rm.ID,
			ExperienceID: rm.ExperienceID,
			Participants: len(rm.Participants()),
			Events:       len(rm.Events()),
		})
	}
	h.JSON(w, http.StatusOK, map[string]any{"rooms": infos})
}

// GetRoom handles GET /rooms/{id}: state, participants and recent events.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.sync.Registry().Get(chi.URLParam(r, "id"))
	if !ok {
		h.EngineError(w, core.NewRoomNotFound(chi.URLParam(r, "id")))
		return
	}
	h.JSON(w, http.StatusOK, RoomSnapshot{
		ID:           rm.ID,
		ExperienceID: rm.ExperienceID,
		State:        rm.StateSnapshot(),
		Participants: rm.Participants(),
		Events:       rm.Events(),
	})
}

// JoinRoom handles POST /rooms/{id}/join: allocates an actor identity and
// returns the tool catalog, recent events and the browser URL.
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username == "" {
		h.Error(w, http.StatusBadRequest, "username is required")
		return
	}
	kind := core.ActorKind(req.Kind)
	if req.Kind == "" {
		kind = core.ActorKindAI
	}
	if !kind.Valid() {
		h.Error(w, http.StatusBadRequest, "kind must be \"human\" or \"ai\"")
		return
	}

	actorID, rm := h.sync.JoinRoom(roomID, req.Username, kind)

	var catalog []core.ToolDescriptor
	if exp := h.sync.Gate().Experience(); exp != nil {
		catalog = exp.Catalog()
	}

	h.JSON(w, http.StatusOK, JoinResponse{
		ActorID:    actorID,
		Tools:      catalog,
		Events:     rm.Events(),
		BrowserURL: fmt.Sprintf("%s/rooms/%s", h.browserBaseURL, rm.ID),
	})
}

// LeaveRoom handles POST /rooms/{id}/leave.
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ActorID string `json:"actorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ActorID == "" {
		h.Error(w, http.StatusBadRequest, "actorId is required")
		return
	}
	if err := h.sync.LeaveRoom(chi.URLParam(r, "id"), req.ActorID); err != nil {
		h.EngineError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]string{"status": "left"})
}
