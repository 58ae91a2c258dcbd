package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/syncroom/syncroom/core"
	"github.com/syncroom/syncroom/internal/metrics"
)

// InvokeRequest is the tool invocation body.
type InvokeRequest struct {
	ActorID string         `json:"actorId"`
	Input   map[string]any `json:"input"`
	Owner   string         `json:"owner,omitempty"`
}

// InvokeTool handles POST /rooms/{id}/tools/{tool}.
func (h *Handler) InvokeTool(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	toolName := chi.URLParam(r, "tool")

	var req InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ActorID == "" {
		h.Error(w, http.StatusBadRequest, "actorId is required")
		return
	}
	if req.Input == nil {
		req.Input = map[string]any{}
	}

	start := time.Now()
	output, err := h.sync.Invoke(r.Context(), roomID, toolName, req.ActorID, req.Input, req.Owner)
	metrics.ToolInvocationDuration.WithLabelValues(toolName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ToolInvocations.WithLabelValues(toolName, invocationStatus(err)).Inc()
		h.EngineError(w, err)
		return
	}
	metrics.ToolInvocations.WithLabelValues(toolName, "ok").Inc()

	h.JSON(w, http.StatusOK, map[string]any{"output": output})
}

func invocationStatus(err error) string {
	var nf *core.NotFoundError
	var invalid *core.InvalidInputError
	var failure *core.HandlerFailureError
	switch {
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &invalid):
		return "invalid_input"
	case errors.As(err, &failure):
		return "handler_failure"
	case errors.Is(err, core.ErrExperienceUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
