package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/syncroom/syncroom"
	"github.com/syncroom/syncroom/core"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	sync           *syncroom.SyncRoom
	browserBaseURL string
	logger         zerolog.Logger
}

// NewHandler creates a Handler bound to the engine façade.
func NewHandler(sync *syncroom.SyncRoom, browserBaseURL string, logger zerolog.Logger) *Handler {
	return &Handler{sync: sync, browserBaseURL: browserBaseURL, logger: logger}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// EngineError maps the engine's error taxonomy onto HTTP statuses:
// not-found 404, invalid-input 422 with field details, handler-failure 500,
// experience-unavailable 503.
func (h *Handler) EngineError(w http.ResponseWriter, err error) {
	var nf *core.NotFoundError
	if errors.As(err, &nf) {
		h.JSON(w, http.StatusNotFound, map[string]any{
			"error": "not_found",
			"kind":  nf.Kind,
			"id":    nf.ID,
		})
		return
	}

	var invalid *core.InvalidInputError
	if errors.As(err, &invalid) {
		h.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "invalid_input",
			"tool":   invalid.Tool,
			"fields": invalid.Fields,
		})
		return
	}

	var failure *core.HandlerFailureError
	if errors.As(err, &failure) {
		h.JSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "handler_failure",
			"tool":    failure.Tool,
			"message": failure.Err.Error(),
		})
		return
	}

	if errors.Is(err, core.ErrExperienceUnavailable) {
		h.Error(w, http.StatusServiceUnavailable, "experience unavailable")
		return
	}

	h.logger.Error().Err(err).Msg("unexpected engine error")
	h.Error(w, http.StatusInternalServerError, "internal error")
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
