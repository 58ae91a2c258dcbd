package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetMemory handles GET /memory/{scope}/{actorId}.
func (h *Handler) GetMemory(w http.ResponseWriter, r *http.Request) {
	doc, err := h.sync.Memory().Get(chi.URLParam(r, "scope"), chi.URLParam(r, "actorId"))
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to read memory")
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{"memory": doc})
}

// MergeMemory handles POST /memory/{scope}/{actorId}: the body is a partial
// document shallow-merged into the stored one. The merged result is returned.
func (h *Handler) MergeMemory(w http.ResponseWriter, r *http.Request) {
	scope := chi.URLParam(r, "scope")
	actorID := chi.URLParam(r, "actorId")

	var delta map[string]any
	if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.sync.Memory().Put(scope, actorID, delta); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to merge memory")
		return
	}

	doc, err := h.sync.Memory().Get(scope, actorID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to read memory")
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{"memory": doc})
}
