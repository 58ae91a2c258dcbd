package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/syncroom/syncroom/internal/metrics"
)

// GetEvents handles GET /rooms/{id}/events?since=&timeout=. It drives the
// watcher: with no timeout (or timeout=0) it returns immediately; otherwise
// it long-polls until events appear past the cursor or the (capped) timeout
// elapses. A client disconnect cancels the wait via the request context.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	metrics.WatchRequests.Inc()

	var since int64
	if s := r.URL.Query().Get("since"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "since must be an integer cursor")
			return
		}
		since = v
	}

	var timeout time.Duration
	if s := r.URL.Query().Get("timeout"); s != "" {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil || ms < 0 {
			h.Error(w, http.StatusBadRequest, "timeout must be non-negative milliseconds")
			return
		}
		timeout = time.Duration(ms) * time.Millisecond
	}

	result, err := h.sync.AwaitEvents(r.Context(), roomID, since, timeout)
	if err != nil {
		if r.Context().Err() != nil {
			// Caller disconnected mid-wait: silent cleanup, nothing to write.
			return
		}
		h.EngineError(w, err)
		return
	}

	h.JSON(w, http.StatusOK, result)
}
