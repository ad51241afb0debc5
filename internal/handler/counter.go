package handler

import (
	"log/slog"
	"net/http"

	"github.com/eakyuz/zikirmatik/internal/service"
	"github.com/starfederation/datastar-go/datastar"
)

// CounterHandler handles counter HTTP requests for the signed-in user.
type CounterHandler struct {
	counters *service.CounterService
}

// NewCounterHandler creates a new CounterHandler.
func NewCounterHandler(counters *service.CounterService) *CounterHandler {
	return &CounterHandler{counters: counters}
}

// HandleGet returns the current counter state.
// GET /api/counter
func (h *CounterHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	state, err := h.counters.Get(r.Context(), account.ID)
	if err != nil {
		slog.Error("get counter", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, toCounterDTO(state))
}

// HandleDecrement lowers the counter by one. At zero it is a no-op and the
// unchanged state comes back; the completed flag is true only on the call
// that reached zero.
// POST /api/counter/decrement
func (h *CounterHandler) HandleDecrement(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	state, completed, err := h.counters.Decrement(r.Context(), account.ID)
	if err != nil {
		// Non-fatal by design: the view simply does not advance.
		slog.Error("decrement counter", "error", err, "user", account.ID)
		writeError(w, http.StatusServiceUnavailable, "Could not save your progress. Please try again.")
		return
	}

	dto := toCounterDTO(state)
	writeJSON(w, http.StatusOK, map[string]any{
		"count":           dto.Count,
		"progressPercent": dto.ProgressPercent,
		"completed":       completed,
	})
}

// HandleReset puts the counter back to the full target.
// POST /api/counter/reset
func (h *CounterHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	state, err := h.counters.Reset(r.Context(), account.ID)
	if err != nil {
		slog.Error("reset counter", "error", err, "user", account.ID)
		writeError(w, http.StatusServiceUnavailable, "Could not reset the counter. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, toCounterDTO(state))
}

// HandleStats returns the derived statistics.
// GET /api/counter/stats
func (h *CounterHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	stats, err := h.counters.GetStats(r.Context(), account.ID)
	if err != nil {
		slog.Error("counter stats", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, toStatsDTO(stats))
}

// HandleShare returns the share-sheet text for the current progress.
// GET /api/counter/share
func (h *CounterHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	text, err := h.counters.ShareText(r.Context(), account.ID)
	if err != nil {
		slog.Error("counter share text", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// HandleStream pushes live counter updates over SSE as datastar signal
// patches. The client always prefers the latest pushed value: every patch
// carries a store-confirmed state. The subscription is released when the
// request context ends, so nothing fires after the view is torn down.
// GET /api/counter/stream
func (h *CounterHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	updates, cancel := h.counters.Subscribe(account.ID)
	defer cancel()

	sse := datastar.NewSSE(w, r)

	// Initial snapshot so a reconnecting client converges immediately.
	state, err := h.counters.Get(r.Context(), account.ID)
	if err != nil {
		slog.Error("get counter for stream", "error", err)
		return
	}
	if err := h.patchCounterSignals(sse, state.Remaining, state.ProgressPercent, state.Completed); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := h.patchCounterSignals(sse, update.Count, service.ProgressPercent(update.Count), update.Completed); err != nil {
				// Transient stream failures keep the last known client
				// value; the view must not crash over them.
				slog.Warn("patch counter signals", "error", err, "user", account.ID)
				return
			}
		}
	}
}

func (h *CounterHandler) patchCounterSignals(sse *datastar.ServerSentEventGenerator, count int, progress float64, completed bool) error {
	return sse.MarshalAndPatchSignals(map[string]any{
		"count":           count,
		"progressPercent": progress,
		"completed":       completed,
	})
}
