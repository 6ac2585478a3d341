package handlers

import (
	"net/http"
	"strconv"

	"github.com/nnnkkk7/sqlpager/pkg/history"
	"github.com/nnnkkk7/sqlpager/server/apierror"
	"github.com/nnnkkk7/sqlpager/server/types"
)

// HistoryHandler lists recently executed statements.
type HistoryHandler struct {
	store history.Store
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(store history.Store) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// Recent handles GET /api/v1/history.
func (h *HistoryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			sendError(w, apierror.NewInvalidParameterError("limit", "must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		sendError(w, apierror.WrapError(apierror.CodeInternalError, "failed to read history", err))
		return
	}

	resp := types.HistoryResponse{Success: true, Entries: make([]types.HistoryEntry, len(entries))}
	for i, e := range entries {
		resp.Entries[i] = types.HistoryEntry{
			ID:         e.ID,
			Database:   e.Database,
			SQL:        e.SQL,
			Success:    e.Success,
			TotalCount: e.TotalCount,
			Error:      e.Error,
			DurationMS: e.Duration.Milliseconds(),
			ExecutedAt: e.ExecutedAt,
		}
	}
	sendJSON(w, http.StatusOK, resp)
}
