package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nnnkkk7/sqlpager/pkg/foreignkey"
	"github.com/nnnkkk7/sqlpager/server/apierror"
	"github.com/nnnkkk7/sqlpager/server/types"
)

// PreviewHandler serves short previews of referenced records.
type PreviewHandler struct {
	previewer *foreignkey.Previewer
}

// NewPreviewHandler creates a new preview handler.
func NewPreviewHandler(previewer *foreignkey.Previewer) *PreviewHandler {
	return &PreviewHandler{previewer: previewer}
}

// Preview handles GET /api/v1/databases/{database}/tables/{table}/records/preview.
func (h *PreviewHandler) Preview(w http.ResponseWriter, r *http.Request) {
	database := chi.URLParam(r, "database")
	table := chi.URLParam(r, "table")

	column := r.URL.Query().Get("column")
	if column == "" {
		column = "id"
	}
	value := r.URL.Query().Get("value")
	if value == "" {
		sendError(w, apierror.NewInvalidParameterError("value", "value is required"))
		return
	}

	preview, err := h.previewer.Preview(r.Context(), database, table, column, value)
	if err != nil {
		sendError(w, apierror.FromError(err))
		return
	}

	sendJSON(w, http.StatusOK, types.PreviewResponse{
		Success:        true,
		Table:          preview.Table,
		Data:           preview.Data,
		DisplayColumns: preview.DisplayColumns,
	})
}
