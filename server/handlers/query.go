package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nnnkkk7/sqlpager/pkg/config"
	"github.com/nnnkkk7/sqlpager/pkg/history"
	"github.com/nnnkkk7/sqlpager/pkg/logging"
	"github.com/nnnkkk7/sqlpager/pkg/query"
	"github.com/nnnkkk7/sqlpager/server/apierror"
	"github.com/nnnkkk7/sqlpager/server/types"
)

// PageLimits bounds the page sizes a client may ask for.
type PageLimits struct {
	DefaultPerPage int
	MaxPerPage     int
}

// DefaultPageLimits returns the built-in page size bounds.
func DefaultPageLimits() PageLimits {
	return PageLimits{DefaultPerPage: config.DefaultPerPage, MaxPerPage: config.MaxPerPage}
}

// QueryHandler handles query execution HTTP requests.
type QueryHandler struct {
	executor *query.Executor
	history  history.Store
	limits   PageLimits
	log      *zap.Logger
}

// NewQueryHandler creates a new query handler. A nil store disables history.
func NewQueryHandler(executor *query.Executor, store history.Store, limits PageLimits, log *zap.Logger) *QueryHandler {
	return &QueryHandler{
		executor: executor,
		history:  store,
		limits:   limits,
		log:      logging.OrNop(log),
	}
}

// ExecuteQuery handles POST /api/v1/databases/{database}/query.
//
// A failed statement is answered with 422 and the usual envelope so clients
// can show the database's message next to an empty grid.
func (h *QueryHandler) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	database := chi.URLParam(r, "database")

	var req types.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apierror.NewInvalidParameterError("body", "invalid JSON"))
		return
	}
	if req.SQL == "" {
		sendError(w, apierror.NewInvalidParameterError("sql", "SQL text is required"))
		return
	}

	page := req.Page
	if page == 0 {
		page = config.DefaultPage
	}
	perPage := req.PerPage
	if perPage == 0 {
		perPage = h.limits.DefaultPerPage
	}
	if perPage > h.limits.MaxPerPage {
		sendError(w, apierror.NewInvalidParameterError("perPage", fmt.Sprintf("must not exceed %d", h.limits.MaxPerPage)))
		return
	}

	ctx := r.Context()
	start := time.Now()
	result, err := h.executor.ExecutePaginated(ctx, req.SQL, database, page, perPage)
	elapsed := time.Since(start)
	if err != nil {
		sendError(w, apierror.FromError(err))
		return
	}

	h.record(ctx, database, req.SQL, result, elapsed)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	sendJSON(w, status, ToQueryResponse(result, elapsed))
}

func (h *QueryHandler) record(ctx context.Context, database, sql string, result *query.QueryResult, elapsed time.Duration) {
	if h.history == nil {
		return
	}
	err := h.history.Record(ctx, history.Entry{
		Database:   database,
		SQL:        sql,
		Success:    result.Success,
		TotalCount: result.TotalCount,
		Error:      result.ErrorMessage,
		Duration:   elapsed,
	})
	if err != nil {
		h.log.Warn("failed to record history", zap.Error(err))
	}
}

// ToQueryResponse converts a result to its JSON envelope.
func ToQueryResponse(result *query.QueryResult, elapsed time.Duration) types.QueryResponse {
	rows := make([]map[string]any, len(result.Rows))
	for i, row := range result.Rows {
		rows[i] = row
	}

	columnTypes := make([]types.ColumnMetadata, len(result.ColumnTypes))
	for i, c := range result.ColumnTypes {
		columnTypes[i] = types.ColumnMetadata{Name: c.Name, Type: c.DatabaseType, Nullable: c.Nullable}
	}

	fks := make(map[string]types.ForeignKey, len(result.ForeignKeys))
	for column, ref := range result.ForeignKeys {
		fks[column] = types.ForeignKey{ReferencedTable: ref.ReferencedTable, ReferencedColumn: ref.ReferencedColumn}
	}

	info := result.UserPaginationInfo
	return types.QueryResponse{
		Success:     result.Success,
		Columns:     result.Columns,
		ColumnTypes: columnTypes,
		Rows:        rows,
		PaginationInfo: types.PaginationInfo{
			TotalCount:  result.TotalCount,
			CurrentPage: result.CurrentPage,
			PerPage:     result.PerPage,
			TotalPages:  result.TotalPages,
			HasNext:     int64(result.CurrentPage) < result.TotalPages,
			HasPrevious: result.CurrentPage > 1,
		},
		HasUserPagination: result.HasUserPagination,
		UserPaginationInfo: types.UserPaginationInfo{
			HasLimit:    info.HasLimit,
			LimitValue:  info.LimitValue,
			HasOffset:   info.HasOffset,
			OffsetValue: info.OffsetValue,
		},
		ForeignKeys:  fks,
		ExecutedSQL:  result.ExecutedSQL,
		ErrorMessage: result.ErrorMessage,
		DurationMS:   elapsed.Milliseconds(),
	}
}
