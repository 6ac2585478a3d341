package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/nnnkkk7/sqlpager/internal/testdb"
	"github.com/nnnkkk7/sqlpager/pkg/foreignkey"
	"github.com/nnnkkk7/sqlpager/pkg/history"
	"github.com/nnnkkk7/sqlpager/pkg/query"
	"github.com/nnnkkk7/sqlpager/server/apierror"
	"github.com/nnnkkk7/sqlpager/server/types"
)

// setupTestRouter serves the handlers over the shop database.
func setupTestRouter(t *testing.T) (http.Handler, *history.MemoryStore) {
	t.Helper()

	r, _ := testdb.Shop(t)
	store := history.NewMemoryStore(history.DefaultLimits())

	queryHandler := NewQueryHandler(query.NewExecutor(r), store, PageLimits{DefaultPerPage: 10, MaxPerPage: 50}, nil)
	previewHandler := NewPreviewHandler(foreignkey.NewPreviewer(r, nil))
	historyHandler := NewHistoryHandler(store)

	router := chi.NewRouter()
	router.Post("/api/v1/databases/{database}/query", queryHandler.ExecuteQuery)
	router.Get("/api/v1/databases/{database}/tables/{table}/records/preview", previewHandler.Preview)
	router.Get("/api/v1/history", historyHandler.Recent)
	return router, store
}

func postQuery(t *testing.T, h http.Handler, database string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/databases/"+database+"/query", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestQueryHandler_ExecuteQuery(t *testing.T) {
	h, _ := setupTestRouter(t)

	w := postQuery(t, h, "shop", types.QueryRequest{SQL: "SELECT * FROM users ORDER BY id", Page: 2, PerPage: 25})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	resp := decode[types.QueryResponse](t, w)
	if !resp.Success {
		t.Fatalf("Success = false: %s", resp.ErrorMessage)
	}
	want := types.PaginationInfo{CurrentPage: 2, PerPage: 25, TotalCount: 60, TotalPages: 3, HasNext: true, HasPrevious: true}
	if diff := cmp.Diff(want, resp.PaginationInfo); diff != "" {
		t.Errorf("Pagination mismatch (-want +got):\n%s", diff)
	}
	if len(resp.Rows) != 25 {
		t.Fatalf("rows = %d, want 25", len(resp.Rows))
	}
	if id := resp.Rows[0]["id"]; id != float64(26) {
		t.Errorf("first id = %v, want 26", id)
	}
	if diff := cmp.Diff([]string{"id", "name", "email"}, resp.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryHandler_Defaults(t *testing.T) {
	h, _ := setupTestRouter(t)

	w := postQuery(t, h, "shop", map[string]any{"sql": "SELECT * FROM orders LIMIT 15 OFFSET 2"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	resp := decode[types.QueryResponse](t, w)
	if resp.CurrentPage != 1 || resp.PerPage != 10 {
		t.Errorf("page = %d/%d, want defaults 1/10", resp.CurrentPage, resp.PerPage)
	}
	if resp.TotalCount != 15 || resp.TotalPages != 2 {
		t.Errorf("total = %d in %d pages, want 15 in 2", resp.TotalCount, resp.TotalPages)
	}
	if !resp.HasUserPagination || resp.UserPaginationInfo.LimitValue == nil || *resp.UserPaginationInfo.LimitValue != 15 {
		t.Errorf("UserPaginationInfo = %+v", resp.UserPaginationInfo)
	}
}

func TestQueryHandler_ForeignKeys(t *testing.T) {
	h, _ := setupTestRouter(t)

	w := postQuery(t, h, "shop", types.QueryRequest{SQL: "SELECT id, author_id, editor_id FROM posts"})
	resp := decode[types.QueryResponse](t, w)

	want := map[string]types.ForeignKey{
		"author_id": {ReferencedTable: "authors", ReferencedColumn: "id"},
	}
	if diff := cmp.Diff(want, resp.ForeignKeys); diff != "" {
		t.Errorf("ForeignKeys mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryHandler_Errors(t *testing.T) {
	h, _ := setupTestRouter(t)

	tests := []struct {
		name       string
		database   string
		body       any
		wantStatus int
		wantCode   string
	}{
		{name: "MissingSQL", database: "shop", body: map[string]any{"page": 1}, wantStatus: http.StatusBadRequest, wantCode: apierror.CodeInvalidParameter},
		{name: "PerPageTooLarge", database: "shop", body: types.QueryRequest{SQL: "SELECT 1", PerPage: 51}, wantStatus: http.StatusBadRequest, wantCode: apierror.CodeInvalidParameter},
		{name: "NegativePage", database: "shop", body: types.QueryRequest{SQL: "SELECT 1", Page: -1}, wantStatus: http.StatusBadRequest, wantCode: apierror.CodeInvalidParameter},
		{name: "BadDatabaseName", database: "shop%3B%20drop", body: types.QueryRequest{SQL: "SELECT 1"}, wantStatus: http.StatusBadRequest, wantCode: apierror.CodeInvalidIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postQuery(t, h, tt.database, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			resp := decode[apierror.ErrorResponse](t, w)
			if resp.Success || resp.Code != tt.wantCode {
				t.Errorf("response = %+v, want code %s", resp, tt.wantCode)
			}
		})
	}
}

func TestQueryHandler_InvalidJSON(t *testing.T) {
	h, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/databases/shop/query", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestQueryHandler_FailedStatement(t *testing.T) {
	h, store := setupTestRouter(t)

	w := postQuery(t, h, "shop", types.QueryRequest{SQL: "SELECT * FROM invoices"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}

	resp := decode[types.QueryResponse](t, w)
	if resp.Success || resp.ErrorMessage == "" {
		t.Errorf("response = %+v, want failure with message", resp)
	}
	if len(resp.Rows) != 0 || len(resp.Columns) != 0 {
		t.Errorf("failed response carries data: %+v", resp)
	}

	entries, err := store.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Success || entries[0].Error == "" {
		t.Errorf("history = %+v, want one failed entry", entries)
	}
}

func TestQueryHandler_EnvelopeKeys(t *testing.T) {
	h, _ := setupTestRouter(t)

	tests := []struct {
		name     string
		sql      string
		wantKeys []string
	}{
		{
			name:     "Success",
			sql:      "SELECT * FROM users",
			wantKeys: []string{"success", "rows", "totalCount", "currentPage", "perPage", "totalPages", "hasUserPagination", "userPaginationInfo"},
		},
		{
			name:     "Failure",
			sql:      "SELECT * FROM invoices",
			wantKeys: []string{"success", "rows", "totalCount", "currentPage", "perPage", "totalPages", "errorMessage"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postQuery(t, h, "shop", types.QueryRequest{SQL: tt.sql})
			body := decode[map[string]json.RawMessage](t, w)

			for _, key := range tt.wantKeys {
				if _, ok := body[key]; !ok {
					t.Errorf("response has no top-level %q: %v", key, body)
				}
			}
			for _, key := range []string{"pagination", "error"} {
				if _, ok := body[key]; ok {
					t.Errorf("response has unexpected key %q", key)
				}
			}
		})
	}
}

func TestPreviewHandler_Preview(t *testing.T) {
	h, _ := setupTestRouter(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		want       *types.PreviewResponse
	}{
		{
			name:       "Found",
			path:       "/api/v1/databases/shop/tables/authors/records/preview?column=id&value=1",
			wantStatus: http.StatusOK,
			want: &types.PreviewResponse{
				Success:        true,
				Table:          "authors",
				Data:           map[string]any{"name": "Ada"},
				DisplayColumns: []string{"name"},
			},
		},
		{
			name:       "DefaultColumn",
			path:       "/api/v1/databases/shop/tables/category/records/preview?value=1",
			wantStatus: http.StatusOK,
			want: &types.PreviewResponse{
				Success:        true,
				Table:          "category",
				Data:           map[string]any{"label": "news"},
				DisplayColumns: []string{"label"},
			},
		},
		{name: "MissingValue", path: "/api/v1/databases/shop/tables/authors/records/preview?column=id", wantStatus: http.StatusBadRequest},
		{name: "MissingRecord", path: "/api/v1/databases/shop/tables/authors/records/preview?value=42", wantStatus: http.StatusNotFound},
		{name: "MissingTable", path: "/api/v1/databases/shop/tables/editors/records/preview?value=1", wantStatus: http.StatusNotFound},
		{name: "BadColumn", path: "/api/v1/databases/shop/tables/authors/records/preview?column=id%3D1&value=1", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.want == nil {
				return
			}
			got := decode[types.PreviewResponse](t, w)
			if diff := cmp.Diff(*tt.want, got); diff != "" {
				t.Errorf("Preview mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHistoryHandler_Recent(t *testing.T) {
	h, _ := setupTestRouter(t)

	for _, sql := range []string{"SELECT 1", "SELECT 2", "SELECT 3"} {
		if w := postQuery(t, h, "shop", types.QueryRequest{SQL: sql}); w.Code != http.StatusOK {
			t.Fatalf("query %q status = %d: %s", sql, w.Code, w.Body.String())
		}
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	resp := decode[types.HistoryResponse](t, w)
	got := make([]string, len(resp.Entries))
	for i, e := range resp.Entries {
		got[i] = e.SQL
		if e.Database != "shop" || !e.Success || e.ID == "" {
			t.Errorf("entry = %+v", e)
		}
	}
	if diff := cmp.Diff([]string{"SELECT 3", "SELECT 2"}, got); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status for bad limit = %d, want 400", w.Code)
	}
}
