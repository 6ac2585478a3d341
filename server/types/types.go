// Package types defines the JSON bodies of the HTTP API.
package types

import (
	"time"
)

// QueryRequest is the body of a query execution request.
type QueryRequest struct {
	SQL     string `json:"sql"`
	Page    int    `json:"page,omitempty"`
	PerPage int    `json:"perPage,omitempty"`
}

// QueryResponse is the envelope returned for every executed statement.
type QueryResponse struct {
	Success     bool             `json:"success"`
	Columns     []string         `json:"columns"`
	ColumnTypes []ColumnMetadata `json:"columnTypes,omitempty"`
	Rows        []map[string]any `json:"rows"`

	PaginationInfo

	HasUserPagination  bool               `json:"hasUserPagination"`
	UserPaginationInfo UserPaginationInfo `json:"userPaginationInfo"`

	ForeignKeys map[string]ForeignKey `json:"foreignKeys"`

	ExecutedSQL  string `json:"executedSql,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	DurationMS   int64  `json:"durationMs"`
}

// PaginationInfo describes the returned page. Its fields sit at the top
// level of QueryResponse.
type PaginationInfo struct {
	TotalCount  int64 `json:"totalCount"`
	CurrentPage int   `json:"currentPage"`
	PerPage     int   `json:"perPage"`
	TotalPages  int64 `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// UserPaginationInfo is the LIMIT/OFFSET found at the end of the statement.
type UserPaginationInfo struct {
	HasLimit    bool   `json:"hasLimit"`
	LimitValue  *int64 `json:"limitValue"`
	HasOffset   bool   `json:"hasOffset"`
	OffsetValue *int64 `json:"offsetValue"`
}

// ColumnMetadata describes a result column.
type ColumnMetadata struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// ForeignKey is a guessed reference from a result column.
type ForeignKey struct {
	ReferencedTable  string `json:"referencedTable"`
	ReferencedColumn string `json:"referencedColumn"`
}

// PreviewResponse describes one referenced record.
type PreviewResponse struct {
	Success        bool           `json:"success"`
	Table          string         `json:"table"`
	Data           map[string]any `json:"data"`
	DisplayColumns []string       `json:"displayColumns"`
}

// HistoryEntry is one executed statement.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Database   string    `json:"database"`
	SQL        string    `json:"sql"`
	Success    bool      `json:"success"`
	TotalCount int64     `json:"totalCount"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"durationMs"`
	ExecutedAt time.Time `json:"executedAt"`
}

// HistoryResponse lists recent statements, newest first.
type HistoryResponse struct {
	Success bool           `json:"success"`
	Entries []HistoryEntry `json:"entries"`
}
