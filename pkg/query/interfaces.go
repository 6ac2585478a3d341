// Package query runs ad-hoc statements against a resolved database with
// page-window rewriting, row counting and foreign key annotation.
package query

import (
	"context"
	"database/sql"

	"github.com/nnnkkk7/sqlpager/pkg/connection"
	"github.com/nnnkkk7/sqlpager/pkg/foreignkey"
)

// Querier runs SQL against one database. *connection.Manager implements it.
type Querier interface {
	// Query executes a statement that returns rows.
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// QueryRow executes a statement expected to return at most one row.
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
}

// AnnotateFunc guesses foreign keys for the columns of a non-empty result.
type AnnotateFunc func(ctx context.Context, mgr *connection.Manager, columns []string) (foreignkey.Map, error)

var _ Querier = (*connection.Manager)(nil)
