// Package metadata answers the schema questions the query core asks about a
// resolved database.
package metadata

import (
	"context"
	"fmt"

	"github.com/nnnkkk7/sqlpager/pkg/connection"
)

// Inspector reads catalog information through a resolved connection.
type Inspector struct {
	mgr *connection.Manager
}

// NewInspector creates an inspector over mgr.
func NewInspector(mgr *connection.Manager) *Inspector {
	return &Inspector{mgr: mgr}
}

// TableExists reports whether database contains a table or view named table.
func (i *Inspector) TableExists(ctx context.Context, database, table string) (bool, error) {
	query, args := i.mgr.Dialect().TableExistsQuery(database, table)

	var n int64
	if err := i.mgr.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return n > 0, nil
}

// Columns returns the column names of table in declaration order.
// An unknown table yields an empty slice.
func (i *Inspector) Columns(ctx context.Context, database, table string) ([]string, error) {
	query, args := i.mgr.Dialect().ColumnsQuery(database, table)

	rows, err := i.mgr.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}
	defer rows.Close()

	columns := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}
	return columns, nil
}
