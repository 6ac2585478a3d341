package connection

import (
	"context"
	"database/sql"
)

// Manager is a handle on one resolved target database.
//
// A Manager is only valid inside the Resolver.WithDatabase callback that
// produced it; the pool behind it is closed when the callback returns.
type Manager struct {
	db       *sql.DB
	database string
	dialect  Dialect
}

// NewManager wraps db, which is bound to database through dialect.
func NewManager(db *sql.DB, database string, dialect Dialect) *Manager {
	return &Manager{db: db, database: database, dialect: dialect}
}

// Query executes a query that returns rows.
func (m *Manager) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return m.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that is expected to return at most one row.
func (m *Manager) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return m.db.QueryRowContext(ctx, query, args...)
}

// Database returns the name of the database the handle is bound to.
func (m *Manager) Database() string {
	return m.database
}

// Dialect returns the dialect of the bound database.
func (m *Manager) Dialect() Dialect {
	return m.dialect
}

// DB returns the underlying pool.
func (m *Manager) DB() *sql.DB {
	return m.db
}
