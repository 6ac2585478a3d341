package connection

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/nnnkkk7/sqlpager/pkg/config"
)

// E'...' escape strings are not recognized.
type postgresDialect struct {
	standardStrings
}

// Postgres returns the PostgreSQL dialect. dsn is any connection string
// pgx.ParseConfig accepts; its database is replaced per call.
func Postgres() Dialect { return postgresDialect{} }

func (postgresDialect) Name() string { return config.DialectPostgres }

func (postgresDialect) Open(dsn, database string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.Database = database
	return stdlib.OpenDB(*cfg), nil
}

func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgresDialect) QuoteIdentifier(name string) string { return quoteWith(name, `"`) }

func (postgresDialect) TableExistsQuery(database, table string) (string, []any) {
	return `SELECT COUNT(*) FROM information_schema.tables
		WHERE table_catalog = $1 AND table_name = $2
		AND table_schema NOT IN ('pg_catalog', 'information_schema')`, []any{database, table}
}

func (postgresDialect) ColumnsQuery(database, table string) (string, []any) {
	return `SELECT column_name FROM information_schema.columns
		WHERE table_catalog = $1 AND table_name = $2
		AND table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY ordinal_position`, []any{database, table}
}
