package connection

import (
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/nnnkkk7/sqlpager/pkg/config"
)

type mysqlDialect struct {
	questionPlaceholder
}

// MySQL returns the MySQL/MariaDB dialect. dsn uses the go-sql-driver format,
// e.g. "user:pass@tcp(localhost:3306)/".
func MySQL() Dialect { return mysqlDialect{} }

func (mysqlDialect) Name() string { return config.DialectMySQL }

func (mysqlDialect) Open(dsn, database string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg = cfg.Clone()
	cfg.DBName = database

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	return sql.OpenDB(connector), nil
}

func (mysqlDialect) QuoteIdentifier(name string) string { return quoteWith(name, "`") }

// BackslashEscapes is true unless the server runs with NO_BACKSLASH_ESCAPES.
func (mysqlDialect) BackslashEscapes() bool { return true }

func (mysqlDialect) TableExistsQuery(database, table string) (string, []any) {
	return `SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?`, []any{database, table}
}

func (mysqlDialect) ColumnsQuery(database, table string) (string, []any) {
	return `SELECT column_name FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`, []any{database, table}
}
