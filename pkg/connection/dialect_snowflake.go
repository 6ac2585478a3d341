package connection

import (
	"database/sql"
	"fmt"

	"github.com/snowflakedb/gosnowflake"

	"github.com/nnnkkk7/sqlpager/pkg/config"
)

type snowflakeDialect struct {
	questionPlaceholder
}

// Snowflake returns the Snowflake dialect. dsn uses the gosnowflake format,
// e.g. "user:pass@account/db?warehouse=wh".
func Snowflake() Dialect { return snowflakeDialect{} }

func (snowflakeDialect) Name() string { return config.DialectSnowflake }

func (snowflakeDialect) Open(dsn, database string) (*sql.DB, error) {
	cfg, err := gosnowflake.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse snowflake dsn: %w", err)
	}
	cfg.Database = database

	out, err := gosnowflake.DSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("format snowflake dsn: %w", err)
	}
	return sql.Open("snowflake", out)
}

func (snowflakeDialect) QuoteIdentifier(name string) string { return quoteWith(name, `"`) }

// Single-quoted constants accept backslash escape sequences.
func (snowflakeDialect) BackslashEscapes() bool { return true }

// Unquoted Snowflake identifiers are stored upper-cased.
func (snowflakeDialect) TableExistsQuery(database, table string) (string, []any) {
	return `SELECT COUNT(*) FROM information_schema.tables
		WHERE table_catalog = UPPER(?) AND table_name = UPPER(?)`, []any{database, table}
}

func (snowflakeDialect) ColumnsQuery(database, table string) (string, []any) {
	return `SELECT column_name FROM information_schema.columns
		WHERE table_catalog = UPPER(?) AND table_name = UPPER(?)
		ORDER BY ordinal_position`, []any{database, table}
}
