package connection

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	_ "github.com/mattn/go-sqlite3"     // registers the "sqlite3" driver

	"github.com/nnnkkk7/sqlpager/pkg/config"
)

// Embedded engines keep one file per database inside the directory given as dsn.

type duckdbDialect struct {
	questionPlaceholder
	standardStrings
}

// DuckDB returns the DuckDB dialect. Database "shop" lives at <dsn>/shop.duckdb.
func DuckDB() Dialect { return duckdbDialect{} }

func (duckdbDialect) Name() string { return config.DialectDuckDB }

func (duckdbDialect) Open(dsn, database string) (*sql.DB, error) {
	path, err := databaseFile(dsn, database, ".duckdb")
	if err != nil {
		return nil, err
	}
	return sql.Open("duckdb", path)
}

func (duckdbDialect) QuoteIdentifier(name string) string { return quoteWith(name, `"`) }

// The attached file is the database, so the name filter is the table alone.
func (duckdbDialect) TableExistsQuery(_, table string) (string, []any) {
	return `SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?`, []any{table}
}

func (duckdbDialect) ColumnsQuery(_, table string) (string, []any) {
	return `SELECT column_name FROM information_schema.columns
		WHERE table_name = ?
		ORDER BY ordinal_position`, []any{table}
}

type sqliteDialect struct {
	questionPlaceholder
	standardStrings
}

// SQLite returns the SQLite dialect. Database "shop" lives at <dsn>/shop.db.
func SQLite() Dialect { return sqliteDialect{} }

func (sqliteDialect) Name() string { return config.DialectSQLite }

func (sqliteDialect) Open(dsn, database string) (*sql.DB, error) {
	path, err := databaseFile(dsn, database, ".db")
	if err != nil {
		return nil, err
	}
	// mode=rw refuses to create a missing file.
	return sql.Open("sqlite3", "file:"+path+"?mode=rw")
}

func (sqliteDialect) QuoteIdentifier(name string) string { return quoteWith(name, `"`) }

func (sqliteDialect) TableExistsQuery(_, table string) (string, []any) {
	return `SELECT COUNT(*) FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?`, []any{table}
}

func (sqliteDialect) ColumnsQuery(_, table string) (string, []any) {
	return `SELECT name FROM pragma_table_info(?) ORDER BY cid`, []any{table}
}

func databaseFile(dir, database, ext string) (string, error) {
	path := filepath.Join(dir, database+ext)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrDatabaseNotFound, database)
		}
		return "", fmt.Errorf("stat database file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrDatabaseNotFound, path)
	}
	return path, nil
}
