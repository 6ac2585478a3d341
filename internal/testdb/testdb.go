// Package testdb creates DuckDB database files for tests.
package testdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/nnnkkk7/sqlpager/pkg/config"
	"github.com/nnnkkk7/sqlpager/pkg/connection"
)

// Create writes <dir>/<name>.duckdb, runs stmts against it, and closes it so
// the resolver can open the file afterwards.
func Create(t *testing.T, dir, name string, stmts ...string) {
	t.Helper()

	db, err := sql.Open("duckdb", filepath.Join(dir, name+".duckdb"))
	if err != nil {
		t.Fatalf("failed to open DuckDB file: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close DB: %v", err)
		}
	}()

	if err := db.Ping(); err != nil {
		t.Fatalf("failed to create DuckDB file: %v", err)
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to run %q: %v", stmt, err)
		}
	}
}

// Resolver returns a resolver whose default connection points at dir.
func Resolver(t *testing.T, dir string, opts ...connection.ResolverOption) *connection.Resolver {
	t.Helper()

	registry := connection.NewRegistry()
	registry.Set(config.DefaultConnectionName, connection.Config{
		Dialect: config.DialectDuckDB,
		DSN:     dir,
		Options: connection.DefaultOptions(),
	})
	return connection.NewResolver(registry, opts...)
}

// Shop creates a "shop" database holding 60 users, 23 orders, authors and
// posts, and returns a resolver for it.
func Shop(t *testing.T) (*connection.Resolver, string) {
	t.Helper()

	dir := t.TempDir()
	Create(t, dir, "shop",
		`CREATE TABLE users AS
			SELECT range::BIGINT AS id, 'user_' || range::VARCHAR AS name, 'user' || range::VARCHAR || '@example.com' AS email
			FROM range(1, 61)`,
		`CREATE TABLE orders AS
			SELECT range::BIGINT AS id, (range % 5 + 1)::BIGINT AS user_id, range * 10 AS amount
			FROM range(1, 24)`,
		`CREATE TABLE authors (id BIGINT, name VARCHAR, created_at TIMESTAMP)`,
		`INSERT INTO authors VALUES (1, 'Ada', NULL), (2, 'Grace', NULL)`,
		`CREATE TABLE category (id BIGINT, label VARCHAR)`,
		`INSERT INTO category VALUES (1, 'news')`,
		`CREATE TABLE posts (id BIGINT, author_id BIGINT, category_id BIGINT, editor_id BIGINT, title VARCHAR)`,
		`INSERT INTO posts VALUES (1, 1, 1, NULL, 'Hello'), (2, 2, 1, NULL, 'World')`,
	)
	return Resolver(t, dir), dir
}
