package connection

import (
	"database/sql"
	"strings"
)

// Dialect knows how to open a database of one engine and how to phrase the
// few engine-specific queries the core needs.
type Dialect interface {
	// Name returns the dialect key used in Config.Dialect.
	Name() string

	// Open returns a pool for dsn bound to database. It must not create the
	// database when it does not exist.
	Open(dsn, database string) (*sql.DB, error)

	// Placeholder returns the bind marker for the n-th argument, starting at 1.
	Placeholder(n int) string

	// QuoteIdentifier quotes a table or column name.
	QuoteIdentifier(name string) string

	// BackslashEscapes reports whether a backslash inside a string literal
	// escapes the next character.
	BackslashEscapes() bool

	// TableExistsQuery returns a query yielding one count of tables named table.
	TableExistsQuery(database, table string) (string, []any)

	// ColumnsQuery returns a query yielding the column names of table in order.
	ColumnsQuery(database, table string) (string, []any)
}

// Dialects maps dialect names to implementations.
type Dialects map[string]Dialect

// DefaultDialects returns every built-in dialect.
func DefaultDialects() Dialects {
	d := Dialects{}
	for _, dialect := range []Dialect{
		MySQL(),
		Postgres(),
		DuckDB(),
		SQLite(),
		Snowflake(),
	} {
		d[dialect.Name()] = dialect
	}
	return d
}

// Lookup returns the dialect registered under name.
func (d Dialects) Lookup(name string) (Dialect, bool) {
	dialect, ok := d[name]
	return dialect, ok
}

func quoteWith(name string, quote string) string {
	return quote + strings.ReplaceAll(name, quote, quote+quote) + quote
}

// questionPlaceholder is shared by every dialect that binds with "?".
type questionPlaceholder struct{}

func (questionPlaceholder) Placeholder(int) string { return "?" }

// standardStrings is shared by every dialect whose literals only end at an
// unpaired quote.
type standardStrings struct{}

func (standardStrings) BackslashEscapes() bool { return false }
