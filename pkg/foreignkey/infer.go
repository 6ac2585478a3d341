// Package foreignkey guesses which result columns reference other tables and
// fetches short previews of the referenced records.
package foreignkey

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/nnnkkk7/sqlpager/pkg/config"
)

// Reference is a guessed target of a foreign key column.
type Reference struct {
	ReferencedTable  string
	ReferencedColumn string
}

// Map maps result column names to guessed references.
type Map map[string]Reference

// TableProber checks whether a table exists in a database.
type TableProber interface {
	TableExists(ctx context.Context, database, table string) (bool, error)
}

var foreignKeyColumn = regexp.MustCompile(`(?i)^(.+)_id$`)

// Candidates returns the tables a column named "<stem>_id" may point at, in
// probe order: the plural "<stem>s", then "<stem>". Other columns yield nil.
// The suffix matches in any case and the stem is lower-cased, so AUTHOR_ID
// probes "authors".
func Candidates(column string) []string {
	m := foreignKeyColumn.FindStringSubmatch(column)
	if m == nil {
		return nil
	}
	stem := strings.ToLower(m[1])
	return []string{stem + "s", stem}
}

// Infer maps every foreign-key-shaped column to the first candidate table
// that exists. Columns without an existing candidate are left out.
//
// The result is a heuristic; declared constraints are never consulted.
func Infer(ctx context.Context, prober TableProber, database string, columns []string) (Map, error) {
	names := uniqueSorted(columns)
	result := Map{}

	for _, column := range names {
		for _, table := range Candidates(column) {
			ok, err := prober.TableExists(ctx, database, table)
			if err != nil {
				return nil, fmt.Errorf("probe table %s for column %s: %w", table, column, err)
			}
			if ok {
				result[column] = Reference{ReferencedTable: table, ReferencedColumn: config.ReferencedColumn}
				break
			}
		}
	}
	return result, nil
}

func uniqueSorted(columns []string) []string {
	seen := make(map[string]bool, len(columns))
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
