package query

import (
	"strings"

	"github.com/blastrain/vitess-sqlparser/sqlparser"
)

// StatementType represents the category of a SQL statement.
type StatementType int

// Statement types.
const (
	StatementTypeQuery       StatementType = iota // SELECT, WITH, VALUES
	StatementTypeShow                             // SHOW, DESCRIBE, EXPLAIN
	StatementTypeDML                              // INSERT, UPDATE, DELETE
	StatementTypeDDL                              // CREATE, DROP, ALTER
	StatementTypeTransaction                      // BEGIN, COMMIT, ROLLBACK
	StatementTypeOther                            // Unknown or unsupported
)

func (t StatementType) String() string {
	switch t {
	case StatementTypeQuery:
		return "query"
	case StatementTypeShow:
		return "show"
	case StatementTypeDML:
		return "dml"
	case StatementTypeDDL:
		return "ddl"
	case StatementTypeTransaction:
		return "transaction"
	default:
		return "other"
	}
}

// Classifier decides which statements can take a page window.
type Classifier struct{}

// NewClassifier creates a new SQL classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns the statement's category from its leading keyword.
func (c *Classifier) Classify(sql string) StatementType {
	upperSQL := strings.ToUpper(stripLeadingNoise(sql))

	switch {
	case hasAnyPrefix(upperSQL, "SELECT", "WITH", "VALUES", "TABLE", "("):
		return StatementTypeQuery
	case hasAnyPrefix(upperSQL, "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "PRAGMA"):
		return StatementTypeShow
	case hasAnyPrefix(upperSQL, "INSERT", "UPDATE", "DELETE", "REPLACE", "MERGE", "UPSERT"):
		return StatementTypeDML
	case hasAnyPrefix(upperSQL, "CREATE", "DROP", "ALTER", "TRUNCATE", "RENAME"):
		return StatementTypeDDL
	case hasAnyPrefix(upperSQL, "BEGIN", "START TRANSACTION", "COMMIT", "ROLLBACK"):
		return StatementTypeTransaction
	default:
		return StatementTypeOther
	}
}

// IsSelectShaped reports whether stmt produces a row set that can be wrapped
// in a COUNT subquery and given a trailing LIMIT/OFFSET.
//
// The MySQL-grammar parser answers when it understands the statement; other
// dialects' syntax falls back to the leading keyword.
func (c *Classifier) IsSelectShaped(stmt string) bool {
	if parsed, err := sqlparser.Parse(stmt); err == nil {
		_, ok := parsed.(sqlparser.SelectStatement)
		return ok
	}
	return c.Classify(stmt) == StatementTypeQuery
}

// stripLeadingNoise drops whitespace and comments before the first keyword.
func stripLeadingNoise(sql string) string {
	s := strings.TrimSpace(sql)
	for {
		switch {
		case strings.HasPrefix(s, "--"):
			if i := strings.IndexByte(s, '\n'); i >= 0 {
				s = strings.TrimSpace(s[i+1:])
				continue
			}
			return ""
		case strings.HasPrefix(s, "/*"):
			if i := strings.Index(s, "*/"); i >= 0 {
				s = strings.TrimSpace(s[i+2:])
				continue
			}
			return ""
		}
		return s
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// DefaultClassifier is the default SQL classifier instance.
var DefaultClassifier = NewClassifier()

// IsSelectShaped is a convenience function using the default classifier.
func IsSelectShaped(sql string) bool {
	return DefaultClassifier.IsSelectShaped(sql)
}
