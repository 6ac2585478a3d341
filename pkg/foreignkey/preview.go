package foreignkey

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nnnkkk7/sqlpager/pkg/config"
	"github.com/nnnkkk7/sqlpager/pkg/connection"
	"github.com/nnnkkk7/sqlpager/pkg/logging"
	"github.com/nnnkkk7/sqlpager/pkg/metadata"
)

// Preview errors.
var (
	ErrTableNotFound  = errors.New("table not found")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrRecordNotFound = errors.New("record not found")
	ErrEmptyValue     = errors.New("lookup value is empty")
)

// preferredColumns are tried in order; the first one present is shown alone.
var preferredColumns = []string{"name", "title", "label", "nom", "titre", "email", "username", "login"}

var bookkeepingColumns = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"deleted_at": true,
}

var referenceColumn = regexp.MustCompile(`(?i)_id$`)

const maxFallbackColumns = 2

// DisplayColumns picks the columns that best describe a record of a table
// with the given columns. Names compare case-insensitively and come back
// as given.
func DisplayColumns(columns []string) []string {
	present := make(map[string]string, len(columns))
	for _, c := range columns {
		if _, ok := present[strings.ToLower(c)]; !ok {
			present[strings.ToLower(c)] = c
		}
	}

	for _, p := range preferredColumns {
		if c, ok := present[p]; ok {
			return []string{c}
		}
	}

	var picked []string
	for _, c := range columns {
		if bookkeepingColumns[strings.ToLower(c)] || referenceColumn.MatchString(c) {
			continue
		}
		picked = append(picked, c)
		if len(picked) == maxFallbackColumns {
			break
		}
	}
	if len(picked) > 0 {
		return picked
	}

	if c, ok := present[config.ReferencedColumn]; ok {
		return []string{c}
	}
	return nil
}

// Preview is a short description of one referenced record.
type Preview struct {
	Table          string
	Data           map[string]any
	DisplayColumns []string
}

// Previewer looks up the record a foreign key value points at.
type Previewer struct {
	resolver *connection.Resolver
	log      *zap.Logger
}

// NewPreviewer creates a previewer. A nil logger discards output.
func NewPreviewer(resolver *connection.Resolver, log *zap.Logger) *Previewer {
	return &Previewer{resolver: resolver, log: logging.OrNop(log)}
}

// Preview returns the display columns of the first row of table whose
// column equals value, inside database.
func (p *Previewer) Preview(ctx context.Context, database, table, column, value string) (*Preview, error) {
	if value == "" {
		return nil, ErrEmptyValue
	}
	for _, name := range []string{table, column} {
		if err := connection.ValidateIdentifier(name); err != nil {
			return nil, err
		}
	}

	return connection.With(ctx, p.resolver, database, func(ctx context.Context, mgr *connection.Manager) (*Preview, error) {
		columns, err := metadata.NewInspector(mgr).Columns(ctx, database, table)
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
		}
		column, ok := findColumn(columns, column)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, column)
		}

		display := DisplayColumns(columns)
		if len(display) == 0 {
			return nil, fmt.Errorf("%w: %s has no displayable columns", ErrRecordNotFound, table)
		}

		data, err := lookup(ctx, mgr, table, column, display, value)
		if err != nil {
			return nil, err
		}
		p.log.Debug("previewed record",
			zap.String("database", database),
			zap.String("table", table),
			zap.String("column", column))

		return &Preview{Table: table, Data: data, DisplayColumns: display}, nil
	})
}

func lookup(ctx context.Context, mgr *connection.Manager, table, column string, display []string, value string) (map[string]any, error) {
	dialect := mgr.Dialect()

	quoted := make([]string, len(display))
	for i, c := range display {
		quoted[i] = dialect.QuoteIdentifier(c)
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s LIMIT 1",
		strings.Join(quoted, ", "),
		dialect.QuoteIdentifier(table),
		dialect.QuoteIdentifier(column),
		dialect.Placeholder(1))

	values := make([]any, len(display))
	ptrs := make([]any, len(display))
	for i := range values {
		ptrs[i] = &values[i]
	}

	err := mgr.QueryRow(ctx, query, bindValue(value)).Scan(ptrs...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s.%s = %s", ErrRecordNotFound, table, column, value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to preview %s: %w", table, err)
	}

	data := make(map[string]any, len(display))
	for i, c := range display {
		if b, ok := values[i].([]byte); ok {
			data[c] = string(b)
			continue
		}
		data[c] = values[i]
	}
	return data, nil
}

// bindValue passes integral values as integers so strict engines can compare
// them against numeric key columns.
func bindValue(value string) any {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	return value
}

// findColumn returns the table's spelling of name. An exact match wins over
// a case-insensitive one.
func findColumn(columns []string, name string) (string, bool) {
	for _, c := range columns {
		if c == name {
			return c, true
		}
	}
	for _, c := range columns {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return name, false
}
