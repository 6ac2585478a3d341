package query

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Row is one result record keyed by column name.
type Row map[string]any

// ColumnMetadata describes a result column as reported by the driver.
type ColumnMetadata struct {
	Name         string
	DatabaseType string
	Nullable     bool
}

type valueFamily int

const (
	familyText valueFamily = iota
	familyInteger
	familyFloat
	familyBinary
)

// Several drivers hand back numbers as []byte on their text protocols.
// Decimal types stay text so no precision is lost.
var typeFamilies = map[string]valueFamily{
	"TINYINT":   familyInteger,
	"SMALLINT":  familyInteger,
	"MEDIUMINT": familyInteger,
	"INT":       familyInteger,
	"INTEGER":   familyInteger,
	"BIGINT":    familyInteger,
	"INT2":      familyInteger,
	"INT4":      familyInteger,
	"INT8":      familyInteger,
	"YEAR":      familyInteger,
	"FLOAT":     familyFloat,
	"DOUBLE":    familyFloat,
	"REAL":      familyFloat,
	"FLOAT4":    familyFloat,
	"FLOAT8":    familyFloat,
	"BLOB":      familyBinary,
	"TINYBLOB":  familyBinary,
	"LONGBLOB":  familyBinary,
	"BINARY":    familyBinary,
	"VARBINARY": familyBinary,
	"BYTEA":     familyBinary,
}

func familyOf(databaseType string) valueFamily {
	t := strings.ToUpper(databaseType)
	t = strings.TrimPrefix(t, "UNSIGNED ")
	return typeFamilies[t]
}

// scanRows reads every row, keeping the driver's native value types.
func scanRows(rows *sql.Rows) ([]string, []ColumnMetadata, []Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get columns: %w", err)
	}

	meta := make([]ColumnMetadata, len(columns))
	for i, col := range columns {
		meta[i] = ColumnMetadata{Name: col, Nullable: true}
	}
	if columnTypes, err := rows.ColumnTypes(); err == nil {
		for i := range meta {
			if i >= len(columnTypes) {
				break
			}
			meta[i].DatabaseType = columnTypes[i].DatabaseTypeName()
			if nullable, ok := columnTypes[i].Nullable(); ok {
				meta[i].Nullable = nullable
			}
		}
	}

	result := []Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(Row, len(columns))
		for i, val := range values {
			row[columns[i]] = convertValue(val, meta[i].DatabaseType)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return columns, meta, result, nil
}

// convertValue decodes []byte payloads by column type and leaves every other
// value as the driver produced it.
func convertValue(val any, databaseType string) any {
	b, ok := val.([]byte)
	if !ok {
		return val
	}

	switch familyOf(databaseType) {
	case familyInteger:
		if n, err := strconv.ParseInt(string(b), 10, 64); err == nil {
			return n
		}
		if n, err := strconv.ParseUint(string(b), 10, 64); err == nil {
			return n
		}
	case familyFloat:
		if f, err := strconv.ParseFloat(string(b), 64); err == nil {
			return f
		}
	case familyBinary:
		return b
	}
	return string(b)
}
