package foreignkey_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nnnkkk7/sqlpager/internal/testdb"
	"github.com/nnnkkk7/sqlpager/pkg/connection"
	"github.com/nnnkkk7/sqlpager/pkg/foreignkey"
)

func TestDisplayColumns(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    []string
	}{
		{name: "Preferred", columns: []string{"id", "email", "name"}, want: []string{"name"}},
		{name: "PreferredOrder", columns: []string{"id", "login", "title"}, want: []string{"title"}},
		{name: "Fallback", columns: []string{"id", "user_id", "amount", "status", "note"}, want: []string{"amount", "status"}},
		{name: "SkipsBookkeeping", columns: []string{"created_at", "sku", "updated_at"}, want: []string{"sku"}},
		{name: "OnlyID", columns: []string{"id", "owner_id", "deleted_at"}, want: []string{"id"}},
		{name: "Nothing", columns: []string{"owner_id"}, want: nil},
		{name: "UpperCasePreferred", columns: []string{"ID", "EMAIL", "NAME"}, want: []string{"NAME"}},
		{name: "UpperCaseFallback", columns: []string{"ID", "OWNER_ID", "CREATED_AT", "SKU"}, want: []string{"SKU"}},
		{name: "UpperCaseOnlyID", columns: []string{"ID", "OWNER_ID"}, want: []string{"ID"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, foreignkey.DisplayColumns(tt.columns)); diff != "" {
				t.Errorf("DisplayColumns() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPreviewer_Preview(t *testing.T) {
	r, _ := testdb.Shop(t)
	p := foreignkey.NewPreviewer(r, nil)

	tests := []struct {
		name   string
		table  string
		column string
		value  string
		want   *foreignkey.Preview
	}{
		{
			name:   "PreferredColumn",
			table:  "authors",
			column: "id",
			value:  "2",
			want: &foreignkey.Preview{
				Table:          "authors",
				Data:           map[string]any{"name": "Grace"},
				DisplayColumns: []string{"name"},
			},
		},
		{
			name:   "ColumnCaseInsensitive",
			table:  "authors",
			column: "ID",
			value:  "2",
			want: &foreignkey.Preview{
				Table:          "authors",
				Data:           map[string]any{"name": "Grace"},
				DisplayColumns: []string{"name"},
			},
		},
		{
			name:   "Label",
			table:  "category",
			column: "id",
			value:  "1",
			want: &foreignkey.Preview{
				Table:          "category",
				Data:           map[string]any{"label": "news"},
				DisplayColumns: []string{"label"},
			},
		},
		{
			name:   "TextValue",
			table:  "users",
			column: "email",
			value:  "user7@example.com",
			want: &foreignkey.Preview{
				Table:          "users",
				Data:           map[string]any{"name": "user_7"},
				DisplayColumns: []string{"name"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Preview(context.Background(), "shop", tt.table, tt.column, tt.value)
			if err != nil {
				t.Fatalf("Preview() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Preview() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPreviewer_Errors(t *testing.T) {
	r, _ := testdb.Shop(t)
	p := foreignkey.NewPreviewer(r, nil)

	tests := []struct {
		name     string
		database string
		table    string
		column   string
		value    string
		wantErr  error
	}{
		{name: "EmptyValue", database: "shop", table: "authors", column: "id", value: "", wantErr: foreignkey.ErrEmptyValue},
		{name: "BadTable", database: "shop", table: "authors; drop", column: "id", value: "1", wantErr: connection.ErrInvalidIdentifier},
		{name: "BadColumn", database: "shop", table: "authors", column: "id = 1 OR", value: "1", wantErr: connection.ErrInvalidIdentifier},
		{name: "MissingTable", database: "shop", table: "editors", column: "id", value: "1", wantErr: foreignkey.ErrTableNotFound},
		{name: "MissingColumn", database: "shop", table: "authors", column: "slug", value: "1", wantErr: foreignkey.ErrUnknownColumn},
		{name: "MissingRecord", database: "shop", table: "authors", column: "id", value: "99", wantErr: foreignkey.ErrRecordNotFound},
		{name: "MissingDatabase", database: "archive", table: "authors", column: "id", value: "1", wantErr: connection.ErrDatabaseNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Preview(context.Background(), tt.database, tt.table, tt.column, tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Preview() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
