package foreignkey

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stubProber struct {
	tables map[string]bool
	err    error
	probed []string
}

func (s *stubProber) TableExists(_ context.Context, _, table string) (bool, error) {
	s.probed = append(s.probed, table)
	if s.err != nil {
		return false, s.err
	}
	return s.tables[table], nil
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		column string
		want   []string
	}{
		{column: "user_id", want: []string{"users", "user"}},
		{column: "category_id", want: []string{"categorys", "category"}},
		{column: "parent_user_id", want: []string{"parent_users", "parent_user"}},
		{column: "id", want: nil},
		{column: "_id", want: nil},
		{column: "user_idx", want: nil},
		{column: "name", want: nil},
		{column: "AUTHOR_ID", want: []string{"authors", "author"}},
		{column: "Category_Id", want: []string{"categorys", "category"}},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Candidates(tt.column)); diff != "" {
				t.Errorf("Candidates() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInfer(t *testing.T) {
	tests := []struct {
		name       string
		tables     map[string]bool
		columns    []string
		want       Map
		wantProbes []string
	}{
		{
			name:    "PluralPreferred",
			tables:  map[string]bool{"users": true, "user": true},
			columns: []string{"id", "user_id"},
			want: Map{
				"user_id": {ReferencedTable: "users", ReferencedColumn: "id"},
			},
			wantProbes: []string{"users"},
		},
		{
			name:    "SingularFallback",
			tables:  map[string]bool{"category": true},
			columns: []string{"category_id"},
			want: Map{
				"category_id": {ReferencedTable: "category", ReferencedColumn: "id"},
			},
			wantProbes: []string{"categorys", "category"},
		},
		{
			name:    "UpperCaseColumn",
			tables:  map[string]bool{"authors": true},
			columns: []string{"ID", "AUTHOR_ID"},
			want: Map{
				"AUTHOR_ID": {ReferencedTable: "authors", ReferencedColumn: "id"},
			},
			wantProbes: []string{"authors"},
		},
		{
			name:       "NoTable",
			tables:     map[string]bool{},
			columns:    []string{"editor_id", "title"},
			want:       Map{},
			wantProbes: []string{"editors", "editor"},
		},
		{
			name:       "DuplicateColumnsProbedOnce",
			tables:     map[string]bool{"authors": true},
			columns:    []string{"author_id", "author_id"},
			want:       Map{"author_id": {ReferencedTable: "authors", ReferencedColumn: "id"}},
			wantProbes: []string{"authors"},
		},
		{
			name:       "NoCandidates",
			tables:     map[string]bool{"s": true},
			columns:    []string{"_id", "id", "name"},
			want:       Map{},
			wantProbes: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := &stubProber{tables: tt.tables}
			got, err := Infer(context.Background(), prober, "shop", tt.columns)
			if err != nil {
				t.Fatalf("Infer() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Infer() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantProbes, prober.probed); diff != "" {
				t.Errorf("probes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInfer_ProbeError(t *testing.T) {
	sentinel := errors.New("catalog unavailable")
	prober := &stubProber{err: sentinel}

	got, err := Infer(context.Background(), prober, "shop", []string{"user_id"})
	if !errors.Is(err, sentinel) {
		t.Errorf("Infer() error = %v, want %v", err, sentinel)
	}
	if got != nil {
		t.Errorf("Infer() = %v, want nil on error", got)
	}
}

func TestInfer_Deterministic(t *testing.T) {
	tables := map[string]bool{"users": true, "authors": true}
	columns := []string{"user_id", "author_id", "name"}

	first, err := Infer(context.Background(), &stubProber{tables: tables}, "shop", columns)
	if err != nil {
		t.Fatalf("Infer() error = %v", err)
	}
	reversed := []string{"name", "author_id", "user_id"}
	second, err := Infer(context.Background(), &stubProber{tables: tables}, "shop", reversed)
	if err != nil {
		t.Fatalf("Infer() error = %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Infer() depends on column order (-first +second):\n%s", diff)
	}
}
