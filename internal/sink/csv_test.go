package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/seedkit-dev/seedkit/internal/generate"
)

func TestCSVSinkWritesOneFilePerTableWithHeader(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVSink(dir)

	_ = s.WriteTableBatch(generate.Batch{
		Table:   "users",
		Columns: []string{"id", "email"},
		Rows: [][]generate.Value{
			{int64(1), "a@example.com"},
			{int64(2), "b@example.com"},
		},
	})

	if err := s.Finalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "users.csv"))
	if err != nil {
		t.Fatalf("expected users.csv to exist: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("unexpected error reading csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if records[0][0] != "id" || records[0][1] != "email" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][1] != "a@example.com" {
		t.Fatalf("unexpected row: %v", records[1])
	}
}

func TestCSVSinkDeferredUpdateRewritesMatchingRow(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVSink(dir)

	_ = s.WriteTableBatch(generate.Batch{
		Table:   "employees",
		Columns: []string{"id", "manager_id"},
		Rows:    [][]generate.Value{{int64(5), nil}},
	})
	_ = s.WriteDeferredUpdate(generate.Batch{
		Table:       "employees",
		Key:         []generate.Value{int64(5)},
		KeyColumns:  []string{"id"},
		Assignments: map[string]generate.Value{"manager_id": int64(1)},
	})
	if err := s.Finalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "employees.csv"))
	if err != nil {
		t.Fatalf("expected employees.csv to exist: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records[1][1] != "1" {
		t.Fatalf("expected manager_id to be rewritten to 1, got %v", records[1])
	}
}
