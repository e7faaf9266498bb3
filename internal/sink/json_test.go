package sink

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/seedkit-dev/seedkit/internal/generate"
)

func TestJSONSinkFinalizeGroupsByTableSorted(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONSink(&buf)

	_ = s.WriteTableBatch(generate.Batch{
		Table:   "zebras",
		Columns: []string{"id"},
		Rows:    [][]generate.Value{{int64(1)}},
	})
	_ = s.WriteTableBatch(generate.Batch{
		Table:   "apples",
		Columns: []string{"id"},
		Rows:    [][]generate.Value{{int64(2)}},
	})

	if err := s.Finalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out map[string][]map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("expected valid JSON output: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 tables in output, got %d", len(out))
	}
	if out["apples"][0]["id"].(float64) != 2 {
		t.Fatalf("unexpected apples row: %v", out["apples"])
	}

	// table name ordering in the raw bytes should be sorted (apples before
	// zebras) since Finalize sorts keys before encoding.
	aIdx := bytes.Index(buf.Bytes(), []byte(`"apples"`))
	zIdx := bytes.Index(buf.Bytes(), []byte(`"zebras"`))
	if aIdx == -1 || zIdx == -1 || aIdx > zIdx {
		t.Fatalf("expected apples to appear before zebras in the encoded output")
	}
}

func TestJSONSinkDeferredUpdateAppliesToBufferedRow(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONSink(&buf)

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
	_ = s.Finalize()

	var out map[string][]map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["employees"][0]["manager_id"].(float64) != 1 {
		t.Fatalf("expected manager_id to be updated to 1, got %v", out["employees"][0]["manager_id"])
	}
}
