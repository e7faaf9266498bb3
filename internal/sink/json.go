package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/seedkit-dev/seedkit/internal/generate"
)

// JSONSink buffers all batches in memory and writes one object keyed by
// table name on Finalize, per spec.md §6 — grounded on the teacher's
// internal/export.PerformExport JSON branch, which likewise assembles a
// full in-memory BackupData before a single json.Marshal call.
type JSONSink struct {
	w      io.Writer
	tables map[string][]map[string]interface{}
	order  []string
	seen   map[string]bool
}

func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: w, tables: map[string][]map[string]interface{}{}, seen: map[string]bool{}}
}

func (s *JSONSink) WriteTableBatch(b generate.Batch) error {
	if !s.seen[b.Table] {
		s.seen[b.Table] = true
		s.order = append(s.order, b.Table)
	}
	for _, row := range b.Rows {
		obj := make(map[string]interface{}, len(b.Columns))
		for i, c := range b.Columns {
			obj[c] = jsonScalar(row[i])
		}
		s.tables[b.Table] = append(s.tables[b.Table], obj)
	}
	return nil
}

func (s *JSONSink) WriteDeferredUpdate(b generate.Batch) error {
	rows := s.tables[b.Table]
	for i, row := range rows {
		if !keyMatches(row, b) {
			continue
		}
		for col, v := range b.Assignments {
			row[col] = jsonScalar(v)
		}
		rows[i] = row
	}
	return nil
}

func keyMatches(row map[string]interface{}, b generate.Batch) bool {
	for i, col := range b.KeyColumns {
		if i >= len(b.Key) {
			return false
		}
		if fmt.Sprintf("%v", row[col]) != fmt.Sprintf("%v", jsonScalar(b.Key[i])) {
			return false
		}
	}
	return true
}

// Finalize writes the object with table names sorted so that identical
// generation runs produce byte-identical JSON (spec.md §8, property 5).
func (s *JSONSink) Finalize() error {
	sortedNames := append([]string{}, s.order...)
	sort.Strings(sortedNames)

	out := make(map[string]interface{}, len(sortedNames))
	for _, name := range sortedNames {
		out[name] = s.tables[name]
	}

	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
