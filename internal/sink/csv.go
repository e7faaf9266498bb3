package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/seedkit-dev/seedkit/internal/generate"
)

// CSVSink writes one file per table with a header row, per spec.md §6,
// grounded on the teacher's internal/export.PerformExport CSV branch.
// Deferred updates are applied by rewriting the buffered rows before the
// file is written on Finalize, since CSV has no update primitive.
type CSVSink struct {
	outDir  string
	tables  map[string][]generate.Batch
	cols    map[string][]string
	order   []string
	updates map[string][]generate.Batch
	seen    map[string]bool
}

func NewCSVSink(outDir string) *CSVSink {
	return &CSVSink{
		outDir:  outDir,
		tables:  map[string][]generate.Batch{},
		cols:    map[string][]string{},
		updates: map[string][]generate.Batch{},
		seen:    map[string]bool{},
	}
}

func (s *CSVSink) WriteTableBatch(b generate.Batch) error {
	if !s.seen[b.Table] {
		s.seen[b.Table] = true
		s.order = append(s.order, b.Table)
		s.cols[b.Table] = b.Columns
	}
	s.tables[b.Table] = append(s.tables[b.Table], b)
	return nil
}

func (s *CSVSink) WriteDeferredUpdate(b generate.Batch) error {
	s.updates[b.Table] = append(s.updates[b.Table], b)
	return nil
}

func (s *CSVSink) Finalize() error {
	if err := os.MkdirAll(s.outDir, 0755); err != nil {
		return fmt.Errorf("create csv output dir %s: %w", s.outDir, err)
	}

	for _, table := range s.order {
		path := filepath.Join(s.outDir, table+".csv")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}

		w := csv.NewWriter(f)
		cols := s.cols[table]
		if err := w.Write(cols); err != nil {
			f.Close()
			return fmt.Errorf("write header for %s: %w", table, err)
		}

		colIndex := map[string]int{}
		for i, c := range cols {
			colIndex[c] = i
		}

		for _, batch := range s.tables[table] {
			for _, row := range batch.Rows {
				rendered := applyUpdatesCSV(cols, row, table, s.updates[table], colIndex)
				if err := w.Write(rendered); err != nil {
					f.Close()
					return fmt.Errorf("write row for %s: %w", table, err)
				}
			}
		}

		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func applyUpdatesCSV(cols []string, row []generate.Value, table string, updates []generate.Batch, colIndex map[string]int) []string {
	rendered := make([]string, len(cols))
	for i, v := range row {
		rendered[i] = csvField(v)
	}
	for _, u := range updates {
		if !rowMatchesKey(cols, row, colIndex, u) {
			continue
		}
		for col, v := range u.Assignments {
			if idx, ok := colIndex[col]; ok {
				rendered[idx] = csvField(v)
			}
		}
	}
	return rendered
}

func rowMatchesKey(cols []string, row []generate.Value, colIndex map[string]int, u generate.Batch) bool {
	for i, kc := range u.KeyColumns {
		idx, ok := colIndex[kc]
		if !ok || i >= len(u.Key) {
			return false
		}
		if fmt.Sprintf("%v", row[idx]) != fmt.Sprintf("%v", u.Key[i]) {
			return false
		}
	}
	return len(u.KeyColumns) > 0
}
