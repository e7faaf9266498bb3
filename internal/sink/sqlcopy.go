package sink

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/seedkit-dev/seedkit/internal/generate"
)

// SQLCopySink emits a `COPY table(cols) FROM STDIN` preamble followed by
// tab-separated rows, per spec.md §6. For Postgres the preamble text
// itself is produced by lib/pq's CopyIn, the same statement-building helper
// the driver uses internally to start a live COPY; here it targets a
// file/pipe instead of driving the wire protocol against a connection.
type SQLCopySink struct {
	w       *bufio.Writer
	dialect Dialect
	open    map[string]bool
}

func NewSQLCopySink(w *bufio.Writer, dialect Dialect) *SQLCopySink {
	return &SQLCopySink{w: w, dialect: dialect, open: map[string]bool{}}
}

func (s *SQLCopySink) WriteTableBatch(b generate.Batch) error {
	if len(b.Rows) == 0 {
		return nil
	}
	cols := make([]string, len(b.Columns))
	for i, c := range b.Columns {
		cols[i] = quoteIdent(s.dialect, c)
	}
	if !s.open[b.Table] {
		if s.dialect == DialectPostgres {
			fmt.Fprintf(s.w, "%s;\n", pq.CopyIn(b.Table, b.Columns...))
		} else {
			fmt.Fprintf(s.w, "COPY %s(%s) FROM STDIN;\n", quoteIdent(s.dialect, b.Table), strings.Join(cols, ", "))
		}
	}
	for _, row := range b.Rows {
		fields := make([]string, len(row))
		for i, v := range row {
			fields[i] = copyField(v)
		}
		s.w.WriteString(strings.Join(fields, "\t"))
		s.w.WriteString("\n")
	}
	s.open[b.Table] = true
	return s.w.Flush()
}

// WriteDeferredUpdate falls back to a plain UPDATE statement: COPY FROM
// STDIN has no concept of a post-insert assignment.
func (s *SQLCopySink) WriteDeferredUpdate(b generate.Batch) error {
	insert := NewSQLInsertSink(s.w, s.dialect)
	return insert.WriteDeferredUpdate(b)
}

func (s *SQLCopySink) Finalize() error {
	for table := range s.open {
		fmt.Fprintf(s.w, "\\.\n-- end copy %s\n", table)
	}
	return s.w.Flush()
}
