package sink

import (
	"bufio"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/seedkit-dev/seedkit/internal/generate"
)

// SQLInsertSink emits one multi-value INSERT statement per batch, quoted
// per dialect, using Masterminds/squirrel the same way the teacher's
// PostgresAdapter builds statements — grounded on
// internal/database/postgres/schema.go's StatementBuilderType usage.
type SQLInsertSink struct {
	w       *bufio.Writer
	dialect Dialect
	builder sq.StatementBuilderType
}

func NewSQLInsertSink(w *bufio.Writer, dialect Dialect) *SQLInsertSink {
	var placeholder sq.PlaceholderFormat = sq.Dollar
	if dialect == DialectMySQL || dialect == DialectSQLite {
		placeholder = sq.Question
	}
	return &SQLInsertSink{w: w, dialect: dialect, builder: sq.StatementBuilder.PlaceholderFormat(placeholder)}
}

func (s *SQLInsertSink) WriteTableBatch(b generate.Batch) error {
	if len(b.Rows) == 0 {
		return nil
	}

	cols := make([]string, len(b.Columns))
	for i, c := range b.Columns {
		cols[i] = quoteIdent(s.dialect, c)
	}

	insert := sq.Insert(quoteIdent(s.dialect, b.Table)).Columns(cols...)
	for _, row := range b.Rows {
		literals := make([]interface{}, len(row))
		for i, v := range row {
			literals[i] = sq.Expr(sqlLiteral(v))
		}
		insert = insert.Values(literals...)
	}

	sqlStr, _, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert for %s: %w", b.Table, err)
	}
	if _, err := s.w.WriteString(sqlStr + ";\n"); err != nil {
		return fmt.Errorf("write insert for %s: %w", b.Table, err)
	}
	return nil
}

func (s *SQLInsertSink) WriteDeferredUpdate(b generate.Batch) error {
	if len(b.Assignments) == 0 {
		return nil
	}
	var sets []string
	for col, v := range b.Assignments {
		sets = append(sets, fmt.Sprintf("%s = %s", quoteIdent(s.dialect, col), sqlLiteral(v)))
	}
	var where []string
	for i, v := range b.Key {
		col := fmt.Sprintf("pk_%d", i)
		if i < len(b.KeyColumns) {
			col = b.KeyColumns[i]
		}
		where = append(where, fmt.Sprintf("%s = %s", quoteIdent(s.dialect, col), sqlLiteral(v)))
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s;\n",
		quoteIdent(s.dialect, b.Table), strings.Join(sets, ", "), strings.Join(where, " AND "))
	if _, err := s.w.WriteString(stmt); err != nil {
		return fmt.Errorf("write deferred update for %s: %w", b.Table, err)
	}
	return s.w.Flush()
}

func (s *SQLInsertSink) Finalize() error {
	return s.w.Flush()
}
