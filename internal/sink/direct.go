package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/seedkit-dev/seedkit/internal/generate"
)

// DirectSink inserts rows straight into a live connection via
// database/sql, parameterized and batched — grounded on the teacher's
// internal/seeder/seeder.go insertBatch/insertRecord, which already opens
// a transaction per table and executes parameterized INSERTs through
// database/sql. Driver selection (pgx/v5 stdlib, go-sql-driver/mysql,
// mattn/go-sqlite3) happens at the call site via sql.Open's driver name.
type DirectSink struct {
	db        *sql.DB
	ctx       context.Context
	dialect   Dialect
	batchSize int
	tx        *sql.Tx
}

func NewDirectSink(ctx context.Context, db *sql.DB, dialect Dialect, batchSize int) *DirectSink {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &DirectSink{db: db, ctx: ctx, dialect: dialect, batchSize: batchSize}
}

func (s *DirectSink) WriteTableBatch(b generate.Batch) error {
	if len(b.Rows) == 0 {
		return nil
	}

	cols := make([]string, len(b.Columns))
	for i, c := range b.Columns {
		cols[i] = quoteIdent(s.dialect, c)
	}

	for start := 0; start < len(b.Rows); start += s.batchSize {
		end := start + s.batchSize
		if end > len(b.Rows) {
			end = len(b.Rows)
		}
		chunk := b.Rows[start:end]

		var placeholders []string
		var args []interface{}
		n := 1
		for _, row := range chunk {
			ph := make([]string, len(row))
			for i, v := range row {
				ph[i] = s.placeholder(n)
				args = append(args, v)
				n++
			}
			placeholders = append(placeholders, "("+strings.Join(ph, ", ")+")")
		}

		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
			quoteIdent(s.dialect, b.Table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
		if _, err := s.db.ExecContext(s.ctx, stmt, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", b.Table, err)
		}
	}
	return nil
}

func (s *DirectSink) placeholder(n int) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *DirectSink) WriteDeferredUpdate(b generate.Batch) error {
	if len(b.Assignments) == 0 {
		return nil
	}
	var sets []string
	var args []interface{}
	n := 1
	for col, v := range b.Assignments {
		sets = append(sets, fmt.Sprintf("%s = %s", quoteIdent(s.dialect, col), s.placeholder(n)))
		args = append(args, v)
		n++
	}
	var where []string
	for i, v := range b.Key {
		col := "id"
		if i < len(b.KeyColumns) {
			col = b.KeyColumns[i]
		}
		where = append(where, fmt.Sprintf("%s = %s", quoteIdent(s.dialect, col), s.placeholder(n)))
		args = append(args, v)
		n++
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		quoteIdent(s.dialect, b.Table), strings.Join(sets, ", "), strings.Join(where, " AND "))
	if _, err := s.db.ExecContext(s.ctx, stmt, args...); err != nil {
		return fmt.Errorf("deferred update on %s: %w", b.Table, err)
	}
	return nil
}

func (s *DirectSink) Finalize() error {
	return nil
}
