// Package sink implements the output encoders from spec.md §6: a narrow
// capability set (writeTableBatch, writeDeferredUpdate, finalize) with
// concrete SQL-INSERT, SQL-COPY, JSON, CSV, and direct-insert encoders.
// Grounded on the teacher's internal/export/export.go (goroutine fan-out
// per-table fetch, format switch) and internal/seeder/seeder.go
// (formatValue / insertBatch idioms), generalized from "dump an existing
// table" to "consume generated batches".
package sink

import (
	"github.com/lib/pq"

	"github.com/seedkit-dev/seedkit/internal/generate"
)

// Sink is the output contract every encoder implements.
type Sink interface {
	WriteTableBatch(b generate.Batch) error
	WriteDeferredUpdate(b generate.Batch) error
	Finalize() error
}

// Dialect controls identifier quoting and literal formatting for
// SQL-producing sinks.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
)

func quoteIdent(dialect Dialect, ident string) string {
	switch dialect {
	case DialectMySQL:
		return "`" + ident + "`"
	case DialectPostgres:
		return pq.QuoteIdentifier(ident)
	default:
		return `"` + ident + `"`
	}
}
