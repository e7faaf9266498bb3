// Package introspect implements the introspection port from spec.md §6:
// `introspect(conn) -> Schema`, with dialect-specific drivers for
// Postgres, MySQL, and SQLite normalizing into the common
// internal/schema representation. Grounded on the teacher's
// internal/database/adapter.go (DatabaseAdapter interface,
// NewAdapter(provider) factory) narrowed to introspection-only methods,
// and its dialect subpackages' schema-reading queries.
package introspect

import (
	"context"

	"github.com/seedkit-dev/seedkit/internal/schema"
)

// Introspector is the narrow port every dialect driver implements.
// Implementations must return tables sorted by name and columns sorted
// by ordinal position, per spec.md §6's determinism requirement.
type Introspector interface {
	Introspect(ctx context.Context) (*schema.Schema, error)
	Dialect() string
}

// New resolves a driver by dialect name, mirroring the teacher's
// internal/database.NewAdapter(provider) factory switch.
func New(dialect string, dsn string) (Introspector, error) {
	switch dialect {
	case "postgresql", "postgres":
		return NewPostgres(dsn), nil
	case "mysql":
		return NewMySQL(dsn), nil
	case "sqlite", "sqlite3":
		return NewSQLite(dsn), nil
	default:
		return nil, &unsupportedDialectError{dialect: dialect}
	}
}

type unsupportedDialectError struct{ dialect string }

func (e *unsupportedDialectError) Error() string {
	return "unsupported database dialect: " + e.dialect
}
