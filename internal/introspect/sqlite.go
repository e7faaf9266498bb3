package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/seedkit-dev/seedkit/internal/schema"
	"github.com/seedkit-dev/seedkit/internal/seedkiterr"
)

// SQLite implements Introspector via PRAGMA statements, grounded on the
// teacher's internal/database/sqlite/schema.go goroutine-per-table
// fan-out (it runs table_info/foreign_key_list/index_list concurrently
// across tables since SQLite PRAGMAs are per-table, not catalog-wide).
// SQLite has no native CHECK-constraint introspection pragma, so check
// clauses are recovered by regex over sqlite_master.sql, same limitation
// original_source/crates/seedkit-introspect/src/sqlite.rs documents.
type SQLite struct {
	dsn string
}

func NewSQLite(dsn string) *SQLite { return &SQLite{dsn: dsn} }

func (s *SQLite) Dialect() string { return "sqlite" }

func (sq *SQLite) Introspect(ctx context.Context) (*schema.Schema, error) {
	db, err := sql.Open("sqlite3", sq.dsn)
	if err != nil {
		return nil, &seedkiterr.IntrospectionFailed{Dialect: "sqlite", Err: err}
	}
	defer db.Close()

	tableNames, createSQL, err := listTables(ctx, db)
	if err != nil {
		return nil, &seedkiterr.IntrospectionFailed{Dialect: "sqlite", Err: err}
	}

	out := &schema.Schema{Tables: map[string]*schema.Table{}, Enums: map[string]*schema.EnumType{}}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		firm error
	)
	for _, name := range tableNames {
		wg.Add(1)
		go func(tableName string) {
			defer wg.Done()
			t, err := introspectTable(ctx, db, tableName, createSQL[tableName])
			mu.Lock()
			defer mu.Unlock()
			if err != nil && firm == nil {
				firm = fmt.Errorf("introspect table %s: %w", tableName, err)
				return
			}
			out.Tables[tableName] = t
		}(name)
	}
	wg.Wait()
	if firm != nil {
		return nil, &seedkiterr.IntrospectionFailed{Dialect: "sqlite", Err: firm}
	}

	for name := range out.Tables {
		out.TableOrder = append(out.TableOrder, name)
	}
	sort.Strings(out.TableOrder)
	out.ComputeFingerprint()
	return out, nil
}

func listTables(ctx context.Context, db *sql.DB) ([]string, map[string]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name, sql FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	createSQL := map[string]string{}
	for rows.Next() {
		var name string
		var sqlText sql.NullString
		if err := rows.Scan(&name, &sqlText); err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		createSQL[name] = sqlText.String
	}
	return names, createSQL, rows.Err()
}

func introspectTable(ctx context.Context, db *sql.DB, tableName, createSQL string) (*schema.Table, error) {
	t := &schema.Table{Name: tableName}

	var (
		colErr, fkErr, idxErr error
		wg                    sync.WaitGroup
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		colErr = loadSQLiteColumns(ctx, db, t)
	}()
	go func() {
		defer wg.Done()
		fkErr = loadSQLiteForeignKeys(ctx, db, t)
	}()
	go func() {
		defer wg.Done()
		idxErr = loadSQLiteIndexes(ctx, db, t)
	}()
	wg.Wait()
	for _, e := range []error{colErr, fkErr, idxErr} {
		if e != nil {
			return nil, e
		}
	}

	t.Checks = parseCheckClauses(createSQL)
	return t, nil
}

func loadSQLiteColumns(ctx context.Context, db *sql.DB, t *schema.Table) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q)`, t.Name))
	if err != nil {
		return fmt.Errorf("table_info: %w", err)
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var cid, pkOrdinal int
		var name, declType string
		var notNull int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pkOrdinal); err != nil {
			return err
		}

		def := schema.Default(schema.DefaultNone{})
		if dflt.Valid {
			v := strings.TrimSpace(dflt.String)
			if strings.EqualFold(v, "CURRENT_TIMESTAMP") {
				def = schema.DefaultFunctionCall{Name: "CURRENT_TIMESTAMP"}
			} else {
				def = schema.DefaultLiteral{Value: v}
			}
		}

		logical := mapLogicalType(declType, nil, nil, nil)
		if strings.EqualFold(declType, "INTEGER") && pkOrdinal == 1 {
			def = schema.DefaultAutoIncrement{}
		}

		t.Columns = append(t.Columns, schema.Column{
			Name:     name,
			Ordinal:  cid + 1,
			Type:     logical,
			Nullable: notNull == 0,
			Default:  def,
		})
		if pkOrdinal > 0 {
			pk = append(pk, name)
		}
	}
	t.PrimaryKey = pk
	return rows.Err()
}

func loadSQLiteForeignKeys(ctx context.Context, db *sql.DB, t *schema.Table) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA foreign_key_list(%q)`, t.Name))
	if err != nil {
		return fmt.Errorf("foreign_key_list: %w", err)
	}
	defer rows.Close()

	type fkAccum struct {
		refTable           string
		local, ref         []string
		onUpdate, onDelete string
	}
	byID := map[int]*fkAccum{}
	var order []int

	for rows.Next() {
		var id, seq int
		var refTable, from, to, onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return err
		}
		a := byID[id]
		if a == nil {
			a = &fkAccum{refTable: refTable, onUpdate: onUpdate, onDelete: onDelete}
			byID[id] = a
			order = append(order, id)
		}
		a.local = append(a.local, from)
		a.ref = append(a.ref, to)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	sort.Ints(order)
	for _, id := range order {
		a := byID[id]
		t.ForeignKeys = append(t.ForeignKeys, schema.ForeignKey{
			Name:         fmt.Sprintf("%s_fk_%d", t.Name, id),
			LocalColumns: a.local,
			RefTable:     a.refTable,
			RefColumns:   a.ref,
			OnDelete:     schema.OnAction(strings.ToUpper(a.onDelete)),
			OnUpdate:     schema.OnAction(strings.ToUpper(a.onUpdate)),
		})
	}
	return nil
}

func loadSQLiteIndexes(ctx context.Context, db *sql.DB, t *schema.Table) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA index_list(%q)`, t.Name))
	if err != nil {
		return fmt.Errorf("index_list: %w", err)
	}
	defer rows.Close()

	type idx struct {
		name   string
		unique bool
		origin string
	}
	var indexes []idx
	for rows.Next() {
		var seq int
		var name string
		var unique int
		var origin, partial string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return err
		}
		if unique == 1 {
			indexes = append(indexes, idx{name: name, unique: true, origin: origin})
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, ix := range indexes {
		if ix.origin == "pk" {
			continue // already captured via table_info's pk ordinal
		}
		cols, err := indexColumns(ctx, db, ix.name)
		if err != nil {
			return err
		}
		t.Unique = append(t.Unique, schema.UniqueConstraint{Name: ix.name, Columns: cols})
	}
	return nil
}

func indexColumns(ctx context.Context, db *sql.DB, indexName string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA index_info(%q)`, indexName))
	if err != nil {
		return nil, fmt.Errorf("index_info: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name string
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

var reSQLiteCheck = regexp.MustCompile(`(?i)CHECK\s*\(([^()]*(?:\([^()]*\)[^()]*)*)\)`)

// parseCheckClauses recovers CHECK(...) clauses from a table's stored
// CREATE TABLE text, since SQLite exposes no PRAGMA for them.
func parseCheckClauses(createSQL string) []schema.CheckConstraint {
	matches := reSQLiteCheck.FindAllStringSubmatch(createSQL, -1)
	var out []schema.CheckConstraint
	for i, m := range matches {
		raw := strings.TrimSpace(m[1])
		out = append(out, schema.CheckConstraint{
			Name:      fmt.Sprintf("check_%d", i),
			Raw:       raw,
			Predicate: schema.ParseCheckExpr(raw),
		})
	}
	return out
}
