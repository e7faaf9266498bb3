package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/seedkit-dev/seedkit/internal/schema"
	"github.com/seedkit-dev/seedkit/internal/seedkiterr"
)

// Postgres implements Introspector against pg_catalog/information_schema,
// grounded on the teacher's internal/database/postgres/schema.go
// (GetCurrentSchema, GetCurrentEnums, GetAllTablesColumns's pg_constraint
// + UNNEST(...) WITH ORDINALITY CTE for FK column-pair matching), extended
// here to also pull check-constraint expressions and deferrability, which
// the teacher's migration-focused adapter never queried.
type Postgres struct {
	dsn string
}

func NewPostgres(dsn string) *Postgres { return &Postgres{dsn: dsn} }

func (p *Postgres) Dialect() string { return "postgres" }

func (p *Postgres) Introspect(ctx context.Context) (*schema.Schema, error) {
	db, err := sql.Open("pgx", p.dsn)
	if err != nil {
		return nil, &seedkiterr.IntrospectionFailed{Dialect: "postgres", Err: err}
	}
	defer db.Close()

	s := &schema.Schema{Tables: map[string]*schema.Table{}, Enums: map[string]*schema.EnumType{}}

	if err := p.loadEnums(ctx, db, s); err != nil {
		return nil, &seedkiterr.IntrospectionFailed{Dialect: "postgres", Err: err}
	}
	if err := p.loadTablesAndColumns(ctx, db, s); err != nil {
		return nil, &seedkiterr.IntrospectionFailed{Dialect: "postgres", Err: err}
	}
	if err := p.loadConstraints(ctx, db, s); err != nil {
		return nil, &seedkiterr.IntrospectionFailed{Dialect: "postgres", Err: err}
	}

	for name := range s.Tables {
		s.TableOrder = append(s.TableOrder, name)
	}
	sort.Strings(s.TableOrder)
	s.ComputeFingerprint()
	return s, nil
}

func (p *Postgres) loadEnums(ctx context.Context, db *sql.DB, s *schema.Schema) error {
	rows, err := db.QueryContext(ctx, `
		SELECT t.typname, e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON e.enumtypid = t.oid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = 'public'
		ORDER BY t.typname, e.enumsortorder`)
	if err != nil {
		return fmt.Errorf("query enums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, label string
		if err := rows.Scan(&name, &label); err != nil {
			return err
		}
		e := s.Enums[name]
		if e == nil {
			e = &schema.EnumType{Name: name}
			s.Enums[name] = e
		}
		e.Values = append(e.Values, label)
	}
	return rows.Err()
}

func (p *Postgres) loadTablesAndColumns(ctx context.Context, db *sql.DB, s *schema.Schema) error {
	rows, err := db.QueryContext(ctx, `
		SELECT c.table_name, c.column_name, c.ordinal_position, c.data_type,
		       c.udt_name, c.is_nullable, c.column_default,
		       c.character_maximum_length, c.numeric_precision, c.numeric_scale
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_name = c.table_name AND t.table_schema = c.table_schema
		WHERE c.table_schema = 'public' AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_name, c.ordinal_position`)
	if err != nil {
		return fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, columnName, dataType, udtName, isNullable string
		var ordinal int
		var columnDefault sql.NullString
		var charMaxLen, numPrecision, numScale sql.NullInt64
		if err := rows.Scan(&tableName, &columnName, &ordinal, &dataType, &udtName,
			&isNullable, &columnDefault, &charMaxLen, &numPrecision, &numScale); err != nil {
			return err
		}

		t := s.Tables[tableName]
		if t == nil {
			t = &schema.Table{Name: tableName}
			s.Tables[tableName] = t
		}

		logical := p.resolveType(s, dataType, udtName, charMaxLen, numPrecision, numScale)

		t.Columns = append(t.Columns, schema.Column{
			Name:     columnName,
			Ordinal:  ordinal,
			Type:     logical,
			Nullable: isNullable == "YES",
			Default:  parseDefault(columnDefault),
		})
	}
	return rows.Err()
}

func (p *Postgres) resolveType(s *schema.Schema, dataType, udtName string, charMaxLen, numPrecision, numScale sql.NullInt64) schema.LogicalType {
	if dataType == "USER-DEFINED" {
		if _, ok := s.Enums[udtName]; ok {
			return schema.EnumRefType{Name: udtName}
		}
		return schema.UnknownType{Raw: udtName}
	}
	var maxLen, prec, scale *int
	if charMaxLen.Valid {
		v := int(charMaxLen.Int64)
		maxLen = &v
	}
	if numPrecision.Valid {
		v := int(numPrecision.Int64)
		prec = &v
	}
	if numScale.Valid {
		v := int(numScale.Int64)
		scale = &v
	}
	return mapLogicalType(dataType, maxLen, prec, scale)
}

func parseDefault(d sql.NullString) schema.Default {
	if !d.Valid || d.String == "" {
		return schema.DefaultNone{}
	}
	v := d.String
	if strings.Contains(v, "nextval(") {
		return schema.DefaultAutoIncrement{}
	}
	if strings.Contains(v, "(") && strings.Contains(v, ")") && !strings.HasPrefix(v, "'") {
		name := v[:strings.Index(v, "(")]
		return schema.DefaultFunctionCall{Name: name}
	}
	return schema.DefaultLiteral{Value: v}
}

// loadConstraints fetches PK/UNIQUE/FK/CHECK constraints in one pass over
// pg_constraint, grounded on the teacher's pk_uk_columns CTE and
// UNNEST(...) WITH ORDINALITY FK column-pair pattern.
func (p *Postgres) loadConstraints(ctx context.Context, db *sql.DB, s *schema.Schema) error {
	rows, err := db.QueryContext(ctx, `
		SELECT con.conname, con.contype, cl.relname AS table_name,
		       ARRAY(SELECT attname FROM unnest(con.conkey) WITH ORDINALITY k(attnum, ord)
		             JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
		             ORDER BY k.ord) AS local_columns,
		       frel.relname AS ref_table,
		       ARRAY(SELECT attname FROM unnest(con.confkey) WITH ORDINALITY k(attnum, ord)
		             JOIN pg_attribute a ON a.attrelid = con.confrelid AND a.attnum = k.attnum
		             ORDER BY k.ord) AS ref_columns,
		       con.confdeltype, con.confupdtype, con.condeferrable,
		       pg_get_constraintdef(con.oid) AS definition
		FROM pg_constraint con
		JOIN pg_class cl ON cl.oid = con.conrelid
		LEFT JOIN pg_class frel ON frel.oid = con.confrelid
		JOIN pg_namespace n ON n.oid = cl.relnamespace AND n.nspname = 'public'
		ORDER BY cl.relname, con.conname`)
	if err != nil {
		return fmt.Errorf("query constraints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var conname, contype, tableName string
		var localColumns, refColumns stringArray
		var refTable sql.NullString
		var confDelType, confUpdType sql.NullString
		var deferrable bool
		var definition string

		if err := rows.Scan(&conname, &contype, &tableName, &localColumns, &refTable,
			&refColumns, &confDelType, &confUpdType, &deferrable, &definition); err != nil {
			return err
		}

		t := s.Tables[tableName]
		if t == nil {
			continue
		}

		switch contype {
		case "p":
			t.PrimaryKey = []string(localColumns)
		case "u":
			t.Unique = append(t.Unique, schema.UniqueConstraint{Name: conname, Columns: []string(localColumns)})
		case "f":
			t.ForeignKeys = append(t.ForeignKeys, schema.ForeignKey{
				Name:         conname,
				LocalColumns: []string(localColumns),
				RefTable:     refTable.String,
				RefColumns:   []string(refColumns),
				OnDelete:     pgActionLabel(confDelType.String),
				OnUpdate:     pgActionLabel(confUpdType.String),
				Deferrable:   deferrable,
			})
		case "c":
			raw := extractCheckExpr(definition)
			t.Checks = append(t.Checks, schema.CheckConstraint{
				Name:      conname,
				Raw:       raw,
				Predicate: schema.ParseCheckExpr(raw),
			})
		}
	}
	return rows.Err()
}

func pgActionLabel(code string) schema.OnAction {
	switch code {
	case "c":
		return schema.ActionCascade
	case "n":
		return schema.ActionSetNull
	case "d":
		return schema.ActionSetDefault
	case "r":
		return schema.ActionRestrict
	default:
		return schema.ActionNoAction
	}
}

// extractCheckExpr strips the "CHECK (...)" wrapper pg_get_constraintdef
// returns, leaving the bare predicate text for schema.ParseCheckExpr.
func extractCheckExpr(def string) string {
	start := strings.Index(def, "(")
	end := strings.LastIndex(def, ")")
	if start == -1 || end == -1 || end <= start {
		return def
	}
	return def[start+1 : end]
}

// stringArray scans a Postgres text[] literal like {a,b,c} into a []string.
type stringArray []string

func (a *stringArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported scan type %T for stringArray", src)
	}
	raw = strings.TrimPrefix(raw, "{")
	raw = strings.TrimSuffix(raw, "}")
	if raw == "" {
		*a = nil
		return nil
	}
	*a = strings.Split(raw, ",")
	return nil
}
