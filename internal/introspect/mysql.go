package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/seedkit-dev/seedkit/internal/schema"
	"github.com/seedkit-dev/seedkit/internal/seedkiterr"
)

// MySQL implements Introspector against information_schema, grounded on
// the teacher's internal/database/mysql/schema.go KEY_COLUMN_USAGE +
// REFERENTIAL_CONSTRAINTS join pattern, extended with TABLE_CONSTRAINTS
// CHECK_CONSTRAINTS (MySQL 8.0.16+) since the teacher never read those.
type MySQL struct {
	dsn string
}

func NewMySQL(dsn string) *MySQL { return &MySQL{dsn: dsn} }

func (m *MySQL) Dialect() string { return "mysql" }

func (m *MySQL) Introspect(ctx context.Context) (*schema.Schema, error) {
	db, err := sql.Open("mysql", m.dsn)
	if err != nil {
		return nil, &seedkiterr.IntrospectionFailed{Dialect: "mysql", Err: err}
	}
	defer db.Close()

	schemaName, err := currentSchemaName(ctx, db)
	if err != nil {
		return nil, &seedkiterr.IntrospectionFailed{Dialect: "mysql", Err: err}
	}

	s := &schema.Schema{Tables: map[string]*schema.Table{}, Enums: map[string]*schema.EnumType{}}

	if err := m.loadColumns(ctx, db, schemaName, s); err != nil {
		return nil, &seedkiterr.IntrospectionFailed{Dialect: "mysql", Err: err}
	}
	if err := m.loadPrimaryAndUnique(ctx, db, schemaName, s); err != nil {
		return nil, &seedkiterr.IntrospectionFailed{Dialect: "mysql", Err: err}
	}
	if err := m.loadForeignKeys(ctx, db, schemaName, s); err != nil {
		return nil, &seedkiterr.IntrospectionFailed{Dialect: "mysql", Err: err}
	}
	if err := m.loadChecks(ctx, db, schemaName, s); err != nil {
		return nil, &seedkiterr.IntrospectionFailed{Dialect: "mysql", Err: err}
	}

	for name := range s.Tables {
		s.TableOrder = append(s.TableOrder, name)
	}
	sort.Strings(s.TableOrder)
	s.ComputeFingerprint()
	return s, nil
}

func currentSchemaName(ctx context.Context, db *sql.DB) (string, error) {
	var name string
	if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
		return "", fmt.Errorf("resolve current database: %w", err)
	}
	return name, nil
}

func (m *MySQL) loadColumns(ctx context.Context, db *sql.DB, schemaName string, s *schema.Schema) error {
	rows, err := db.QueryContext(ctx, `
		SELECT c.table_name, c.column_name, c.ordinal_position, c.data_type, c.column_type,
		       c.is_nullable, c.column_default, c.extra,
		       c.character_maximum_length, c.numeric_precision, c.numeric_scale
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_name = c.table_name AND t.table_schema = c.table_schema
		WHERE c.table_schema = ? AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_name, c.ordinal_position`, schemaName)
	if err != nil {
		return fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, columnName, dataType, columnType, isNullable, extra string
		var ordinal int
		var columnDefault sql.NullString
		var charMaxLen, numPrecision, numScale sql.NullInt64
		if err := rows.Scan(&tableName, &columnName, &ordinal, &dataType, &columnType,
			&isNullable, &columnDefault, &extra, &charMaxLen, &numPrecision, &numScale); err != nil {
			return err
		}

		t := s.Tables[tableName]
		if t == nil {
			t = &schema.Table{Name: tableName}
			s.Tables[tableName] = t
		}

		var logical schema.LogicalType
		if strings.HasPrefix(dataType, "enum") {
			enumName := tableName + "_" + columnName
			values := parseMySQLEnumValues(columnType)
			s.Enums[enumName] = &schema.EnumType{Name: enumName, Values: values}
			logical = schema.EnumRefType{Name: enumName}
		} else {
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
			logical = mapLogicalType(dataType, maxLen, prec, scale)
		}

		def := schema.Default(schema.DefaultNone{})
		if strings.Contains(extra, "auto_increment") {
			def = schema.DefaultAutoIncrement{}
		} else if columnDefault.Valid {
			v := columnDefault.String
			if strings.Contains(strings.ToUpper(v), "CURRENT_TIMESTAMP") {
				def = schema.DefaultFunctionCall{Name: "CURRENT_TIMESTAMP"}
			} else {
				def = schema.DefaultLiteral{Value: v}
			}
		}

		t.Columns = append(t.Columns, schema.Column{
			Name:     columnName,
			Ordinal:  ordinal,
			Type:     logical,
			Nullable: isNullable == "YES",
			Default:  def,
		})
	}
	return rows.Err()
}

// parseMySQLEnumValues parses a COLUMN_TYPE string like
// "enum('a','b','c')" into its bare value list.
func parseMySQLEnumValues(columnType string) []string {
	start := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if start == -1 || end == -1 || end <= start {
		return nil
	}
	inner := columnType[start+1 : end]
	return splitValues(inner)
}

func splitValues(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "'")
		part = strings.TrimSuffix(part, "'")
		out = append(out, part)
	}
	return out
}

func (m *MySQL) loadPrimaryAndUnique(ctx context.Context, db *sql.DB, schemaName string, s *schema.Schema) error {
	rows, err := db.QueryContext(ctx, `
		SELECT tc.table_name, tc.constraint_name, tc.constraint_type, kcu.column_name, kcu.ordinal_position
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name AND kcu.table_name = tc.table_name
		     AND kcu.table_schema = tc.table_schema
		WHERE tc.table_schema = ? AND tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE')
		ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position`, schemaName)
	if err != nil {
		return fmt.Errorf("query pk/unique: %w", err)
	}
	defer rows.Close()

	type key struct{ table, name string }
	unique := map[key][]string{}
	var order []key

	for rows.Next() {
		var tableName, constraintName, constraintType, columnName string
		var ordinal int
		if err := rows.Scan(&tableName, &constraintName, &constraintType, &columnName, &ordinal); err != nil {
			return err
		}
		t := s.Tables[tableName]
		if t == nil {
			continue
		}
		if constraintType == "PRIMARY KEY" {
			t.PrimaryKey = append(t.PrimaryKey, columnName)
			continue
		}
		k := key{tableName, constraintName}
		if _, seen := unique[k]; !seen {
			order = append(order, k)
		}
		unique[k] = append(unique[k], columnName)
	}
	for _, k := range order {
		t := s.Tables[k.table]
		t.Unique = append(t.Unique, schema.UniqueConstraint{Name: k.name, Columns: unique[k]})
	}
	return rows.Err()
}

func (m *MySQL) loadForeignKeys(ctx context.Context, db *sql.DB, schemaName string, s *schema.Schema) error {
	rows, err := db.QueryContext(ctx, `
		SELECT kcu.constraint_name, kcu.table_name, kcu.column_name, kcu.ordinal_position,
		       kcu.referenced_table_name, kcu.referenced_column_name,
		       rc.update_rule, rc.delete_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
		  ON rc.constraint_name = kcu.constraint_name AND rc.constraint_schema = kcu.table_schema
		WHERE kcu.table_schema = ? AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.table_name, kcu.constraint_name, kcu.ordinal_position`, schemaName)
	if err != nil {
		return fmt.Errorf("query foreign keys: %w", err)
	}
	defer rows.Close()

	type key struct{ table, name string }
	type fkAccum struct {
		refTable              string
		localCols, refCols    []string
		onUpdate, onDelete    string
	}
	fks := map[key]*fkAccum{}
	var order []key

	for rows.Next() {
		var constraintName, tableName, columnName, refTable, refColumn, updateRule, deleteRule string
		var ordinal int
		if err := rows.Scan(&constraintName, &tableName, &columnName, &ordinal, &refTable, &refColumn, &updateRule, &deleteRule); err != nil {
			return err
		}
		k := key{tableName, constraintName}
		a := fks[k]
		if a == nil {
			a = &fkAccum{refTable: refTable, onUpdate: updateRule, onDelete: deleteRule}
			fks[k] = a
			order = append(order, k)
		}
		a.localCols = append(a.localCols, columnName)
		a.refCols = append(a.refCols, refColumn)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, k := range order {
		t := s.Tables[k.table]
		if t == nil {
			continue
		}
		a := fks[k]
		t.ForeignKeys = append(t.ForeignKeys, schema.ForeignKey{
			Name:         k.name,
			LocalColumns: a.localCols,
			RefTable:     a.refTable,
			RefColumns:   a.refCols,
			OnDelete:     schema.OnAction(strings.ToUpper(a.onDelete)),
			OnUpdate:     schema.OnAction(strings.ToUpper(a.onUpdate)),
		})
	}
	return nil
}

// loadChecks queries CHECK_CONSTRAINTS, available since MySQL 8.0.16; on
// older servers or MariaDB variants without the view this simply returns
// no rows rather than erroring.
func (m *MySQL) loadChecks(ctx context.Context, db *sql.DB, schemaName string, s *schema.Schema) error {
	rows, err := db.QueryContext(ctx, `
		SELECT tc.table_name, cc.constraint_name, cc.check_clause
		FROM information_schema.check_constraints cc
		JOIN information_schema.table_constraints tc
		  ON tc.constraint_name = cc.constraint_name AND tc.constraint_schema = cc.constraint_schema
		WHERE cc.constraint_schema = ?`, schemaName)
	if err != nil {
		return nil // older servers lack this view; checks are simply unavailable
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, constraintName, checkClause string
		if err := rows.Scan(&tableName, &constraintName, &checkClause); err != nil {
			return err
		}
		t := s.Tables[tableName]
		if t == nil {
			continue
		}
		t.Checks = append(t.Checks, schema.CheckConstraint{
			Name:      constraintName,
			Raw:       checkClause,
			Predicate: schema.ParseCheckExpr(checkClause),
		})
	}
	return rows.Err()
}
