package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// canonicalColumn and canonicalTable are JSON-stable projections of Column
// and Table used only for fingerprinting — field order in the struct
// literal controls JSON key order, and every slice is sorted before
// marshaling so that two schemas that differ only in introspection-query
// row order still fingerprint identically.
type canonicalColumn struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Default  string `json:"default"`
}

type canonicalFK struct {
	LocalColumns []string `json:"local_columns"`
	RefTable     string   `json:"ref_table"`
	RefColumns   []string `json:"ref_columns"`
	OnDelete     string   `json:"on_delete"`
	OnUpdate     string   `json:"on_update"`
	Deferrable   bool     `json:"deferrable"`
}

type canonicalUnique struct {
	Columns []string `json:"columns"`
}

type canonicalCheck struct {
	Raw string `json:"raw"`
}

type canonicalTable struct {
	Name        string            `json:"name"`
	Columns     []canonicalColumn `json:"columns"`
	PrimaryKey  []string          `json:"primary_key"`
	Unique      []canonicalUnique `json:"unique"`
	Checks      []canonicalCheck  `json:"checks"`
	ForeignKeys []canonicalFK     `json:"foreign_keys"`
}

type canonicalEnum struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type canonicalSchema struct {
	Tables []canonicalTable `json:"tables"`
	Enums  []canonicalEnum  `json:"enums"`
}

func typeTag(t LogicalType) string {
	body, err := json.Marshal(t)
	if err != nil {
		body = []byte("{}")
	}
	return typeName(t) + string(body)
}

func typeName(t LogicalType) string {
	switch t.(type) {
	case IntegerType:
		return "integer"
	case DecimalType:
		return "decimal"
	case FloatType:
		return "float"
	case TextType:
		return "text"
	case ByteaType:
		return "bytea"
	case BoolType:
		return "bool"
	case DateType:
		return "date"
	case TimeType:
		return "time"
	case TimestampType:
		return "timestamp"
	case UUIDType:
		return "uuid"
	case JSONType:
		return "json"
	case EnumRefType:
		return "enum_ref"
	default:
		return "unknown"
	}
}

func defaultTag(d Default) string {
	switch v := d.(type) {
	case nil:
		return ""
	case DefaultNone:
		return ""
	case DefaultLiteral:
		return "literal:" + v.Value
	case DefaultAutoIncrement:
		return "autoincrement"
	case DefaultFunctionCall:
		return "call:" + v.Name
	default:
		return "unknown"
	}
}

// Canonicalize produces the deterministic JSON projection of the schema
// that the fingerprint hashes over: tables/columns/constraints sorted by
// name, types normalized to their JSON tag.
func (s *Schema) Canonicalize() []byte {
	cs := canonicalSchema{}

	tableNames := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		tableNames = append(tableNames, name)
	}
	sort.Strings(tableNames)

	for _, name := range tableNames {
		t := s.Tables[name]
		ct := canonicalTable{Name: t.Name}

		cols := make([]canonicalColumn, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = canonicalColumn{
				Name:     c.Name,
				Type:     typeTag(c.Type),
				Nullable: c.Nullable,
				Default:  defaultTag(c.Default),
			}
		}
		sort.Slice(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })
		ct.Columns = cols

		pk := append([]string{}, t.PrimaryKey...)
		sort.Strings(pk)
		ct.PrimaryKey = pk

		uniques := make([]canonicalUnique, len(t.Unique))
		for i, u := range t.Unique {
			cols := append([]string{}, u.Columns...)
			sort.Strings(cols)
			uniques[i] = canonicalUnique{Columns: cols}
		}
		sort.Slice(uniques, func(i, j int) bool {
			return joinCols(uniques[i].Columns) < joinCols(uniques[j].Columns)
		})
		ct.Unique = uniques

		checks := make([]canonicalCheck, len(t.Checks))
		for i, c := range t.Checks {
			checks[i] = canonicalCheck{Raw: c.Raw}
		}
		sort.Slice(checks, func(i, j int) bool { return checks[i].Raw < checks[j].Raw })
		ct.Checks = checks

		fks := make([]canonicalFK, len(t.ForeignKeys))
		for i, fk := range t.ForeignKeys {
			lc := append([]string{}, fk.LocalColumns...)
			rc := append([]string{}, fk.RefColumns...)
			fks[i] = canonicalFK{
				LocalColumns: lc,
				RefTable:     fk.RefTable,
				RefColumns:   rc,
				OnDelete:     string(fk.OnDelete),
				OnUpdate:     string(fk.OnUpdate),
				Deferrable:   fk.Deferrable,
			}
		}
		sort.Slice(fks, func(i, j int) bool {
			return joinCols(fks[i].LocalColumns) < joinCols(fks[j].LocalColumns)
		})
		ct.ForeignKeys = fks

		cs.Tables = append(cs.Tables, ct)
	}

	enumNames := make([]string, 0, len(s.Enums))
	for name := range s.Enums {
		enumNames = append(enumNames, name)
	}
	sort.Strings(enumNames)
	for _, name := range enumNames {
		e := s.Enums[name]
		values := append([]string{}, e.Values...)
		cs.Enums = append(cs.Enums, canonicalEnum{Name: e.Name, Values: values})
	}

	out, _ := json.Marshal(cs)
	return out
}

func joinCols(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ","
		}
		out += c
	}
	return out
}

// ComputeFingerprint hashes the canonical JSON form with SHA-256 and
// assigns the hex digest to s.Fingerprint, also returning it.
func (s *Schema) ComputeFingerprint() string {
	sum := sha256.Sum256(s.Canonicalize())
	s.Fingerprint = hex.EncodeToString(sum[:])
	return s.Fingerprint
}
