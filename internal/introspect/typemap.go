package introspect

import (
	"strconv"
	"strings"

	"github.com/seedkit-dev/seedkit/internal/schema"
)

// mapLogicalType maps a driver's reported declared type string into a
// schema.LogicalType, shared across dialects since the information_schema
// type vocabulary overlaps heavily; each dialect driver pre-handles its
// own quirks (MySQL's enum(...) column_type, Postgres's user-defined enum
// OID lookup) before falling back to this table.
func mapLogicalType(declared string, charMaxLen *int, numPrecision, numScale *int) schema.LogicalType {
	t := strings.ToLower(strings.TrimSpace(declared))
	t = strings.TrimSuffix(t, " unsigned")

	switch {
	case strings.HasPrefix(t, "smallint") || t == "int2":
		return schema.IntegerType{Width: 16, Signed: true}
	case (strings.HasPrefix(t, "int") && t != "int8") || t == "integer" || t == "int4" || t == "mediumint":
		return schema.IntegerType{Width: 32, Signed: true}
	case strings.HasPrefix(t, "bigint") || t == "int8" || strings.Contains(t, "serial"):
		return schema.IntegerType{Width: 64, Signed: true}
	case strings.HasPrefix(t, "numeric") || strings.HasPrefix(t, "decimal"):
		precision, scale := 18, 2
		if numPrecision != nil {
			precision = *numPrecision
		}
		if numScale != nil {
			scale = *numScale
		}
		return schema.DecimalType{Precision: precision, Scale: scale}
	case strings.HasPrefix(t, "double") || t == "float8":
		return schema.FloatType{Width: 64}
	case strings.HasPrefix(t, "real") || t == "float4" || strings.HasPrefix(t, "float"):
		return schema.FloatType{Width: 32}
	case strings.HasPrefix(t, "varchar") || strings.HasPrefix(t, "character varying") ||
		strings.HasPrefix(t, "char") || t == "text" || strings.HasPrefix(t, "tinytext") ||
		strings.HasPrefix(t, "mediumtext") || strings.HasPrefix(t, "longtext"):
		return schema.TextType{MaxLen: charMaxLen}
	case strings.HasPrefix(t, "bytea") || strings.HasPrefix(t, "blob") || strings.HasPrefix(t, "varbinary") || strings.HasPrefix(t, "binary"):
		return schema.ByteaType{}
	case strings.HasPrefix(t, "bool"):
		return schema.BoolType{}
	case t == "date":
		return schema.DateType{}
	case strings.HasPrefix(t, "time") && !strings.Contains(t, "timestamp"):
		return schema.TimeType{}
	case strings.HasPrefix(t, "timestamp") || t == "datetime":
		return schema.TimestampType{TZ: strings.Contains(t, "with time zone") || strings.Contains(t, "tz")}
	case strings.HasPrefix(t, "uuid"):
		return schema.UUIDType{}
	case strings.HasPrefix(t, "json"):
		return schema.JSONType{}
	default:
		return schema.UnknownType{Raw: declared}
	}
}

func parseIntPtr(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
