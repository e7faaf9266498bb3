package classify

import (
	"regexp"
	"strings"

	"github.com/seedkit-dev/seedkit/internal/schema"
)

// ColumnView is the redacted projection of a column shown to an Oracle:
// no data, only the shape the classifier itself reasons over.
type ColumnView struct {
	Table        string
	Column       string
	DeclaredType string
	Siblings     []string
}

// Oracle is an opaque external classification assistant, consulted only
// for columns the rule engine leaves Unknown. Grounded on spec.md §4.2 and
// original_source's llm/client.rs, generalized to any suggestion source
// (not only an LLM) behind this narrow interface.
type Oracle interface {
	Suggest(view ColumnView) (SemanticKind, bool)
}

// OracleCache memoizes Oracle suggestions by schema fingerprint + column
// key so that re-running classify against an unchanged schema never
// re-invokes the oracle. Recorded into the lock file by internal/lockfile.
type OracleCache struct {
	Fingerprint string
	Entries     map[schema.ColumnKey]SemanticKind
}

func NewOracleCache(fingerprint string) *OracleCache {
	return &OracleCache{Fingerprint: fingerprint, Entries: map[schema.ColumnKey]SemanticKind{}}
}

var trailingSuffix = regexp.MustCompile(`(?i)(_id|_at|_flag)$`)

// normalize lowercases and strips a trailing _id/_at/_flag suffix, used
// only to widen rule matching — the column's real name (used for FK
// resolution, lock files, etc.) is never touched.
func normalize(name string) string {
	lower := strings.ToLower(name)
	return trailingSuffix.ReplaceAllString(lower, "")
}

// Classify implements spec.md §4.2: structural kinds from schema metadata
// take priority over rule matching, EnumRef logical types map directly to
// EnumOf, then an ordered table-context-then-general rule list runs
// first-match-wins, and finally an oracle (if supplied) is consulted only
// for columns still Unknown.
func Classify(s *schema.Schema, oracle Oracle, cache *OracleCache) map[schema.ColumnKey]Classification {
	result := make(map[schema.ColumnKey]Classification)

	for _, t := range s.SortedTables() {
		siblings := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			siblings = append(siblings, c.Name)
		}

		for _, col := range t.Columns {
			key := schema.ColumnKey{Table: t.Name, Column: col.Name}
			result[key] = classifyColumn(t, &col, s, oracle, cache, siblings)
		}
	}

	return result
}

func classifyColumn(t *schema.Table, col *schema.Column, s *schema.Schema, oracle Oracle, cache *OracleCache, siblings []string) Classification {
	// structural: PK
	if t.IsPrimaryKeyColumn(col.Name) && !isForeignKeyColumn(t, col.Name) {
		return Classification{Kind: KindPk}
	}

	// structural: FK (overrides name-based rules even if also in PK, e.g.
	// a composite PK that is itself a FK column — association tables)
	if fk, ok := foreignKeyFor(t, col.Name); ok {
		return Classification{Kind: KindFk, FkTarget: fk.RefTable}
	}

	// EnumRef logical type maps directly, per spec.md §4.2
	if enumType, ok := col.Type.(schema.EnumRefType); ok {
		return Classification{Kind: KindEnumOf, EnumName: enumType.Name}
	}

	if _, ok := col.Type.(schema.BoolType); ok {
		return Classification{Kind: KindBoolean}
	}
	if _, ok := col.Type.(schema.JSONType); ok {
		return Classification{Kind: KindJSON}
	}
	if _, ok := col.Type.(schema.UUIDType); ok {
		return Classification{Kind: KindUUID}
	}

	normalized := normalize(col.Name)
	lower := strings.ToLower(col.Name)

	for _, r := range tableContextRules {
		if r.tablePattern != nil && !r.tablePattern.MatchString(t.Name) {
			continue
		}
		if r.namePattern.MatchString(normalized) || r.namePattern.MatchString(lower) {
			return Classification{Kind: r.kind}
		}
	}
	for _, r := range generalRules {
		if r.namePattern.MatchString(normalized) || r.namePattern.MatchString(lower) {
			return Classification{Kind: r.kind}
		}
	}

	if oracle != nil {
		view := ColumnView{
			Table:        t.Name,
			Column:       col.Name,
			DeclaredType: typeLabel(col.Type),
			Siblings:     siblings,
		}
		key := schema.ColumnKey{Table: t.Name, Column: col.Name}
		if cache != nil && cache.Fingerprint == s.Fingerprint {
			if cached, ok := cache.Entries[key]; ok {
				return Classification{Kind: cached}
			}
		}
		if suggestion, ok := oracle.Suggest(view); ok && isKnownKind(suggestion) {
			if cache != nil {
				cache.Entries[key] = suggestion
			}
			return Classification{Kind: suggestion}
		}
	}

	return Classification{Kind: KindUnknown}
}

func isForeignKeyColumn(t *schema.Table, col string) bool {
	_, ok := foreignKeyFor(t, col)
	return ok
}

func foreignKeyFor(t *schema.Table, col string) (*schema.ForeignKey, bool) {
	for i := range t.ForeignKeys {
		fk := &t.ForeignKeys[i]
		if len(fk.LocalColumns) == 1 && fk.LocalColumns[0] == col {
			return fk, true
		}
	}
	return nil, false
}

func typeLabel(t schema.LogicalType) string {
	switch v := t.(type) {
	case schema.IntegerType:
		return "integer"
	case schema.DecimalType:
		return "decimal"
	case schema.FloatType:
		return "float"
	case schema.TextType:
		return "text"
	case schema.ByteaType:
		return "bytea"
	case schema.BoolType:
		return "bool"
	case schema.DateType:
		return "date"
	case schema.TimeType:
		return "time"
	case schema.TimestampType:
		return "timestamp"
	case schema.UUIDType:
		return "uuid"
	case schema.JSONType:
		return "json"
	case schema.EnumRefType:
		return "enum:" + v.Name
	default:
		return "unknown"
	}
}

func isKnownKind(k SemanticKind) bool {
	switch k {
	case KindPk, KindFk, KindBoolean, KindJSON, KindUUID, KindEnumOf, KindUnknown:
		return true
	}
	for _, r := range generalRules {
		if r.kind == k {
			return true
		}
	}
	for _, r := range tableContextRules {
		if r.kind == k {
			return true
		}
	}
	return false
}
