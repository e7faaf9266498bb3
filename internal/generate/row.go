package generate

import (
	"math/rand"
	"strconv"

	"github.com/seedkit-dev/seedkit/internal/classify"
	"github.com/seedkit-dev/seedkit/internal/schema"
)

// generateRow implements spec.md §4.3's per-row synthesis steps 1-6 for
// one table, skipping any FK column that belongs to a deferred (broken
// cycle) edge — those stay NULL until the DeferredUpdate step runs.
func (e *Engine) generateRow(t *schema.Table, rowIndex int, deferredLocalCols map[string]bool, tracker *UniqueTracker) (map[string]Value, error) {
	row := make(map[string]Value, len(t.Columns))
	kindOf := make(map[string]classify.SemanticKind, len(t.Columns))
	classOf := make(map[string]classify.Classification, len(t.Columns))
	for _, c := range t.Columns {
		cl := e.Classification[schema.ColumnKey{Table: t.Name, Column: c.Name}]
		kindOf[c.Name] = cl.Kind
		classOf[c.Name] = cl
	}

	// Step 0 (supplement, SPEC_FULL.md §5.3): explicit column overrides
	// short-circuit classification entirely.
	forcedByName := map[string]Value{}
	for _, c := range t.Columns {
		key := schema.ColumnKey{Table: t.Name, Column: c.Name}
		if ov, ok := e.Params.Overrides[key]; ok && len(ov.Values) > 0 {
			rng := ColumnRand(e.Params.Seed, t.Name, c.Name)
			v := weightedPick(rng, ov.Values, ov.Weights)
			row[c.Name] = v
			forcedByName[c.Name] = v
		}
	}

	// Step 1: correlated groups.
	handled := map[string]bool{}
	for cname := range forcedByName {
		handled[cname] = true
	}
	kindToCol := map[classify.SemanticKind]string{}
	for cname, k := range kindOf {
		kindToCol[k] = cname
	}

	for _, g := range correlatedGroups {
		present := true
		for k := range g.kinds {
			if _, ok := kindToCol[k]; !ok {
				present = false
				break
			}
		}
		if !present {
			continue
		}
		allHandled := true
		for k := range g.kinds {
			if !handled[kindToCol[k]] {
				allHandled = false
			}
		}
		if allHandled {
			continue
		}

		rng := GroupRand(e.Params.Seed, t.Name, g.name)
		forcedForGroup := map[classify.SemanticKind]Value{}
		for k := range g.kinds {
			if v, ok := forcedByName[kindToCol[k]]; ok {
				forcedForGroup[k] = v
			}
		}
		produced := g.produce(rng, rowIndex, forcedForGroup)
		for k, v := range produced {
			cname := kindToCol[k]
			if handled[cname] {
				continue // forced override wins
			}
			row[cname] = v
			handled[cname] = true
		}
	}

	// Steps 2-5: remaining columns in declaration order.
	for _, c := range t.Columns {
		if handled[c.Name] {
			continue
		}

		cl := classOf[c.Name]

		if cl.Kind == classify.KindFk {
			if deferredLocalCols[c.Name] {
				row[c.Name] = nil
				handled[c.Name] = true
				continue
			}
			v, err := e.resolveFK(t, c.Name, rowIndex)
			if err != nil {
				return nil, err
			}
			row[c.Name] = v
			handled[c.Name] = true
			continue
		}

		v, err := e.generateColumn(t, &c, cl, rowIndex, tracker, row)
		if err != nil {
			return nil, err
		}
		row[c.Name] = v
		handled[c.Name] = true
	}

	if err := e.enforceCompositeUnique(t, row, rowIndex, tracker); err != nil {
		return nil, err
	}

	return row, nil
}

// enforceCompositeUnique handles unique constraints of arity > 1 (e.g.
// order_items unique on (order_id, product_id)): single-column uniqueness
// is already enforced per-column in generateColumn, but a composite key
// can only be checked once every participating column — often FK columns
// resolved independently — has a value for this row.
func (e *Engine) enforceCompositeUnique(t *schema.Table, row map[string]Value, rowIndex int, tracker *UniqueTracker) error {
	constraints := append([]schema.UniqueConstraint{}, t.Unique...)
	if len(t.PrimaryKey) > 1 {
		constraints = append(constraints, schema.UniqueConstraint{Name: "pk", Columns: t.PrimaryKey})
	}

	for _, uc := range constraints {
		if len(uc.Columns) <= 1 {
			continue
		}
		name := uc.Name
		if name == "" {
			name = "unique_" + joinNames(uc.Columns)
		}

		initial := make([]Value, len(uc.Columns))
		for i, c := range uc.Columns {
			initial[i] = row[c]
		}

		rng := rand.New(rand.NewSource(int64(deriveSeed(e.Params.Seed, t.Name, "$unique$"+name, strconv.Itoa(rowIndex)))))
		accepted, err := tracker.Reserve(name, rowIndex, initial,
			func() []Value { return e.resampleCompositeTuple(t, uc.Columns, rng) },
			func(prev []Value, attempt int) []Value {
				out := make([]Value, len(prev))
				copy(out, prev)
				last := len(out) - 1
				out[last] = mutateValue(out[last], attempt)
				return out
			},
		)
		if err != nil {
			return err
		}
		for i, c := range uc.Columns {
			row[c] = accepted[i]
		}
	}
	return nil
}

func (e *Engine) resampleCompositeTuple(t *schema.Table, cols []string, rng *rand.Rand) []Value {
	out := make([]Value, len(cols))
	for i, c := range cols {
		col := t.ColumnByName(c)
		if cl, ok := e.Classification[schema.ColumnKey{Table: t.Name, Column: c}]; ok && cl.Kind == classify.KindFk {
			if fk, found := findFKByLocalColumn(t, c); found {
				if parent := e.getKeyTable(fk.RefTable); parent != nil && parent.Len() > 0 {
					if pk := parent.Sample(rng); len(pk) == 1 {
						out[i] = pk[0]
					} else {
						out[i] = pk
					}
					continue
				}
			}
		}
		v, _ := scalar(classify.KindUnknown, col, rng, 0)
		out[i] = v
	}
	return out
}

func joinNames(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += "_"
		}
		out += c
	}
	return out
}

func weightedPick(rng *rand.Rand, values []string, weights []float64) Value {
	if len(weights) != len(values) || len(weights) == 0 {
		return values[rng.Intn(len(values))]
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return values[i]
		}
	}
	return values[len(values)-1]
}

func (e *Engine) resolveFK(t *schema.Table, colName string, rowIndex int) (Value, error) {
	col := t.ColumnByName(colName)
	fk, _ := findFKByLocalColumn(t, colName)
	rng := ColumnRand(e.Params.Seed, t.Name, colName)

	if col.Nullable && rng.Float64() < e.Params.NullProbability {
		return nil, nil
	}

	parent := e.getKeyTable(fk.RefTable)
	if parent == nil || parent.Len() == 0 {
		if col.Nullable {
			return nil, nil
		}
		return nil, &fkOrphanNoParent{table: t.Name, column: colName, refTable: fk.RefTable}
	}

	pk := parent.Sample(rng)
	if len(pk) == 1 {
		return pk[0], nil
	}
	return pk, nil
}

type fkOrphanNoParent struct {
	table, column, refTable string
}

func (e *fkOrphanNoParent) Error() string {
	return "internal error: " + e.table + "." + e.column + " has no generated " + e.refTable + " rows to reference"
}

func findFKByLocalColumn(t *schema.Table, col string) (*schema.ForeignKey, bool) {
	for i := range t.ForeignKeys {
		fk := &t.ForeignKeys[i]
		for _, lc := range fk.LocalColumns {
			if lc == col {
				return fk, true
			}
		}
	}
	return nil, false
}

// generateColumn handles a single non-FK, non-correlated, non-overridden
// column: nullability, scalar generation, check-constraint narrowing and
// rejection sampling, and unique-constraint enforcement.
func (e *Engine) generateColumn(t *schema.Table, c *schema.Column, cl classify.Classification, rowIndex int, tracker *UniqueTracker, row map[string]Value) (Value, error) {
	rng := ColumnRand(e.Params.Seed, t.Name, c.Name)

	nullProb := e.Params.NullProbability
	if t.InAnyUnique(c.Name) {
		nullProb = 0
	}
	if c.Nullable && rng.Float64() < nullProb {
		return nil, nil
	}

	bounds := NarrowBounds(t.Checks, c.Name)

	gen := func() Value {
		v, _ := scalar(cl.Kind, c, rng, rowIndex)
		v = applyBounds(v, bounds)
		return v
	}

	var value Value
	opaque := opaqueChecksFor(t.Checks, c.Name)
	if len(opaque) > 0 {
		var err error
		value, err = RejectionSample(t.Name, c.Name, opaque[0].Name, rowIndex, RejectionBudget, gen, func(v Value) bool {
			row[c.Name] = v
			for _, chk := range opaque {
				if !Satisfies(chk.Predicate, row) {
					return false
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	} else {
		value = gen()
	}

	if t.InAnyUnique(c.Name) {
		constraintName := uniqueConstraintNameFor(t, c.Name)
		accepted, err := tracker.Reserve(constraintName, rowIndex, []Value{value},
			func() []Value { return []Value{gen()} },
			func(prev []Value, attempt int) []Value {
				return []Value{mutateValue(prev[0], attempt)}
			},
		)
		if err != nil {
			return nil, err
		}
		value = accepted[0]
	}

	return value, nil
}

func applyBounds(v Value, b Bounds) Value {
	switch n := v.(type) {
	case int64:
		if b.HasRange {
			return int64(b.ApplyNumeric(float64(n)))
		}
	case float64:
		if b.HasRange {
			return b.ApplyNumeric(n)
		}
	}
	if b.HasIn && len(b.Allowed) > 0 {
		if s, ok := v.(string); ok {
			for _, a := range b.Allowed {
				if s == a {
					return v
				}
			}
		}
		return b.Allowed[0]
	}
	return v
}

func mutateValue(v Value, attempt int) Value {
	switch x := v.(type) {
	case string:
		return MutateText(x, attempt)
	case int64:
		return MutateInt(x, attempt)
	case float64:
		return x + float64(attempt)
	default:
		return v
	}
}

func opaqueChecksFor(checks []schema.CheckConstraint, column string) []schema.CheckConstraint {
	var out []schema.CheckConstraint
	for _, c := range checks {
		if c.Predicate == nil {
			continue
		}
		if referencesColumn(c.Predicate, column) && !fullyNarrowable(c.Predicate) {
			out = append(out, c)
		}
	}
	return out
}

func referencesColumn(p schema.Predicate, column string) bool {
	switch v := p.(type) {
	case schema.Compare:
		return v.Column == column
	case schema.Between:
		return v.Column == column
	case schema.In:
		return v.Column == column
	case schema.NotNull:
		return v.Column == column
	case schema.And:
		for _, t := range v.Terms {
			if referencesColumn(t, column) {
				return true
			}
		}
	case schema.Or:
		for _, t := range v.Terms {
			if referencesColumn(t, column) {
				return true
			}
		}
	}
	return false
}

// fullyNarrowable reports whether a predicate is entirely composed of
// conjunctive single-column comparisons/between/in/not-null clauses — the
// cases NarrowBounds already handles a priori, so rejection sampling would
// be redundant.
func fullyNarrowable(p schema.Predicate) bool {
	switch v := p.(type) {
	case schema.Compare, schema.Between, schema.In, schema.NotNull:
		return true
	case schema.And:
		for _, t := range v.Terms {
			if !fullyNarrowable(t) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func uniqueConstraintNameFor(t *schema.Table, column string) string {
	if t.IsPrimaryKeyColumn(column) {
		return "pk"
	}
	for _, u := range t.Unique {
		for _, c := range u.Columns {
			if c == column {
				if u.Name != "" {
					return u.Name
				}
				return "unique_" + column
			}
		}
	}
	return "unique_" + column
}
