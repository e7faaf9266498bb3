package generate

import (
	"strconv"

	"github.com/seedkit-dev/seedkit/internal/schema"
	"github.com/seedkit-dev/seedkit/internal/seedkiterr"
)

// Bounds is the a-priori domain narrowing spec.md §4.3 describes for
// parseable check predicates: "intersect ranges, restrict IN-sets". Only
// single-column, conjunctive predicates narrow Bounds; anything else
// (disjunctions, multi-column predicates) is left to rejection sampling.
type Bounds struct {
	HasRange bool
	Min, Max *float64
	HasIn    bool
	Allowed  []string
	NotNull  bool
}

// NarrowBounds walks a column's check constraints and intersects any
// single-column conjunctive predicates targeting it into one Bounds value.
// Predicates involving other columns, or combined with Or, are skipped
// here — they still apply via Satisfies during rejection sampling.
func NarrowBounds(checks []schema.CheckConstraint, column string) Bounds {
	b := Bounds{}
	for _, c := range checks {
		if c.Predicate == nil {
			continue
		}
		narrowPredicate(c.Predicate, column, &b)
	}
	return b
}

func narrowPredicate(p schema.Predicate, column string, b *Bounds) {
	switch v := p.(type) {
	case schema.And:
		for _, t := range v.Terms {
			narrowPredicate(t, column, b)
		}
	case schema.Compare:
		if v.Column != column {
			return
		}
		f, err := strconv.ParseFloat(v.Literal, 64)
		if err != nil {
			return
		}
		applyCompare(b, v.Op, f)
	case schema.Between:
		if v.Column != column {
			return
		}
		lo, err1 := strconv.ParseFloat(v.Low, 64)
		hi, err2 := strconv.ParseFloat(v.High, 64)
		if err1 != nil || err2 != nil {
			return
		}
		intersectMin(b, lo)
		intersectMax(b, hi)
	case schema.In:
		if v.Column != column {
			return
		}
		b.HasIn = true
		b.Allowed = v.Values
	case schema.NotNull:
		if v.Column == column {
			b.NotNull = true
		}
	}
}

func applyCompare(b *Bounds, op schema.CompareOp, f float64) {
	switch op {
	case schema.OpGE, schema.OpGT:
		intersectMin(b, f)
	case schema.OpLE, schema.OpLT:
		intersectMax(b, f)
	}
}

func intersectMin(b *Bounds, v float64) {
	b.HasRange = true
	if b.Min == nil || v > *b.Min {
		b.Min = &v
	}
}

func intersectMax(b *Bounds, v float64) {
	b.HasRange = true
	if b.Max == nil || v < *b.Max {
		b.Max = &v
	}
}

// ApplyNumeric clamps a numeric candidate into the narrowed range. It
// does not look at the IN list (Allowed).
func (b Bounds) ApplyNumeric(v float64) float64 {
	if b.Min != nil && v < *b.Min {
		v = *b.Min
	}
	if b.Max != nil && v > *b.Max {
		v = *b.Max
	}
	return v
}

// Satisfies evaluates an opaque or parsed predicate against a candidate
// row's column values, used for rejection sampling (spec.md §4.3 step 5).
// row maps column name to its already-generated value for this row so
// that multi-column predicates can be checked.
func Satisfies(p schema.Predicate, row map[string]Value) bool {
	switch v := p.(type) {
	case schema.And:
		for _, t := range v.Terms {
			if !Satisfies(t, row) {
				return false
			}
		}
		return true
	case schema.Or:
		for _, t := range v.Terms {
			if Satisfies(t, row) {
				return true
			}
		}
		return len(v.Terms) == 0
	case schema.Compare:
		return satisfiesCompare(v, row)
	case schema.Between:
		f, ok := numericValue(row[v.Column])
		if !ok {
			return true
		}
		lo, err1 := strconv.ParseFloat(v.Low, 64)
		hi, err2 := strconv.ParseFloat(v.High, 64)
		if err1 != nil || err2 != nil {
			return true
		}
		return f >= lo && f <= hi
	case schema.In:
		s, ok := row[v.Column].(string)
		if !ok {
			return true
		}
		for _, allowed := range v.Values {
			if s == allowed {
				return true
			}
		}
		return false
	case schema.NotNull:
		return row[v.Column] != nil
	default:
		return true
	}
}

func satisfiesCompare(v schema.Compare, row map[string]Value) bool {
	f, ok := numericValue(row[v.Column])
	if !ok {
		return true
	}
	lit, err := strconv.ParseFloat(v.Literal, 64)
	if err != nil {
		return true
	}
	switch v.Op {
	case schema.OpLT:
		return f < lit
	case schema.OpLE:
		return f <= lit
	case schema.OpGT:
		return f > lit
	case schema.OpGE:
		return f >= lit
	case schema.OpEQ:
		return f == lit
	case schema.OpNE:
		return f != lit
	default:
		return true
	}
}

func numericValue(v Value) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// RejectionSample regenerates candidate via gen until it satisfies check
// or the budget is exhausted, at which point it returns CheckUnsatisfiable.
func RejectionSample(table, column, constraint string, rowIndex, budget int, gen func() Value, check func(Value) bool) (Value, error) {
	for attempt := 0; attempt < budget; attempt++ {
		v := gen()
		if check(v) {
			return v, nil
		}
	}
	return nil, &seedkiterr.CheckUnsatisfiable{
		Table:      table,
		Column:     column,
		Constraint: constraint,
		RowIndex:   rowIndex,
		Budget:     budget,
	}
}

const RejectionBudget = 1000
