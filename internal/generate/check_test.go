package generate

import (
	"testing"

	"github.com/seedkit-dev/seedkit/internal/schema"
)

func TestNarrowBoundsIntersectsCompareTerms(t *testing.T) {
	checks := []schema.CheckConstraint{
		{Raw: "(price > 0)", Predicate: schema.ParseCheckExpr("(price > 0)")},
		{Raw: "(price <= 1000)", Predicate: schema.ParseCheckExpr("(price <= 1000)")},
	}
	b := NarrowBounds(checks, "price")
	if !b.HasRange || b.Min == nil || b.Max == nil {
		t.Fatalf("expected a narrowed range, got %+v", b)
	}
	if *b.Min != 0 || *b.Max != 1000 {
		t.Fatalf("expected [0, 1000], got [%v, %v]", *b.Min, *b.Max)
	}
}

func TestNarrowBoundsIgnoresOtherColumns(t *testing.T) {
	checks := []schema.CheckConstraint{
		{Raw: "(quantity >= 0)", Predicate: schema.ParseCheckExpr("(quantity >= 0)")},
	}
	b := NarrowBounds(checks, "price")
	if b.HasRange {
		t.Fatalf("expected no range narrowed for an unrelated column, got %+v", b)
	}
}

func TestNarrowBoundsInSet(t *testing.T) {
	checks := []schema.CheckConstraint{
		{Raw: "status IN ('draft','live')", Predicate: schema.ParseCheckExpr("status IN ('draft','live')")},
	}
	b := NarrowBounds(checks, "status")
	if !b.HasIn || len(b.Allowed) != 2 {
		t.Fatalf("expected an IN-set of 2 values, got %+v", b)
	}
}

func TestApplyNumericClampsToRange(t *testing.T) {
	min, max := 0.0, 100.0
	b := Bounds{HasRange: true, Min: &min, Max: &max}
	if got := b.ApplyNumeric(-5); got != 0 {
		t.Fatalf("expected clamp to min 0, got %v", got)
	}
	if got := b.ApplyNumeric(500); got != 100 {
		t.Fatalf("expected clamp to max 100, got %v", got)
	}
	if got := b.ApplyNumeric(50); got != 50 {
		t.Fatalf("expected 50 to pass through unchanged, got %v", got)
	}
}

func TestSatisfiesEvaluatesCompareAgainstRow(t *testing.T) {
	// Satisfies is called directly on hand-built Compare predicates, the
	// way generate/row.go calls it for each constraint during rejection
	// sampling, checking the column's value in the candidate row.
	row := map[string]Value{"price": int64(50)}
	p := schema.Compare{Column: "price", Op: schema.OpGT, Literal: "0"}
	if !Satisfies(p, row) {
		t.Fatalf("expected price=50 to satisfy price > 0")
	}
	p2 := schema.Compare{Column: "price", Op: schema.OpLT, Literal: "0"}
	if Satisfies(p2, row) {
		t.Fatalf("expected price=50 to violate price < 0")
	}
}

func TestRejectionSampleSucceedsWithinBudget(t *testing.T) {
	attempts := 0
	gen := func() Value {
		attempts++
		return int64(attempts)
	}
	check := func(v Value) bool { return v.(int64) >= 3 }

	v, err := RejectionSample("t", "c", "chk", 0, 10, gen, check)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(int64) != 3 {
		t.Fatalf("expected to stop at the first value satisfying check, got %v", v)
	}
}

func TestRejectionSampleExhaustsBudget(t *testing.T) {
	gen := func() Value { return int64(0) }
	check := func(v Value) bool { return false }

	_, err := RejectionSample("t", "c", "chk", 0, 5, gen, check)
	if err == nil {
		t.Fatalf("expected CheckUnsatisfiable when no candidate ever satisfies check")
	}
}
