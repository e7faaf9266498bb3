package schema

import (
	"reflect"
	"testing"
)

func TestParseCheckExprCompare(t *testing.T) {
	got := ParseCheckExpr("(price > 0)")
	want := Compare{Column: "price", Op: OpGT, Literal: "0"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseCheckExprBetween(t *testing.T) {
	got := ParseCheckExpr("(age BETWEEN 0 AND 120)")
	want := Between{Column: "age", Low: "0", High: "120"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseCheckExprInPlain(t *testing.T) {
	got := ParseCheckExpr("status IN ('active', 'inactive', 'pending')")
	want := In{Column: "status", Values: []string{"active", "inactive", "pending"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseCheckExprAnyArray(t *testing.T) {
	got := ParseCheckExpr("(status = ANY (ARRAY['draft'::text, 'live'::text]))")
	want := In{Column: "status", Values: []string{"draft", "live"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseCheckExprNotNull(t *testing.T) {
	got := ParseCheckExpr("email IS NOT NULL")
	want := NotNull{Column: "email"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseCheckExprAnd(t *testing.T) {
	got := ParseCheckExpr("(price > 0) AND (quantity >= 0)")
	want := And{Terms: []Predicate{
		Compare{Column: "price", Op: OpGT, Literal: "0"},
		Compare{Column: "quantity", Op: OpGE, Literal: "0"},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseCheckExprOr(t *testing.T) {
	got := ParseCheckExpr("(status = 'draft') OR (status = 'live')")
	want := Or{Terms: []Predicate{
		Compare{Column: "status", Op: OpEQ, Literal: "draft"},
		Compare{Column: "status", Op: OpEQ, Literal: "live"},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseCheckExprOpaqueFallsBackToNil(t *testing.T) {
	// cross-column comparison: outside the bounded grammar.
	got := ParseCheckExpr("(start_date < end_date)")
	if got != nil {
		t.Fatalf("expected nil for cross-column expression, got %#v", got)
	}

	got2 := ParseCheckExpr("(char_length(name) > 0)")
	if got2 != nil {
		t.Fatalf("expected nil for function-call expression, got %#v", got2)
	}
}

func TestParseCheckExprNestedParens(t *testing.T) {
	got := ParseCheckExpr("((quantity) >= (0))")
	want := Compare{Column: "quantity", Op: OpGE, Literal: "0"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}
