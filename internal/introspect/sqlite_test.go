package introspect

import "testing"

func TestParseCheckClausesExtractsSingleConstraint(t *testing.T) {
	createSQL := `CREATE TABLE products (id INTEGER PRIMARY KEY, price REAL, CHECK (price > 0))`
	got := parseCheckClauses(createSQL)
	if len(got) != 1 {
		t.Fatalf("expected 1 check clause, got %d: %v", len(got), got)
	}
	if got[0].Raw != "price > 0" {
		t.Fatalf("got raw %q, want %q", got[0].Raw, "price > 0")
	}
	if got[0].Predicate == nil {
		t.Fatalf("expected the extracted clause to parse into a predicate")
	}
}

func TestParseCheckClausesHandlesNestedParens(t *testing.T) {
	createSQL := `CREATE TABLE t (n INTEGER, CHECK (n IN (1, 2, 3)))`
	got := parseCheckClauses(createSQL)
	if len(got) != 1 {
		t.Fatalf("expected 1 check clause, got %d", len(got))
	}
	if got[0].Raw != "n IN (1, 2, 3)" {
		t.Fatalf("got raw %q", got[0].Raw)
	}
}

func TestParseCheckClausesMultipleConstraints(t *testing.T) {
	createSQL := `CREATE TABLE t (a INTEGER, b INTEGER, CHECK (a > 0), CHECK (b < 100))`
	got := parseCheckClauses(createSQL)
	if len(got) != 2 {
		t.Fatalf("expected 2 check clauses, got %d", len(got))
	}
	if got[0].Name == got[1].Name {
		t.Fatalf("expected distinct synthesized names, got %q twice", got[0].Name)
	}
}

func TestParseCheckClausesNoneFound(t *testing.T) {
	createSQL := `CREATE TABLE t (a INTEGER)`
	got := parseCheckClauses(createSQL)
	if len(got) != 0 {
		t.Fatalf("expected no check clauses, got %v", got)
	}
}
