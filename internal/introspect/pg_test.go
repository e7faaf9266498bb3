package introspect

import (
	"database/sql"
	"testing"

	"github.com/seedkit-dev/seedkit/internal/schema"
)

func TestParseDefaultRecognizesAutoIncrement(t *testing.T) {
	got := parseDefault(sql.NullString{String: "nextval('users_id_seq'::regclass)", Valid: true})
	if _, ok := got.(schema.DefaultAutoIncrement); !ok {
		t.Fatalf("expected DefaultAutoIncrement, got %#v", got)
	}
}

func TestParseDefaultRecognizesFunctionCall(t *testing.T) {
	got := parseDefault(sql.NullString{String: "now()", Valid: true})
	fc, ok := got.(schema.DefaultFunctionCall)
	if !ok || fc.Name != "now" {
		t.Fatalf("expected DefaultFunctionCall{Name: \"now\"}, got %#v", got)
	}
}

func TestParseDefaultRecognizesLiteral(t *testing.T) {
	got := parseDefault(sql.NullString{String: "'active'::character varying", Valid: true})
	lit, ok := got.(schema.DefaultLiteral)
	if !ok || lit.Value != "'active'::character varying" {
		t.Fatalf("expected a literal default, got %#v", got)
	}
}

func TestParseDefaultNoneWhenAbsent(t *testing.T) {
	got := parseDefault(sql.NullString{Valid: false})
	if _, ok := got.(schema.DefaultNone); !ok {
		t.Fatalf("expected DefaultNone, got %#v", got)
	}
}

func TestPgActionLabel(t *testing.T) {
	cases := map[string]schema.OnAction{
		"c": schema.ActionCascade,
		"n": schema.ActionSetNull,
		"d": schema.ActionSetDefault,
		"r": schema.ActionRestrict,
		"a": schema.ActionNoAction,
	}
	for code, want := range cases {
		if got := pgActionLabel(code); got != want {
			t.Fatalf("pgActionLabel(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestExtractCheckExpr(t *testing.T) {
	got := extractCheckExpr("CHECK ((price > (0)::numeric))")
	want := "(price > (0)::numeric)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractCheckExprNoParensReturnsInput(t *testing.T) {
	got := extractCheckExpr("no parens here")
	if got != "no parens here" {
		t.Fatalf("expected the input unchanged, got %q", got)
	}
}

func TestStringArrayScanParsesPostgresArrayLiteral(t *testing.T) {
	var a stringArray
	if err := a.Scan("{id,customer_id}"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != 2 || a[0] != "id" || a[1] != "customer_id" {
		t.Fatalf("got %v", a)
	}
}

func TestStringArrayScanEmptyArray(t *testing.T) {
	var a stringArray
	if err := a.Scan("{}"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != nil {
		t.Fatalf("expected nil for an empty array literal, got %v", a)
	}
}

func TestStringArrayScanNilSource(t *testing.T) {
	var a stringArray = stringArray{"stale"}
	if err := a.Scan(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != nil {
		t.Fatalf("expected Scan(nil) to reset to nil, got %v", a)
	}
}
