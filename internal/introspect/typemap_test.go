package introspect

import (
	"testing"

	"github.com/seedkit-dev/seedkit/internal/schema"
)

func TestMapLogicalTypeIntegers(t *testing.T) {
	cases := map[string]schema.IntegerType{
		"smallint": {Width: 16, Signed: true},
		"int2":     {Width: 16, Signed: true},
		"integer":  {Width: 32, Signed: true},
		"int4":     {Width: 32, Signed: true},
		"mediumint unsigned": {Width: 32, Signed: true},
		"bigint":   {Width: 64, Signed: true},
		"bigserial": {Width: 64, Signed: true},
	}
	for declared, want := range cases {
		got := mapLogicalType(declared, nil, nil, nil)
		if got != schema.LogicalType(want) {
			t.Fatalf("mapLogicalType(%q) = %#v, want %#v", declared, got, want)
		}
	}
}

func TestMapLogicalTypeDecimalUsesPrecisionAndScale(t *testing.T) {
	prec, scale := 10, 4
	got := mapLogicalType("numeric", nil, &prec, &scale)
	want := schema.DecimalType{Precision: 10, Scale: 4}
	if got != schema.LogicalType(want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestMapLogicalTypeDecimalDefaultsWithoutPrecision(t *testing.T) {
	got := mapLogicalType("decimal", nil, nil, nil)
	want := schema.DecimalType{Precision: 18, Scale: 2}
	if got != schema.LogicalType(want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestMapLogicalTypeText(t *testing.T) {
	maxLen := 255
	got := mapLogicalType("varchar", &maxLen, nil, nil)
	want := schema.TextType{MaxLen: &maxLen}
	if got.(schema.TextType).MaxLen == nil || *got.(schema.TextType).MaxLen != 255 {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestMapLogicalTypeTimestampDetectsTimeZone(t *testing.T) {
	got := mapLogicalType("timestamp with time zone", nil, nil, nil)
	want := schema.TimestampType{TZ: true}
	if got != schema.LogicalType(want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
	got2 := mapLogicalType("timestamp", nil, nil, nil)
	want2 := schema.TimestampType{TZ: false}
	if got2 != schema.LogicalType(want2) {
		t.Fatalf("got %#v, want %#v", got2, want2)
	}
}

func TestMapLogicalTypeUnknownFallsBackToRaw(t *testing.T) {
	got := mapLogicalType("some_exotic_type", nil, nil, nil)
	if u, ok := got.(schema.UnknownType); !ok || u.Raw != "some_exotic_type" {
		t.Fatalf("expected UnknownType{Raw: \"some_exotic_type\"}, got %#v", got)
	}
}

func TestParseIntPtr(t *testing.T) {
	if parseIntPtr("") != nil {
		t.Fatalf("expected nil for empty string")
	}
	if parseIntPtr("not-a-number") != nil {
		t.Fatalf("expected nil for a non-numeric string")
	}
	p := parseIntPtr("42")
	if p == nil || *p != 42 {
		t.Fatalf("expected 42, got %v", p)
	}
}
