package distribution

import (
	"testing"

	"github.com/seedkit-dev/seedkit/internal/classify"
)

func TestMaskIsDeterministicAndIrreversible(t *testing.T) {
	a := Mask("jane@example.com")
	b := Mask("jane@example.com")
	if a != b {
		t.Fatalf("expected Mask to be deterministic, got %q and %q", a, b)
	}
	if a == "jane@example.com" {
		t.Fatalf("expected the masked value to differ from the original")
	}
	other := Mask("john@example.com")
	if a == other {
		t.Fatalf("expected distinct inputs to mask to distinct outputs")
	}
}

func TestMaskValuesPreservesOrderAndLength(t *testing.T) {
	in := []string{"a@x.com", "b@x.com", "c@x.com"}
	out := MaskValues(in)
	if len(out) != len(in) {
		t.Fatalf("expected %d masked values, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != Mask(in[i]) {
			t.Fatalf("masked value at index %d does not match Mask(%q)", i, in[i])
		}
	}
}

func TestIsPIIMatchesClassifyPIIKinds(t *testing.T) {
	if !IsPII(classify.KindEmail) {
		t.Fatalf("expected email to be flagged as PII")
	}
	if IsPII(classify.KindCity) {
		t.Fatalf("expected city not to be flagged as PII")
	}
}
