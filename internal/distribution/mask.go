package distribution

import (
	"fmt"
	"hash/fnv"

	"github.com/seedkit-dev/seedkit/internal/classify"
)

// IsPII reports whether a column classified as kind should have its
// sampled categorical values masked before being written into a
// distribution profile, per spec.md §6's list (Email, Phone, FirstName,
// LastName, Address, Token, Hash) — grounded on
// original_source/crates/seedkit-core/src/sample/mask.rs's PII_PATTERNS,
// narrowed to classify.PIIKinds.
func IsPII(kind classify.SemanticKind) bool {
	return classify.PIIKinds[kind]
}

// Mask resolves SPEC_FULL.md §10 Open Question 3: a one-way, deterministic
// (same input always masks the same way within one sample run) but
// irreversible function — FNV-1a 64-bit hashed and hex-rendered, prefixed
// so a masked value is visually distinguishable from a real one in a
// profile dump.
func Mask(original string) string {
	h := fnv.New64a()
	h.Write([]byte(original))
	return fmt.Sprintf("masked_%x", h.Sum64())
}

// MaskValues masks every distinct value in a categorical sample slice,
// preserving the original weight ordering.
func MaskValues(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = Mask(v)
	}
	return out
}
