package generate

import (
	"fmt"
	"strings"

	"github.com/seedkit-dev/seedkit/internal/seedkiterr"
)

// UniqueTracker enforces spec.md §4.3's uniqueness rule for one table: a
// set of already-emitted value tuples per constraint. Grounded on
// original_source/crates/seedkit-core/src/generate/unique.rs's
// UniqueTracker, which tracked a HashSet<String> of "|"-joined values per
// "table:cols" key with an unbounded max_retries=1000 resample loop; this
// adapts it to spec.md's bounded resample (K) + deterministic mutation +
// fail-after-M budget instead of a flat retry count.
type UniqueTracker struct {
	table       string
	constraints map[string]map[string]bool // constraint name -> seen value-key set
}

func NewUniqueTracker(table string) *UniqueTracker {
	return &UniqueTracker{table: table, constraints: map[string]map[string]bool{}}
}

func (u *UniqueTracker) register(constraint string) {
	if u.constraints[constraint] == nil {
		u.constraints[constraint] = map[string]bool{}
	}
}

func valueKey(values []Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, "|")
}

const (
	resampleBudget = 64  // K: plain resample attempts before mutating
	totalBudget    = 256 // M: total attempts (including mutation) before failing
)

// Reserve claims values for constraint, calling resample() to obtain a
// fresh candidate whenever the current one collides, up to K times, then
// falling back to mutate() for the remainder of the M-attempt budget.
// Returns the accepted values or UniqueExhausted.
func (u *UniqueTracker) Reserve(constraint string, rowIndex int, initial []Value, resample func() []Value, mutate func([]Value, int) []Value) ([]Value, error) {
	u.register(constraint)
	seen := u.constraints[constraint]

	candidate := initial
	for attempt := 0; attempt < totalBudget; attempt++ {
		key := valueKey(candidate)
		if !seen[key] {
			seen[key] = true
			return candidate, nil
		}
		if attempt < resampleBudget {
			candidate = resample()
		} else {
			candidate = mutate(candidate, attempt-resampleBudget+1)
		}
	}

	return nil, &seedkiterr.UniqueExhausted{
		Table:      u.table,
		Constraint: constraint,
		RowIndex:   rowIndex,
		MaxRetries: totalBudget,
	}
}

// MutateText appends a disambiguating numeric suffix, per spec.md §4.3.
func MutateText(v string, attempt int) string {
	return fmt.Sprintf("%s-%d", v, attempt)
}

// MutateInt increments, per spec.md §4.3.
func MutateInt(v int64, attempt int) int64 {
	return v + int64(attempt)
}
