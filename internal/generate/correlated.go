package generate

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/seedkit-dev/seedkit/internal/classify"
)

// correlatedGroup produces values for a set of columns jointly so that,
// e.g., FirstName/LastName/FullName/Email/Username stay mutually
// consistent within one row. Grounded on spec.md §4.3's three named
// groups (Location, Person, Temporal pair).
type correlatedGroup struct {
	name    string
	kinds   map[classify.SemanticKind]bool
	produce func(rng *rand.Rand, rowIndex int, forced map[classify.SemanticKind]Value) map[classify.SemanticKind]Value
}

var correlatedGroups = []correlatedGroup{
	{
		name: "location",
		kinds: map[classify.SemanticKind]bool{
			classify.KindCity: true, classify.KindState: true,
			classify.KindZip: true, classify.KindCountry: true,
		},
		produce: func(rng *rand.Rand, rowIndex int, forced map[classify.SemanticKind]Value) map[classify.SemanticKind]Value {
			loc := pick(rng, localities)
			return map[classify.SemanticKind]Value{
				classify.KindCity:    loc.city,
				classify.KindState:   loc.state,
				classify.KindZip:     fillZipPattern(rng, loc.zipPattern),
				classify.KindCountry: loc.country,
			}
		},
	},
	{
		name: "person",
		kinds: map[classify.SemanticKind]bool{
			classify.KindFirstName: true, classify.KindLastName: true,
			classify.KindFullName: true, classify.KindEmail: true,
			classify.KindUsername: true,
		},
		produce: func(rng *rand.Rand, rowIndex int, forced map[classify.SemanticKind]Value) map[classify.SemanticKind]Value {
			first, _ := forced[classify.KindFirstName].(string)
			if first == "" {
				first = pick(rng, firstNames)
			}
			last, _ := forced[classify.KindLastName].(string)
			if last == "" {
				last = pick(rng, lastNames)
			}
			full := first + " " + last
			email := fmt.Sprintf("%s.%s@%s", strings.ToLower(first), strings.ToLower(last), pick(rng, domains))
			username := strings.ToLower(first) + randDigits(rng, 3)
			return map[classify.SemanticKind]Value{
				classify.KindFirstName: first,
				classify.KindLastName:  last,
				classify.KindFullName:  full,
				classify.KindEmail:     email,
				classify.KindUsername:  username,
			}
		},
	},
	{
		name: "temporal_pair",
		kinds: map[classify.SemanticKind]bool{
			classify.KindCreatedAt: true, classify.KindUpdatedAt: true,
		},
		produce: func(rng *rand.Rand, rowIndex int, forced map[classify.SemanticKind]Value) map[classify.SemanticKind]Value {
			base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
			created := base.Add(time.Duration(rng.Int63n(int64(5 * 365 * 24 * time.Hour))))
			gap := time.Duration(rng.Int63n(int64(30 * 24 * time.Hour)))
			updated := created.Add(gap)
			return map[classify.SemanticKind]Value{
				classify.KindCreatedAt: created,
				classify.KindUpdatedAt: updated,
			}
		},
	},
}

// ForcedOverride captures a config-supplied value for a column that must
// win over its correlated group's own choice (Correlated scenario in
// spec.md §8: forcing first_name/last_name still yields a consistent
// full_name and email containing both).
type ForcedOverride map[string]Value // column name -> forced value, within one table
