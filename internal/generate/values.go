package generate

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seedkit-dev/seedkit/internal/classify"
	"github.com/seedkit-dev/seedkit/internal/schema"
)

// Value is the generated cell value handed to the output sink. Concrete
// dynamic types: string, int64, float64, bool, time.Time, []byte, nil.
type Value interface{}

// firstNames / lastNames ground and extend the teacher's
// internal/seeder/faker.go name lists (ten entries each) to a size that
// produces visibly varied fixtures without attempting to be exhaustive.
var firstNames = []string{
	"Ada", "Grace", "Alan", "Linus", "Margaret", "Dennis", "Barbara", "Ken",
	"Donald", "Frances", "John", "Katherine", "Tim", "Radia", "Vint",
	"Hedy", "Claude", "Jean", "Edsger", "Anita", "Brian", "Shafi", "Whitfield",
	"Evelyn", "Guido", "Rasmus", "Yukihiro", "Bjarne", "James", "Niklaus",
	"Leslie", "Barbara", "Adele", "Steve", "Dennis", "Ritchie", "Marvin",
	"Rob", "Ward", "Kristen", "Robin",
}

var lastNames = []string{
	"Lovelace", "Hopper", "Turing", "Torvalds", "Hamilton", "Ritchie",
	"Liskov", "Thompson", "Knuth", "Allen", "Carmack", "Johnson",
	"Berners-Lee", "Perlman", "Cerf", "Lamarr", "Shannon", "Sammet",
	"Dijkstra", "Borg", "Kernighan", "Goldwasser", "Diffie", "Boole",
	"Van Rossum", "Lerdorf", "Matsumoto", "Stroustrup", "Gosling", "Wirth",
	"Lamport", "Liskov", "Goldberg", "Wozniak", "Ritchie", "Minsky",
	"Pike", "Cunningham", "Nygaard", "Milner",
}

type locality struct {
	city, state, zipPattern, country string
}

var localities = []locality{
	{"Portland", "Oregon", "97###", "United States"},
	{"Austin", "Texas", "78###", "United States"},
	{"Seattle", "Washington", "98###", "United States"},
	{"Denver", "Colorado", "80###", "United States"},
	{"Toronto", "Ontario", "M#A #A#", "Canada"},
	{"Vancouver", "British Columbia", "V#B #B#", "Canada"},
	{"Manchester", "Greater Manchester", "M# #AA", "United Kingdom"},
	{"Bristol", "Bristol", "BS# #AA", "United Kingdom"},
	{"Berlin", "Berlin", "10###", "Germany"},
	{"Munich", "Bavaria", "80###", "Germany"},
	{"Lyon", "Auvergne-Rhône-Alpes", "69###", "France"},
	{"Osaka", "Osaka", "530-####", "Japan"},
	{"Auckland", "Auckland", "1###", "New Zealand"},
	{"Dublin", "Leinster", "D## #AAA", "Ireland"},
	{"Zurich", "Zurich", "80##", "Switzerland"},
}

var domains = []string{"example.com", "mailhost.dev", "inbox.test", "corpmail.io"}

var companySuffixes = []string{"Inc.", "LLC", "Group", "Labs", "Partners", "Holdings", "Co."}
var companyStems = []string{"Acme", "Globex", "Initech", "Umbrella", "Hooli", "Soylent", "Stark", "Wayne", "Wonka", "Cyberdyne"}

var jobTitles = []string{"Engineer", "Manager", "Analyst", "Director", "Coordinator", "Specialist", "Consultant", "Architect"}
var departments = []string{"Engineering", "Sales", "Marketing", "Finance", "Operations", "Support", "Legal", "HR"}

var words = []string{
	"quantum", "velocity", "harbor", "cascade", "ember", "lattice", "orbit",
	"granite", "nimbus", "thicket", "cobalt", "ridge", "meridian", "acorn",
	"tundra", "ripple", "vector", "summit", "delta", "pivot",
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}

func randDigits(rng *rand.Rand, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + rng.Intn(10)))
	}
	return b.String()
}

func randHex(rng *rand.Rand, n int) string {
	const hexDigits = "0123456789abcdef"
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(hexDigits[rng.Intn(len(hexDigits))])
	}
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	return s
}

func sentence(rng *rand.Rand, wordCount int) string {
	chosen := make([]string, wordCount)
	for i := range chosen {
		chosen[i] = pick(rng, words)
	}
	s := strings.Join(chosen, " ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

// clampInteger applies LogicalType width/sign constraints to a generated
// 64-bit integer value.
func clampInteger(v int64, t schema.IntegerType) int64 {
	if !t.Signed {
		if v < 0 {
			v = -v
		}
	}
	var max int64
	switch t.Width {
	case 16:
		max = 1<<15 - 1
	case 32:
		max = 1<<31 - 1
	default:
		return v
	}
	if v > max {
		v %= max
	}
	if !t.Signed && v < 0 {
		v = -v
	}
	return v
}

func roundToScale(v float64, scale int) float64 {
	factor := 1.0
	for i := 0; i < scale; i++ {
		factor *= 10
	}
	return float64(int64(v*factor)) / factor
}

// scalar generates a single column's value given its SemanticKind and
// LogicalType, without regard to correlated groups, FK resolution, or
// constraint enforcement — those are layered on by engine.go.
func scalar(kind classify.SemanticKind, col *schema.Column, rng *rand.Rand, rowIndex int) (Value, error) {
	if _, ok := col.Default.(schema.DefaultAutoIncrement); ok {
		return pkScalar(col, rng, rowIndex)
	}

	switch kind {
	case classify.KindPk:
		return pkScalar(col, rng, rowIndex)
	case classify.KindEmail:
		return fmt.Sprintf("user%d@%s", rowIndex+1, pick(rng, domains)), nil
	case classify.KindFirstName:
		return pick(rng, firstNames), nil
	case classify.KindLastName:
		return pick(rng, lastNames), nil
	case classify.KindFullName:
		return pick(rng, firstNames) + " " + pick(rng, lastNames), nil
	case classify.KindUsername:
		return strings.ToLower(pick(rng, firstNames)) + randDigits(rng, 4), nil
	case classify.KindPhone:
		return fmt.Sprintf("+1-%s-%s-%s", randDigits(rng, 3), randDigits(rng, 3), randDigits(rng, 4)), nil
	case classify.KindPhoneCountryCode:
		return "+" + fmt.Sprint(1+rng.Intn(98)), nil
	case classify.KindJobTitle:
		return pick(rng, jobTitles), nil
	case classify.KindCompanyName:
		return pick(rng, companyStems) + " " + pick(rng, companySuffixes), nil
	case classify.KindDepartment:
		return pick(rng, departments), nil

	case classify.KindStreet:
		return fmt.Sprintf("%d %s St", 1+rng.Intn(9999), pick(rng, words)), nil
	case classify.KindCity:
		return pick(rng, localities).city, nil
	case classify.KindState:
		return pick(rng, localities).state, nil
	case classify.KindZip:
		return fillZipPattern(rng, pick(rng, localities).zipPattern), nil
	case classify.KindCountry:
		return pick(rng, localities).country, nil
	case classify.KindCountryCode:
		return strings.ToUpper(randHex(rng, 2)), nil
	case classify.KindLatitude:
		return roundToScale(-90+rng.Float64()*180, 6), nil
	case classify.KindLongitude:
		return roundToScale(-180+rng.Float64()*360, 6), nil

	case classify.KindCreatedAt, classify.KindUpdatedAt, classify.KindEventTime:
		return randomTimestamp(rng, col), nil
	case classify.KindDeletedAt:
		if rng.Float64() < 0.9 {
			return nil, nil
		}
		return randomTimestamp(rng, col), nil
	case classify.KindBirthdate:
		return time.Date(1950+rng.Intn(60), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC), nil
	case classify.KindStartDate:
		return randomTimestamp(rng, col), nil
	case classify.KindEndDate:
		return randomTimestamp(rng, col), nil

	case classify.KindPrice:
		return roundToScale(1+rng.Float64()*999, 2), nil
	case classify.KindQuantity:
		return int64(rng.Intn(500)), nil
	case classify.KindPercentage:
		return roundToScale(rng.Float64()*100, 2), nil
	case classify.KindAge:
		return int64(18 + rng.Intn(65)), nil
	case classify.KindRating:
		return roundToScale(1+rng.Float64()*4, 1), nil
	case classify.KindCurrency:
		return roundToScale(rng.Float64()*9999, 2), nil
	case classify.KindCurrencyCode:
		return pick(rng, []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD"}), nil

	case classify.KindSlug:
		return fmt.Sprintf("%s-%d", slugify(pick(rng, words)), rowIndex+1), nil
	case classify.KindTitle:
		return titleCase(pick(rng, words)) + " " + titleCase(pick(rng, words)), nil
	case classify.KindDescription, classify.KindBio:
		return sentence(rng, 6+rng.Intn(10)), nil
	case classify.KindParagraph:
		return sentence(rng, 20+rng.Intn(30)), nil
	case classify.KindURL:
		return "https://" + pick(rng, domains) + "/" + slugify(pick(rng, words)), nil
	case classify.KindHex:
		return "#" + randHex(rng, 6), nil
	case classify.KindToken, classify.KindHash:
		return randHex(rng, 32), nil
	case classify.KindIP:
		return fmt.Sprintf("%d.%d.%d.%d", rng.Intn(256), rng.Intn(256), rng.Intn(256), rng.Intn(256)), nil
	case classify.KindMAC:
		parts := make([]string, 6)
		for i := range parts {
			parts[i] = randHex(rng, 2)
		}
		return strings.Join(parts, ":"), nil
	case classify.KindUserAgent:
		return "Mozilla/5.0 (compatible; seedkit/1.0)", nil
	case classify.KindSku:
		return strings.ToUpper(randHex(rng, 8)), nil
	case classify.KindOrderNumber:
		return fmt.Sprintf("ORD-%06d", rowIndex+1), nil

	case classify.KindBoolean:
		return rng.Float64() < 0.5, nil
	case classify.KindUUID:
		return generateUUID(rng).String(), nil
	case classify.KindJSON:
		return "{}", nil

	default:
		return genericScalar(col.Type, rng, rowIndex)
	}
}

func fillZipPattern(rng *rand.Rand, pattern string) string {
	var b strings.Builder
	for _, c := range pattern {
		switch c {
		case '#':
			b.WriteByte(byte('0' + rng.Intn(10)))
		case 'A':
			b.WriteByte(byte('A' + rng.Intn(26)))
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func randomTimestamp(rng *rand.Rand, col *schema.Column) time.Time {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	offset := time.Duration(rng.Int63n(int64(5 * 365 * 24 * time.Hour)))
	t := base.Add(offset)
	if ts, ok := col.Type.(schema.TimestampType); ok && ts.TZ {
		return t
	}
	return t
}

// generateUUID derives a UUID deterministically from the sub-PRNG rather
// than from time/randomness sources outside the derivation tree, so that
// identical (seed, table, column) always produces the identical sequence.
func generateUUID(rng *rand.Rand) uuid.UUID {
	var u uuid.UUID
	rng.Read(u[:])
	u[6] = (u[6] & 0x0f) | 0x40
	u[8] = (u[8] & 0x3f) | 0x80
	return u
}

// pkScalar generates a primary key value. Integer-typed keys are sequential
// by row index rather than drawn from rng, matching auto-increment semantics
// and giving FK/self-reference scenarios a value ordering (parent_id < id)
// that holds across the whole table, not just at generation time. Other key
// types still need uniqueness, which the caller's unique tracker enforces on
// top of whatever genericScalar returns here.
func pkScalar(col *schema.Column, rng *rand.Rand, rowIndex int) (Value, error) {
	switch v := col.Type.(type) {
	case schema.IntegerType:
		return clampInteger(int64(rowIndex+1), v), nil
	case schema.UUIDType:
		return generateUUID(rng).String(), nil
	default:
		return genericScalar(col.Type, rng, rowIndex)
	}
}

// genericScalar is the fallback for Unknown-classified columns, driven
// purely by LogicalType.
func genericScalar(t schema.LogicalType, rng *rand.Rand, rowIndex int) (Value, error) {
	switch v := t.(type) {
	case schema.IntegerType:
		return clampInteger(rng.Int63n(1_000_000), v), nil
	case schema.DecimalType:
		return roundToScale(rng.Float64()*1000, v.Scale), nil
	case schema.FloatType:
		return rng.Float64() * 1000, nil
	case schema.TextType:
		s := sentence(rng, 3)
		if v.MaxLen != nil && len(s) > *v.MaxLen {
			s = s[:*v.MaxLen]
		}
		return s, nil
	case schema.ByteaType:
		b := make([]byte, 16)
		rng.Read(b)
		return b, nil
	case schema.BoolType:
		return rng.Float64() < 0.5, nil
	case schema.DateType:
		return randomTimestamp(rng, &schema.Column{}), nil
	case schema.TimeType:
		return fmt.Sprintf("%02d:%02d:%02d", rng.Intn(24), rng.Intn(60), rng.Intn(60)), nil
	case schema.TimestampType:
		return randomTimestamp(rng, &schema.Column{Type: v}), nil
	case schema.UUIDType:
		return generateUUID(rng).String(), nil
	case schema.JSONType:
		return "{}", nil
	case schema.EnumRefType:
		return "", nil // resolved by caller against schema.Enums
	default:
		return fmt.Sprintf("value-%d", rowIndex), nil
	}
}
