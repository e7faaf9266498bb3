package schema

// Predicate is the closed set of parseable check-constraint predicate
// shapes from spec.md §3: `col OP literal`, `col BETWEEN a AND b`,
// `col IN (...)`, `col IS NOT NULL`, and conjunctions/disjunctions thereof.
type Predicate interface {
	predicateKind()
}

type CompareOp string

const (
	OpLT CompareOp = "<"
	OpLE CompareOp = "<="
	OpGT CompareOp = ">"
	OpGE CompareOp = ">="
	OpEQ CompareOp = "="
	OpNE CompareOp = "!="
)

// Compare is `col OP literal`.
type Compare struct {
	Column  string
	Op      CompareOp
	Literal string
}

// Between is `col BETWEEN a AND b`.
type Between struct {
	Column string
	Low    string
	High   string
}

// In is `col IN (v1, v2, ...)`.
type In struct {
	Column string
	Values []string
}

// NotNull is `col IS NOT NULL`.
type NotNull struct {
	Column string
}

// And is a conjunction of predicates, all of which must hold.
type And struct {
	Terms []Predicate
}

// Or is a disjunction of predicates, at least one of which must hold.
type Or struct {
	Terms []Predicate
}

func (Compare) predicateKind() {}
func (Between) predicateKind() {}
func (In) predicateKind()      {}
func (NotNull) predicateKind() {}
func (And) predicateKind()     {}
func (Or) predicateKind()      {}

// ColumnKey identifies a column by its owning table, used as a map key by
// the classifier, the generator's correlation tracking, and the lock file.
type ColumnKey struct {
	Table  string
	Column string
}
