package generate

import "github.com/seedkit-dev/seedkit/internal/schema"

// ColumnOverride implements config.columns."<table>.<col>".values/.weights
// from spec.md §6: an explicit value pool that short-circuits
// classification entirely for that column.
type ColumnOverride struct {
	Values  []string
	Weights []float64
}

// Params is the resolved configuration the generator needs, narrower than
// the full CLI/file config in internal/config — the boundary between "how
// the user configured the run" and "what the generator algorithm needs".
type Params struct {
	Seed            uint64
	RowsDefault     int
	RowsPerTable    map[string]int
	Overrides       map[schema.ColumnKey]ColumnOverride
	NullProbability float64 // default 0.05, per spec.md §4.3
	BreakCycleAt    []string
}

func DefaultParams(seed uint64) Params {
	return Params{
		Seed:            seed,
		RowsDefault:     10,
		RowsPerTable:    map[string]int{},
		Overrides:       map[schema.ColumnKey]ColumnOverride{},
		NullProbability: 0.05,
	}
}

func (p Params) RowCount(table string) int {
	if n, ok := p.RowsPerTable[table]; ok {
		return n
	}
	return p.RowsDefault
}
