package generate

// GeneratedKeyTable is the per-table, in-memory record of primary-key
// tuples already emitted, keyed by row index, per spec.md §3. Owned
// exclusively by the table's own generator goroutine while it runs, then
// handed read-only to dependents once generation of that table completes
// — the happens-before relation spec.md §5 describes, enforced by the
// plan's emit order rather than a lock.
type GeneratedKeyTable struct {
	Table string
	Keys  [][]Value // Keys[i] is the PK tuple of row i
}

func NewGeneratedKeyTable(table string) *GeneratedKeyTable {
	return &GeneratedKeyTable{Table: table}
}

func (k *GeneratedKeyTable) Append(pk []Value) {
	k.Keys = append(k.Keys, pk)
}

func (k *GeneratedKeyTable) Len() int {
	return len(k.Keys)
}

// Sample returns a uniformly random row's PK tuple.
func (k *GeneratedKeyTable) Sample(rng interface{ Intn(int) int }) []Value {
	if len(k.Keys) == 0 {
		return nil
	}
	return k.Keys[rng.Intn(len(k.Keys))]
}

// SampleBefore returns a uniformly random PK tuple among rows with index
// strictly less than before, for self-referential deferred updates
// (spec.md §4.3's "sampling from indices < i"). Relies on sequential
// integer PKs (pkScalar) so that index order and PK value order coincide —
// the caller needs parent_id < id by value, not just by emission order.
func (k *GeneratedKeyTable) SampleBefore(rng interface{ Intn(int) int }, before int) []Value {
	if before <= 0 {
		return nil
	}
	return k.Keys[rng.Intn(before)]
}
