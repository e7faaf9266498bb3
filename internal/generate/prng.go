package generate

import (
	"hash/fnv"
	"math/rand"
)

// deriveSeed hashes the root seed together with the given key parts using
// FNV-1a, producing an independent 64-bit seed per stream. Grounded on
// spec.md §4.3's "per-table sub-PRNGs are derived by hashing (seed,
// table_name)" and the teacher's DataGenerator, which already wraps a
// single *rand.Rand — here generalized to one derived stream per table
// and per column so that reordering independent columns never perturbs
// an unrelated stream, and so independent tables can run on separate
// goroutines without coordination.
func deriveSeed(rootSeed uint64, parts ...string) uint64 {
	h := fnv.New64a()
	writeUint64(h, rootSeed)
	for _, p := range parts {
		h.Write([]byte{0}) // separator so ("ab","c") != ("a","bc")
		h.Write([]byte(p))
	}
	return h.Sum64()
}

func writeUint64(h interface{ Write([]byte) (int, error) }, v uint64) {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	h.Write(buf[:])
}

// TableRand returns the sub-PRNG for an entire table, for decisions that
// aren't specific to one column. Row counts do not draw from it: they are
// resolved by Params.RowCount.
func TableRand(rootSeed uint64, table string) *rand.Rand {
	return rand.New(rand.NewSource(int64(deriveSeed(rootSeed, table))))
}

// ColumnRand returns the sub-PRNG for one column of one table.
func ColumnRand(rootSeed uint64, table, column string) *rand.Rand {
	return rand.New(rand.NewSource(int64(deriveSeed(rootSeed, table, column))))
}

// GroupRand returns the sub-PRNG for a correlated group, keyed by the
// group's canonical name (e.g. "person", "location") so that which
// columns happen to belong to the group doesn't change the stream.
func GroupRand(rootSeed uint64, table, group string) *rand.Rand {
	return rand.New(rand.NewSource(int64(deriveSeed(rootSeed, table, "$group$"+group))))
}
