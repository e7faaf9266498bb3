package lockfile

import (
	"github.com/seedkit-dev/seedkit/internal/classify"
	"github.com/seedkit-dev/seedkit/internal/schema"
)

// ToClassification reconstructs the classifier decision map stored in a
// lock file, for from-lock regeneration (spec.md §4.4): "the seed, row
// counts, classifier map, and cycle selections are taken from the lock;
// only generation re-runs."
func (lf *LockFile) ToClassification() map[schema.ColumnKey]classify.Classification {
	out := make(map[schema.ColumnKey]classify.Classification, len(lf.Classification))
	for _, e := range lf.Classification {
		out[schema.ColumnKey{Table: e.Table, Column: e.Column}] = classify.Classification{
			Kind:     classify.SemanticKind(e.Kind),
			FkTarget: e.FkTarget,
			EnumName: e.EnumName,
		}
	}
	return out
}

// ToRowCounts returns a copy of the stored per-table row counts.
func (lf *LockFile) ToRowCounts() map[string]int {
	out := make(map[string]int, len(lf.RowCounts))
	for k, v := range lf.RowCounts {
		out[k] = v
	}
	return out
}
