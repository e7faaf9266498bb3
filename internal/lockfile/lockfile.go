// Package lockfile implements spec.md §4.4: serializing a successful
// run's schema fingerprint, seed, row counts, classifier decisions, and
// cycle-breaking choices, plus drift detection against a live schema.
package lockfile

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/oklog/ulid/v2"

	"github.com/seedkit-dev/seedkit/internal/classify"
	"github.com/seedkit-dev/seedkit/internal/schema"
	"github.com/seedkit-dev/seedkit/internal/seedkiterr"
)

// FormatVersion is bumped whenever the lock file's JSON shape changes in a
// way older seedkit binaries can't read.
const FormatVersion = 1

// DefaultFilename is the conventional lock file name, per spec.md §6.
const DefaultFilename = "seedkit.lock"

// LockFile is the JSON artifact written after a successful generate run.
type LockFile struct {
	FormatVersion int    `json:"format_version"`
	RunID         string `json:"run_id"` // ULID, informational only — never consulted by Check
	Fingerprint   string `json:"fingerprint"`
	Seed          uint64 `json:"seed"`
	RowCounts     map[string]int             `json:"row_counts"`
	Classification []ClassificationEntry     `json:"classification"`
	CycleBreaks   []string                   `json:"cycle_breaks"` // qualified columns, e.g. "employees.manager_id"
	OracleCache   []OracleCacheEntry         `json:"oracle_cache"`
	Config        map[string]interface{}    `json:"config"`
}

type ClassificationEntry struct {
	Table    string `json:"table"`
	Column   string `json:"column"`
	Kind     string `json:"kind"`
	FkTarget string `json:"fk_target,omitempty"`
	EnumName string `json:"enum_name,omitempty"`
}

type OracleCacheEntry struct {
	Table  string `json:"table"`
	Column string `json:"column"`
	Kind   string `json:"kind"`
}

// Build assembles a LockFile from a completed run's inputs.
func Build(s *schema.Schema, seed uint64, rowCounts map[string]int, classification map[schema.ColumnKey]classify.Classification, cycleBreaks []string, oracleCache *classify.OracleCache, config map[string]interface{}) *LockFile {
	lf := &LockFile{
		FormatVersion: FormatVersion,
		RunID:         ulid.Make().String(),
		Fingerprint:   s.Fingerprint,
		Seed:          seed,
		RowCounts:     rowCounts,
		CycleBreaks:   append([]string{}, cycleBreaks...),
		Config:        config,
	}
	sort.Strings(lf.CycleBreaks)

	keys := make([]schema.ColumnKey, 0, len(classification))
	for k := range classification {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Table != keys[j].Table {
			return keys[i].Table < keys[j].Table
		}
		return keys[i].Column < keys[j].Column
	})
	for _, k := range keys {
		c := classification[k]
		lf.Classification = append(lf.Classification, ClassificationEntry{
			Table: k.Table, Column: k.Column, Kind: string(c.Kind),
			FkTarget: c.FkTarget, EnumName: c.EnumName,
		})
	}

	if oracleCache != nil {
		entryKeys := make([]schema.ColumnKey, 0, len(oracleCache.Entries))
		for k := range oracleCache.Entries {
			entryKeys = append(entryKeys, k)
		}
		sort.Slice(entryKeys, func(i, j int) bool {
			if entryKeys[i].Table != entryKeys[j].Table {
				return entryKeys[i].Table < entryKeys[j].Table
			}
			return entryKeys[i].Column < entryKeys[j].Column
		})
		for _, k := range entryKeys {
			lf.OracleCache = append(lf.OracleCache, OracleCacheEntry{
				Table: k.Table, Column: k.Column, Kind: string(oracleCache.Entries[k]),
			})
		}
	}

	return lf
}

// Write serializes the lock file as indented, sorted-key JSON (Go's
// encoding/json already sorts map keys on marshal) to path.
func Write(path string, lf *LockFile) error {
	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal lock file: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write lock file %s: %w", path, err)
	}
	return nil
}

// Read deserializes a lock file from path.
func Read(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lock file %s: %w", path, err)
	}
	var lf LockFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("unmarshal lock file %s: %w", path, err)
	}
	return &lf, nil
}

// DriftReport is the structured diff spec.md §4.4's Check returns.
type DriftReport struct {
	Additions []string // tables present now but not in the lock
	Removals  []string // tables present in the lock but not now
	Changes   []string // "table.column" for live columns of a locked table that the lock does not list
}

func (d DriftReport) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Removals) == 0 && len(d.Changes) == 0
}

// Check implements spec.md §4.4's drift contract: computes the live
// fingerprint and, if it differs from the lock's, diffs the live schema
// against the lock's classification entries to build a structured report:
// added and removed tables, and columns added to a locked table. The lock
// holds no column types, so a changed column type, nullability, default
// or constraint, or a column dropped from a table, is not listed; such a
// drift yields a *seedkiterr.LockDrift with empty lists. Returns nil
// (NoDrift) or a *seedkiterr.LockDrift.
func Check(live *schema.Schema, lf *LockFile) error {
	fp := live.ComputeFingerprint()
	if fp == lf.Fingerprint {
		return nil
	}

	report := diffSchemaAgainstLock(live, lf)
	return &seedkiterr.LockDrift{
		Additions: report.Additions,
		Removals:  report.Removals,
		Changes:   report.Changes,
	}
}

func diffSchemaAgainstLock(live *schema.Schema, lf *LockFile) DriftReport {
	lockedTables := map[string]bool{}
	for _, c := range lf.Classification {
		lockedTables[c.Table] = true
	}
	liveTables := map[string]bool{}
	for name := range live.Tables {
		liveTables[name] = true
	}

	var report DriftReport
	for t := range liveTables {
		if !lockedTables[t] {
			report.Additions = append(report.Additions, t)
		}
	}
	for t := range lockedTables {
		if !liveTables[t] {
			report.Removals = append(report.Removals, t)
		}
	}

	lockedCols := map[schema.ColumnKey]bool{}
	for _, c := range lf.Classification {
		lockedCols[schema.ColumnKey{Table: c.Table, Column: c.Column}] = true
	}
	for _, t := range live.SortedTables() {
		if !lockedTables[t.Name] {
			continue
		}
		for _, c := range t.Columns {
			key := schema.ColumnKey{Table: t.Name, Column: c.Name}
			if !lockedCols[key] {
				report.Changes = append(report.Changes, t.Name+"."+c.Name)
			}
		}
	}

	sort.Strings(report.Additions)
	sort.Strings(report.Removals)
	sort.Strings(report.Changes)
	return report
}
