// Package generate implements spec.md §4.3: the deterministic row
// generator that walks the insertion plan, synthesizes rows honoring
// declared constraints, and emits batches to the output sink contract.
package generate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/seedkit-dev/seedkit/internal/classify"
	"github.com/seedkit-dev/seedkit/internal/graph"
	"github.com/seedkit-dev/seedkit/internal/schema"
)

// Batch is a TableBatch (rows to insert) or an UpdateBatch (deferred
// column assignments), per spec.md §4.3's contract.
type Batch struct {
	Kind  BatchKind
	Table string

	// TableBatch fields
	Columns []string
	Rows    [][]Value

	// UpdateBatch fields: Key/KeyColumns identify the row by its PK tuple,
	// Assignments maps column -> new value.
	Key         []Value
	KeyColumns  []string
	Assignments map[string]Value
}

type BatchKind int

const (
	TableBatch BatchKind = iota
	UpdateBatch
)

// Engine runs one generation pass over a schema/plan/classification.
type Engine struct {
	Schema         *schema.Schema
	Plan           *graph.InsertionPlan
	Classification map[schema.ColumnKey]classify.Classification
	Params         Params

	keyTables map[string]*GeneratedKeyTable
	mu        sync.RWMutex
}

func NewEngine(s *schema.Schema, plan *graph.InsertionPlan, classification map[schema.ColumnKey]classify.Classification, params Params) *Engine {
	return &Engine{
		Schema:         s,
		Plan:           plan,
		Classification: classification,
		Params:         params,
		keyTables:      map[string]*GeneratedKeyTable{},
	}
}

// Generate implements the spec.md §4.3 contract: produces a TableBatch per
// Emit step and an UpdateBatch per DeferredUpdate step, over the returned
// channel; errors are sent on the error channel and generation stops.
// Independent tables within the same dependency layer run on separate
// goroutines, each owning its own derived sub-PRNG (spec.md §5), but
// batches are always sent to the output channel in deterministic
// (table-name-sorted) order within a layer so that two runs with identical
// (schema, config, seed) produce byte-identical sink output regardless of
// goroutine scheduling.
func (e *Engine) Generate(ctx context.Context) (<-chan Batch, <-chan error) {
	out := make(chan Batch)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		layers := e.emitLayers()
		for _, layer := range layers {
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			default:
			}

			results := make(map[string]*tableResult, len(layer))
			var wg sync.WaitGroup
			var mu sync.Mutex
			var firstErr error

			for _, table := range layer {
				wg.Add(1)
				go func(table string) {
					defer wg.Done()
					res, err := e.generateTable(table)
					mu.Lock()
					defer mu.Unlock()
					if err != nil && firstErr == nil {
						firstErr = err
						return
					}
					results[table] = res
				}(table)
			}
			wg.Wait()

			if firstErr != nil {
				errs <- firstErr
				return
			}

			for _, table := range layer {
				res := results[table]
				e.mu.Lock()
				e.keyTables[table] = res.keys
				e.mu.Unlock()

				select {
				case out <- Batch{Kind: TableBatch, Table: table, Columns: res.columns, Rows: res.rows}:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
		}

		for _, step := range e.Plan.Steps {
			if step.Kind != graph.DeferredUpdateStep {
				continue
			}
			updates, err := e.generateDeferredUpdates(step)
			if err != nil {
				errs <- err
				return
			}
			for _, u := range updates {
				select {
				case out <- u:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
		}
	}()

	return out, errs
}

type tableResult struct {
	columns []string
	rows    [][]Value
	keys    *GeneratedKeyTable
}

// emitLayers groups the plan's Emit steps into dependency layers: layer 0
// has no (non-deferred) FK dependency on any other table in the plan,
// layer n depends only on tables in layers < n. Tables within a layer may
// be generated concurrently.
func (e *Engine) emitLayers() [][]string {
	var emitTables []string
	for _, step := range e.Plan.Steps {
		if step.Kind == graph.EmitStep {
			emitTables = append(emitTables, step.Table)
		}
	}

	deferredCols := e.deferredColumnSet()
	position := map[string]int{}
	for i, t := range emitTables {
		position[t] = i
	}

	layerOf := map[string]int{}
	for _, t := range emitTables {
		layerOf[t] = 0
	}

	changed := true
	for changed {
		changed = false
		for _, t := range emitTables {
			table := e.Schema.Tables[t]
			for i := range table.ForeignKeys {
				fk := &table.ForeignKeys[i]
				if deferredCols[t+"."+fk.Name] {
					continue
				}
				if fk.RefTable == t {
					continue
				}
				if parentLayer, ok := layerOf[fk.RefTable]; ok {
					if parentLayer+1 > layerOf[t] {
						layerOf[t] = parentLayer + 1
						changed = true
					}
				}
			}
		}
	}

	maxLayer := 0
	for _, l := range layerOf {
		if l > maxLayer {
			maxLayer = l
		}
	}

	layers := make([][]string, maxLayer+1)
	for _, t := range emitTables {
		layers[layerOf[t]] = append(layers[layerOf[t]], t)
	}
	for i := range layers {
		sort.Strings(layers[i])
	}
	return layers
}

func (e *Engine) deferredColumnSet() map[string]bool {
	set := map[string]bool{}
	for _, step := range e.Plan.Steps {
		if step.Kind != graph.DeferredUpdateStep {
			continue
		}
		table := e.Schema.Tables[step.Table]
		for i := range table.ForeignKeys {
			fk := &table.ForeignKeys[i]
			if fk.RefTable != step.RefTable {
				continue
			}
			for _, lc := range fk.LocalColumns {
				if containsStr(step.Columns, lc) {
					set[step.Table+"."+fk.Name] = true
				}
			}
		}
	}
	return set
}

func containsStr(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func (e *Engine) getKeyTable(table string) *GeneratedKeyTable {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.keyTables[table]
}

func (e *Engine) generateTable(tableName string) (*tableResult, error) {
	table := e.Schema.Tables[tableName]
	rowCount := e.Params.RowCount(tableName)

	columns := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		columns[i] = c.Name
	}

	keys := NewGeneratedKeyTable(tableName)
	rows := make([][]Value, 0, rowCount)
	trackers := map[string]*UniqueTracker{}
	tracker := NewUniqueTracker(tableName)

	deferredFKCols := e.deferredLocalColumnsFor(tableName)

	for i := 0; i < rowCount; i++ {
		row, err := e.generateRow(table, i, deferredFKCols, tracker)
		if err != nil {
			return nil, err
		}

		rowVals := make([]Value, len(columns))
		for ci, c := range columns {
			rowVals[ci] = row[c]
		}
		rows = append(rows, rowVals)

		pk := make([]Value, len(table.PrimaryKey))
		for pi, pc := range table.PrimaryKey {
			pk[pi] = row[pc]
		}
		keys.Append(pk)
	}

	_ = trackers
	return &tableResult{columns: columns, rows: rows, keys: keys}, nil
}

func (e *Engine) deferredLocalColumnsFor(table string) map[string]bool {
	set := map[string]bool{}
	for _, step := range e.Plan.Steps {
		if step.Kind != graph.DeferredUpdateStep || step.Table != table {
			continue
		}
		for _, c := range step.Columns {
			set[c] = true
		}
	}
	return set
}

func (e *Engine) generateDeferredUpdates(step graph.PlanStep) ([]Batch, error) {
	childKeys := e.getKeyTable(step.Table)
	parentKeys := e.getKeyTable(step.RefTable)
	if childKeys == nil {
		return nil, fmt.Errorf("deferred update on %q: no generated keys (table never emitted)", step.Table)
	}

	table := e.Schema.Tables[step.Table]
	rng := ColumnRand(e.Params.Seed, step.Table, "$deferred$"+step.RefTable)
	nullProb := e.Params.NullProbability
	nullable := fkColumnsNullable(table, step.Columns)

	var batches []Batch
	for i := 0; i < childKeys.Len(); i++ {
		var parentPK []Value
		if step.SelectorStrategy == "self_ref_lt_index" {
			if i == 0 {
				parentPK = nil
			} else {
				parentPK = childKeys.SampleBefore(rng, i)
			}
		} else {
			if parentKeys != nil && parentKeys.Len() > 0 {
				parentPK = parentKeys.Sample(rng)
			}
		}

		if parentPK == nil {
			if !nullable {
				continue // nothing valid to assign; leave as-is (already NULL from emit)
			}
			continue
		}
		if nullable && rng.Float64() < nullProb {
			continue
		}

		assignments := map[string]Value{}
		for ci, col := range step.Columns {
			if ci < len(parentPK) {
				assignments[col] = parentPK[ci]
			}
		}

		batches = append(batches, Batch{
			Kind:        UpdateBatch,
			Table:       step.Table,
			Key:         childKeys.Keys[i],
			KeyColumns:  table.PrimaryKey,
			Assignments: assignments,
		})
	}
	return batches, nil
}

func fkColumnsNullable(t *schema.Table, cols []string) bool {
	for _, c := range cols {
		col := t.ColumnByName(c)
		if col == nil || !col.Nullable {
			return false
		}
	}
	return true
}
