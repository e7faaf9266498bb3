package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/seedkit-dev/seedkit/internal/schema"
)

// StepKind distinguishes the two PlanStep variants from spec.md §3.
type StepKind int

const (
	EmitStep StepKind = iota
	DeferredUpdateStep
)

// PlanStep is one entry of the InsertionPlan.
type PlanStep struct {
	Kind     StepKind
	Table    string
	RowCount int // only meaningful for EmitStep; resolved by the generator's config, not the planner

	// DeferredUpdateStep fields
	Columns          []string
	SelectorStrategy string // "self_ref_lt_index" | "sample_parent"
	RefTable         string
}

// InsertionPlan is the totally ordered sequence of Emit / DeferredUpdate
// steps produced by Plan.
type InsertionPlan struct {
	Steps []PlanStep
}

// Plan implements spec.md §4.1's contract: plan(schema, config) ->
// InsertionPlan. Deterministic in schema and config: builds the graph,
// breaks cycles by priority, topologically sorts the acyclified graph with
// lexicographic tie-breaking, then appends deferred-update steps after
// both endpoints of each broken edge have been emitted.
func Plan(s *schema.Schema, breakAt []string) (*InsertionPlan, error) {
	g := Build(s)

	deferred, err := BreakCycles(g, breakAt)
	if err != nil {
		return nil, err
	}

	acyclic := cloneGraph(g)
	for _, d := range deferred {
		acyclic.removeEdge(d.Edge)
	}

	order, err := topoSort(acyclic)
	if err != nil {
		return nil, err
	}

	plan := &InsertionPlan{}
	position := map[string]int{}
	for i, t := range order {
		position[t] = i
		plan.Steps = append(plan.Steps, PlanStep{Kind: EmitStep, Table: t})
	}

	// Deferred updates are appended after all Emit steps, grouped by
	// (table, ref_table) so that a single DeferredUpdateStep covers every
	// broken column pointing at the same parent from the same child.
	type key struct{ table, ref string }
	grouped := map[key]*PlanStep{}
	var order2 []key

	for _, d := range deferred {
		k := key{table: d.Edge.Child, ref: d.Edge.Parent}
		step, ok := grouped[k]
		if !ok {
			strategy := "sample_parent"
			if d.Edge.Child == d.Edge.Parent {
				strategy = "self_ref_lt_index"
			}
			step = &PlanStep{
				Kind:             DeferredUpdateStep,
				Table:            d.Edge.Child,
				RefTable:         d.Edge.Parent,
				SelectorStrategy: strategy,
			}
			grouped[k] = step
			order2 = append(order2, k)
		}
		step.Columns = append(step.Columns, d.Edge.FK.LocalColumns...)
	}

	sort.Slice(order2, func(i, j int) bool {
		if order2[i].table != order2[j].table {
			return order2[i].table < order2[j].table
		}
		return order2[i].ref < order2[j].ref
	})

	for _, k := range order2 {
		plan.Steps = append(plan.Steps, *grouped[k])
	}

	return plan, nil
}

// topoSort produces a topological order of the acyclic graph, breaking
// ties lexicographically for stability (spec.md §4.1).
func topoSort(g *Graph) ([]string, error) {
	inDegree := map[string]int{}
	for _, n := range g.Nodes {
		inDegree[n] = 0
	}
	// edge child -> parent means child depends on parent, i.e. parent must
	// be emitted first: treat parent->child as the topological dependency.
	depOf := map[string][]string{} // parent -> children waiting on it
	for _, e := range g.Edges {
		if e.Child == e.Parent {
			continue
		}
		inDegree[e.Child]++
		depOf[e.Parent] = append(depOf[e.Parent], e.Child)
	}

	var ready []string
	for _, n := range g.Nodes {
		if inDegree[n] == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		sort.Strings(ready)
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		children := append([]string{}, depOf[n]...)
		sort.Strings(children)
		for _, c := range children {
			inDegree[c]--
			if inDegree[c] == 0 {
				ready = append(ready, c)
			}
		}
	}

	if len(order) != len(g.Nodes) {
		return nil, fmt.Errorf("topological sort incomplete: %d of %d nodes ordered (residual cycle after break)", len(order), len(g.Nodes))
	}
	return order, nil
}

// Visualize renders the acyclified graph plus deferred edges as Graphviz
// DOT, deferred edges dashed. Grounded on
// original_source/crates/seedkit-core/src/graph/visualize.rs, dropped by
// the spec.md distillation but kept here behind `seedkit graph --dot`.
func Visualize(s *schema.Schema, plan *InsertionPlan, breakAt []string) string {
	g := Build(s)
	deferred, _ := BreakCycles(g, breakAt)
	deferredSet := map[string]bool{}
	for _, d := range deferred {
		deferredSet[d.Edge.Child+"->"+d.Edge.Parent] = true
	}

	var b strings.Builder
	b.WriteString("digraph seedkit {\n")
	b.WriteString("  rankdir=LR;\n")
	for _, e := range g.Edges {
		style := "solid"
		if deferredSet[e.Child+"->"+e.Parent] {
			style = "dashed"
		}
		fmt.Fprintf(&b, "  %q -> %q [label=%q, style=%s];\n", e.Child, e.Parent, e.QualifiedColumn(), style)
	}
	b.WriteString("}\n")
	return b.String()
}
