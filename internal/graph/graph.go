// Package graph builds the table dependency graph from foreign keys,
// detects and breaks cycles, and produces the InsertionPlan the generator
// walks. Grounded on original_source/crates/seedkit-core/src/graph/{dag,cycle,topo,visualize}.rs
// and the teacher's internal/seeder/graph.go (plain DFS, no cycle handling),
// generalized here to Tarjan SCC + priority-ordered cycle breaking.
package graph

import (
	"sort"

	"github.com/seedkit-dev/seedkit/internal/schema"
)

// Edge is one FK-derived dependency: Child depends on Parent.
type Edge struct {
	Child      string
	Parent     string
	FK         *schema.ForeignKey
	Nullable   bool
}

// QualifiedColumn renders "table.column" for the edge's first local column,
// the unit config.graph.break_cycle_at names edges by.
func (e Edge) QualifiedColumn() string {
	if len(e.FK.LocalColumns) == 0 {
		return e.Child
	}
	return e.Child + "." + e.FK.LocalColumns[0]
}

// Graph is the directed multigraph over table names; edges are stored as a
// flat slice plus an adjacency index, per spec.md §9's "stable integer ids,
// adjacency as index lists" design note.
type Graph struct {
	Nodes []string
	Edges []Edge
	adj   map[string][]int // node -> edge indices where Child == node
}

// Build constructs the dependency graph: one edge per FK, child -> parent.
func Build(s *schema.Schema) *Graph {
	g := &Graph{adj: map[string][]int{}}
	for _, name := range s.TableOrder {
		g.Nodes = append(g.Nodes, name)
	}
	for _, t := range s.SortedTables() {
		for i := range t.ForeignKeys {
			fk := &t.ForeignKeys[i]
			e := Edge{
				Child:    t.Name,
				Parent:   fk.RefTable,
				FK:       fk,
				Nullable: fk.Nullable(t),
			}
			idx := len(g.Edges)
			g.Edges = append(g.Edges, e)
			g.adj[t.Name] = append(g.adj[t.Name], idx)
		}
	}
	return g
}

func (g *Graph) outEdges(node string) []Edge {
	idxs := g.adj[node]
	out := make([]Edge, len(idxs))
	for i, idx := range idxs {
		out[i] = g.Edges[idx]
	}
	return out
}

// SCCs runs Tarjan's strongly connected components algorithm and returns
// components in reverse-topological emission order (as Tarjan naturally
// produces), each as a sorted slice of table names for determinism.
func (g *Graph) SCCs() [][]string {
	t := &tarjan{
		graph:   g,
		index:   map[string]int{},
		low:     map[string]int{},
		onStack: map[string]bool{},
	}
	sortedNodes := append([]string{}, g.Nodes...)
	sort.Strings(sortedNodes)
	for _, n := range sortedNodes {
		if _, visited := t.index[n]; !visited {
			t.strongConnect(n)
		}
	}
	for _, comp := range t.result {
		sort.Strings(comp)
	}
	return t.result
}

type tarjan struct {
	graph   *Graph
	counter int
	index   map[string]int
	low     map[string]int
	onStack map[string]bool
	stack   []string
	result  [][]string
}

func (t *tarjan) strongConnect(v string) {
	t.index[v] = t.counter
	t.low[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	neighbors := make([]string, 0)
	for _, e := range t.graph.outEdges(v) {
		neighbors = append(neighbors, e.Parent)
	}
	sort.Strings(neighbors)

	for _, w := range neighbors {
		if _, visited := t.index[w]; !visited {
			t.strongConnect(w)
			if t.low[w] < t.low[v] {
				t.low[v] = t.low[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.low[v] {
				t.low[v] = t.index[w]
			}
		}
	}

	if t.low[v] == t.index[v] {
		var comp []string
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		t.result = append(t.result, comp)
	}
}

// hasSelfLoop reports whether node has an edge to itself.
func (g *Graph) hasSelfLoop(node string) bool {
	for _, e := range g.outEdges(node) {
		if e.Parent == node {
			return true
		}
	}
	return false
}
