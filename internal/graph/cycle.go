package graph

import (
	"sort"

	"github.com/seedkit-dev/seedkit/internal/seedkiterr"
)

// DeferredEdge is a broken FK edge, resolved later by a DeferredUpdate
// plan step once both endpoint tables have been emitted.
type DeferredEdge struct {
	Edge Edge
}

// BreakCycles mirrors original_source/.../graph/cycle.rs's break_cycles:
// loop over SCCs of size > 1 (or single-node self-loops), repeatedly pick
// the best edge to break per the spec.md §4.1 priority order, remove it
// from the working graph, and recompute SCCs until none remain larger
// than one node with no self-loop.
func BreakCycles(g *Graph, breakAt []string) ([]DeferredEdge, error) {
	breakAtSet := map[string]bool{}
	for _, b := range breakAt {
		breakAtSet[b] = true
	}

	working := cloneGraph(g)
	var deferred []DeferredEdge

	for {
		sccs := working.SCCs()
		progressed := false

		for _, comp := range sccs {
			if len(comp) == 1 {
				node := comp[0]
				if working.hasSelfLoop(node) {
					edge := findSelfLoop(working, node)
					if !edge.Nullable && edge.FK.OnDelete != "SET NULL" && !breakAtSet[edge.QualifiedColumn()] {
						return nil, &seedkiterr.CycleUnbreakable{
							Component: comp,
							Edges:     []string{edge.QualifiedColumn()},
						}
					}
					working.removeEdge(edge)
					deferred = append(deferred, DeferredEdge{Edge: edge})
					progressed = true
				}
				continue
			}

			compSet := map[string]bool{}
			for _, n := range comp {
				compSet[n] = true
			}

			best, found := findBestEdgeToBreak(working, compSet, breakAtSet)
			if !found {
				return nil, &seedkiterr.CycleUnbreakable{
					Component: comp,
					Edges:     candidateColumns(working, compSet),
				}
			}
			working.removeEdge(best)
			deferred = append(deferred, DeferredEdge{Edge: best})
			progressed = true
		}

		if !progressed {
			break
		}
	}

	sort.Slice(deferred, func(i, j int) bool {
		return edgeSortKey(deferred[i].Edge) < edgeSortKey(deferred[j].Edge)
	})
	return deferred, nil
}

func edgeSortKey(e Edge) string {
	return e.Child + "\x00" + e.QualifiedColumn()
}

// findBestEdgeToBreak implements the exact priority order from spec.md
// §4.1: explicit config override, then nullable, then SET NULL on-delete,
// then lowest FK arity, then lexicographic (child_table, local_columns)
// tiebreak.
func findBestEdgeToBreak(g *Graph, compSet map[string]bool, breakAtSet map[string]bool) (Edge, bool) {
	var candidates []Edge
	for _, e := range g.Edges {
		if compSet[e.Child] && compSet[e.Parent] {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return Edge{}, false
	}

	for _, e := range candidates {
		if breakAtSet[e.QualifiedColumn()] {
			return e, true
		}
	}
	for _, e := range candidates {
		if e.Nullable {
			return e, true
		}
	}
	for _, e := range candidates {
		if e.FK.OnDelete == "SET NULL" {
			return e, true
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		ai, aj := len(candidates[i].FK.LocalColumns), len(candidates[j].FK.LocalColumns)
		if ai != aj {
			return ai < aj
		}
		return edgeSortKey(candidates[i]) < edgeSortKey(candidates[j])
	})

	best := candidates[0]
	if !best.Nullable && best.FK.OnDelete != "SET NULL" && !breakAtSet[best.QualifiedColumn()] {
		// no nullable/SET NULL/explicit candidate exists in this SCC:
		// breaking a non-nullable edge would leave FkOrphan rows, so the
		// planner refuses rather than silently producing orphaned FKs.
		return Edge{}, false
	}
	return best, true
}

func findSelfLoop(g *Graph, node string) Edge {
	for _, e := range g.outEdges(node) {
		if e.Parent == node {
			return e
		}
	}
	return Edge{}
}

func candidateColumns(g *Graph, compSet map[string]bool) []string {
	var cols []string
	for _, e := range g.Edges {
		if compSet[e.Child] && compSet[e.Parent] {
			cols = append(cols, e.QualifiedColumn())
		}
	}
	sort.Strings(cols)
	return cols
}

func cloneGraph(g *Graph) *Graph {
	ng := &Graph{
		Nodes: append([]string{}, g.Nodes...),
		Edges: append([]Edge{}, g.Edges...),
		adj:   map[string][]int{},
	}
	for _, n := range ng.Nodes {
		ng.adj[n] = nil
	}
	for i, e := range ng.Edges {
		ng.adj[e.Child] = append(ng.adj[e.Child], i)
	}
	return ng
}

// removeEdge drops the first edge matching child/parent/qualified column
// from the graph's edge list and rebuilds adjacency.
func (g *Graph) removeEdge(target Edge) {
	idx := -1
	for i, e := range g.Edges {
		if e.Child == target.Child && e.Parent == target.Parent && e.QualifiedColumn() == target.QualifiedColumn() {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	g.Edges = append(g.Edges[:idx], g.Edges[idx+1:]...)
	for n := range g.adj {
		g.adj[n] = nil
	}
	for i, e := range g.Edges {
		g.adj[e.Child] = append(g.adj[e.Child], i)
	}
}
