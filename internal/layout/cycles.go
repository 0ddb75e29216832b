package layout

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"hackverse-mindmap/internal/domain/mindmap"
)

// Cycles returns every strongly connected component with more than one node
// plus one single-node entry per self-loop. Members are listed in node
// insertion order and components are ordered by their first member. Edges
// with unknown endpoints are ignored.
func Cycles(nodes []mindmap.Node, edges []mindmap.Edge) [][]string {
	index := make(map[string]int64, len(nodes))
	g := simple.NewDirectedGraph()
	for i, n := range nodes {
		if _, dup := index[n.ID]; dup {
			continue
		}
		index[n.ID] = int64(i)
		g.AddNode(simple.Node(i))
	}

	loops := make(map[int64]bool)
	for _, e := range edges {
		s, ok := index[e.Source]
		if !ok {
			continue
		}
		t, ok := index[e.Target]
		if !ok {
			continue
		}
		// simple graphs reject self edges.
		if s == t {
			loops[s] = true
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(s), simple.Node(t)))
	}

	var comps [][]int64
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		members := make([]int64, len(scc))
		for i, n := range scc {
			members[i] = n.ID()
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		comps = append(comps, members)
	}
	for id := range loops {
		comps = append(comps, []int64{id})
	}
	sort.Slice(comps, func(i, j int) bool {
		if comps[i][0] != comps[j][0] {
			return comps[i][0] < comps[j][0]
		}
		return len(comps[i]) > len(comps[j])
	})

	out := make([][]string, len(comps))
	for i, c := range comps {
		out[i] = make([]string, len(c))
		for j, id := range c {
			out[i][j] = nodes[id].ID
		}
	}
	return out
}

// HasCycle reports whether the graph contains a cycle or a self-loop.
func HasCycle(nodes []mindmap.Node, edges []mindmap.Edge) bool {
	return len(Cycles(nodes, edges)) > 0
}
