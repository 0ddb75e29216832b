package layout

import (
	"fmt"
	"sort"

	"hackverse-mindmap/internal/domain/mindmap"
	apperrors "hackverse-mindmap/internal/errors"
)

// Layered is a hierarchical layout in four phases: cycle removal, longest
// path ranking, barycenter ordering and fixed-spacing placement.
type Layered struct {
	opts Options
}

// NewLayered creates a layered engine. Zero or negative sizes fall back to
// DefaultOptions.
func NewLayered(opts Options) *Layered {
	return &Layered{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (l *Layered) Options() Options {
	return l.opts
}

// dag is the indexed, cycle-free view of a graph used by every phase.
type dag struct {
	ids   []string
	index map[string]int
	succ  [][]int
	pred  [][]int
	kept  [][2]int
}

func buildDAG(nodes []mindmap.Node, edges []mindmap.Edge) (*dag, error) {
	d := &dag{
		ids:   make([]string, len(nodes)),
		index: make(map[string]int, len(nodes)),
		succ:  make([][]int, len(nodes)),
		pred:  make([][]int, len(nodes)),
	}
	for i, n := range nodes {
		if _, dup := d.index[n.ID]; dup {
			return nil, apperrors.NewMalformedGraphError(fmt.Sprintf("duplicate node id %q", n.ID))
		}
		d.ids[i] = n.ID
		d.index[n.ID] = i
	}

	out := make([][]int, len(nodes))
	for _, e := range edges {
		s, ok := d.index[e.Source]
		if !ok {
			return nil, apperrors.NewMalformedGraphError(fmt.Sprintf("edge %q references unknown source node %q", e.ID, e.Source))
		}
		t, ok := d.index[e.Target]
		if !ok {
			return nil, apperrors.NewMalformedGraphError(fmt.Sprintf("edge %q references unknown target node %q", e.ID, e.Target))
		}
		if s == t {
			continue
		}
		out[s] = append(out[s], t)
	}

	// Depth-first search in insertion order. An edge into a node still on
	// the stack closes a cycle and is left out of the rank constraints.
	const (
		unvisited = iota
		onStack
		done
	)
	state := make([]int, len(nodes))
	type frame struct{ node, next int }
	for root := range nodes {
		if state[root] != unvisited {
			continue
		}
		stack := []frame{{node: root}}
		state[root] = onStack
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(out[top.node]) {
				state[top.node] = done
				stack = stack[:len(stack)-1]
				continue
			}
			u, v := top.node, out[top.node][top.next]
			top.next++
			if state[v] == onStack {
				continue
			}
			d.kept = append(d.kept, [2]int{u, v})
			d.succ[u] = append(d.succ[u], v)
			d.pred[v] = append(d.pred[v], u)
			if state[v] == unvisited {
				state[v] = onStack
				stack = append(stack, frame{node: v})
			}
		}
	}
	return d, nil
}

// ranks assigns rank 0 to sources and max(pred)+1 to everything else.
func (d *dag) ranks() []int {
	n := len(d.ids)
	rank := make([]int, n)
	indeg := make([]int, n)
	for v := range d.pred {
		indeg[v] = len(d.pred[v])
	}
	queue := make([]int, 0, n)
	for v := 0; v < n; v++ {
		if indeg[v] == 0 {
			queue = append(queue, v)
		}
	}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range d.succ[u] {
			if rank[u]+1 > rank[v] {
				rank[v] = rank[u] + 1
			}
			indeg[v]--
			if indeg[v] == 0 {
				queue = append(queue, v)
			}
		}
	}
	return rank
}

// Layout implements Engine.
func (l *Layered) Layout(nodes []mindmap.Node, edges []mindmap.Edge, dir Direction) ([]mindmap.Node, error) {
	if len(nodes) == 0 {
		return []mindmap.Node{}, nil
	}
	if dir == "" {
		dir = TopBottom
	}
	if _, err := ParseDirection(string(dir)); err != nil {
		return nil, err
	}

	d, err := buildDAG(nodes, edges)
	if err != nil {
		return nil, err
	}
	rank := d.ranks()
	layers := l.order(d, rank)

	out := make([]mindmap.Node, len(nodes))
	copy(out, nodes)
	l.place(out, layers, dir)
	return out, nil
}

// Ranks returns the rank of every node after cycle removal.
func Ranks(nodes []mindmap.Node, edges []mindmap.Edge) (map[string]int, error) {
	d, err := buildDAG(nodes, edges)
	if err != nil {
		return nil, err
	}
	rank := d.ranks()
	out := make(map[string]int, len(rank))
	for i, r := range rank {
		out[d.ids[i]] = r
	}
	return out, nil
}

// order groups nodes into layers and reduces crossings with alternating
// barycenter sweeps, keeping the best ordering seen.
func (l *Layered) order(d *dag, rank []int) [][]int {
	maxRank := 0
	for _, r := range rank {
		if r > maxRank {
			maxRank = r
		}
	}
	layers := make([][]int, maxRank+1)
	for v, r := range rank {
		layers[r] = append(layers[r], v)
	}

	pos := make([]int, len(rank))
	reposition := func() {
		for _, layer := range layers {
			for i, v := range layer {
				pos[v] = i
			}
		}
	}
	reposition()

	best := cloneLayers(layers)
	bestCrossings := d.crossings(rank, pos)

	for sweep := 0; sweep < l.opts.Sweeps && bestCrossings > 0; sweep++ {
		if sweep%2 == 0 {
			for r := 1; r <= maxRank; r++ {
				sortByBarycenter(layers[r], d.pred, pos)
				for i, v := range layers[r] {
					pos[v] = i
				}
			}
		} else {
			for r := maxRank - 1; r >= 0; r-- {
				sortByBarycenter(layers[r], d.succ, pos)
				for i, v := range layers[r] {
					pos[v] = i
				}
			}
		}
		if c := d.crossings(rank, pos); c < bestCrossings {
			bestCrossings = c
			best = cloneLayers(layers)
		}
	}
	return best
}

func sortByBarycenter(layer []int, neighbours [][]int, pos []int) {
	bary := make(map[int]float64, len(layer))
	for _, v := range layer {
		adj := neighbours[v]
		if len(adj) == 0 {
			bary[v] = float64(pos[v])
			continue
		}
		sum := 0
		for _, u := range adj {
			sum += pos[u]
		}
		bary[v] = float64(sum) / float64(len(adj))
	}
	sort.SliceStable(layer, func(i, j int) bool {
		return bary[layer[i]] < bary[layer[j]]
	})
}

// crossings counts pairs of kept edges that span the same two ranks and
// swap order between them.
func (d *dag) crossings(rank, pos []int) int {
	count := 0
	for i := 0; i < len(d.kept); i++ {
		a := d.kept[i]
		for j := i + 1; j < len(d.kept); j++ {
			b := d.kept[j]
			if rank[a[0]] != rank[b[0]] || rank[a[1]] != rank[b[1]] {
				continue
			}
			if (pos[a[0]]-pos[b[0]])*(pos[a[1]]-pos[b[1]]) < 0 {
				count++
			}
		}
	}
	return count
}

func cloneLayers(layers [][]int) [][]int {
	out := make([][]int, len(layers))
	for i, layer := range layers {
		out[i] = append([]int(nil), layer...)
	}
	return out
}

// place writes top-left positions. Each rank is centred on the widest one.
func (l *Layered) place(out []mindmap.Node, layers [][]int, dir Direction) {
	widest := 0
	for _, layer := range layers {
		if len(layer) > widest {
			widest = len(layer)
		}
	}

	w, h := l.opts.NodeWidth, l.opts.NodeHeight
	rankStep, crossStep := h+l.opts.RankSep, w+l.opts.NodeSep
	if dir.Horizontal() {
		rankStep, crossStep = w+l.opts.RankSep, h+l.opts.NodeSep
	}
	last := len(layers) - 1

	for r, layer := range layers {
		offset := float64(widest-len(layer)) / 2
		if dir == BottomTop || dir == RightLeft {
			r = last - r
		}
		for i, v := range layer {
			// Centre of the node, then shifted to its top-left corner.
			along := float64(r)*rankStep + rankSize(dir, w, h)/2
			across := (float64(i)+offset)*crossStep + crossSize(dir, w, h)/2
			if dir.Horizontal() {
				out[v].Position = mindmap.Position{X: along - w/2, Y: across - h/2}
			} else {
				out[v].Position = mindmap.Position{X: across - w/2, Y: along - h/2}
			}
		}
	}
}

func rankSize(dir Direction, w, h float64) float64 {
	if dir.Horizontal() {
		return w
	}
	return h
}

func crossSize(dir Direction, w, h float64) float64 {
	if dir.Horizontal() {
		return h
	}
	return w
}
