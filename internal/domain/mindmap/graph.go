package mindmap

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	apperrors "hackverse-mindmap/internal/errors"
)

// Graph is the aggregate holding the canonical node and edge collections.
// Insertion order is preserved: it drives list rendering and the layout
// engine's tie-breaks.
//
// A Graph is owned by a single canvas and is not safe for concurrent use.
type Graph struct {
	nodes     []Node
	edges     []Edge
	nodeIndex map[string]int
	edgeIndex map[string]int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[string]int),
	}
}

// FromContent builds a graph from a payload, rejecting malformed input.
func FromContent(content Content) (*Graph, error) {
	return build(content.Nodes, content.Edges)
}

// Load replaces the entire graph. The input is validated before anything is
// touched: on error the prior graph is left exactly as it was.
func (g *Graph) Load(nodes []Node, edges []Edge) error {
	next, err := build(nodes, edges)
	if err != nil {
		return err
	}
	*g = *next
	return nil
}

func build(nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		nodes:     make([]Node, 0, len(nodes)),
		edges:     make([]Edge, 0, len(edges)),
		nodeIndex: make(map[string]int, len(nodes)),
		edgeIndex: make(map[string]int, len(edges)),
	}

	for i, n := range nodes {
		if strings.TrimSpace(n.ID) == "" {
			return nil, apperrors.NewMalformedGraphError(fmt.Sprintf("node at index %d has no id", i))
		}
		if _, dup := g.nodeIndex[n.ID]; dup {
			return nil, apperrors.NewMalformedGraphError(fmt.Sprintf("duplicate node id %q", n.ID))
		}
		g.nodeIndex[n.ID] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}

	for i, e := range edges {
		if _, ok := g.nodeIndex[e.Source]; !ok {
			return nil, apperrors.NewMalformedGraphError(
				fmt.Sprintf("edge at index %d references unknown source node %q", i, e.Source))
		}
		if _, ok := g.nodeIndex[e.Target]; !ok {
			return nil, apperrors.NewMalformedGraphError(
				fmt.Sprintf("edge at index %d references unknown target node %q", i, e.Target))
		}
		if e.ID == "" {
			e.ID = g.freeEdgeID(EdgeID(e.Source, e.Target))
		}
		if _, dup := g.edgeIndex[e.ID]; dup {
			return nil, apperrors.NewMalformedGraphError(fmt.Sprintf("duplicate edge id %q", e.ID))
		}
		g.edgeIndex[e.ID] = len(g.edges)
		g.edges = append(g.edges, e)
	}

	return g, nil
}

// Nodes returns a copy of the nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns a copy of the edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Content returns the graph as a wire payload.
func (g *Graph) Content() Content {
	return Content{Nodes: g.Nodes(), Edges: g.Edges()}
}

// Clone returns an independent copy of the graph.
func (g *Graph) Clone() *Graph {
	c, _ := build(g.nodes, g.edges)
	return c
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// HasNode checks if a node exists in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodeIndex[id]
	return ok
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (Edge, bool) {
	i, ok := g.edgeIndex[id]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// FindEdge returns the first edge running from source to target.
func (g *Graph) FindEdge(source, target string) (Edge, bool) {
	for _, e := range g.edges {
		if e.Source == source && e.Target == target {
			return e, true
		}
	}
	return Edge{}, false
}

// Connect adds a directed edge from source to target. Connecting two nodes
// that are already connected in that direction is a no-op and reports false.
// Self-loops are accepted.
func (g *Graph) Connect(source, target string) (Edge, bool, error) {
	if !g.HasNode(source) {
		return Edge{}, false, apperrors.NewNotFoundError("source node " + source)
	}
	if !g.HasNode(target) {
		return Edge{}, false, apperrors.NewNotFoundError("target node " + target)
	}
	if existing, ok := g.FindEdge(source, target); ok {
		return existing, false, nil
	}

	edge := Edge{ID: g.freeEdgeID(EdgeID(source, target)), Source: source, Target: target}
	if err := g.ApplyChange(EdgeAdded(edge)); err != nil {
		return Edge{}, false, err
	}
	return edge, true, nil
}

// freeEdgeID returns base, or base with the first numeric suffix not yet
// taken by another edge.
func (g *Graph) freeEdgeID(base string) string {
	id := base
	for n := 2; ; n++ {
		if _, taken := g.edgeIndex[id]; !taken {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// AddNode appends a new node with a random id. An empty label becomes
// DefaultNodeLabel.
func (g *Graph) AddNode(label string, at Position) (Node, error) {
	if strings.TrimSpace(label) == "" {
		label = DefaultNodeLabel
	}
	node := Node{ID: uuid.New().String(), Data: NodeData{Label: label}, Position: at}
	if err := g.ApplyChange(NodeAdded(node)); err != nil {
		return Node{}, err
	}
	return node, nil
}

// RemoveNode removes a node and every edge touching it.
func (g *Graph) RemoveNode(id string) error {
	return g.ApplyChange(NodeRemoved(id))
}

// RemoveEdge removes a single edge.
func (g *Graph) RemoveEdge(id string) error {
	return g.ApplyChange(EdgeRemoved(id))
}

// MoveNode sets a node's position.
func (g *Graph) MoveNode(id string, to Position) error {
	return g.ApplyChange(NodeMoved(id, to))
}

// RenameNode changes a node's label.
func (g *Graph) RenameNode(id, label string) error {
	return g.ApplyChange(NodeRelabeled(id, label))
}

// SetPositions overwrites node positions from a laid-out node list. Nodes
// absent from the graph are ignored.
func (g *Graph) SetPositions(laidOut []Node) {
	for _, n := range laidOut {
		if i, ok := g.nodeIndex[n.ID]; ok {
			g.nodes[i].Position = n.Position
		}
	}
}

// Identity returns a signature of the node-id set and the edge set. Two
// graphs have equal identities exactly when they differ at most in
// positions and labels. Every id is length-prefixed so separators inside
// ids cannot make two different graphs collide.
func (g *Graph) Identity() string {
	nodeIDs := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		nodeIDs[i] = identityKey(n.ID)
	}
	sort.Strings(nodeIDs)

	edgeKeys := make([]string, len(g.edges))
	for i, e := range g.edges {
		edgeKeys[i] = identityKey(e.ID, e.Source, e.Target)
	}
	sort.Strings(edgeKeys)

	var b strings.Builder
	b.WriteString(strconv.Itoa(len(nodeIDs)))
	b.WriteByte('|')
	b.WriteString(strings.Join(nodeIDs, ""))
	b.WriteByte('|')
	b.WriteString(strings.Join(edgeKeys, ""))
	return b.String()
}

func identityKey(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

func (g *Graph) reindex() {
	g.nodeIndex = make(map[string]int, len(g.nodes))
	for i, n := range g.nodes {
		g.nodeIndex[n.ID] = i
	}
	g.edgeIndex = make(map[string]int, len(g.edges))
	for i, e := range g.edges {
		g.edgeIndex[e.ID] = i
	}
}
