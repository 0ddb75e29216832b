// Package mindmap implements the mind-map Graph Model: typed nodes, directed
// edges and the structural edits applied to them by the canvas and by
// generation.
//
// The model owns every node attribute except Position, which belongs to the
// layout engine (and to manual drags between two layouts). Cycles and
// self-loops are tolerated here; only dangling or duplicate ids are rejected.
package mindmap

import "fmt"

// DefaultNodeLabel is the label given to nodes added from the canvas.
const DefaultNodeLabel = "New Node"

// Position is a point in canvas space. For laid-out nodes it is the
// top-left corner of the node's bounding box.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData carries the user- or AI-supplied payload of a node.
type NodeData struct {
	Label string `json:"label"`
}

// Node is a mind-map node in its wire shape.
type Node struct {
	ID       string   `json:"id" validate:"required"`
	Data     NodeData `json:"data"`
	Position Position `json:"position"`
}

// Label is a shorthand for n.Data.Label.
func (n Node) Label() string {
	return n.Data.Label
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// IsSelfLoop reports whether the edge starts and ends on the same node.
func (e Edge) IsSelfLoop() bool {
	return e.Source == e.Target
}

// EdgeID returns the identifier used for an edge created by connecting
// source to target.
func EdgeID(source, target string) string {
	return fmt.Sprintf("e%s-%s", source, target)
}

// Content is the persisted and generated payload of a mind-map resource.
type Content struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Clone returns a deep copy of c.
func (c Content) Clone() Content {
	out := Content{
		Nodes: make([]Node, len(c.Nodes)),
		Edges: make([]Edge, len(c.Edges)),
	}
	copy(out.Nodes, c.Nodes)
	copy(out.Edges, c.Edges)
	return out
}

// IsEmpty reports whether the content has no nodes.
func (c Content) IsEmpty() bool {
	return len(c.Nodes) == 0
}
