package mindmap

import (
	"fmt"

	apperrors "hackverse-mindmap/internal/errors"
)

// ChangeType identifies the kind of edit carried by a Change.
type ChangeType string

const (
	ChangeNodeMoved     ChangeType = "node_moved"
	ChangeNodeAdded     ChangeType = "node_added"
	ChangeNodeRemoved   ChangeType = "node_removed"
	ChangeNodeRelabeled ChangeType = "node_relabeled"
	ChangeEdgeAdded     ChangeType = "edge_added"
	ChangeEdgeRemoved   ChangeType = "edge_removed"
)

// Change is a single edit applied to a Graph. Which fields are read depends
// on Type: Node for additions, Edge for edge additions, ID for everything
// else.
type Change struct {
	Type     ChangeType
	Node     Node
	Edge     Edge
	ID       string
	Position Position
	Label    string
}

// Structural reports whether applying the change alters the identity set of
// the graph.
func (c Change) Structural() bool {
	switch c.Type {
	case ChangeNodeAdded, ChangeNodeRemoved, ChangeEdgeAdded, ChangeEdgeRemoved:
		return true
	default:
		return false
	}
}

func NodeMoved(id string, to Position) Change {
	return Change{Type: ChangeNodeMoved, ID: id, Position: to}
}

func NodeAdded(n Node) Change {
	return Change{Type: ChangeNodeAdded, Node: n}
}

func NodeRemoved(id string) Change {
	return Change{Type: ChangeNodeRemoved, ID: id}
}

func NodeRelabeled(id, label string) Change {
	return Change{Type: ChangeNodeRelabeled, ID: id, Label: label}
}

func EdgeAdded(e Edge) Change {
	return Change{Type: ChangeEdgeAdded, Edge: e}
}

func EdgeRemoved(id string) Change {
	return Change{Type: ChangeEdgeRemoved, ID: id}
}

// ApplyChange applies a single edit. Failed changes leave the graph untouched.
func (g *Graph) ApplyChange(c Change) error {
	switch c.Type {
	case ChangeNodeMoved:
		i, ok := g.nodeIndex[c.ID]
		if !ok {
			return apperrors.NewNotFoundError("node " + c.ID)
		}
		g.nodes[i].Position = c.Position

	case ChangeNodeRelabeled:
		i, ok := g.nodeIndex[c.ID]
		if !ok {
			return apperrors.NewNotFoundError("node " + c.ID)
		}
		g.nodes[i].Data.Label = c.Label

	case ChangeNodeAdded:
		if c.Node.ID == "" {
			return apperrors.NewValidationError("node id is required")
		}
		if g.HasNode(c.Node.ID) {
			return apperrors.NewConflictError(fmt.Sprintf("node %q already exists", c.Node.ID))
		}
		g.nodeIndex[c.Node.ID] = len(g.nodes)
		g.nodes = append(g.nodes, c.Node)

	case ChangeNodeRemoved:
		if !g.HasNode(c.ID) {
			return apperrors.NewNotFoundError("node " + c.ID)
		}
		nodes := g.nodes[:0:0]
		for _, n := range g.nodes {
			if n.ID != c.ID {
				nodes = append(nodes, n)
			}
		}
		edges := g.edges[:0:0]
		for _, e := range g.edges {
			if e.Source != c.ID && e.Target != c.ID {
				edges = append(edges, e)
			}
		}
		g.nodes, g.edges = nodes, edges
		g.reindex()

	case ChangeEdgeAdded:
		e := c.Edge
		if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
			return apperrors.NewMalformedGraphError(
				fmt.Sprintf("edge %s -> %s references a missing node", e.Source, e.Target))
		}
		if e.ID == "" {
			e.ID = EdgeID(e.Source, e.Target)
		}
		if _, dup := g.edgeIndex[e.ID]; dup {
			return apperrors.NewConflictError(fmt.Sprintf("edge %q already exists", e.ID))
		}
		g.edgeIndex[e.ID] = len(g.edges)
		g.edges = append(g.edges, e)

	case ChangeEdgeRemoved:
		i, ok := g.edgeIndex[c.ID]
		if !ok {
			return apperrors.NewNotFoundError("edge " + c.ID)
		}
		edges := make([]Edge, 0, len(g.edges)-1)
		edges = append(edges, g.edges[:i]...)
		edges = append(edges, g.edges[i+1:]...)
		g.edges = edges
		g.reindex()

	default:
		return apperrors.NewValidationError(fmt.Sprintf("unknown change type %q", c.Type))
	}
	return nil
}
