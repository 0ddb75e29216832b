package layout

import (
	"gonum.org/v1/gonum/spatial/r2"

	"hackverse-mindmap/internal/domain/mindmap"
)

// Bounds returns the box enclosing every node, treating each position as
// the top-left corner of a NodeWidth by NodeHeight rectangle. The zero box
// is returned for an empty slice.
func Bounds(nodes []mindmap.Node, opts Options) r2.Box {
	opts = opts.withDefaults()
	if len(nodes) == 0 {
		return r2.Box{}
	}
	b := r2.Box{
		Min: r2.Vec{X: nodes[0].Position.X, Y: nodes[0].Position.Y},
		Max: r2.Vec{X: nodes[0].Position.X + opts.NodeWidth, Y: nodes[0].Position.Y + opts.NodeHeight},
	}
	for _, n := range nodes[1:] {
		if n.Position.X < b.Min.X {
			b.Min.X = n.Position.X
		}
		if n.Position.Y < b.Min.Y {
			b.Min.Y = n.Position.Y
		}
		if x := n.Position.X + opts.NodeWidth; x > b.Max.X {
			b.Max.X = x
		}
		if y := n.Position.Y + opts.NodeHeight; y > b.Max.Y {
			b.Max.Y = y
		}
	}
	return b
}

// NodeBox returns the rectangle occupied by a single node.
func NodeBox(n mindmap.Node, opts Options) r2.Box {
	opts = opts.withDefaults()
	return r2.Box{
		Min: r2.Vec{X: n.Position.X, Y: n.Position.Y},
		Max: r2.Vec{X: n.Position.X + opts.NodeWidth, Y: n.Position.Y + opts.NodeHeight},
	}
}

// Contains reports whether p lies inside b, edges included.
func Contains(b r2.Box, p r2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}
