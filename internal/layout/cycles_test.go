package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hackverse-mindmap/internal/domain/mindmap"
)

func TestCycles(t *testing.T) {
	tests := []struct {
		name  string
		nodes []mindmap.Node
		edges []mindmap.Edge
		want  [][]string
	}{
		{
			name:  "acyclic",
			nodes: nodes("1", "2", "3"),
			edges: []mindmap.Edge{edge("1", "2"), edge("1", "3")},
			want:  [][]string{},
		},
		{
			name:  "simple cycle",
			nodes: nodes("a", "b", "c", "d"),
			edges: []mindmap.Edge{edge("c", "a"), edge("a", "b"), edge("b", "c"), edge("c", "d")},
			want:  [][]string{{"a", "b", "c"}},
		},
		{
			name:  "self loop and cycle",
			nodes: nodes("x", "y", "z"),
			edges: []mindmap.Edge{edge("z", "z"), edge("x", "y"), edge("y", "x")},
			want:  [][]string{{"x", "y"}, {"z"}},
		},
		{
			name:  "unknown endpoints ignored",
			nodes: nodes("a"),
			edges: []mindmap.Edge{edge("a", "ghost")},
			want:  [][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cycles(tt.nodes, tt.edges)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want) > 0, HasCycle(tt.nodes, tt.edges))
		})
	}
}

func TestBounds(t *testing.T) {
	opts := DefaultOptions()
	ns := nodes("a", "b")
	ns[0].Position = mindmap.Position{X: -10, Y: 0}
	ns[1].Position = mindmap.Position{X: 100, Y: 200}

	b := Bounds(ns, opts)

	assert.Equal(t, -10.0, b.Min.X)
	assert.Equal(t, 0.0, b.Min.Y)
	assert.Equal(t, 100+opts.NodeWidth, b.Max.X)
	assert.Equal(t, 200+opts.NodeHeight, b.Max.Y)
	assert.Zero(t, Bounds(nil, opts))
}
