package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackverse-mindmap/internal/domain/mindmap"
	apperrors "hackverse-mindmap/internal/errors"
)

func nodes(ids ...string) []mindmap.Node {
	out := make([]mindmap.Node, len(ids))
	for i, id := range ids {
		out[i] = mindmap.Node{ID: id, Data: mindmap.NodeData{Label: "Node " + id}}
	}
	return out
}

func edge(source, target string) mindmap.Edge {
	return mindmap.Edge{ID: mindmap.EdgeID(source, target), Source: source, Target: target}
}

func positions(ns []mindmap.Node) map[string]mindmap.Position {
	out := make(map[string]mindmap.Position, len(ns))
	for _, n := range ns {
		out[n.ID] = n.Position
	}
	return out
}

func TestLayered_FanOut(t *testing.T) {
	engine := NewLayered(DefaultOptions())

	out, err := engine.Layout(nodes("1", "2", "3"), []mindmap.Edge{edge("1", "2"), edge("1", "3")}, TopBottom)
	require.NoError(t, err)

	pos := positions(out)
	assert.Less(t, pos["1"].Y, pos["2"].Y)
	assert.Less(t, pos["1"].Y, pos["3"].Y)
	assert.Equal(t, pos["2"].Y, pos["3"].Y)
	assert.NotEqual(t, pos["2"].X, pos["3"].X)
	// the single root sits centred over its two children
	assert.InDelta(t, (pos["2"].X+pos["3"].X)/2, pos["1"].X, 0.001)
}

func TestLayered_Deterministic(t *testing.T) {
	engine := NewLayered(DefaultOptions())
	ns := nodes("root", "a", "b", "c", "d", "e")
	es := []mindmap.Edge{
		edge("root", "a"), edge("root", "b"), edge("a", "c"),
		edge("b", "c"), edge("b", "d"), edge("root", "e"), edge("e", "d"),
	}

	for _, dir := range []Direction{TopBottom, LeftRight, BottomTop, RightLeft} {
		t.Run(string(dir), func(t *testing.T) {
			first, err := engine.Layout(ns, es, dir)
			require.NoError(t, err)
			for i := 0; i < 5; i++ {
				again, err := engine.Layout(ns, es, dir)
				require.NoError(t, err)
				assert.Equal(t, first, again)
			}
		})
	}
}

func TestLayered_RankMonotonicity(t *testing.T) {
	engine := NewLayered(DefaultOptions())
	ns := nodes("1", "2", "3", "4", "5", "6", "7")
	es := []mindmap.Edge{
		edge("1", "2"), edge("1", "3"), edge("2", "4"), edge("3", "4"),
		edge("4", "5"), edge("1", "5"), edge("6", "7"),
	}

	t.Run("Should rank every target after its source", func(t *testing.T) {
		ranks, err := Ranks(ns, es)
		require.NoError(t, err)
		for _, e := range es {
			assert.Greater(t, ranks[e.Target], ranks[e.Source], e.ID)
		}
		assert.Equal(t, 0, ranks["1"])
		assert.Equal(t, 0, ranks["6"])
		assert.Equal(t, 3, ranks["5"])
	})

	tests := []struct {
		dir  Direction
		axis func(mindmap.Position) float64
		less bool
	}{
		{TopBottom, func(p mindmap.Position) float64 { return p.Y }, true},
		{BottomTop, func(p mindmap.Position) float64 { return p.Y }, false},
		{LeftRight, func(p mindmap.Position) float64 { return p.X }, true},
		{RightLeft, func(p mindmap.Position) float64 { return p.X }, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			out, err := engine.Layout(ns, es, tt.dir)
			require.NoError(t, err)
			pos := positions(out)
			for _, e := range es {
				src, tgt := tt.axis(pos[e.Source]), tt.axis(pos[e.Target])
				if tt.less {
					assert.Less(t, src, tgt, e.ID)
				} else {
					assert.Greater(t, src, tgt, e.ID)
				}
			}
		})
	}
}

func TestLayered_EmptyInput(t *testing.T) {
	out, err := NewLayered(DefaultOptions()).Layout(nil, nil, TopBottom)

	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestLayered_CyclesTerminate(t *testing.T) {
	engine := NewLayered(DefaultOptions())

	t.Run("Should lay out a three node cycle", func(t *testing.T) {
		ns := nodes("a", "b", "c")
		es := []mindmap.Edge{edge("a", "b"), edge("b", "c"), edge("c", "a")}

		out, err := engine.Layout(ns, es, TopBottom)
		require.NoError(t, err)
		require.Len(t, out, 3)

		ranks, err := Ranks(ns, es)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"a": 0, "b": 1, "c": 2}, ranks)
	})

	t.Run("Should ignore self-loops", func(t *testing.T) {
		ns := nodes("a", "b")
		es := []mindmap.Edge{edge("a", "a"), edge("a", "b"), edge("b", "b")}

		ranks, err := Ranks(ns, es)
		require.NoError(t, err)
		assert.Equal(t, 0, ranks["a"])
		assert.Equal(t, 1, ranks["b"])
	})
}

func TestLayered_RejectsUnknownEndpoints(t *testing.T) {
	_, err := NewLayered(DefaultOptions()).Layout(nodes("a"), []mindmap.Edge{edge("a", "ghost")}, TopBottom)

	require.Error(t, err)
	assert.True(t, apperrors.IsMalformedGraph(err))
}

func TestLayered_DoesNotMutateInput(t *testing.T) {
	ns := nodes("1", "2")
	ns[1].Position = mindmap.Position{X: 999, Y: 999}
	es := []mindmap.Edge{edge("1", "2")}

	out, err := NewLayered(DefaultOptions()).Layout(ns, es, TopBottom)

	require.NoError(t, err)
	assert.Equal(t, mindmap.Position{X: 999, Y: 999}, ns[1].Position)
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, "2", out[1].ID)
	assert.Equal(t, "Node 2", out[1].Label())
}

func TestLayered_Spacing(t *testing.T) {
	opts := DefaultOptions()
	out, err := NewLayered(opts).Layout(nodes("1", "2", "3"), []mindmap.Edge{edge("1", "2"), edge("1", "3")}, TopBottom)
	require.NoError(t, err)

	pos := positions(out)
	assert.Equal(t, opts.NodeHeight+opts.RankSep, pos["2"].Y-pos["1"].Y)
	assert.Equal(t, opts.NodeWidth+opts.NodeSep, pos["3"].X-pos["2"].X)
}

func TestLayered_ReducesCrossings(t *testing.T) {
	// a->d and b->c cross when children keep insertion order.
	ns := nodes("a", "b", "c", "d")
	es := []mindmap.Edge{edge("a", "d"), edge("b", "c")}

	out, err := NewLayered(DefaultOptions()).Layout(ns, es, TopBottom)
	require.NoError(t, err)

	pos := positions(out)
	assert.Equal(t, pos["a"].X < pos["b"].X, pos["d"].X < pos["c"].X)
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"", TopBottom, false},
		{"tb", TopBottom, false},
		{"LR", LeftRight, false},
		{" bt ", BottomTop, false},
		{"RL", RightLeft, false},
		{"diagonal", "", true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if tt.wantErr {
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
