package canvas

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/spatial/r2"

	"hackverse-mindmap/internal/domain/mindmap"
	apperrors "hackverse-mindmap/internal/errors"
	"hackverse-mindmap/internal/infrastructure/observability"
	"hackverse-mindmap/internal/layout"
)

func fanOut() mindmap.Content {
	return mindmap.Content{
		Nodes: []mindmap.Node{
			{ID: "1", Data: mindmap.NodeData{Label: "Topic"}},
			{ID: "2", Data: mindmap.NodeData{Label: "Left"}},
			{ID: "3", Data: mindmap.NodeData{Label: "Right"}},
		},
		Edges: []mindmap.Edge{
			{ID: "e1-2", Source: "1", Target: "2"},
			{ID: "e1-3", Source: "1", Target: "3"},
		},
	}
}

func mounted(t *testing.T, opts ...Option) *Canvas {
	t.Helper()
	c := New(nil, opts...)
	require.NoError(t, c.Mount(fanOut()))
	return c
}

// centre returns the screen point at the middle of a node.
func centre(c *Canvas, id string) r2.Vec {
	n, _ := c.Node(id)
	size := c.NodeSize()
	return c.Viewport().ToScreen(r2.Vec{X: n.Position.X + size.NodeWidth/2, Y: n.Position.Y + size.NodeHeight/2})
}

func TestCanvas_MountLaysOut(t *testing.T) {
	c := mounted(t)

	one, _ := c.Node("1")
	two, _ := c.Node("2")
	three, _ := c.Node("3")
	assert.Less(t, one.Position.Y, two.Position.Y)
	assert.Equal(t, two.Position.Y, three.Position.Y)
	assert.NotEqual(t, two.Position.X, three.Position.X)
	assert.Equal(t, Idle, c.State())
}

func TestCanvas_MountRejectsMalformedGraph(t *testing.T) {
	c := mounted(t)
	before := c.Content()

	err := c.Mount(mindmap.Content{
		Nodes: []mindmap.Node{{ID: "a"}},
		Edges: []mindmap.Edge{{ID: "ea-b", Source: "a", Target: "b"}},
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsMalformedGraph(err))
	assert.Equal(t, before, c.Content())
}

func TestCanvas_DragThenAddNodeRelayoutsEverything(t *testing.T) {
	c := mounted(t)

	require.NoError(t, c.BeginDrag("2", centre(c, "2")))
	require.NoError(t, c.DragTo(r2.Vec{X: 900, Y: 900}))
	require.NoError(t, c.EndDrag(r2.Vec{X: 1000, Y: 1000}))
	dragged, _ := c.Node("2")
	require.NotEqual(t, 0.0, dragged.Position.X)

	added, err := c.AddNode("")
	require.NoError(t, err)
	assert.Equal(t, mindmap.DefaultNodeLabel, added.Label())

	fresh, err := layout.NewLayered(layout.DefaultOptions()).Layout(c.Nodes(), c.Edges(), layout.TopBottom)
	require.NoError(t, err)
	assert.Equal(t, fresh, c.Nodes())

	after, _ := c.Node("2")
	assert.NotEqual(t, dragged.Position, after.Position)
}

func TestCanvas_DragMovesOnlyThatNode(t *testing.T) {
	c := mounted(t)
	before := c.Nodes()

	start := centre(c, "3")
	require.NoError(t, c.BeginDrag("3", start))
	assert.Equal(t, DraggingNode, c.State())
	assert.Equal(t, "3", c.Active())
	require.NoError(t, c.EndDrag(r2.Vec{X: start.X + 40, Y: start.Y - 10}))

	after := c.Nodes()
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[1], after[1])
	assert.Equal(t, before[2].Position.X+40, after[2].Position.X)
	assert.Equal(t, before[2].Position.Y-10, after[2].Position.Y)
	assert.Equal(t, Idle, c.State())
}

func TestCanvas_Connect(t *testing.T) {
	t.Run("Should add an edge when released over a node", func(t *testing.T) {
		c := mounted(t)
		target := centre(c, "3")

		require.NoError(t, c.BeginConnect("2"))
		assert.Equal(t, ConnectingEdge, c.State())
		e, added, err := c.EndConnect(target)

		require.NoError(t, err)
		assert.True(t, added)
		assert.Equal(t, "e2-3", e.ID)
		assert.Equal(t, Idle, c.State())

		two, _ := c.Node("2")
		three, _ := c.Node("3")
		assert.Less(t, two.Position.Y, three.Position.Y)
	})

	t.Run("Should cancel when released over empty space", func(t *testing.T) {
		c := mounted(t)
		identity := c.Identity()

		require.NoError(t, c.BeginConnect("2"))
		_, added, err := c.EndConnect(r2.Vec{X: -5000, Y: -5000})

		require.NoError(t, err)
		assert.False(t, added)
		assert.Equal(t, identity, c.Identity())
		assert.Equal(t, Idle, c.State())
	})

	t.Run("Should keep the layout for a duplicate connection", func(t *testing.T) {
		c := mounted(t)
		require.NoError(t, c.MoveNode("2", mindmap.Position{X: 5, Y: 5}))

		_, added, err := c.Connect("1", "2")

		require.NoError(t, err)
		assert.False(t, added)
		n, _ := c.Node("2")
		assert.Equal(t, mindmap.Position{X: 5, Y: 5}, n.Position)
	})
}

func TestCanvas_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *Canvas) error
		act   func(c *Canvas) error
		want  State
	}{
		{
			name:  "drag while idle",
			setup: func(c *Canvas) error { return nil },
			act:   func(c *Canvas) error { return c.DragTo(r2.Vec{}) },
			want:  Idle,
		},
		{
			name:  "end connection while idle",
			setup: func(c *Canvas) error { return nil },
			act: func(c *Canvas) error {
				_, _, err := c.EndConnect(r2.Vec{})
				return err
			},
			want: Idle,
		},
		{
			name:  "connect while dragging",
			setup: func(c *Canvas) error { return c.BeginDrag("1", centre(c, "1")) },
			act:   func(c *Canvas) error { return c.BeginConnect("2") },
			want:  DraggingNode,
		},
		{
			name:  "drag while connecting",
			setup: func(c *Canvas) error { return c.BeginConnect("1") },
			act:   func(c *Canvas) error { return c.BeginDrag("2", centre(c, "2")) },
			want:  ConnectingEdge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mounted(t)
			require.NoError(t, tt.setup(c))

			err := tt.act(c)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.want, c.State())
		})
	}
}

func TestCanvas_CancelKeepsDraggedPosition(t *testing.T) {
	c := mounted(t)
	start := centre(c, "1")

	require.NoError(t, c.BeginDrag("1", start))
	require.NoError(t, c.DragTo(r2.Vec{X: start.X + 15, Y: start.Y}))
	moved, _ := c.Node("1")
	c.Cancel()

	after, _ := c.Node("1")
	assert.Equal(t, moved, after)
	assert.Equal(t, Idle, c.State())
	assert.Empty(t, c.Active())
}

func TestCanvas_RenameKeepsLayout(t *testing.T) {
	c := mounted(t)
	require.NoError(t, c.MoveNode("3", mindmap.Position{X: 1, Y: 2}))

	require.NoError(t, c.Rename("3", "Renamed"))

	n, _ := c.Node("3")
	assert.Equal(t, "Renamed", n.Label())
	assert.Equal(t, mindmap.Position{X: 1, Y: 2}, n.Position)
}

func TestCanvas_RemoveNodeDropsEdgesAndRelayouts(t *testing.T) {
	c := mounted(t)

	require.NoError(t, c.RemoveNode("1"))

	assert.Empty(t, c.Edges())
	two, _ := c.Node("2")
	three, _ := c.Node("3")
	assert.Equal(t, two.Position.Y, three.Position.Y)
}

func TestCanvas_RemovingDraggedNodeResetsInteraction(t *testing.T) {
	c := mounted(t)
	require.NoError(t, c.BeginDrag("2", centre(c, "2")))

	require.NoError(t, c.RemoveNode("2"))

	assert.Equal(t, Idle, c.State())
}

func TestCanvas_ReplaceIsAtomic(t *testing.T) {
	c := mounted(t)
	before := c.Content()

	err := c.Replace(mindmap.Content{Nodes: []mindmap.Node{{ID: "x"}, {ID: "x"}}})

	assert.True(t, apperrors.IsMalformedGraph(err))
	assert.Equal(t, before, c.Content())
}

func TestCanvas_ViewNeverMutatesGraph(t *testing.T) {
	c := mounted(t)
	before := c.Content()

	c.ZoomAt(100, r2.Vec{X: 10, Y: 10})
	assert.Equal(t, MaxZoom, c.Viewport().Zoom)
	c.ZoomAt(0.0001, r2.Vec{})
	assert.Equal(t, MinZoom, c.Viewport().Zoom)
	c.Pan(30, -40)
	c.FitView(800, 600)

	assert.Equal(t, before, c.Content())
}

func TestCanvas_HitTestFollowsViewTransform(t *testing.T) {
	c := mounted(t)
	c.ZoomAt(2, r2.Vec{X: 50, Y: 50})
	c.Pan(13, 7)

	n, ok := c.HitTest(centre(c, "3"))
	require.True(t, ok)
	assert.Equal(t, "3", n.ID)

	_, ok = c.HitTest(r2.Vec{X: -10000, Y: -10000})
	assert.False(t, ok)
}

func TestCanvas_FitView(t *testing.T) {
	c := mounted(t)

	c.FitView(1000, 500)

	b := layout.Bounds(c.Nodes(), c.NodeSize())
	v := c.Viewport()
	min := v.ToScreen(b.Min)
	max := v.ToScreen(b.Max)
	assert.GreaterOrEqual(t, min.X, 0.0)
	assert.GreaterOrEqual(t, min.Y, 0.0)
	assert.LessOrEqual(t, max.X, 1000.0)
	assert.LessOrEqual(t, max.Y, 500.0)
	assert.InDelta(t, 500, (min.X+max.X)/2, 0.001)
	assert.InDelta(t, 250, (min.Y+max.Y)/2, 0.001)
}

func TestCanvas_SetDirection(t *testing.T) {
	c := mounted(t)

	require.NoError(t, c.SetDirection(layout.LeftRight))

	one, _ := c.Node("1")
	two, _ := c.Node("2")
	assert.Less(t, one.Position.X, two.Position.X)
	assert.Equal(t, layout.LeftRight, c.Direction())

	err := c.SetDirection("sideways")
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, layout.LeftRight, c.Direction())
}

func TestCanvas_WarnsOnCycles(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	metrics := observability.NewCollector("canvas_test")
	c := New(nil, WithLogger(zap.New(core)), WithMetrics(metrics))

	err := c.Mount(mindmap.Content{
		Nodes: []mindmap.Node{{ID: "a"}, {ID: "b"}},
		Edges: []mindmap.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessageSnippet("cyclic").Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Layouts.WithLabelValues("TB", "success")))
}

func TestCanvas_PointerEvents(t *testing.T) {
	c := mounted(t)

	hit, err := c.PointerDown(r2.Vec{X: -999, Y: -999})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, Idle, c.State())

	start := centre(c, "2")
	hit, err = c.PointerDown(start)
	require.NoError(t, err)
	assert.True(t, hit)
	require.NoError(t, c.PointerMove(r2.Vec{X: start.X + 5, Y: start.Y}))
	require.NoError(t, c.PointerUp(r2.Vec{X: start.X + 5, Y: start.Y}))
	assert.Equal(t, Idle, c.State())
}

func TestCanvas_FailedLayoutLeavesGraphUntouched(t *testing.T) {
	tests := []struct {
		name string
		edit func(c *Canvas) error
	}{
		{"Should not keep an added node", func(c *Canvas) error {
			_, err := c.AddNode("")
			return err
		}},
		{"Should not keep a new connection", func(c *Canvas) error {
			_, _, err := c.Connect("2", "3")
			return err
		}},
		{"Should not drop a removed node", func(c *Canvas) error {
			return c.RemoveNode("2")
		}},
		{"Should not drop a removed edge", func(c *Canvas) error {
			return c.RemoveEdge("e1-3")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fail := false
			layered := layout.NewLayered(layout.DefaultOptions())
			engine := layout.EngineFunc(func(nodes []mindmap.Node, edges []mindmap.Edge, dir layout.Direction) ([]mindmap.Node, error) {
				if fail {
					return nil, errors.New("layout unavailable")
				}
				return layered.Layout(nodes, edges, dir)
			})
			c := New(engine)
			require.NoError(t, c.Mount(fanOut()))
			before := c.Content()
			identity := c.Identity()

			fail = true
			require.Error(t, tt.edit(c))
			assert.Equal(t, before, c.Content())
			assert.Equal(t, identity, c.Identity())
		})
	}
}
