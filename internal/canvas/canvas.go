// Package canvas holds the interactive mind-map editor surface: the graph
// being edited, its layout, the view transform and the pointer interaction
// state machine.
//
// Any edit that changes which nodes and edges exist runs a full synchronous
// layout that overwrites every node position, including ones the user
// dragged by hand. Drags, renames and view changes never trigger a layout.
package canvas

import (
	"time"

	"go.uber.org/zap"

	"hackverse-mindmap/internal/domain/mindmap"
	"hackverse-mindmap/internal/infrastructure/observability"
	"hackverse-mindmap/internal/layout"
)

// Canvas is single-owner and not safe for concurrent use.
type Canvas struct {
	graph   *mindmap.Graph
	engine  layout.Engine
	opts    layout.Options
	dir     layout.Direction
	view    Viewport
	logger  *zap.Logger
	metrics *observability.Collector

	state  State
	active string
	grab   mindmap.Position
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithLogger sets the logger used for layout diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Canvas) { c.logger = logger }
}

// WithMetrics records layouts on the given collector.
func WithMetrics(m *observability.Collector) Option {
	return func(c *Canvas) { c.metrics = m }
}

// WithDirection sets the initial layout direction.
func WithDirection(dir layout.Direction) Option {
	return func(c *Canvas) { c.dir = dir }
}

// WithNodeSize sets the node geometry used for hit testing and fit view.
// It must match the engine's sizes.
func WithNodeSize(opts layout.Options) Option {
	return func(c *Canvas) { c.opts = opts }
}

// New creates an empty canvas. A nil engine selects the layered engine with
// default options.
func New(engine layout.Engine, opts ...Option) *Canvas {
	c := &Canvas{
		graph:  mindmap.NewGraph(),
		engine: engine,
		opts:   layout.DefaultOptions(),
		dir:    layout.TopBottom,
		view:   DefaultViewport(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.engine == nil {
		c.engine = layout.NewLayered(c.opts)
	}
	if l, ok := c.engine.(*layout.Layered); ok {
		c.opts = l.Options()
	}
	return c
}

// Mount loads a persisted or freshly generated graph and lays it out. On a
// malformed payload the canvas is left unchanged.
func (c *Canvas) Mount(content mindmap.Content) error {
	return c.Replace(content)
}

// Replace swaps in a whole new graph. The payload is validated and laid out
// before the swap, so a failure leaves the current graph untouched. Any
// interaction in progress is dropped.
func (c *Canvas) Replace(content mindmap.Content) error {
	next, err := mindmap.FromContent(content)
	if err != nil {
		return err
	}
	if err := c.layoutGraph(next); err != nil {
		return err
	}
	c.graph = next
	c.reset()
	return nil
}

// SetDirection changes the layout direction and re-lays out the graph.
func (c *Canvas) SetDirection(dir layout.Direction) error {
	dir, err := layout.ParseDirection(string(dir))
	if err != nil {
		return err
	}
	prev := c.dir
	c.dir = dir
	if err := c.layoutGraph(c.graph); err != nil {
		c.dir = prev
		return err
	}
	return nil
}

// Relayout runs a full layout over the current graph.
func (c *Canvas) Relayout() error {
	return c.layoutGraph(c.graph)
}

func (c *Canvas) layoutGraph(g *mindmap.Graph) error {
	nodes, edges := g.Nodes(), g.Edges()
	if cycles := layout.Cycles(nodes, edges); len(cycles) > 0 {
		c.logger.Warn("laying out a cyclic graph; back edges are ignored for ranking",
			zap.Int("cycles", len(cycles)),
			zap.Any("members", cycles))
	}

	start := time.Now()
	positioned, err := c.engine.Layout(nodes, edges, c.dir)
	c.metrics.RecordLayout(string(c.dir), len(nodes), time.Since(start), err)
	if err != nil {
		c.logger.Error("layout failed", zap.Error(err), zap.String("direction", string(c.dir)))
		return err
	}
	g.SetPositions(positioned)

	c.logger.Debug("layout complete",
		zap.Int("nodes", len(nodes)),
		zap.Int("edges", len(edges)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// ApplyChange applies an edit and re-lays out when it changed the identity
// set of the graph. Structural edits are made on a copy that replaces the
// graph only once the layout succeeded.
func (c *Canvas) ApplyChange(change mindmap.Change) error {
	if !change.Structural() {
		return c.graph.ApplyChange(change)
	}
	next := c.graph.Clone()
	before := next.Identity()
	if err := next.ApplyChange(change); err != nil {
		return err
	}
	if next.Identity() != before {
		if err := c.layoutGraph(next); err != nil {
			return err
		}
	}
	c.commit(next)
	return nil
}

// AddNode adds a node labelled DefaultNodeLabel (or label) and re-lays out.
func (c *Canvas) AddNode(label string) (mindmap.Node, error) {
	if label == "" {
		label = mindmap.DefaultNodeLabel
	}
	next := c.graph.Clone()
	n, err := next.AddNode(label, mindmap.Position{})
	if err != nil {
		return mindmap.Node{}, err
	}
	if err := c.layoutGraph(next); err != nil {
		return mindmap.Node{}, err
	}
	c.commit(next)
	n, _ = c.graph.Node(n.ID)
	return n, nil
}

// RemoveNode deletes a node with its edges and re-lays out.
func (c *Canvas) RemoveNode(id string) error {
	return c.ApplyChange(mindmap.NodeRemoved(id))
}

// RemoveEdge deletes an edge and re-lays out.
func (c *Canvas) RemoveEdge(id string) error {
	return c.ApplyChange(mindmap.EdgeRemoved(id))
}

// Connect adds an edge from source to target. An existing connection is a
// no-op and does not trigger a layout.
func (c *Canvas) Connect(source, target string) (mindmap.Edge, bool, error) {
	next := c.graph.Clone()
	e, added, err := next.Connect(source, target)
	if err != nil || !added {
		return e, added, err
	}
	if err := c.layoutGraph(next); err != nil {
		return mindmap.Edge{}, false, err
	}
	c.commit(next)
	return e, true, nil
}

// commit swaps in an edited graph and drops an interaction whose node is
// gone.
func (c *Canvas) commit(next *mindmap.Graph) {
	c.graph = next
	if c.active != "" && !c.graph.HasNode(c.active) {
		c.reset()
	}
}

// Rename changes a node label. The graph keeps its layout.
func (c *Canvas) Rename(id, label string) error {
	return c.graph.RenameNode(id, label)
}

// MoveNode places a node at a world position without running a layout.
func (c *Canvas) MoveNode(id string, to mindmap.Position) error {
	return c.graph.MoveNode(id, to)
}

// Content returns the current graph as a payload.
func (c *Canvas) Content() mindmap.Content { return c.graph.Content() }

// Nodes returns the nodes in insertion order.
func (c *Canvas) Nodes() []mindmap.Node { return c.graph.Nodes() }

// Edges returns the edges in insertion order.
func (c *Canvas) Edges() []mindmap.Edge { return c.graph.Edges() }

// Node looks up a node by id.
func (c *Canvas) Node(id string) (mindmap.Node, bool) { return c.graph.Node(id) }

// Identity returns the identity signature of the current graph.
func (c *Canvas) Identity() string { return c.graph.Identity() }

// Direction returns the layout direction.
func (c *Canvas) Direction() layout.Direction { return c.dir }

// NodeSize returns the node geometry.
func (c *Canvas) NodeSize() layout.Options { return c.opts }

// Empty reports whether the canvas has no nodes.
func (c *Canvas) Empty() bool { return c.graph.Len() == 0 }
