package canvas

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"hackverse-mindmap/internal/domain/mindmap"
	"hackverse-mindmap/internal/layout"
)

const (
	MinZoom = 0.1
	MaxZoom = 4.0

	// FitPadding is the fraction of the viewport left empty around a fitted
	// graph on each side.
	FitPadding = 0.1
)

// Viewport is the view transform: screen = world*Zoom + Pan.
type Viewport struct {
	Zoom float64 `json:"zoom"`
	PanX float64 `json:"pan_x"`
	PanY float64 `json:"pan_y"`
}

// DefaultViewport is the identity transform.
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

// ToWorld maps a screen point to canvas coordinates.
func (v Viewport) ToWorld(p r2.Vec) r2.Vec {
	return r2.Vec{X: (p.X - v.PanX) / v.Zoom, Y: (p.Y - v.PanY) / v.Zoom}
}

// ToScreen maps a canvas point to screen coordinates.
func (v Viewport) ToScreen(p r2.Vec) r2.Vec {
	return r2.Vec{X: p.X*v.Zoom + v.PanX, Y: p.Y*v.Zoom + v.PanY}
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) || z <= 0 {
		return MinZoom
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// Viewport returns the current view transform.
func (c *Canvas) Viewport() Viewport { return c.view }

// SetViewport replaces the view transform. Zoom is clamped.
func (c *Canvas) SetViewport(v Viewport) {
	v.Zoom = clampZoom(v.Zoom)
	c.view = v
}

// Pan moves the view by a screen-space delta.
func (c *Canvas) Pan(dx, dy float64) {
	c.view.PanX += dx
	c.view.PanY += dy
}

// ZoomAt multiplies the zoom by factor, keeping the world point under the
// given screen point fixed.
func (c *Canvas) ZoomAt(factor float64, at r2.Vec) {
	world := c.view.ToWorld(at)
	c.view.Zoom = clampZoom(c.view.Zoom * factor)
	c.view.PanX = at.X - world.X*c.view.Zoom
	c.view.PanY = at.Y - world.Y*c.view.Zoom
}

// HitTest returns the node under a screen point. Later nodes are drawn on
// top, so they win on overlap.
func (c *Canvas) HitTest(screen r2.Vec) (mindmap.Node, bool) {
	world := c.view.ToWorld(screen)
	nodes := c.graph.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if layout.Contains(layout.NodeBox(nodes[i], c.opts), world) {
			return nodes[i], true
		}
	}
	return mindmap.Node{}, false
}

// FitView sets the view so the whole graph fits a width by height screen
// with FitPadding on each side, centred. An empty graph resets the view.
func (c *Canvas) FitView(width, height float64) {
	if c.graph.Len() == 0 || width <= 0 || height <= 0 {
		c.view = DefaultViewport()
		return
	}
	b := layout.Bounds(c.graph.Nodes(), c.opts)
	bw, bh := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y
	availW, availH := width*(1-2*FitPadding), height*(1-2*FitPadding)

	zoom := clampZoom(math.Min(availW/bw, availH/bh))
	cx, cy := (b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2
	c.view = Viewport{
		Zoom: zoom,
		PanX: width/2 - cx*zoom,
		PanY: height/2 - cy*zoom,
	}
}
