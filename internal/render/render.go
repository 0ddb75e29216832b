// Package render draws a positioned mind map as an SVG document or a PNG
// image. Both outputs share one geometry: nodes are rounded boxes with
// centred labels and edges run from the source's outgoing handle to the
// target's incoming handle, which sit on the sides the layout direction
// dictates.
package render

import (
	"fmt"
	"image/color"
	"math"
	"unicode/utf8"

	"gonum.org/v1/gonum/spatial/r2"

	"hackverse-mindmap/internal/domain/mindmap"
	"hackverse-mindmap/internal/layout"
)

// Theme holds the colours used for drawing.
type Theme struct {
	Background color.RGBA
	NodeFill   color.RGBA
	NodeStroke color.RGBA
	Text       color.RGBA
	Edge       color.RGBA
}

// DefaultTheme matches the light web canvas.
var DefaultTheme = Theme{
	Background: color.RGBA{0xfa, 0xfa, 0xfa, 0xff},
	NodeFill:   color.RGBA{0xff, 0xff, 0xff, 0xff},
	NodeStroke: color.RGBA{0x1a, 0x19, 0x2b, 0xff},
	Text:       color.RGBA{0x22, 0x22, 0x22, 0xff},
	Edge:       color.RGBA{0xb1, 0xb1, 0xb7, 0xff},
}

// Options configures rendering.
type Options struct {
	Layout    layout.Options
	Direction layout.Direction
	Padding   float64
	Theme     Theme
}

func (o Options) withDefaults() Options {
	d := layout.DefaultOptions()
	if o.Layout.NodeWidth <= 0 {
		o.Layout.NodeWidth = d.NodeWidth
	}
	if o.Layout.NodeHeight <= 0 {
		o.Layout.NodeHeight = d.NodeHeight
	}
	if o.Direction == "" {
		o.Direction = layout.TopBottom
	}
	if o.Padding <= 0 {
		o.Padding = 24
	}
	if o.Theme == (Theme{}) {
		o.Theme = DefaultTheme
	}
	return o
}

const (
	fontSize    = 12
	charWidth   = 7
	arrowLength = 8
	arrowWidth  = 4
	cornerRound = 6
)

type sceneNode struct {
	box   r2.Box
	label string
}

type sceneEdge struct {
	from, to r2.Vec
}

// scene is the canvas-independent drawing: node boxes and edge endpoints
// translated so the padded bounding box starts at the origin.
type scene struct {
	width, height int
	nodes         []sceneNode
	edges         []sceneEdge
	opts          Options
}

func buildScene(content mindmap.Content, opts Options) scene {
	opts = opts.withDefaults()
	bounds := layout.Bounds(content.Nodes, opts.Layout)
	offset := r2.Sub(r2.Vec{X: opts.Padding, Y: opts.Padding}, bounds.Min)
	size := bounds.Size()

	s := scene{
		width:  int(math.Ceil(size.X + 2*opts.Padding)),
		height: int(math.Ceil(size.Y + 2*opts.Padding)),
		nodes:  make([]sceneNode, 0, len(content.Nodes)),
		opts:   opts,
	}

	boxes := make(map[string]r2.Box, len(content.Nodes))
	maxChars := int((opts.Layout.NodeWidth - 16) / charWidth)
	for _, n := range content.Nodes {
		b := layout.NodeBox(n, opts.Layout)
		b = r2.Box{Min: r2.Add(b.Min, offset), Max: r2.Add(b.Max, offset)}
		boxes[n.ID] = b
		s.nodes = append(s.nodes, sceneNode{box: b, label: truncate(n.Data.Label, maxChars)})
	}
	for _, e := range content.Edges {
		src, ok := boxes[e.Source]
		if !ok {
			continue
		}
		dst, ok := boxes[e.Target]
		if !ok {
			continue
		}
		from, to := Handles(src, dst, opts.Direction)
		s.edges = append(s.edges, sceneEdge{from: from, to: to})
	}
	return s
}

// Handles returns the source's outgoing and the target's incoming handle
// for an edge between two node boxes.
func Handles(src, dst r2.Box, dir layout.Direction) (r2.Vec, r2.Vec) {
	srcMid := r2.Scale(0.5, r2.Add(src.Min, src.Max))
	dstMid := r2.Scale(0.5, r2.Add(dst.Min, dst.Max))
	switch dir {
	case layout.LeftRight:
		return r2.Vec{X: src.Max.X, Y: srcMid.Y}, r2.Vec{X: dst.Min.X, Y: dstMid.Y}
	case layout.RightLeft:
		return r2.Vec{X: src.Min.X, Y: srcMid.Y}, r2.Vec{X: dst.Max.X, Y: dstMid.Y}
	case layout.BottomTop:
		return r2.Vec{X: srcMid.X, Y: src.Min.Y}, r2.Vec{X: dstMid.X, Y: dst.Max.Y}
	default:
		return r2.Vec{X: srcMid.X, Y: src.Max.Y}, r2.Vec{X: dstMid.X, Y: dst.Min.Y}
	}
}

// arrowHead returns the three corners of the arrow at the end of from→to.
func arrowHead(from, to r2.Vec) [3]r2.Vec {
	d := r2.Sub(to, from)
	length := r2.Norm(d)
	if length == 0 {
		return [3]r2.Vec{to, to, to}
	}
	u := r2.Scale(1/length, d)
	normal := r2.Vec{X: -u.Y, Y: u.X}
	base := r2.Sub(to, r2.Scale(arrowLength, u))
	return [3]r2.Vec{
		to,
		r2.Add(base, r2.Scale(arrowWidth, normal)),
		r2.Sub(base, r2.Scale(arrowWidth, normal)),
	}
}

func truncate(label string, max int) string {
	if max < 1 {
		max = 1
	}
	if utf8.RuneCountInString(label) <= max {
		return label
	}
	runes := []rune(label)
	return string(runes[:max-1]) + "…"
}

func cssColor(c color.RGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)", c.R, c.G, c.B, float64(c.A)/255)
}
