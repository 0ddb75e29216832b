package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"hackverse-mindmap/internal/domain/mindmap"
)

// SVG writes the mind map as an SVG document.
func SVG(w io.Writer, content mindmap.Content, opts Options) error {
	s := buildScene(content, opts)
	theme := s.opts.Theme
	ew := &errWriter{w: w}

	canvas := svg.New(ew)
	canvas.Start(s.width, s.height)
	canvas.Title(fmt.Sprintf("Mind map: %d nodes, %d edges", len(s.nodes), len(s.edges)))
	canvas.Rect(0, 0, s.width, s.height, "fill:"+cssColor(theme.Background))

	canvas.Gid("edges")
	edgeStyle := fmt.Sprintf("stroke:%s;stroke-width:1.5", cssColor(theme.Edge))
	for _, e := range s.edges {
		canvas.Line(round(e.from.X), round(e.from.Y), round(e.to.X), round(e.to.Y), edgeStyle)
		head := arrowHead(e.from, e.to)
		xs := []int{round(head[0].X), round(head[1].X), round(head[2].X)}
		ys := []int{round(head[0].Y), round(head[1].Y), round(head[2].Y)}
		canvas.Polygon(xs, ys, "fill:"+cssColor(theme.Edge))
	}
	canvas.Gend()

	canvas.Gid("nodes")
	nodeStyle := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", cssColor(theme.NodeFill), cssColor(theme.NodeStroke))
	textStyle := fmt.Sprintf("fill:%s;font-size:%dpx;font-family:system-ui,sans-serif;text-anchor:middle;dominant-baseline:central", cssColor(theme.Text), fontSize)
	for _, n := range s.nodes {
		size := n.box.Size()
		canvas.Roundrect(round(n.box.Min.X), round(n.box.Min.Y), round(size.X), round(size.Y), cornerRound, cornerRound, nodeStyle)
		canvas.Text(round(n.box.Min.X+size.X/2), round(n.box.Min.Y+size.Y/2), n.label, textStyle)
	}
	canvas.Gend()

	canvas.End()
	return ew.err
}

func round(v float64) int {
	return int(math.Round(v))
}

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, nil
}
