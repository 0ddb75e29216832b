package render

import (
	"io"

	"github.com/fogleman/gg"

	"hackverse-mindmap/internal/domain/mindmap"
)

// PNG encodes the mind map as a PNG image.
func PNG(w io.Writer, content mindmap.Content, opts Options) error {
	return draw(content, opts).EncodePNG(w)
}

// SavePNG writes the mind map to a PNG file.
func SavePNG(path string, content mindmap.Content, opts Options) error {
	return draw(content, opts).SavePNG(path)
}

func draw(content mindmap.Content, opts Options) *gg.Context {
	s := buildScene(content, opts)
	theme := s.opts.Theme

	dc := gg.NewContext(s.width, s.height)
	dc.SetColor(theme.Background)
	dc.Clear()

	dc.SetLineWidth(1.5)
	for _, e := range s.edges {
		dc.SetColor(theme.Edge)
		dc.DrawLine(e.from.X, e.from.Y, e.to.X, e.to.Y)
		dc.Stroke()

		head := arrowHead(e.from, e.to)
		dc.MoveTo(head[0].X, head[0].Y)
		dc.LineTo(head[1].X, head[1].Y)
		dc.LineTo(head[2].X, head[2].Y)
		dc.ClosePath()
		dc.Fill()
	}

	dc.SetLineWidth(1)
	for _, n := range s.nodes {
		size := n.box.Size()
		dc.DrawRoundedRectangle(n.box.Min.X, n.box.Min.Y, size.X, size.Y, cornerRound)
		dc.SetColor(theme.NodeFill)
		dc.FillPreserve()
		dc.SetColor(theme.NodeStroke)
		dc.Stroke()

		dc.SetColor(theme.Text)
		dc.DrawStringAnchored(n.label, n.box.Min.X+size.X/2, n.box.Min.Y+size.Y/2, 0.5, 0.5)
	}
	return dc
}
