package render

import (
	"bytes"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"hackverse-mindmap/internal/domain/mindmap"
	"hackverse-mindmap/internal/layout"
)

func sample() mindmap.Content {
	return mindmap.Content{
		Nodes: []mindmap.Node{
			{ID: "1", Data: mindmap.NodeData{Label: "Cells & Tissues"}, Position: mindmap.Position{X: 0, Y: 0}},
			{ID: "2", Data: mindmap.NodeData{Label: "Mitochondria"}, Position: mindmap.Position{X: 0, Y: 86}},
		},
		Edges: []mindmap.Edge{
			{ID: "e1-2", Source: "1", Target: "2"},
			{ID: "e1-9", Source: "1", Target: "9"},
		},
	}
}

func TestHandles(t *testing.T) {
	src := r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 100, Y: 40}}
	dst := r2.Box{Min: r2.Vec{X: 200, Y: 100}, Max: r2.Vec{X: 300, Y: 140}}

	tests := []struct {
		name     string
		dir      layout.Direction
		from, to r2.Vec
	}{
		{"Should leave from the bottom in top-bottom layouts", layout.TopBottom, r2.Vec{X: 50, Y: 40}, r2.Vec{X: 250, Y: 100}},
		{"Should leave from the right in left-right layouts", layout.LeftRight, r2.Vec{X: 100, Y: 20}, r2.Vec{X: 200, Y: 120}},
		{"Should leave from the top in bottom-top layouts", layout.BottomTop, r2.Vec{X: 50, Y: 0}, r2.Vec{X: 250, Y: 140}},
		{"Should leave from the left in right-left layouts", layout.RightLeft, r2.Vec{X: 0, Y: 20}, r2.Vec{X: 300, Y: 120}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := Handles(src, dst, tt.dir)

			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
		})
	}
}

func TestBuildScene(t *testing.T) {
	s := buildScene(sample(), Options{Padding: 10})

	assert.Equal(t, 172+20, s.width)
	assert.Equal(t, 86+36+20, s.height)
	require.Len(t, s.nodes, 2)
	assert.Equal(t, r2.Vec{X: 10, Y: 10}, s.nodes[0].box.Min)
	assert.Len(t, s.edges, 1, "edges to unknown nodes are skipped")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefghij", 5))
}

func TestSVG(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, SVG(&buf, sample(), Options{}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<?xml"))
	assert.Contains(t, out, "Cells &amp; Tissues")
	assert.Contains(t, out, "Mitochondria")
	assert.Equal(t, 3, strings.Count(out, "<rect"), "background plus one per node")
	assert.Equal(t, 1, strings.Count(out, "<line"))
	assert.Equal(t, 1, strings.Count(out, "<polygon"))
}

func TestSVG_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, SVG(&buf, mindmap.Content{}, Options{}))

	assert.Contains(t, buf.String(), "</svg>")
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, PNG(&buf, sample(), Options{Padding: 10, Direction: layout.TopBottom}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 192, img.Bounds().Dx())
	assert.Equal(t, 142, img.Bounds().Dy())
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.png")

	require.NoError(t, SavePNG(path, sample(), Options{}))

	assert.FileExists(t, path)
}
