package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"hackverse-mindmap/internal/canvas"
	"hackverse-mindmap/internal/layout"
	"hackverse-mindmap/internal/render"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	busyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

const helpText = "tab select · a add · x delete · c connect · r rename · g generate · e enhance · s save · d direction · f fit · +/- zoom · q quit"

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading…"
	}
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteByte('\n')
	b.WriteString(m.drawCanvas())
	b.WriteByte('\n')
	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	if m.mode != modeNormal {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(subtleStyle.Render(truncateCells(helpText, m.width)))
	}
	return b.String()
}

func (m Model) header() string {
	var (
		dir   layout.Direction
		zoom  float64
		nodes int
		state canvas.State
	)
	m.session.View(func(c *canvas.Canvas) {
		dir = c.Direction()
		zoom = c.Viewport().Zoom
		nodes = len(c.Nodes())
		state = c.State()
	})
	text := fmt.Sprintf("%s  %d nodes  %s  %.0f%%", m.title, nodes, dir, zoom*100)
	if state == canvas.ConnectingEdge {
		text += "  connecting: click or select a target, enter to link, esc to cancel"
	}
	return headerStyle.Render(truncateCells(text, m.width))
}

func (m Model) statusLine() string {
	st := m.session.Status()
	var parts []string
	switch {
	case st.Generating:
		parts = append(parts, busyStyle.Render("Generating…"))
	case st.GenerateError != "":
		parts = append(parts, errorStyle.Render(st.GenerateError))
	}
	switch {
	case st.Saving:
		parts = append(parts, busyStyle.Render("Saving…"))
	case st.SaveError != "":
		parts = append(parts, errorStyle.Render(st.SaveError))
	case st.Saved:
		parts = append(parts, okStyle.Render("Saved"))
	}
	if m.notice != "" && m.notice != "Saved" {
		parts = append(parts, subtleStyle.Render(m.notice))
	}
	return strings.Join(parts, "  ")
}

// grid is the character buffer the canvas is drawn into.
type grid struct {
	w, h  int
	cells [][]rune
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, cells: make([][]rune, h)}
	for y := range g.cells {
		g.cells[y] = []rune(strings.Repeat(" ", w))
	}
	return g
}

func (g *grid) set(x, y int, r rune) {
	if x >= 0 && x < g.w && y >= 0 && y < g.h {
		g.cells[y][x] = r
	}
}

func (g *grid) text(x, y int, s string) {
	for i, r := range []rune(s) {
		g.set(x+i, y, r)
	}
}

// line draws a straight run of dots between two cells.
func (g *grid) line(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		g.set(x0, y0, '·')
		if x0 == x1 && y0 == y1 {
			return
		}
		if 2*e >= dy {
			e += dy
			x0 += sx
		}
		if 2*e <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (g *grid) String() string {
	lines := make([]string, g.h)
	for y, row := range g.cells {
		lines[y] = string(row)
	}
	return strings.Join(lines, "\n")
}

func (m Model) drawCanvas() string {
	rows := m.height - chromeRows
	if rows < 1 {
		rows = 1
	}
	g := newGrid(m.width, rows)

	m.session.View(func(c *canvas.Canvas) {
		view := c.Viewport()
		size := c.NodeSize()
		cells := func(p r2.Vec) (int, int) {
			s := view.ToScreen(p)
			return int(math.Floor(s.X / cellWidth)), int(math.Floor(s.Y / cellHeight))
		}
		dir := c.Direction()
		for _, e := range c.Edges() {
			src, ok := c.Node(e.Source)
			if !ok {
				continue
			}
			dst, ok := c.Node(e.Target)
			if !ok {
				continue
			}
			from, to := render.Handles(layout.NodeBox(src, size), layout.NodeBox(dst, size), dir)
			x0, y0 := cells(from)
			x1, y1 := cells(to)
			g.line(x0, y0, x1, y1)
		}

		width := int(math.Max(3, math.Round(size.NodeWidth*view.Zoom/cellWidth)))
		for _, n := range c.Nodes() {
			mid := r2.Vec{X: n.Position.X + size.NodeWidth/2, Y: n.Position.Y + size.NodeHeight/2}
			x, y := cells(mid)
			left, right := '[', ']'
			switch {
			case n.ID == c.Active():
				left, right = '<', '>'
			case n.ID == m.selected:
				left, right = '»', '«'
			}
			label := truncateCells(n.Data.Label, width-2)
			pad := width - 2 - len([]rune(label))
			box := string(left) + strings.Repeat(" ", pad/2) + label + strings.Repeat(" ", pad-pad/2) + string(right)
			g.text(x-width/2, y, box)
		}
	})
	return g.String()
}

func truncateCells(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
