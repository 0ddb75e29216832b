// Package layout positions mind-map nodes. The Engine interface is the
// replaceable strategy used by the canvas; Layered is the default
// hierarchical implementation.
package layout

import (
	"fmt"
	"strings"

	"hackverse-mindmap/internal/domain/mindmap"
	apperrors "hackverse-mindmap/internal/errors"
)

// Direction is the flow of ranks across the canvas.
type Direction string

const (
	TopBottom Direction = "TB"
	LeftRight Direction = "LR"
	BottomTop Direction = "BT"
	RightLeft Direction = "RL"
)

// ParseDirection accepts TB, LR, BT or RL in any case. The empty string
// maps to TopBottom.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToUpper(strings.TrimSpace(s))); d {
	case "":
		return TopBottom, nil
	case TopBottom, LeftRight, BottomTop, RightLeft:
		return d, nil
	default:
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown layout direction %q", s))
	}
}

// Horizontal reports whether ranks advance along the x axis.
func (d Direction) Horizontal() bool {
	return d == LeftRight || d == RightLeft
}

// Toggle flips between the vertical and horizontal default directions.
func (d Direction) Toggle() Direction {
	if d.Horizontal() {
		return TopBottom
	}
	return LeftRight
}

// Engine computes positions for every node. Implementations must be
// deterministic, must not mutate their inputs, and return nodes in input
// order with only Position changed.
type Engine interface {
	Layout(nodes []mindmap.Node, edges []mindmap.Edge, dir Direction) ([]mindmap.Node, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(nodes []mindmap.Node, edges []mindmap.Edge, dir Direction) ([]mindmap.Node, error)

func (f EngineFunc) Layout(nodes []mindmap.Node, edges []mindmap.Edge, dir Direction) ([]mindmap.Node, error) {
	return f(nodes, edges, dir)
}

// Options configures the Layered engine. Sizes are in canvas units.
type Options struct {
	NodeWidth  float64 `yaml:"node_width" json:"node_width" validate:"gt=0"`
	NodeHeight float64 `yaml:"node_height" json:"node_height" validate:"gt=0"`
	RankSep    float64 `yaml:"rank_sep" json:"rank_sep" validate:"gte=0"`
	NodeSep    float64 `yaml:"node_sep" json:"node_sep" validate:"gte=0"`
	Sweeps     int     `yaml:"sweeps" json:"sweeps" validate:"gte=0"`
}

// DefaultOptions returns the sizes used by the web canvas.
func DefaultOptions() Options {
	return Options{
		NodeWidth:  172,
		NodeHeight: 36,
		RankSep:    50,
		NodeSep:    50,
		Sweeps:     4,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.NodeWidth <= 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = d.NodeHeight
	}
	if o.RankSep < 0 {
		o.RankSep = d.RankSep
	}
	if o.NodeSep < 0 {
		o.NodeSep = d.NodeSep
	}
	if o.Sweeps < 0 {
		o.Sweeps = d.Sweeps
	}
	return o
}
