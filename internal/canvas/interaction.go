package canvas

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"hackverse-mindmap/internal/domain/mindmap"
	apperrors "hackverse-mindmap/internal/errors"
)

// State is the pointer interaction state.
type State int

const (
	Idle State = iota
	DraggingNode
	ConnectingEdge
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case DraggingNode:
		return "dragging"
	case ConnectingEdge:
		return "connecting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const codeInvalidTransition = "INVALID_TRANSITION"

// ErrInvalidTransition is matched (errors.Is) by every error returned for an
// interaction event that does not apply in the current state.
var ErrInvalidTransition = apperrors.NewValidationError("invalid interaction transition").WithCode(codeInvalidTransition)

func invalidTransition(from State, event string) error {
	return apperrors.NewValidationError(fmt.Sprintf("cannot %s while %s", event, from)).
		WithCode(codeInvalidTransition)
}

// State returns the current interaction state.
func (c *Canvas) State() State { return c.state }

// Active returns the node being dragged or the source of the pending
// connection, or "" when idle.
func (c *Canvas) Active() string { return c.active }

func (c *Canvas) reset() {
	c.state = Idle
	c.active = ""
	c.grab = mindmap.Position{}
}

// BeginDrag grabs a node at a screen point.
func (c *Canvas) BeginDrag(id string, at r2.Vec) error {
	if c.state != Idle {
		return invalidTransition(c.state, "start a drag")
	}
	n, ok := c.graph.Node(id)
	if !ok {
		return apperrors.NewNotFoundError("node " + id)
	}
	world := c.view.ToWorld(at)
	c.state = DraggingNode
	c.active = id
	c.grab = mindmap.Position{X: world.X - n.Position.X, Y: world.Y - n.Position.Y}
	return nil
}

// DragTo moves the grabbed node so it follows the pointer. Only that node's
// position changes.
func (c *Canvas) DragTo(at r2.Vec) error {
	if c.state != DraggingNode {
		return invalidTransition(c.state, "drag")
	}
	world := c.view.ToWorld(at)
	return c.graph.MoveNode(c.active, mindmap.Position{X: world.X - c.grab.X, Y: world.Y - c.grab.Y})
}

// EndDrag drops the node at the pointer and returns to Idle.
func (c *Canvas) EndDrag(at r2.Vec) error {
	if err := c.DragTo(at); err != nil {
		return err
	}
	c.reset()
	return nil
}

// BeginConnect starts a connection from a source node.
func (c *Canvas) BeginConnect(source string) error {
	if c.state != Idle {
		return invalidTransition(c.state, "start a connection")
	}
	if !c.graph.HasNode(source) {
		return apperrors.NewNotFoundError("node " + source)
	}
	c.state = ConnectingEdge
	c.active = source
	return nil
}

// EndConnect releases a pending connection at a screen point. Releasing
// over a node adds the edge and re-lays out; releasing over empty space
// cancels and adds nothing. The state is Idle afterwards in every case.
func (c *Canvas) EndConnect(at r2.Vec) (mindmap.Edge, bool, error) {
	if c.state != ConnectingEdge {
		return mindmap.Edge{}, false, invalidTransition(c.state, "finish a connection")
	}
	source := c.active
	c.reset()

	target, ok := c.HitTest(at)
	if !ok {
		return mindmap.Edge{}, false, nil
	}
	return c.Connect(source, target.ID)
}

// Cancel aborts any interaction. A dragged node keeps its last position.
func (c *Canvas) Cancel() {
	c.reset()
}

// PointerDown starts a drag on the node under the pointer, or finishes a
// pending connection. It reports whether a node was hit.
func (c *Canvas) PointerDown(at r2.Vec) (bool, error) {
	if c.state == ConnectingEdge {
		_, _, err := c.EndConnect(at)
		return true, err
	}
	n, ok := c.HitTest(at)
	if !ok {
		return false, nil
	}
	return true, c.BeginDrag(n.ID, at)
}

// PointerMove forwards pointer motion to an active drag.
func (c *Canvas) PointerMove(at r2.Vec) error {
	if c.state != DraggingNode {
		return nil
	}
	return c.DragTo(at)
}

// PointerUp ends an active drag or connection.
func (c *Canvas) PointerUp(at r2.Vec) error {
	switch c.state {
	case DraggingNode:
		return c.EndDrag(at)
	case ConnectingEdge:
		_, _, err := c.EndConnect(at)
		return err
	default:
		return nil
	}
}
