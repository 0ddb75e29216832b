// Package tui is a terminal front end for an editor session. Terminal cells
// are mapped to canvas screen units so the mouse drives the same drag and
// connect state machine as a pointer would.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r2"

	"hackverse-mindmap/internal/canvas"
	"hackverse-mindmap/internal/domain/mindmap"
	"hackverse-mindmap/internal/editor"
	apperrors "hackverse-mindmap/internal/errors"
)

// One terminal cell covers this many canvas screen units.
const (
	cellWidth  = 8.0
	cellHeight = 16.0

	// header and status lines
	chromeRows = 3

	panStep  = 40.0
	zoomStep = 1.2
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeGenerate
	modeEnhance
	modeRename
)

type generateDoneMsg struct{ err error }

type saveDoneMsg struct{ err error }

// Model is the bubbletea model hosting one editor session.
type Model struct {
	ctx     context.Context
	session *editor.Session
	title   string

	width, height int
	selected      string
	mode          inputMode
	input         textinput.Model
	notice        string
}

// New creates the model. title is shown in the header.
func New(ctx context.Context, session *editor.Session, title string) Model {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 60
	return Model{ctx: ctx, session: session, title: title, input: ti}
}

// Run starts the terminal editor and blocks until the user quits.
func Run(ctx context.Context, session *editor.Session, title string) error {
	p := tea.NewProgram(New(ctx, session, title),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx))
	_, err := p.Run()
	session.Close()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.session.SetViewSize(m.viewSize())
		return m, nil

	case generateDoneMsg:
		if msg.err == nil {
			m.selected = ""
			m.notice = "Mind map updated"
		}
		return m, nil

	case saveDoneMsg:
		if msg.err == nil {
			m.notice = "Saved"
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) viewSize() (float64, float64) {
	rows := m.height - chromeRows
	if rows < 1 {
		rows = 1
	}
	return float64(m.width) * cellWidth, float64(rows) * cellHeight
}

// cellToScreen returns the centre of a terminal cell in canvas screen units.
func cellToScreen(x, y int) r2.Vec {
	return r2.Vec{X: (float64(x) + 0.5) * cellWidth, Y: (float64(y-1) + 0.5) * cellHeight}
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	at := cellToScreen(msg.X, msg.Y)
	var (
		state canvas.State
		hit   bool
	)
	m.session.View(func(c *canvas.Canvas) {
		state = c.State()
		var n mindmap.Node
		if n, hit = c.HitTest(at); hit && state == canvas.Idle {
			m.selected = n.ID
		}
	})

	var err error
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if hit || state != canvas.Idle {
			err = m.session.Edit(func(c *canvas.Canvas) error {
				_, err := c.PointerDown(at)
				return err
			})
		}
	case msg.Action == tea.MouseActionMotion && state == canvas.DraggingNode:
		err = m.session.Edit(func(c *canvas.Canvas) error { return c.PointerMove(at) })
	case msg.Action == tea.MouseActionRelease && state != canvas.Idle:
		err = m.session.Edit(func(c *canvas.Canvas) error { return c.PointerUp(at) })
	case msg.Button == tea.MouseButtonWheelUp:
		m.session.View(func(c *canvas.Canvas) { c.ZoomAt(zoomStep, at) })
	case msg.Button == tea.MouseButtonWheelDown:
		m.session.View(func(c *canvas.Canvas) { c.ZoomAt(1/zoomStep, at) })
	}
	m.setNotice(err)
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.session.View(func(c *canvas.Canvas) { c.Cancel() })
		m.session.DismissErrors()

	case "tab":
		m.selected = m.nextNode(1)
	case "shift+tab":
		m.selected = m.nextNode(-1)

	case "a":
		m.setNotice(m.session.Edit(func(c *canvas.Canvas) error {
			n, err := c.AddNode("")
			if err == nil {
				m.selected = n.ID
			}
			return err
		}))

	case "x":
		if m.selected == "" {
			m.notice = "Select a node first"
			break
		}
		id := m.selected
		m.setNotice(m.session.Edit(func(c *canvas.Canvas) error { return c.RemoveNode(id) }))
		m.selected = ""

	case "c":
		if m.selected == "" {
			m.notice = "Select a node first"
			break
		}
		id := m.selected
		m.setNotice(m.session.Edit(func(c *canvas.Canvas) error { return c.BeginConnect(id) }))

	case "enter":
		m.setNotice(m.connectSelected())

	case "r":
		if m.selected == "" {
			m.notice = "Select a node first"
			break
		}
		var label string
		m.session.View(func(c *canvas.Canvas) {
			if n, ok := c.Node(m.selected); ok {
				label = n.Data.Label
			}
		})
		return m.openInput(modeRename, "Label: ", label)

	case "g":
		if m.session.Status().Generating {
			break
		}
		return m.openInput(modeGenerate, "Generate from: ", "")
	case "e":
		if m.session.Status().Generating {
			break
		}
		return m.openInput(modeEnhance, "Enhance with: ", "")

	case "s":
		if m.session.Status().Saving {
			break
		}
		return m, m.save()

	case "+", "=":
		m.zoom(zoomStep)
	case "-":
		m.zoom(1 / zoomStep)
	case "up":
		m.session.View(func(c *canvas.Canvas) { c.Pan(0, panStep) })
	case "down":
		m.session.View(func(c *canvas.Canvas) { c.Pan(0, -panStep) })
	case "left":
		m.session.View(func(c *canvas.Canvas) { c.Pan(panStep, 0) })
	case "right":
		m.session.View(func(c *canvas.Canvas) { c.Pan(-panStep, 0) })
	case "f":
		w, h := m.viewSize()
		m.session.View(func(c *canvas.Canvas) { c.FitView(w, h) })

	case "d":
		m.setNotice(m.session.Edit(func(c *canvas.Canvas) error {
			return c.SetDirection(c.Direction().Toggle())
		}))
	}
	return m, nil
}

// connectSelected finishes a keyboard connection from the pending source to
// the selected node.
func (m Model) connectSelected() error {
	var state canvas.State
	m.session.View(func(c *canvas.Canvas) { state = c.State() })
	if state != canvas.ConnectingEdge {
		return nil
	}
	return m.session.Edit(func(c *canvas.Canvas) error {
		source := c.Active()
		c.Cancel()
		if m.selected == "" || m.selected == source {
			return nil
		}
		_, _, err := c.Connect(source, m.selected)
		return err
	})
}

func (m Model) openInput(mode inputMode, prompt, value string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	case tea.KeyEnter:
		value := m.input.Value()
		mode := m.mode
		m.closeInput()
		switch mode {
		case modeRename:
			id := m.selected
			m.setNotice(m.session.Edit(func(c *canvas.Canvas) error { return c.Rename(id, value) }))
			return m, nil
		default:
			return m, m.generate(value, mode == modeEnhance)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = modeNormal
	m.input.Blur()
	m.input.Reset()
}

func (m Model) generate(prompt string, enhance bool) tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return generateDoneMsg{err: session.Generate(ctx, prompt, enhance)}
	}
}

func (m Model) save() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return saveDoneMsg{err: session.Save(ctx)}
	}
}

func (m Model) zoom(factor float64) {
	w, h := m.viewSize()
	m.session.View(func(c *canvas.Canvas) { c.ZoomAt(factor, r2.Vec{X: w / 2, Y: h / 2}) })
}

func (m Model) nextNode(step int) string {
	var ids []string
	m.session.View(func(c *canvas.Canvas) {
		for _, n := range c.Nodes() {
			ids = append(ids, n.ID)
		}
	})
	if len(ids) == 0 {
		return ""
	}
	at := -1
	for i, id := range ids {
		if id == m.selected {
			at = i
		}
	}
	if at == -1 {
		if step < 0 {
			return ids[len(ids)-1]
		}
		return ids[0]
	}
	return ids[(at+step+len(ids))%len(ids)]
}

// setNotice shows local edit failures. Remote failures are reported by the
// session status instead.
func (m *Model) setNotice(err error) {
	if err == nil {
		return
	}
	msg := apperrors.UserMessage(err)
	if msg != "" {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}
	m.notice = msg
}
