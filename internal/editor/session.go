// Package editor binds an interactive canvas to the remote generation and
// persistence calls for one mind-map resource.
//
// Every remote failure ends up as text in Status; the in-memory graph is
// only replaced by a generation result that loads cleanly and is never
// touched by a failed save.
package editor

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"hackverse-mindmap/internal/canvas"
	"hackverse-mindmap/internal/client"
	"hackverse-mindmap/internal/domain/mindmap"
	"hackverse-mindmap/internal/domain/resource"
	apperrors "hackverse-mindmap/internal/errors"
)

// Remote is the subset of *client.Client a session needs.
type Remote interface {
	Generate(ctx context.Context, req client.GenerateRequest) (mindmap.Content, error)
	Save(ctx context.Context, resourceID string, content mindmap.Content) (*resource.Resource, error)
}

const (
	msgEmptyPrompt       = "Please enter a topic or prompt."
	msgEnhanceEmpty      = "Add at least one node before enhancing."
	msgGenerationRunning = "generation already in progress"
	msgSaveRunning       = "save already in progress"
	msgClosed            = "editor session is closed"
)

// Status is what the user sees next to the generate and save controls.
type Status struct {
	Generating    bool
	Saving        bool
	GenerateError string
	SaveError     string
	Saved         bool
}

// Session owns a canvas for the lifetime of one open editor view. All
// canvas access goes through the session's mutex.
type Session struct {
	mu         sync.Mutex
	canvas     *canvas.Canvas
	remote     Remote
	resourceID string
	logger     *zap.Logger

	width, height float64

	generating bool
	saving     bool
	closed     bool
	saved      bool
	genErr     string
	saveErr    string
}

// New creates a session editing resourceID on cv.
func New(cv *canvas.Canvas, remote Remote, resourceID string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		canvas:     cv,
		remote:     remote,
		resourceID: resourceID,
		logger:     logger.With(zap.String("resource_id", resourceID)),
	}
}

// ResourceID returns the edited resource.
func (s *Session) ResourceID() string {
	return s.resourceID
}

// SetViewSize records the visible area; generated graphs are fitted into it.
func (s *Session) SetViewSize(width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	if !s.canvas.Empty() && width > 0 && height > 0 {
		s.canvas.FitView(width, height)
	}
}

// Edit runs a user edit against the canvas. A successful edit clears the
// saved flag.
func (s *Session) Edit(fn func(*canvas.Canvas) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperrors.NewConflictError(msgClosed)
	}
	if err := fn(s.canvas); err != nil {
		return err
	}
	s.saved = false
	return nil
}

// View runs fn with read access to the canvas, including viewport changes
// that do not modify the graph.
func (s *Session) View(fn func(*canvas.Canvas)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.canvas)
}

// Generate asks for a new graph and replaces the current one with it. With
// enhance set, the current graph is sent along as the starting point. Only
// one generation runs at a time.
func (s *Session) Generate(ctx context.Context, prompt string, enhance bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperrors.NewConflictError(msgClosed)
	}
	if strings.TrimSpace(prompt) == "" {
		s.genErr = msgEmptyPrompt
		s.mu.Unlock()
		return apperrors.NewValidationError(msgEmptyPrompt)
	}
	if enhance && s.canvas.Empty() {
		s.genErr = msgEnhanceEmpty
		s.mu.Unlock()
		return apperrors.NewValidationError(msgEnhanceEmpty)
	}
	if s.generating {
		s.mu.Unlock()
		return apperrors.NewConflictError(msgGenerationRunning)
	}
	req := client.GenerateRequest{ResourceID: s.resourceID, Prompt: prompt}
	if enhance {
		existing := s.canvas.Content()
		req.Existing = &existing
	}
	s.generating = true
	s.genErr = ""
	s.mu.Unlock()

	content, err := s.remote.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	if s.closed {
		s.logger.Debug("Discarding generation result for closed session")
		return nil
	}
	if err == nil {
		err = s.canvas.Replace(content)
	}
	if err != nil {
		s.genErr = apperrors.UserMessage(err)
		s.logger.Warn("Mind map generation failed", zap.Bool("enhance", enhance), zap.Error(err))
		return err
	}
	if s.width > 0 && s.height > 0 {
		s.canvas.FitView(s.width, s.height)
	}
	s.saved = false
	s.logger.Info("Mind map replaced by generation",
		zap.Bool("enhance", enhance),
		zap.Int("nodes", len(content.Nodes)))
	return nil
}

// Save sends the whole graph to the server. On failure the in-memory graph
// is kept as is.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperrors.NewConflictError(msgClosed)
	}
	if s.saving {
		s.mu.Unlock()
		return apperrors.NewConflictError(msgSaveRunning)
	}
	content := s.canvas.Content()
	s.saving = true
	s.saved = false
	s.saveErr = ""
	s.mu.Unlock()

	_, err := s.remote.Save(ctx, s.resourceID, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if s.closed {
		return nil
	}
	if err != nil {
		s.saveErr = apperrors.UserMessage(err)
		s.logger.Warn("Mind map save failed", zap.Error(err))
		return err
	}
	s.saved = true
	return nil
}

// Close ends the session. Results of calls still in flight are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// DismissErrors clears the displayed error texts.
func (s *Session) DismissErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genErr = ""
	s.saveErr = ""
}

// Status returns the current status texts.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Generating:    s.generating,
		Saving:        s.saving,
		GenerateError: s.genErr,
		SaveError:     s.saveErr,
		Saved:         s.saved,
	}
}
