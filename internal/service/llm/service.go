// Package llm turns a prompt into a mind-map graph using a text completion
// provider.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"hackverse-mindmap/internal/domain/mindmap"
	apperrors "hackverse-mindmap/internal/errors"
)

// Provider defines the interface for LLM providers (OpenAI-compatible APIs,
// the mock, ...)
type Provider interface {
	Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error)
	IsAvailable() bool
}

// CompletionOptions configures LLM completion requests
type CompletionOptions struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Format      string  `json:"format"` // "json" or "text"
}

// Prompt section markers. The mock provider reads the prompt back through
// them.
const (
	topicMarker    = "Topic:"
	existingMarker = "Existing mind map:"
	endMarker      = "Return only a JSON object"
)

// Service generates mind maps.
type Service struct {
	provider Provider
	options  CompletionOptions
	logger   *zap.Logger
}

// NewService creates a new LLM service with the specified provider
func NewService(provider Provider, options CompletionOptions, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.MaxTokens == 0 {
		options.MaxTokens = 2000
	}
	options.Format = "json"
	return &Service{provider: provider, options: options, logger: logger}
}

// IsAvailable returns true if the LLM service is available
func (s *Service) IsAvailable() bool {
	return s.provider != nil && s.provider.IsAvailable()
}

// GenerateMindmap builds a graph for prompt. With existing set, the
// provider is asked to extend that graph; the result replaces it entirely.
func (s *Service) GenerateMindmap(ctx context.Context, prompt string, existing *mindmap.Content) (mindmap.Content, error) {
	if strings.TrimSpace(prompt) == "" {
		return mindmap.Content{}, apperrors.NewValidationError("Please enter a topic or prompt.")
	}
	if !s.IsAvailable() {
		return mindmap.Content{}, apperrors.NewGenerationError("Mind map generator is not available")
	}

	text, err := s.buildMindmapPrompt(prompt, existing)
	if err != nil {
		return mindmap.Content{}, apperrors.NewInternalError("failed to build prompt", err)
	}

	response, err := s.provider.Complete(ctx, text, s.options)
	if err != nil {
		s.logger.Error("LLM completion failed", zap.Error(err))
		return mindmap.Content{}, apperrors.NewGenerationError("Failed to generate mind map").WithCause(err)
	}

	content, err := parseMindmapResponse(response)
	if err != nil {
		s.logger.Warn("LLM returned unusable mind map", zap.Error(err), zap.Int("response_length", len(response)))
		return mindmap.Content{}, apperrors.NewGenerationError("Generator returned an invalid mind map").WithCause(err)
	}

	g, err := mindmap.FromContent(content)
	if err != nil {
		return mindmap.Content{}, err
	}
	return g.Content(), nil
}

// buildMindmapPrompt creates the generation prompt
func (s *Service) buildMindmapPrompt(prompt string, existing *mindmap.Content) (string, error) {
	var b strings.Builder
	b.WriteString("You are an expert study assistant. Build a mind map for the topic below as a graph of short concept labels.\n\n")
	fmt.Fprintf(&b, "%s\n%s\n\n", topicMarker, strings.TrimSpace(prompt))

	if existing != nil {
		data, err := json.Marshal(existing)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s\n%s\n\n", existingMarker, data)
		b.WriteString("Extend the existing mind map: keep every existing node id and label, and add new nodes connected to it.\n\n")
	}

	b.WriteString(endMarker + ` with this structure:
{
  "nodes": [{"id": "1", "data": {"label": "Main topic"}, "position": {"x": 0, "y": 0}}],
  "edges": [{"id": "e1-2", "source": "1", "target": "2"}]
}

Rules:
1. Node ids are unique strings
2. Every edge source and target is a node id
3. Labels are at most 5 words
4. Edges point from general concepts to specific ones
`)
	return b.String(), nil
}

// parseMindmapResponse parses a {nodes, edges} object, optionally wrapped
// in a markdown fence or a {"content": ...} envelope.
func parseMindmapResponse(response string) (mindmap.Content, error) {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	}

	var envelope struct {
		Content *mindmap.Content `json:"content"`
		Nodes   []mindmap.Node   `json:"nodes"`
		Edges   []mindmap.Edge   `json:"edges"`
	}
	if err := json.Unmarshal([]byte(response), &envelope); err != nil {
		return mindmap.Content{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	content := mindmap.Content{Nodes: envelope.Nodes, Edges: envelope.Edges}
	if envelope.Content != nil {
		content = *envelope.Content
	}
	if content.Nodes == nil {
		return mindmap.Content{}, fmt.Errorf("response has no nodes")
	}
	if content.Edges == nil {
		content.Edges = []mindmap.Edge{}
	}
	return content, nil
}
