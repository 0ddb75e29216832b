package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"hackverse-mindmap/internal/domain/mindmap"
	apperrors "hackverse-mindmap/internal/errors"
	"hackverse-mindmap/internal/infrastructure/breaker"
)

const (
	msgEmptyPrompt      = "Please enter a topic or prompt."
	msgInvalidStructure = "Received invalid mind map data structure from server."
	msgGenerateFailed   = "Failed to generate/enhance mind map."
)

// GenerateRequest asks the service for a new graph. When Existing is set the
// service enhances that graph instead of starting over; the result is a full
// replacement either way.
type GenerateRequest struct {
	ResourceID string
	Prompt     string
	Existing   *mindmap.Content
}

// Mode is "enhance" when an existing graph is sent and "create" otherwise.
func (r GenerateRequest) Mode() string {
	if r.Existing != nil {
		return "enhance"
	}
	return "create"
}

type generatePayload struct {
	Prompt        string          `json:"prompt"`
	ExistingNodes *[]mindmap.Node `json:"existing_nodes,omitempty"`
	ExistingEdges *[]mindmap.Edge `json:"existing_edges,omitempty"`
}

type wireContent struct {
	Nodes []mindmap.Node `json:"nodes"`
	Edges []mindmap.Edge `json:"edges"`
}

type generateResponse struct {
	Content *wireContent `json:"content"`
	wireContent
}

// Generate posts the prompt and returns the generated graph. An empty
// prompt fails validation without any network traffic.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (content mindmap.Content, err error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return mindmap.Content{}, apperrors.NewValidationError(msgEmptyPrompt)
	}
	if err := c.checkIdentity(req.ResourceID); err != nil {
		return mindmap.Content{}, err
	}

	ctx, end := startSpan(ctx, "client.Generate", req.ResourceID)
	defer func() {
		c.metrics.RecordGeneration(req.Mode(), err)
		end(err)
	}()

	payload := generatePayload{Prompt: req.Prompt}
	if req.Existing != nil {
		existing := req.Existing.Clone()
		payload.ExistingNodes = &existing.Nodes
		payload.ExistingEdges = &existing.Edges
	}

	target := c.path("users", c.cfg.UserID, "resources", req.ResourceID, "generate-mindmap")
	resp, err := c.send(ctx, c.generation, "generate", http.MethodPost, target, payload)
	switch {
	case errors.Is(err, errUnauthenticated):
		return mindmap.Content{}, apperrors.NewUnauthorizedError(msgNotAuthenticated).WithCause(err)
	case errors.Is(err, breaker.ErrUnavailable):
		return mindmap.Content{}, apperrors.NewGenerationError("Mind map generation is temporarily unavailable. Please try again shortly.").WithCause(err)
	case err != nil:
		return mindmap.Content{}, apperrors.NewGenerationError(msgGenerateFailed).WithCause(err)
	}

	if !resp.ok() {
		msg := resp.detail()
		if msg == "" {
			msg = fmt.Sprintf("HTTP error! Status: %d", resp.status)
		}
		return mindmap.Content{}, apperrors.NewGenerationError(msg)
	}

	var decoded generateResponse
	if err := json.Unmarshal(resp.body, &decoded); err != nil {
		return mindmap.Content{}, apperrors.NewGenerationError(msgInvalidStructure).WithCause(err)
	}
	wc := decoded.wireContent
	if decoded.Content != nil {
		wc = *decoded.Content
	}
	if wc.Nodes == nil || wc.Edges == nil {
		return mindmap.Content{}, apperrors.NewGenerationError(msgInvalidStructure)
	}

	c.logger.Info("Mind map generated",
		zap.String("resource_id", req.ResourceID),
		zap.String("mode", req.Mode()),
		zap.Int("nodes", len(wc.Nodes)),
		zap.Int("edges", len(wc.Edges)))
	return mindmap.Content{Nodes: wc.Nodes, Edges: wc.Edges}, nil
}
