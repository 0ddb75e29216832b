package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hackverse-mindmap/internal/domain/mindmap"
	"hackverse-mindmap/internal/domain/resource"
	apperrors "hackverse-mindmap/internal/errors"
	"hackverse-mindmap/internal/infrastructure/messaging"
)

// GenerateRequest is the body of a generate-mindmap call. Existing nodes
// and edges switch the generator to enhance mode.
type GenerateRequest struct {
	Prompt        string         `json:"prompt" example:"Photosynthesis: light reactions, Calvin cycle"`
	ExistingNodes []mindmap.Node `json:"existing_nodes,omitempty"`
	ExistingEdges []mindmap.Edge `json:"existing_edges,omitempty"`
}

// GenerateResponse wraps the generated graph.
type GenerateResponse struct {
	Content mindmap.Content `json:"content"`
}

type resourceHandler struct {
	deps Dependencies
}

// ListResources lists a user's resources, newest first
// @Summary List resources
// @Tags resources
// @Produce json
// @Param userId path string true "User ID"
// @Param class_id query string false "Only resources of this class"
// @Success 200 {array} resource.Resource
// @Failure 401 {object} errorBody
// @Failure 403 {object} errorBody
// @Security BearerAuth
// @Router /users/{userId}/resources [get]
func (h *resourceHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Store.List(r.Context(), chi.URLParam(r, "userId"), r.URL.Query().Get("class_id"))
	if err != nil {
		WriteError(w, r, h.deps.Logger, err)
		return
	}
	if list == nil {
		list = []resource.Resource{}
	}
	WriteJSON(w, http.StatusOK, list)
}

// CreateResource creates a resource for the user
// @Summary Create a resource
// @Tags resources
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param request body resource.CreateRequest true "Resource"
// @Success 201 {object} resource.Resource
// @Failure 400 {object} errorBody
// @Failure 422 {object} errorBody "Malformed mind map content"
// @Security BearerAuth
// @Router /users/{userId}/resources [post]
func (h *resourceHandler) CreateResource(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	var req resource.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, h.deps.Logger, err)
		return
	}
	if req.UserID != userID {
		WriteError(w, r, h.deps.Logger, apperrors.NewValidationError("Path user ID does not match user ID in body"))
		return
	}

	content, err := normaliseContent(req.Type, req.Content)
	if err != nil {
		WriteError(w, r, h.deps.Logger, err)
		return
	}
	now := time.Now().UTC()
	res := &resource.Resource{
		ID:        uuid.NewString(),
		UserID:    userID,
		ClassID:   req.ClassID,
		Type:      req.Type,
		Name:      req.Name,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.deps.Store.Put(r.Context(), res); err != nil {
		WriteError(w, r, h.deps.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, res)
}

// GetResource fetches one resource
// @Summary Get a resource
// @Tags resources
// @Produce json
// @Param userId path string true "User ID"
// @Param resourceId path string true "Resource ID"
// @Success 200 {object} resource.Resource
// @Failure 404 {object} errorBody
// @Security BearerAuth
// @Router /users/{userId}/resources/{resourceId} [get]
func (h *resourceHandler) GetResource(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.Store.Get(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "resourceId"))
	if err != nil {
		writeLookupError(w, r, h.deps.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// UpdateResource replaces a resource's content
// @Summary Replace resource content
// @Description The whole content is replaced. Mind-map content must be a well formed graph.
// @Tags resources
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param resourceId path string true "Resource ID"
// @Param request body resource.UpdateRequest true "New content"
// @Success 200 {object} resource.Resource
// @Failure 400 {object} errorBody
// @Failure 404 {object} errorBody
// @Failure 422 {object} errorBody "Malformed mind map content"
// @Security BearerAuth
// @Router /users/{userId}/resources/{resourceId} [put]
func (h *resourceHandler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	var req resource.UpdateRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, h.deps.Logger, err)
		return
	}

	res, err := h.deps.Store.Get(r.Context(), userID, chi.URLParam(r, "resourceId"))
	if err != nil {
		writeLookupError(w, r, h.deps.Logger, err)
		return
	}
	content, err := normaliseContent(res.Type, req.Content)
	if err != nil {
		WriteError(w, r, h.deps.Logger, err)
		return
	}
	res.Content = content
	if req.Name != nil {
		res.Name = *req.Name
	}
	res.UpdatedAt = time.Now().UTC()
	if err := h.deps.Store.Put(r.Context(), res); err != nil {
		WriteError(w, r, h.deps.Logger, err)
		return
	}

	if res.IsMindmap() {
		graph, _ := res.Mindmap()
		h.publish(r.Context(), messaging.MindmapSaved(userID, res.ID, len(graph.Nodes), len(graph.Edges)))
	}
	WriteJSON(w, http.StatusOK, res)
}

// GenerateMindmap generates a mind map from a prompt
// @Summary Generate a mind map
// @Description Creates a graph from the prompt, or extends the existing nodes and edges when they are sent.
// @Tags mindmaps
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param resourceId path string true "Resource ID"
// @Param request body GenerateRequest true "Prompt and optional existing graph"
// @Success 200 {object} GenerateResponse
// @Failure 400 {object} errorBody "Empty prompt"
// @Failure 502 {object} errorBody "Generation failed"
// @Failure 503 {object} errorBody "Generation temporarily unavailable"
// @Security BearerAuth
// @Router /users/{userId}/resources/{resourceId}/generate-mindmap [post]
func (h *resourceHandler) GenerateMindmap(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, h.deps.Logger, apperrors.NewValidationError("Invalid request body").WithCause(err))
		return
	}

	var existing *mindmap.Content
	if req.ExistingNodes != nil || req.ExistingEdges != nil {
		existing = &mindmap.Content{Nodes: req.ExistingNodes, Edges: req.ExistingEdges}
	}

	content, err := h.deps.Generator.GenerateMindmap(r.Context(), req.Prompt, existing)
	if err != nil {
		if apperrors.IsMalformedGraph(err) {
			err = apperrors.NewGenerationError("The generator returned an invalid mind map").WithCause(err)
		}
		h.deps.Metrics.RecordGeneration(mode(existing), err)
		WriteError(w, r, h.deps.Logger, err)
		return
	}
	h.deps.Metrics.RecordGeneration(mode(existing), nil)

	userID := chi.URLParam(r, "userId")
	h.publish(r.Context(), messaging.MindmapGenerated(userID, chi.URLParam(r, "resourceId"), existing != nil, len(content.Nodes), len(content.Edges)))
	WriteJSON(w, http.StatusOK, GenerateResponse{Content: content})
}

func (h *resourceHandler) publish(ctx context.Context, event messaging.Event) {
	if err := h.deps.Publisher.Publish(ctx, event); err != nil {
		h.deps.Logger.Warn("Failed to publish event",
			zap.String("event_type", event.Type),
			zap.String("resource_id", event.ResourceID),
			zap.Error(err))
	}
}

func mode(existing *mindmap.Content) string {
	if existing != nil {
		return "enhance"
	}
	return "create"
}

// writeLookupError hides which resource ids exist behind a fixed 404 body.
func writeLookupError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	if apperrors.IsNotFound(err) {
		WriteJSON(w, http.StatusNotFound, errorBody{Detail: "Resource not found"})
		return
	}
	WriteError(w, r, logger, err)
}

// normaliseContent checks mind-map content and stores it with both lists
// present. Other resource types keep their content as sent.
func normaliseContent(resourceType string, raw json.RawMessage) (json.RawMessage, error) {
	if resourceType != resource.TypeMindmap {
		if len(raw) == 0 {
			return json.RawMessage(`{}`), nil
		}
		return raw, nil
	}
	content, err := resource.DecodeMindmap(raw)
	if err != nil {
		return nil, err
	}
	return resource.EncodeMindmap(content)
}
