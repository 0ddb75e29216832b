// Package resource defines the study resources persisted per user and
// class. A mind map is the resource whose content is a node/edge graph.
package resource

import (
	"encoding/json"
	"time"

	"hackverse-mindmap/internal/domain/mindmap"
	apperrors "hackverse-mindmap/internal/errors"
)

// TypeMindmap is the resource type whose content is a mindmap.Content.
const TypeMindmap = "mindmap"

// Resource is a persisted study resource.
type Resource struct {
	ID        string          `json:"id" dynamodbav:"ResourceID"`
	UserID    string          `json:"user_id" dynamodbav:"UserID"`
	ClassID   string          `json:"class_id" dynamodbav:"ClassID"`
	Type      string          `json:"type" dynamodbav:"Type"`
	Name      string          `json:"name" dynamodbav:"Name"`
	Content   json.RawMessage `json:"content" dynamodbav:"-"`
	ClassName *string         `json:"class_name,omitempty" dynamodbav:"-"`
	CreatedAt time.Time       `json:"created_at" dynamodbav:"CreatedAt"`
	UpdatedAt time.Time       `json:"updated_at" dynamodbav:"UpdatedAt"`
}

// IsMindmap reports whether the resource holds a mind map.
func (r *Resource) IsMindmap() bool {
	return r.Type == TypeMindmap
}

// Mindmap decodes the content as a mind map. Empty content is an empty map.
func (r *Resource) Mindmap() (mindmap.Content, error) {
	return DecodeMindmap(r.Content)
}

// CreateRequest is the body of a resource creation.
type CreateRequest struct {
	ClassID string          `json:"class_id" validate:"required,uuid"`
	UserID  string          `json:"user_id" validate:"required"`
	Type    string          `json:"type" validate:"required"`
	Name    string          `json:"name" validate:"required"`
	Content json.RawMessage `json:"content" swaggertype:"object"`
}

// UpdateRequest replaces a resource's content and optionally renames it.
type UpdateRequest struct {
	Content json.RawMessage `json:"content" validate:"required" swaggertype:"object"`
	Name    *string         `json:"name,omitempty"`
}

// DecodeMindmap parses raw mind-map content and checks that the graph is
// well formed.
func DecodeMindmap(raw json.RawMessage) (mindmap.Content, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return mindmap.Content{Nodes: []mindmap.Node{}, Edges: []mindmap.Edge{}}, nil
	}
	var content mindmap.Content
	if err := json.Unmarshal(raw, &content); err != nil {
		return mindmap.Content{}, apperrors.NewValidationError("mind map content is not valid JSON").WithCause(err)
	}
	g, err := mindmap.FromContent(content)
	if err != nil {
		return mindmap.Content{}, err
	}
	return g.Content(), nil
}

// EncodeMindmap serialises mind-map content for storage.
func EncodeMindmap(content mindmap.Content) (json.RawMessage, error) {
	if content.Nodes == nil {
		content.Nodes = []mindmap.Node{}
	}
	if content.Edges == nil {
		content.Edges = []mindmap.Edge{}
	}
	return json.Marshal(content)
}
