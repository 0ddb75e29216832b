package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"hackverse-mindmap/internal/domain/mindmap"
	"hackverse-mindmap/internal/domain/resource"
	apperrors "hackverse-mindmap/internal/errors"
	"hackverse-mindmap/internal/infrastructure/breaker"
)

type savePayload struct {
	Content json.RawMessage `json:"content"`
}

// Save replaces the resource's content with the whole graph. Last write
// wins; nothing is merged.
func (c *Client) Save(ctx context.Context, resourceID string, content mindmap.Content) (saved *resource.Resource, err error) {
	if err := c.checkIdentity(resourceID); err != nil {
		return nil, err
	}

	ctx, end := startSpan(ctx, "client.Save", resourceID)
	defer func() {
		c.metrics.RecordSave(err)
		end(err)
	}()

	raw, err := resource.EncodeMindmap(content)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode mind map", err)
	}

	target := c.path("users", c.cfg.UserID, "resources", resourceID)
	resp, err := c.send(ctx, c.resources, "save", http.MethodPut, target, savePayload{Content: raw})
	switch {
	case errors.Is(err, errUnauthenticated):
		return nil, apperrors.NewUnauthorizedError(msgNotAuthenticated).WithCause(err)
	case errors.Is(err, breaker.ErrUnavailable):
		return nil, apperrors.NewPersistenceError("Save failed: service temporarily unavailable").WithCause(err)
	case err != nil:
		return nil, apperrors.NewPersistenceError("Save failed: unable to reach the server").WithCause(err)
	}

	if !resp.ok() {
		detail := resp.detail()
		if detail == "" {
			detail = http.StatusText(resp.status)
		}
		return nil, apperrors.NewPersistenceError(fmt.Sprintf("Save failed: %d - %s", resp.status, detail))
	}

	saved = &resource.Resource{ID: resourceID, UserID: c.cfg.UserID, Type: resource.TypeMindmap, Content: raw}
	if len(resp.body) > 0 {
		var echoed resource.Resource
		if json.Unmarshal(resp.body, &echoed) == nil && echoed.ID != "" {
			saved = &echoed
		}
	}
	c.logger.Info("Mind map saved",
		zap.String("resource_id", resourceID),
		zap.Int("nodes", len(content.Nodes)),
		zap.Int("edges", len(content.Edges)))
	return saved, nil
}

// Fetch loads a resource.
func (c *Client) Fetch(ctx context.Context, resourceID string) (res *resource.Resource, err error) {
	if err := c.checkIdentity(resourceID); err != nil {
		return nil, err
	}

	ctx, end := startSpan(ctx, "client.Fetch", resourceID)
	defer func() { end(err) }()

	target := c.path("users", c.cfg.UserID, "resources", resourceID)
	resp, err := c.send(ctx, c.resources, "fetch", http.MethodGet, target, nil)
	if err != nil {
		return nil, c.persistenceFailure("Fetch", err)
	}
	if resp.status == http.StatusNotFound {
		return nil, apperrors.NewNotFoundError("resource").WithDetails(resp.detail())
	}
	if !resp.ok() {
		return nil, c.statusFailure("Fetch", resp)
	}

	res = &resource.Resource{}
	if err := json.Unmarshal(resp.body, res); err != nil {
		return nil, apperrors.NewPersistenceError("Fetch failed: invalid resource payload").WithCause(err)
	}
	return res, nil
}

// List returns the user's resources, newest first, optionally filtered by
// class.
func (c *Client) List(ctx context.Context, classID string) (list []resource.Resource, err error) {
	if c.cfg.UserID == "" {
		return nil, apperrors.NewUnauthorizedError(msgNotAuthenticated)
	}

	ctx, end := startSpan(ctx, "client.List", "")
	defer func() { end(err) }()

	target := c.path("users", c.cfg.UserID, "resources")
	if classID != "" {
		target += "?" + url.Values{"class_id": {classID}}.Encode()
	}
	resp, err := c.send(ctx, c.resources, "list", http.MethodGet, target, nil)
	if err != nil {
		return nil, c.persistenceFailure("List", err)
	}
	if !resp.ok() {
		return nil, c.statusFailure("List", resp)
	}
	if err := json.Unmarshal(resp.body, &list); err != nil {
		return nil, apperrors.NewPersistenceError("List failed: invalid payload").WithCause(err)
	}
	return list, nil
}

// Create stores a new resource.
func (c *Client) Create(ctx context.Context, req resource.CreateRequest) (created *resource.Resource, err error) {
	if c.cfg.UserID == "" {
		return nil, apperrors.NewUnauthorizedError(msgNotAuthenticated)
	}
	if req.UserID == "" {
		req.UserID = c.cfg.UserID
	}

	ctx, end := startSpan(ctx, "client.Create", "")
	defer func() { end(err) }()

	target := c.path("users", c.cfg.UserID, "resources")
	resp, err := c.send(ctx, c.resources, "create", http.MethodPost, target, req)
	if err != nil {
		return nil, c.persistenceFailure("Create", err)
	}
	if !resp.ok() {
		return nil, c.statusFailure("Create", resp)
	}
	created = &resource.Resource{}
	if err := json.Unmarshal(resp.body, created); err != nil {
		return nil, apperrors.NewPersistenceError("Create failed: invalid payload").WithCause(err)
	}
	return created, nil
}

func (c *Client) persistenceFailure(op string, err error) error {
	switch {
	case errors.Is(err, errUnauthenticated):
		return apperrors.NewUnauthorizedError(msgNotAuthenticated).WithCause(err)
	case errors.Is(err, breaker.ErrUnavailable):
		return apperrors.NewPersistenceError(op + " failed: service temporarily unavailable").WithCause(err)
	default:
		return apperrors.NewPersistenceError(op + " failed: unable to reach the server").WithCause(err)
	}
}

func (c *Client) statusFailure(op string, resp *response) error {
	detail := resp.detail()
	if detail == "" {
		detail = http.StatusText(resp.status)
	}
	return apperrors.NewPersistenceError(fmt.Sprintf("%s failed: %d - %s", op, resp.status, detail))
}
