// Package messaging publishes mind-map domain events.
package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	EventMindmapSaved     = "mindmap.saved"
	EventMindmapGenerated = "mindmap.generated"
)

// Event is a published domain event. Detail is event-specific.
type Event struct {
	ID         string                 `json:"event_id"`
	Type       string                 `json:"event_type"`
	UserID     string                 `json:"user_id"`
	ResourceID string                 `json:"resource_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Detail     map[string]interface{} `json:"detail,omitempty"`
}

func newEvent(eventType, userID, resourceID string, detail map[string]interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		ResourceID: resourceID,
		OccurredAt: time.Now().UTC(),
		Detail:     detail,
	}
}

// MindmapSaved is emitted after a mind map's content was replaced.
func MindmapSaved(userID, resourceID string, nodes, edges int) Event {
	return newEvent(EventMindmapSaved, userID, resourceID, map[string]interface{}{
		"nodes": nodes,
		"edges": edges,
	})
}

// MindmapGenerated is emitted after the generator produced a graph.
func MindmapGenerated(userID, resourceID string, enhance bool, nodes, edges int) Event {
	return newEvent(EventMindmapGenerated, userID, resourceID, map[string]interface{}{
		"enhance": enhance,
		"nodes":   nodes,
		"edges":   edges,
	})
}
