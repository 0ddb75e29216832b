package resource

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackverse-mindmap/internal/domain/mindmap"
	apperrors "hackverse-mindmap/internal/errors"
)

func TestDecodeMindmap(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		nodes   int
		edges   int
		errType func(error) bool
	}{
		{"empty", "", 0, 0, nil},
		{"null", "null", 0, 0, nil},
		{"graph", `{"nodes":[{"id":"1","data":{"label":"A"},"position":{"x":0,"y":0}},{"id":"2","data":{"label":"B"}}],"edges":[{"source":"1","target":"2"}]}`, 2, 1, nil},
		{"not json", `{"nodes":`, 0, 0, apperrors.IsValidation},
		{"dangling edge", `{"nodes":[{"id":"1"}],"edges":[{"id":"e","source":"1","target":"9"}]}`, 0, 0, apperrors.IsMalformedGraph},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := DecodeMindmap(json.RawMessage(tt.raw))
			if tt.errType != nil {
				require.Error(t, err)
				assert.True(t, tt.errType(err))
				return
			}
			require.NoError(t, err)
			assert.Len(t, content.Nodes, tt.nodes)
			assert.Len(t, content.Edges, tt.edges)
		})
	}
}

func TestDecodeMindmap_AssignsEdgeIDs(t *testing.T) {
	content, err := DecodeMindmap(json.RawMessage(`{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"source":"a","target":"b"}]}`))

	require.NoError(t, err)
	assert.Equal(t, "ea-b", content.Edges[0].ID)
}

func TestEncodeMindmap_EmptyListsStayArrays(t *testing.T) {
	raw, err := EncodeMindmap(mindmap.Content{})

	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(raw))
}
