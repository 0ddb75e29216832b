package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackverse-mindmap/internal/domain/mindmap"
	apperrors "hackverse-mindmap/internal/errors"
)

type stubProvider struct {
	response string
	err      error
	prompt   string
}

func (s *stubProvider) Complete(_ context.Context, prompt string, _ CompletionOptions) (string, error) {
	s.prompt = prompt
	return s.response, s.err
}

func (s *stubProvider) IsAvailable() bool { return true }

func TestService_GenerateMindmap(t *testing.T) {
	ctx := context.Background()

	t.Run("Should build a rooted outline with the mock provider", func(t *testing.T) {
		svc := NewService(NewMockProvider(), CompletionOptions{}, nil)

		content, err := svc.GenerateMindmap(ctx, "Photosynthesis, light reactions, Calvin cycle", nil)

		require.NoError(t, err)
		require.Len(t, content.Nodes, 3)
		assert.Equal(t, "Photosynthesis", content.Nodes[0].Label())
		assert.Equal(t, "Light reactions", content.Nodes[1].Label())
		assert.Len(t, content.Edges, 2)
		for _, e := range content.Edges {
			assert.Equal(t, content.Nodes[0].ID, e.Source)
		}
	})

	t.Run("Should be deterministic", func(t *testing.T) {
		svc := NewService(NewMockProvider(), CompletionOptions{}, nil)

		a, err := svc.GenerateMindmap(ctx, "Explain plate tectonics and earthquakes", nil)
		require.NoError(t, err)
		b, err := svc.GenerateMindmap(ctx, "Explain plate tectonics and earthquakes", nil)
		require.NoError(t, err)

		assert.Equal(t, a, b)
	})

	t.Run("Should keep existing nodes when enhancing", func(t *testing.T) {
		svc := NewService(NewMockProvider(), CompletionOptions{}, nil)
		existing := mindmap.Content{
			Nodes: []mindmap.Node{
				{ID: "1", Data: mindmap.NodeData{Label: "Cells"}},
				{ID: "2", Data: mindmap.NodeData{Label: "Nucleus"}},
			},
			Edges: []mindmap.Edge{{ID: "e1-2", Source: "1", Target: "2"}},
		}

		content, err := svc.GenerateMindmap(ctx, "Cells, mitochondria, ribosomes", &existing)

		require.NoError(t, err)
		assert.Equal(t, existing.Nodes, content.Nodes[:2])
		assert.Len(t, content.Nodes, 4)
		assert.Len(t, content.Edges, 3)
		ids := map[string]bool{}
		for _, n := range content.Nodes {
			assert.False(t, ids[n.ID], "duplicate id %s", n.ID)
			ids[n.ID] = true
		}
	})

	t.Run("Should strip markdown fences", func(t *testing.T) {
		stub := &stubProvider{response: "```json\n{\"nodes\":[{\"id\":\"a\",\"data\":{\"label\":\"A\"}}],\"edges\":[]}\n```"}
		svc := NewService(stub, CompletionOptions{}, nil)

		content, err := svc.GenerateMindmap(ctx, "A", nil)

		require.NoError(t, err)
		assert.Equal(t, "A", content.Nodes[0].Label())
		assert.Contains(t, stub.prompt, "Topic:\nA")
	})

	t.Run("Should include the existing graph in the prompt", func(t *testing.T) {
		stub := &stubProvider{response: `{"nodes":[],"edges":[]}`}
		svc := NewService(stub, CompletionOptions{}, nil)
		existing := mindmap.Content{Nodes: []mindmap.Node{{ID: "x", Data: mindmap.NodeData{Label: "X"}}}, Edges: []mindmap.Edge{}}

		_, err := svc.GenerateMindmap(ctx, "more", &existing)

		require.NoError(t, err)
		assert.Contains(t, stub.prompt, `"label":"X"`)
	})

	tests := []struct {
		name  string
		stub  *stubProvider
		check func(error) bool
	}{
		{"Should reject dangling edges", &stubProvider{response: `{"nodes":[{"id":"a"}],"edges":[{"source":"a","target":"b"}]}`}, apperrors.IsMalformedGraph},
		{"Should reject unparseable output", &stubProvider{response: "not json"}, apperrors.IsGeneration},
		{"Should reject output without nodes", &stubProvider{response: `{"edges":[]}`}, apperrors.IsGeneration},
		{"Should wrap provider failures", &stubProvider{err: errors.New("timeout")}, apperrors.IsGeneration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.stub, CompletionOptions{}, nil)

			_, err := svc.GenerateMindmap(ctx, "topic", nil)

			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}

	t.Run("Should reject an empty prompt", func(t *testing.T) {
		stub := &stubProvider{}
		svc := NewService(stub, CompletionOptions{}, nil)

		_, err := svc.GenerateMindmap(ctx, " ", nil)

		assert.True(t, apperrors.IsValidation(err))
		assert.Empty(t, stub.prompt)
	})

	t.Run("Should fail when the provider is unavailable", func(t *testing.T) {
		mock := NewMockProvider()
		mock.SetAvailable(false)
		svc := NewService(mock, CompletionOptions{}, nil)

		_, err := svc.GenerateMindmap(ctx, "topic", nil)

		assert.True(t, apperrors.IsGeneration(err))
	})
}

func TestOpenAIProvider_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"nodes\":[],\"edges\":[]}"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", "gpt-4o-mini", srv.URL, time.Second)
	out, err := p.Complete(context.Background(), "hello", CompletionOptions{Format: "json", MaxTokens: 10})

	require.NoError(t, err)
	assert.Equal(t, `{"nodes":[],"edges":[]}`, out)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestOpenAIProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", "gpt-4o-mini", srv.URL, time.Second)
	_, err := p.Complete(context.Background(), "hello", CompletionOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.False(t, NewOpenAIProvider("", "m", "", 0).IsAvailable())
}
