package editor

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackverse-mindmap/internal/canvas"
	"hackverse-mindmap/internal/client"
	"hackverse-mindmap/internal/domain/mindmap"
	"hackverse-mindmap/internal/domain/resource"
	apperrors "hackverse-mindmap/internal/errors"
)

type fakeRemote struct {
	generate func(ctx context.Context, req client.GenerateRequest) (mindmap.Content, error)
	save     func(ctx context.Context, id string, content mindmap.Content) (*resource.Resource, error)
	requests []client.GenerateRequest
}

func (f *fakeRemote) Generate(ctx context.Context, req client.GenerateRequest) (mindmap.Content, error) {
	f.requests = append(f.requests, req)
	return f.generate(ctx, req)
}

func (f *fakeRemote) Save(ctx context.Context, id string, content mindmap.Content) (*resource.Resource, error) {
	return f.save(ctx, id, content)
}

func sample() mindmap.Content {
	return mindmap.Content{
		Nodes: []mindmap.Node{
			{ID: "1", Data: mindmap.NodeData{Label: "Root"}},
			{ID: "2", Data: mindmap.NodeData{Label: "Child"}},
		},
		Edges: []mindmap.Edge{{ID: "e1-2", Source: "1", Target: "2"}},
	}
}

func newSession(t *testing.T, remote Remote, initial mindmap.Content) *Session {
	t.Helper()
	cv := canvas.New(nil)
	require.NoError(t, cv.Mount(initial))
	return New(cv, remote, "r1", nil)
}

func contentOf(s *Session) mindmap.Content {
	var out mindmap.Content
	s.View(func(c *canvas.Canvas) { out = c.Content() })
	return out
}

func TestSession_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should replace the graph on success", func(t *testing.T) {
		remote := &fakeRemote{generate: func(context.Context, client.GenerateRequest) (mindmap.Content, error) {
			return sample(), nil
		}}
		s := newSession(t, remote, mindmap.Content{})

		require.NoError(t, s.Generate(ctx, "Photosynthesis", false))

		assert.Len(t, contentOf(s).Nodes, 2)
		assert.Nil(t, remote.requests[0].Existing)
		assert.Empty(t, s.Status().GenerateError)
	})

	t.Run("Should send the current graph when enhancing", func(t *testing.T) {
		remote := &fakeRemote{generate: func(_ context.Context, req client.GenerateRequest) (mindmap.Content, error) {
			return *req.Existing, nil
		}}
		s := newSession(t, remote, sample())

		require.NoError(t, s.Generate(ctx, "more detail", true))

		require.NotNil(t, remote.requests[0].Existing)
		assert.Len(t, remote.requests[0].Existing.Nodes, 2)
	})

	t.Run("Should refuse to enhance an empty graph", func(t *testing.T) {
		remote := &fakeRemote{}
		s := newSession(t, remote, mindmap.Content{})

		err := s.Generate(ctx, "more", true)

		assert.True(t, apperrors.IsValidation(err))
		assert.Empty(t, remote.requests)
		assert.Equal(t, "Add at least one node before enhancing.", s.Status().GenerateError)
	})

	t.Run("Should report an empty prompt without calling the server", func(t *testing.T) {
		remote := &fakeRemote{}
		s := newSession(t, remote, sample())

		err := s.Generate(ctx, "  ", false)

		assert.True(t, apperrors.IsValidation(err))
		assert.Empty(t, remote.requests)
		assert.Equal(t, "Please enter a topic or prompt.", s.Status().GenerateError)
	})

	t.Run("Should keep the graph when the result is malformed", func(t *testing.T) {
		remote := &fakeRemote{generate: func(context.Context, client.GenerateRequest) (mindmap.Content, error) {
			return mindmap.Content{
				Nodes: []mindmap.Node{{ID: "x"}},
				Edges: []mindmap.Edge{{Source: "x", Target: "ghost"}},
			}, nil
		}}
		s := newSession(t, remote, sample())
		before := contentOf(s)

		err := s.Generate(ctx, "topic", false)

		assert.True(t, apperrors.IsMalformedGraph(err))
		assert.Equal(t, before, contentOf(s))
		assert.NotEmpty(t, s.Status().GenerateError)
	})
}

func TestSession_GenerateFailureLeavesGraphUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"detail":"model offline"}`)
	}))
	defer srv.Close()
	c, err := client.New(client.Config{BaseURL: srv.URL, UserID: "u1"}, nil)
	require.NoError(t, err)
	s := newSession(t, c, sample())
	before := contentOf(s)

	err = s.Generate(context.Background(), "topic", false)

	assert.True(t, apperrors.IsGeneration(err))
	assert.Equal(t, before, contentOf(s))
	assert.Equal(t, "model offline", s.Status().GenerateError)
	assert.False(t, s.Status().Generating)
}

func TestSession_OneGenerationAtATime(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	remote := &fakeRemote{generate: func(context.Context, client.GenerateRequest) (mindmap.Content, error) {
		close(started)
		<-release
		return sample(), nil
	}}
	s := newSession(t, remote, mindmap.Content{})

	done := make(chan error, 1)
	go func() { done <- s.Generate(context.Background(), "first", false) }()
	<-started

	err := s.Generate(context.Background(), "second", false)
	assert.True(t, apperrors.IsConflict(err))
	assert.True(t, s.Status().Generating)

	close(release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("generation did not finish")
	}
	assert.Len(t, contentOf(s).Nodes, 2)
}

func TestSession_CloseDiscardsLateResults(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	remote := &fakeRemote{generate: func(context.Context, client.GenerateRequest) (mindmap.Content, error) {
		close(started)
		<-release
		return sample(), nil
	}}
	s := newSession(t, remote, mindmap.Content{})

	done := make(chan error, 1)
	go func() { done <- s.Generate(context.Background(), "topic", false) }()
	<-started
	s.Close()
	close(release)

	assert.NoError(t, <-done)
	assert.Empty(t, contentOf(s).Nodes)
	assert.True(t, apperrors.IsConflict(s.Generate(context.Background(), "again", false)))
}

func TestSession_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("Should mark the session saved until the next edit", func(t *testing.T) {
		var got mindmap.Content
		remote := &fakeRemote{save: func(_ context.Context, id string, content mindmap.Content) (*resource.Resource, error) {
			got = content
			return &resource.Resource{ID: id}, nil
		}}
		s := newSession(t, remote, sample())

		require.NoError(t, s.Save(ctx))
		assert.True(t, s.Status().Saved)
		assert.Len(t, got.Nodes, 2)

		require.NoError(t, s.Edit(func(c *canvas.Canvas) error { return c.Rename("1", "Renamed") }))
		assert.False(t, s.Status().Saved)
	})

	t.Run("Should keep the graph and report the failure", func(t *testing.T) {
		remote := &fakeRemote{save: func(context.Context, string, mindmap.Content) (*resource.Resource, error) {
			return nil, apperrors.NewPersistenceError("Save failed: 500 - Internal Server Error")
		}}
		s := newSession(t, remote, sample())
		before := contentOf(s)

		err := s.Save(ctx)

		assert.True(t, apperrors.IsPersistence(err))
		assert.Equal(t, before, contentOf(s))
		status := s.Status()
		assert.Equal(t, "Save failed: 500 - Internal Server Error", status.SaveError)
		assert.False(t, status.Saved)

		s.DismissErrors()
		assert.Empty(t, s.Status().SaveError)
	})
}
