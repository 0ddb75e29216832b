package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"hackverse-mindmap/internal/domain/mindmap"
)

const maxMockChildren = 6

var stopWords = map[string]bool{
	"about": true, "after": true, "also": true, "and": true, "from": true,
	"have": true, "into": true, "make": true, "over": true, "that": true,
	"their": true, "them": true, "then": true, "there": true, "these": true,
	"they": true, "this": true, "what": true, "when": true, "where": true,
	"which": true, "with": true, "your": true, "explain": true, "describe": true,
}

// MockProvider provides a deterministic mind-map generator for testing and
// development
type MockProvider struct {
	available bool
}

// NewMockProvider creates a new mock LLM provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		available: true,
	}
}

// IsAvailable returns whether the mock provider is available
func (m *MockProvider) IsAvailable() bool {
	return m.available
}

// SetAvailable controls whether the mock provider is available (for testing)
func (m *MockProvider) SetAvailable(available bool) {
	m.available = available
}

// Complete answers generation prompts with an outline of the topic: one
// root node and a child per clause or keyword. In enhance mode the
// existing graph is kept and the children hang off its first root.
func (m *MockProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	if !m.available {
		return "", fmt.Errorf("mock provider is not available")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	topic := section(prompt, topicMarker)
	if topic == "" {
		return "", fmt.Errorf("unsupported prompt type")
	}

	content := mindmap.Content{Nodes: []mindmap.Node{}, Edges: []mindmap.Edge{}}
	if raw := section(prompt, existingMarker); raw != "" {
		if err := json.Unmarshal([]byte(raw), &content); err != nil {
			return "", fmt.Errorf("mock provider could not read existing graph: %w", err)
		}
	}

	used := make(map[string]bool, len(content.Nodes))
	for _, n := range content.Nodes {
		used[n.ID] = true
	}
	next := 1
	newID := func() string {
		for used[strconv.Itoa(next)] {
			next++
		}
		id := strconv.Itoa(next)
		used[id] = true
		return id
	}

	root := firstRoot(content)
	if root == "" {
		root = newID()
		content.Nodes = append(content.Nodes, mindmap.Node{ID: root, Data: mindmap.NodeData{Label: title(topic)}})
	}
	for _, label := range outline(topic) {
		id := newID()
		content.Nodes = append(content.Nodes, mindmap.Node{ID: id, Data: mindmap.NodeData{Label: label}})
		content.Edges = append(content.Edges, mindmap.Edge{ID: mindmap.EdgeID(root, id), Source: root, Target: id})
	}

	data, err := json.Marshal(content)
	if err != nil {
		return "", err
	}
	if options.Format == "json" {
		return string(data), nil
	}
	return "```json\n" + string(data) + "\n```", nil
}

// section returns the line block following marker, up to the next blank
// line.
func section(prompt, marker string) string {
	i := strings.Index(prompt, marker)
	if i < 0 {
		return ""
	}
	rest := strings.TrimLeft(prompt[i+len(marker):], " ")
	rest = strings.TrimPrefix(rest, "\n")
	if j := strings.Index(rest, "\n\n"); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}

func firstRoot(content mindmap.Content) string {
	targets := make(map[string]bool, len(content.Edges))
	for _, e := range content.Edges {
		targets[e.Target] = true
	}
	for _, n := range content.Nodes {
		if !targets[n.ID] {
			return n.ID
		}
	}
	if len(content.Nodes) > 0 {
		return content.Nodes[0].ID
	}
	return ""
}

// outline splits a topic into child labels: clauses when the topic has
// several, keywords otherwise.
func outline(topic string) []string {
	clauses := strings.FieldsFunc(topic, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	var labels []string
	if len(clauses) > 1 {
		for _, c := range clauses[1:] {
			c = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(c), "and "))
			if c != "" {
				labels = append(labels, title(c))
			}
		}
	} else {
		seen := map[string]bool{}
		for _, w := range strings.FieldsFunc(topic, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) }) {
			lw := strings.ToLower(w)
			if len(lw) < 4 || stopWords[lw] || seen[lw] {
				continue
			}
			seen[lw] = true
			labels = append(labels, title(w))
		}
	}
	if len(labels) > maxMockChildren {
		labels = labels[:maxMockChildren]
	}
	return labels
}

func title(s string) string {
	s = strings.TrimSpace(s)
	if first, _, ok := strings.Cut(s, ","); ok {
		s = first
	}
	if s == "" {
		return mindmap.DefaultNodeLabel
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
