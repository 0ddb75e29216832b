package store

import (
	"context"
	"sync"

	"hackverse-mindmap/internal/domain/resource"
)

// MemoryStore keeps resources in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]map[string]*resource.Resource
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]map[string]*resource.Resource)}
}

func (s *MemoryStore) Get(_ context.Context, userID, resourceID string) (*resource.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.items[userID][resourceID]
	if !ok {
		return nil, notFound(resourceID)
	}
	return cloneResource(res), nil
}

func (s *MemoryStore) Put(_ context.Context, res *resource.Resource) error {
	if err := validateForPut(res); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser, ok := s.items[res.UserID]
	if !ok {
		byUser = make(map[string]*resource.Resource)
		s.items[res.UserID] = byUser
	}
	byUser[res.ID] = cloneResource(res)
	return nil
}

func (s *MemoryStore) List(_ context.Context, userID, classID string) ([]resource.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]resource.Resource, 0, len(s.items[userID]))
	for _, res := range s.items[userID] {
		if classID != "" && res.ClassID != classID {
			continue
		}
		out = append(out, *cloneResource(res))
	}
	newestFirst(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
