// Package store persists study resources. Implementations are selected by
// configuration; all of them report a missing resource as a NotFoundError.
package store

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"hackverse-mindmap/internal/config"
	"hackverse-mindmap/internal/domain/resource"
	apperrors "hackverse-mindmap/internal/errors"
	"hackverse-mindmap/internal/infrastructure/observability"
)

// Store abstracts the underlying database technology.
type Store interface {
	// Get returns the user's resource or a NotFoundError.
	Get(ctx context.Context, userID, resourceID string) (*resource.Resource, error)
	// Put creates or replaces a resource.
	Put(ctx context.Context, res *resource.Resource) error
	// List returns the user's resources, newest first. An empty classID
	// lists every class.
	List(ctx context.Context, userID, classID string) ([]resource.Resource, error)
	Close() error
}

// Provider names accepted by New.
const (
	ProviderMemory   = "memory"
	ProviderDynamoDB = "dynamodb"
	ProviderSupabase = "supabase"
	ProviderRedis    = "redis"
	ProviderSQLite   = "sqlite"
)

// New creates the configured store wrapped with tracing, metrics and
// logging.
func New(ctx context.Context, cfg config.Store, logger *zap.Logger, metrics *observability.Collector) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Provider {
	case ProviderMemory, "":
		s = NewMemoryStore()
	case ProviderDynamoDB:
		s, err = NewDynamoDBStoreFromConfig(ctx, cfg.DynamoDB, logger)
	case ProviderSupabase:
		s, err = NewSupabaseStore(cfg.Supabase, logger)
	case ProviderRedis:
		s, err = NewRedisStore(ctx, cfg.Redis)
	case ProviderSQLite:
		s, err = NewSQLiteStore(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unsupported store provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s store: %w", cfg.Provider, err)
	}
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderMemory
	}
	return NewInstrumented(s, provider, logger, metrics), nil
}

func notFound(resourceID string) error {
	return apperrors.NewNotFoundError("Resource").WithDetails(resourceID)
}

func validateForPut(res *resource.Resource) error {
	if res == nil || res.ID == "" || res.UserID == "" {
		return apperrors.NewValidationError("resource id and user id are required")
	}
	return nil
}

func newestFirst(list []resource.Resource) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

func cloneResource(r *resource.Resource) *resource.Resource {
	out := *r
	if r.Content != nil {
		out.Content = append([]byte(nil), r.Content...)
	}
	if r.ClassName != nil {
		name := *r.ClassName
		out.ClassName = &name
	}
	return &out
}
