package store

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"hackverse-mindmap/internal/domain/resource"
	apperrors "hackverse-mindmap/internal/errors"
	"hackverse-mindmap/internal/infrastructure/observability"
)

// slowThreshold is the duration above which operations are logged as slow.
const slowThreshold = time.Second

// InstrumentedStore is a decorator that traces, times and logs every
// operation of the wrapped store.
type InstrumentedStore struct {
	inner    Store
	provider string
	logger   *zap.Logger
	metrics  *observability.Collector
}

func NewInstrumented(inner Store, provider string, logger *zap.Logger, metrics *observability.Collector) *InstrumentedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedStore{
		inner:    inner,
		provider: provider,
		logger:   logger.Named("resource_store"),
		metrics:  metrics,
	}
}

func (s *InstrumentedStore) Get(ctx context.Context, userID, resourceID string) (res *resource.Resource, err error) {
	ctx, done := s.observe(ctx, "get", userID, zap.String("resource_id", resourceID))
	defer func() { done(err) }()
	return s.inner.Get(ctx, userID, resourceID)
}

func (s *InstrumentedStore) Put(ctx context.Context, res *resource.Resource) (err error) {
	userID := ""
	resourceID := ""
	if res != nil {
		userID, resourceID = res.UserID, res.ID
	}
	ctx, done := s.observe(ctx, "put", userID, zap.String("resource_id", resourceID))
	defer func() { done(err) }()
	return s.inner.Put(ctx, res)
}

func (s *InstrumentedStore) List(ctx context.Context, userID, classID string) (list []resource.Resource, err error) {
	ctx, done := s.observe(ctx, "list", userID, zap.String("class_id", classID))
	defer func() {
		done(err)
		if err == nil {
			s.logger.Debug("listed resources", zap.Int("count", len(list)))
		}
	}()
	return s.inner.List(ctx, userID, classID)
}

func (s *InstrumentedStore) Close() error {
	return s.inner.Close()
}

// Unwrap returns the decorated store.
func (s *InstrumentedStore) Unwrap() Store {
	return s.inner
}

func (s *InstrumentedStore) observe(ctx context.Context, op, userID string, fields ...zap.Field) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "store."+op,
		attribute.String("store.provider", s.provider),
		attribute.String("user.id", userID))

	return ctx, func(err error) {
		d := time.Since(start)
		// A missing resource is an answer, not a store failure.
		recorded := err
		if apperrors.IsNotFound(err) {
			recorded = nil
		}
		s.metrics.RecordStoreOperation(op, s.provider, d, recorded)
		observability.EndSpan(span, recorded)

		logFields := append([]zap.Field{
			zap.String("operation", op),
			zap.String("provider", s.provider),
			zap.String("user_id", userID),
			zap.Duration("duration", d),
		}, fields...)
		switch {
		case recorded != nil:
			s.logger.Error("store operation failed", append(logFields, zap.Error(err))...)
		case d > slowThreshold:
			s.logger.Warn("slow store operation", logFields...)
		default:
			s.logger.Debug("store operation completed", logFields...)
		}
	}
}
