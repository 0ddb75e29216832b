package di

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hackverse-mindmap/internal/auth"
	"hackverse-mindmap/internal/config"
	"hackverse-mindmap/internal/infrastructure/breaker"
	"hackverse-mindmap/internal/infrastructure/logging"
	"hackverse-mindmap/internal/infrastructure/messaging"
	"hackverse-mindmap/internal/infrastructure/observability"
	"hackverse-mindmap/internal/interfaces/http/rest"
	"hackverse-mindmap/internal/service/llm"
	"hackverse-mindmap/internal/store"
)

// Logging pairs the root logger with the level it can be changed through.
type Logging struct {
	Logger *zap.Logger
	Level  zap.AtomicLevel
}

// ProvideLogging builds the root logger.
func ProvideLogging(cfg *config.Config) (*Logging, func(), error) {
	logger, level, err := logging.New(cfg.Logging, cfg.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return &Logging{Logger: logger, Level: level}, func() { _ = logger.Sync() }, nil
}

// ProvideLogger exposes the root logger.
func ProvideLogger(l *Logging) *zap.Logger {
	return l.Logger
}

// ProvideMetrics creates the Prometheus collector.
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.Metrics.Namespace)
}

// ProvideTracing installs the global tracer provider.
func ProvideTracing(ctx context.Context, cfg *config.Config) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		return nil, nil, err
	}
	return tp, func() { _ = tp.Shutdown(context.Background()) }, nil
}

// ProvideStore opens the configured resource store.
func ProvideStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *observability.Collector) (store.Store, func(), error) {
	s, err := store.New(ctx, cfg.Store, logger, metrics)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := s.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}
	return s, cleanup, nil
}

// ProvideLLMProvider selects the generator back end.
func ProvideLLMProvider(cfg *config.Config) (llm.Provider, error) {
	switch cfg.LLM.Provider {
	case "mock", "":
		return llm.NewMockProvider(), nil
	case "openai":
		return llm.NewOpenAIProvider(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLM.Provider)
	}
}

// ProvideGenerator creates the mind-map generation service.
func ProvideGenerator(provider llm.Provider, cfg *config.Config, logger *zap.Logger) *llm.Service {
	return llm.NewService(provider, llm.CompletionOptions{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, logger.Named("llm"))
}

// ProvidePublisher creates the event publisher. EventBridge publishing runs
// in the background so requests never wait on the bus.
func ProvidePublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *observability.Collector) (messaging.Publisher, func(), error) {
	pub, err := messaging.New(ctx, cfg.Events, cfg.Store.DynamoDB.Region, logger, metrics)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Events.Provider != "eventbridge" {
		return pub, func() {}, nil
	}
	async := messaging.NewAsyncPublisher(pub, 1000, logger)
	return async, async.Close, nil
}

// ProvideValidator creates the bearer token validator, or nil when
// authentication is disabled.
func ProvideValidator(cfg *config.Config) (*auth.Validator, error) {
	if !cfg.Auth.Enabled {
		return nil, nil
	}
	return auth.NewValidator(auth.Config{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      cfg.Auth.TokenTTL,
	})
}

// ProvideGenerationBreaker creates the breaker in front of the generate
// route.
func ProvideGenerationBreaker(cfg *config.Config, logger *zap.Logger, metrics *observability.Collector) *breaker.Breaker {
	return breaker.New("generation-route", cfg.CircuitBreaker, logger, metrics, nil)
}

// ProvideRouter builds the HTTP router.
func ProvideRouter(deps rest.Dependencies, cfg *config.Config) *chi.Mux {
	return rest.NewRouter(deps, cfg).Setup()
}
