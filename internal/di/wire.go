//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"hackverse-mindmap/internal/config"
	"hackverse-mindmap/internal/interfaces/http/rest"
	"hackverse-mindmap/internal/service/llm"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogging,
	ProvideLogger,
	ProvideMetrics,
	ProvideTracing,
	ProvideStore,
	ProvideLLMProvider,
	ProvideGenerator,
	ProvidePublisher,
	ProvideValidator,
	ProvideGenerationBreaker,
	wire.Bind(new(rest.Generator), new(*llm.Service)),
	wire.Struct(new(rest.Dependencies), "*"),
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
