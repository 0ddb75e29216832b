// Package di wires the resource service together.
package di

import (
	"github.com/go-chi/chi/v5"

	"hackverse-mindmap/internal/config"
	"hackverse-mindmap/internal/infrastructure/messaging"
	"hackverse-mindmap/internal/infrastructure/observability"
	"hackverse-mindmap/internal/service/llm"
	"hackverse-mindmap/internal/store"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logging   *Logging
	Metrics   *observability.Collector
	Tracer    *observability.TracerProvider
	Store     store.Store
	Generator *llm.Service
	Publisher messaging.Publisher
	Router    *chi.Mux
}
