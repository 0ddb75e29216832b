// Package rest serves the resource and mind-map generation API.
package rest

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	"hackverse-mindmap/internal/auth"
	"hackverse-mindmap/internal/config"
	"hackverse-mindmap/internal/domain/mindmap"
	"hackverse-mindmap/internal/infrastructure/breaker"
	"hackverse-mindmap/internal/infrastructure/messaging"
	"hackverse-mindmap/internal/infrastructure/observability"
	"hackverse-mindmap/internal/store"
)

// Generator produces mind-map content from a prompt, optionally extending
// an existing graph.
type Generator interface {
	GenerateMindmap(ctx context.Context, prompt string, existing *mindmap.Content) (mindmap.Content, error)
}

// Dependencies are the collaborators the handlers use. Validator may be nil,
// in which case the /users routes are served without authentication.
type Dependencies struct {
	Store     store.Store
	Generator Generator
	Publisher messaging.Publisher
	Validator *auth.Validator
	Breaker   *breaker.Breaker
	Metrics   *observability.Collector
	Logger    *zap.Logger
}

// Router creates and configures the HTTP router
type Router struct {
	deps Dependencies
	cfg  *config.Config
}

// NewRouter creates a new router instance
func NewRouter(deps Dependencies, cfg *config.Config) *Router {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Publisher == nil {
		deps.Publisher = messaging.NoOpPublisher{}
	}
	return &Router{deps: deps, cfg: cfg}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(Logger(rt.deps.Logger))
	if rt.cfg.Tracing.Enabled {
		router.Use(observability.TracingMiddleware(rt.cfg.Tracing.ServiceName))
	}
	if rt.deps.Metrics != nil {
		router.Use(observability.MetricsMiddleware(rt.deps.Metrics))
	}
	if rt.cfg.Server.RequestTimeout > 0 {
		router.Use(chimiddleware.Timeout(rt.cfg.Server.RequestTimeout))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "traceparent"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           rt.cfg.CORS.MaxAge,
	}))

	router.Get("/health", rt.healthCheck)
	if rt.deps.Metrics != nil && rt.cfg.Metrics.Enabled {
		router.Handle(rt.cfg.Metrics.Path, rt.deps.Metrics.Handler())
	}
	router.Get("/swagger/doc.json", rt.swaggerDoc)

	h := &resourceHandler{deps: rt.deps}
	router.Route("/users/{userId}", func(r chi.Router) {
		r.Use(Authenticate(rt.deps.Validator))

		r.Route("/resources", func(r chi.Router) {
			r.Get("/", h.ListResources)
			r.Post("/", h.CreateResource)
			r.Get("/{resourceId}", h.GetResource)
			r.Put("/{resourceId}", h.UpdateResource)
			r.With(Breaker(rt.deps.Breaker)).Post("/{resourceId}/generate-mindmap", h.GenerateMindmap)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (rt *Router) swaggerDoc(w http.ResponseWriter, _ *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		WriteJSON(w, http.StatusNotFound, errorBody{Detail: "API documentation is not registered"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}
