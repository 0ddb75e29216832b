package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application. Every
// collector owns its registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Canvas metrics
	Layouts        *prometheus.CounterVec
	LayoutDuration prometheus.Histogram
	LayoutNodes    prometheus.Histogram

	// Remote call metrics
	Generations  *prometheus.CounterVec
	Saves        *prometheus.CounterVec
	ClientCalls  *prometheus.HistogramVec
	BreakerState *prometheus.GaugeVec

	// Store metrics
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec

	// Events
	EventsPublished *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Layouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "layouts_total",
				Help:      "Total number of full layouts run by the canvas",
			},
			[]string{"direction", "status"},
		),
		LayoutDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_duration_seconds",
				Help:      "Time spent computing a layout",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
		),
		LayoutNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_nodes",
				Help:      "Number of nodes per layout",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Mind-map generations by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		Saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saves_total",
				Help:      "Mind-map saves by outcome",
			},
			[]string{"outcome"},
		),
		ClientCalls: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "client_call_duration_seconds",
				Help:      "Duration of calls to the resource service",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "status"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of resource store operations",
			},
			[]string{"operation", "provider", "status"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Resource store operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "provider"},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Domain events handed to the publisher",
			},
			[]string{"type", "status"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Layouts,
		c.LayoutDuration,
		c.LayoutNodes,
		c.Generations,
		c.Saves,
		c.ClientCalls,
		c.BreakerState,
		c.StoreOperations,
		c.StoreDuration,
		c.EventsPublished,
	)

	return c
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordLayout records one full layout. Nil collectors are ignored so
// callers without metrics need no guards.
func (c *Collector) RecordLayout(direction string, nodes int, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.Layouts.WithLabelValues(direction, status(err)).Inc()
	c.LayoutDuration.Observe(d.Seconds())
	c.LayoutNodes.Observe(float64(nodes))
}

// RecordGeneration counts a generation attempt.
func (c *Collector) RecordGeneration(mode string, err error) {
	if c == nil {
		return
	}
	c.Generations.WithLabelValues(mode, status(err)).Inc()
}

// RecordSave counts a save attempt.
func (c *Collector) RecordSave(err error) {
	if c == nil {
		return
	}
	c.Saves.WithLabelValues(status(err)).Inc()
}

// RecordClientCall records the duration of an outgoing call.
func (c *Collector) RecordClientCall(operation string, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.ClientCalls.WithLabelValues(operation, status(err)).Observe(d.Seconds())
}

// SetBreakerState exports a circuit breaker state transition.
func (c *Collector) SetBreakerState(name string, state int) {
	if c == nil {
		return
	}
	c.BreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordStoreOperation records a resource store call.
func (c *Collector) RecordStoreOperation(operation, provider string, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.StoreOperations.WithLabelValues(operation, provider, status(err)).Inc()
	c.StoreDuration.WithLabelValues(operation, provider).Observe(d.Seconds())
}

// RecordEvent counts a published event.
func (c *Collector) RecordEvent(eventType string, err error) {
	if c == nil {
		return
	}
	c.EventsPublished.WithLabelValues(eventType, status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
