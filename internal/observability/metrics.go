package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	graphSvc "agora/internal/domain/services/ideagraph"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one server instance. Collectors are
// registered on their own registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	// changes counts committed entity changes.
	// Labels: entity (discussion, idea, link, synthesis), kind (created, updated, deleted, published)
	changes *prometheus.CounterVec

	// requestDuration measures API latency.
	// Labels: method, route, status
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		changes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "graph",
			Name:      "changes_total",
			Help:      "Committed entity changes by entity and kind",
		}, []string{"entity", "kind"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agora",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status"}),
	}
}

// ChangeHook returns a change hook counting every committed change
func (m *Metrics) ChangeHook() func(context.Context, graphSvc.ChangeEvent) error {
	return func(_ context.Context, event graphSvc.ChangeEvent) error {
		m.changes.WithLabelValues(string(event.Entity), string(event.Kind)).Inc()
		return nil
	}
}

// ChangeCount returns the current value of the change counter, for tests and the CLI
func (m *Metrics) ChangeCount(entity graphSvc.EntityType, kind graphSvc.ChangeKind) float64 {
	var out float64
	families, err := m.registry.Gather()
	if err != nil {
		return 0
	}
	for _, f := range families {
		if f.GetName() != "agora_graph_changes_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range metric.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["entity"] == string(entity) && labels["kind"] == string(kind) {
				out += metric.GetCounter().GetValue()
			}
		}
	}
	return out
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument wraps a handler registered under route with latency tracking
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
