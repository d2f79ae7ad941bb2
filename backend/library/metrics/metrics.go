// Package metrics holds the Prometheus collectors of the server and the
// worker. Each Registry owns its own prometheus.Registry so tests can build
// as many as they like.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "files_manager"

type Registry struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	TokensIssued  prometheus.Counter
	TokensRevoked prometheus.Counter

	JobsEnqueued  *prometheus.CounterVec
	JobsProcessed *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		TokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_tokens_issued_total",
			Help:      "Session tokens handed out by /connect.",
		}),
		TokensRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_tokens_revoked_total",
			Help:      "Session tokens removed by /disconnect.",
		}),
		JobsEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_enqueued_total",
			Help:      "Enqueue attempts by task type and result.",
		}, []string{"type", "result"}),
		JobsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_processed_total",
			Help:      "Processed jobs by task type and result (ok, retry, failed).",
		}, []string{"type", "result"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RequestsTotal,
		r.RequestDuration,
		r.TokensIssued,
		r.TokensRevoked,
		r.JobsEnqueued,
		r.JobsProcessed,
	)
	return r
}

// ObserveEnqueue matches queue.Options.Observe.
func (r *Registry) ObserveEnqueue(taskType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.JobsEnqueued.WithLabelValues(taskType, result).Inc()
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
