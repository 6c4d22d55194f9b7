package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the API server.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal *prometheus.CounterVec
	issuesServed  prometheus.Counter
	fetchErrors   prometheus.Counter
	cacheHits     prometheus.Counter
}

// NewMetrics creates the server metrics on a private registry so tests can
// run multiple servers without collector collisions.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "accbridge_http_requests_total",
			Help: "HTTP requests handled, by path and status code.",
		}, []string{"path", "code"}),
		issuesServed: factory.NewCounter(prometheus.CounterOpts{
			Name: "accbridge_issues_served_total",
			Help: "Issue payloads served to dashboard clients.",
		}),
		fetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "accbridge_fetch_errors_total",
			Help: "Upstream issue fetches that failed.",
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "accbridge_issue_cache_hits_total",
			Help: "Issue requests answered from the in-memory cache.",
		}),
	}
}
