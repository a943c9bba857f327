// Package metrics holds the Prometheus collectors for route queries.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Query result labels.
const (
	ResultOK          = "ok"
	ResultNoRoute     = "no_route"
	ResultBadRequest  = "bad_request"
	ResultUnknownNode = "unknown_node"
	ResultError       = "error"
)

var (
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kmlrouter_queries_total",
		Help: "Total number of route queries by result",
	}, []string{"result"})
	QueryDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "kmlrouter_query_duration_ms",
		Help:    "Route query duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	RouteHops = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "kmlrouter_route_hops",
		Help:    "Number of edges in returned routes",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
	ExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kmlrouter_exports_total",
		Help: "Total number of rendered route documents by format",
	}, []string{"format"})
)

func init() {
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(QueryDurationMs)
	prometheus.MustRegister(RouteHops)
	prometheus.MustRegister(ExportsTotal)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
