// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PollsTotal counts finished poll attempts, partitioned by outcome.
	PollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotter_polls_total",
		Help: "Number of completed A2S polls by result.",
	}, []string{"result"})

	// QueryDuration observes the round-trip latency of successful A2S queries.
	QueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spotter_query_duration_seconds",
		Help:    "Round-trip latency of successful A2S queries.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	// WatchedServers tracks the current size of the watchlist.
	WatchedServers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spotter_watched_servers",
		Help: "Number of servers on the watchlist.",
	})
)

// Handler returns the HTTP handler serving the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
