package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rarity_runs_total",
		Help: "Total score-and-rank runs by algorithm.",
	}, []string{"algorithm"})
	runDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rarity_run_duration_seconds",
		Help:    "Histogram of score-and-rank latency in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"algorithm"})
	tokensScored = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rarity_tokens_scored_total",
		Help: "Total tokens scored by algorithm.",
	}, []string{"algorithm"})
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rarity_http_requests_total",
		Help: "Total HTTP requests by route pattern and status code.",
	}, []string{"route", "code"})
)

func init() {
	registry.MustRegister(
		runsTotal,
		runDuration,
		tokensScored,
		httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveRun records one completed score-and-rank run.
func ObserveRun(algorithm string, tokens int, duration time.Duration) {
	runsTotal.WithLabelValues(algorithm).Inc()
	tokensScored.WithLabelValues(algorithm).Add(float64(tokens))
	runDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
}

// ObserveRequest records an HTTP response for a route pattern.
func ObserveRequest(route string, code int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry for tests.
func Gatherer() prometheus.Gatherer {
	return registry
}
