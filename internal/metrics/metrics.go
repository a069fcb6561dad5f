// Package metrics exposes Prometheus collectors for the drawfeed service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scrapeRunsTotal            *prometheus.CounterVec
	recordsExtractedTotal      prometheus.Counter
	recordsAcceptedTotal       prometheus.Counter
	recordsDuplicateTotal      prometheus.Counter
	fetchFailuresTotal         *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call multiple
// times.
func Init() {
	once.Do(func() {
		scrapeRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drawfeed_scrape_runs_total",
				Help: "Total number of scrape runs, labeled by outcome.",
			},
			[]string{"status"},
		)

		recordsExtractedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "drawfeed_records_extracted_total",
				Help: "Total number of candidate records extracted from pages.",
			},
		)

		recordsAcceptedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "drawfeed_records_accepted_total",
				Help: "Total number of records newly persisted.",
			},
		)

		recordsDuplicateTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "drawfeed_records_duplicate_total",
				Help: "Total number of records rejected as duplicate signatures.",
			},
		)

		fetchFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drawfeed_fetch_failures_total",
				Help: "Total number of exhausted fetch attempts, labeled by origin.",
			},
			[]string{"origin"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"method", "route"},
		)
	})
}

// ObserveRun records the outcome of one scrape run.
func ObserveRun(ok bool, extracted, accepted, duplicates int) {
	if scrapeRunsTotal == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	scrapeRunsTotal.WithLabelValues(status).Inc()
	recordsExtractedTotal.Add(float64(extracted))
	recordsAcceptedTotal.Add(float64(accepted))
	recordsDuplicateTotal.Add(float64(duplicates))
}

// ObserveFetchFailure counts an origin whose retry budget was exhausted.
func ObserveFetchFailure(origin string) {
	if fetchFailuresTotal == nil {
		return
	}
	fetchFailuresTotal.WithLabelValues(origin).Inc()
}

// ObserveHTTPRequest records one served API request.
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
