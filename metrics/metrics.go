// Package metrics defines the Prometheus collectors shared by the pipeline
// and the HTTP API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Extractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricelens_extractions_total",
			Help: "Terminal payloads produced, labeled by extraction stage.",
		},
		[]string{"stage"},
	)
	FetchAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricelens_fetch_attempts_total",
			Help: "Direct fetch attempts, labeled by identity profile and outcome.",
		},
		[]string{"profile", "outcome"},
	)
	ProviderFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricelens_ai_failures_total",
			Help: "Completion provider failures, labeled by provider and error code.",
		},
		[]string{"provider", "code"},
	)
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricelens_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricelens_cache_lookups_total",
			Help: "Payload cache lookups, labeled by result.",
		},
		[]string{"result"},
	)
	SearchResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricelens_search_platform_total",
			Help: "Per-platform search outcomes, labeled by platform and outcome.",
		},
		[]string{"platform", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(Extractions)
	prometheus.MustRegister(FetchAttempts)
	prometheus.MustRegister(ProviderFailures)
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(CacheLookups)
	prometheus.MustRegister(SearchResults)
}

// Handler exposes the default registry in Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
