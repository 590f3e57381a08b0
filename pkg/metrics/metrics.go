// Package metrics provides Prometheus metrics for the offer engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FetchAttemptsTotal is a counter of fetch attempts against external sources.
	FetchAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_attempts_total",
			Help: "Total number of fetch attempts against external sources",
		},
		[]string{"source", "status"},
	)

	// FetchRetriesTotal is a counter of retried fetches.
	FetchRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_retries_total",
			Help: "Total number of fetch retries after transient failures",
		},
		[]string{"source"},
	)

	// PipelineRunsTotal counts completed pipeline runs by mode and outcome.
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of pipeline runs by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	// PipelineStageDuration is a histogram of per-stage durations.
	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode", "stage"},
	)

	// RecordsAnalyzedTotal counts records that passed through normalization.
	RecordsAnalyzedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_analyzed_total",
			Help: "Total number of records analyzed by the pipeline",
		},
		[]string{"mode"},
	)

	// RecordsRejectedTotal counts raw records rejected at the ingestion boundary.
	RecordsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_rejected_total",
			Help: "Total number of raw records rejected during validation",
		},
		[]string{"source"},
	)

	// RateLookupsTotal counts exchange-rate lookups by pair and cache result.
	RateLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_lookups_total",
			Help: "Total number of exchange-rate lookups",
		},
		[]string{"pair", "result"},
	)

	// HTTPRequestsTotal is a counter of total HTTP requests.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status"},
	)

	// HTTPRequestDuration is a histogram of HTTP request latencies.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)
)

// Init initializes Prometheus metrics registry.
func Init() {
	prometheus.MustRegister(
		FetchAttemptsTotal,
		FetchRetriesTotal,
		PipelineRunsTotal,
		PipelineStageDuration,
		RecordsAnalyzedTotal,
		RecordsRejectedTotal,
		RateLookupsTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// ServeHTTP serves Prometheus metrics on the specified address.
func ServeHTTP(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordFetchAttempt records one fetch attempt against an external source.
func RecordFetchAttempt(source string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	FetchAttemptsTotal.WithLabelValues(source, status).Inc()
}

// RecordFetchRetry records a retried fetch.
func RecordFetchRetry(source string) {
	FetchRetriesTotal.WithLabelValues(source).Inc()
}

// RecordPipelineRun records a completed pipeline run.
func RecordPipelineRun(mode, outcome string) {
	PipelineRunsTotal.WithLabelValues(mode, outcome).Inc()
}

// RecordPipelineStage records the duration of one pipeline stage.
func RecordPipelineStage(mode, stage string, duration time.Duration) {
	PipelineStageDuration.WithLabelValues(mode, stage).Observe(duration.Seconds())
}

// RecordRecordsAnalyzed records how many records a run analyzed.
func RecordRecordsAnalyzed(mode string, n int) {
	RecordsAnalyzedTotal.WithLabelValues(mode).Add(float64(n))
}

// RecordRecordRejected records a raw record rejected during validation.
func RecordRecordRejected(source string) {
	RecordsRejectedTotal.WithLabelValues(source).Inc()
}

// RecordRateLookup records an exchange-rate lookup.
func RecordRateLookup(pair string, cached bool) {
	result := "fetched"
	if cached {
		result = "memoized"
	}
	RateLookupsTotal.WithLabelValues(pair, result).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
