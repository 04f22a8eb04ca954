// Package metrics provides Prometheus metrics for translation runs.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics, one sample per attempt
	httpAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagetranslate_http_attempts_total",
			Help: "Total number of HTTP attempts against the translation service",
		},
		[]string{"endpoint", "result"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagetranslate_http_request_duration_seconds",
			Help:    "HTTP attempt duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	httpRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagetranslate_http_retries_total",
			Help: "Total number of retried HTTP attempts",
		},
		[]string{"endpoint"},
	)

	// Job metrics
	jobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagetranslate_jobs_total",
			Help: "Total translation jobs by outcome",
		},
		[]string{"status"},
	)

	jobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pagetranslate_job_duration_seconds",
			Help:    "Time to translate and store one page",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	bytesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pagetranslate_bytes_written_total",
			Help: "Total translated bytes written to destinations",
		},
	)

	// Auth metrics
	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagetranslate_auth_attempts_total",
			Help: "Total login attempts",
		},
		[]string{"result"},
	)

	// Storage metrics
	storageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagetranslate_storage_operations_total",
			Help: "Total storage operations",
		},
		[]string{"backend", "operation", "result"},
	)

	storageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagetranslate_storage_operation_duration_seconds",
			Help:    "Storage operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)
)

// WriteTextfile writes the default registry in text format to path,
// for pickup by a node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// RecordHTTPAttempt records one HTTP attempt. A status of 0 means a transport error.
func RecordHTTPAttempt(endpoint string, status int, duration time.Duration) {
	result := "error"
	if status != 0 {
		result = strconv.Itoa(status)
	}
	httpAttemptsTotal.WithLabelValues(endpoint, result).Inc()
	httpRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordHTTPRetry records a failed attempt that will be retried.
func RecordHTTPRetry(endpoint string) {
	httpRetriesTotal.WithLabelValues(endpoint).Inc()
}

// RecordJob records a finished job.
func RecordJob(duration time.Duration, written int64, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	jobsTotal.WithLabelValues(status).Inc()
	jobDuration.Observe(duration.Seconds())
	if success {
		bytesWritten.Add(float64(written))
	}
}

// RecordAuthAttempt records a login outcome.
func RecordAuthAttempt(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	authAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordStorageOperation records a storage read or write.
func RecordStorageOperation(backend, operation string, duration time.Duration, success bool) {
	result := "success"
	if !success {
		result = "error"
	}
	storageOperationsTotal.WithLabelValues(backend, operation, result).Inc()
	storageOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}
