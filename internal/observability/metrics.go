package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	reportsGeneratedTotal *prometheus.CounterVec
	failureNoticesTotal   *prometheus.CounterVec
	marksIngestedTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		reportsGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reports_generated_total",
			Help: "Student and class reports generated, by kind and outcome.",
		}, []string{"kind", "outcome"})

		failureNoticesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "failure_notices_total",
			Help: "Parent failure notices processed, by delivery status.",
		}, []string{"status"})

		marksIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marks_ingested_total",
			Help: "Mark rows submitted, by ingestion outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			reportsGeneratedTotal,
			failureNoticesTotal,
			marksIngestedTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ReportsGenerated exposes the counter for generated reports.
func ReportsGenerated() *prometheus.CounterVec {
	RegisterMetrics()
	return reportsGeneratedTotal
}

// FailureNotices exposes the counter for parent failure notices.
func FailureNotices() *prometheus.CounterVec {
	RegisterMetrics()
	return failureNoticesTotal
}

// MarksIngested exposes the counter for submitted mark rows.
func MarksIngested() *prometheus.CounterVec {
	RegisterMetrics()
	return marksIngestedTotal
}
