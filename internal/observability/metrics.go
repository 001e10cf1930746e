package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce      sync.Once
	requestsTotal     *prometheus.CounterVec
	latencySeconds    *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
	approvalDecisions *prometheus.CounterVec
	registrationsFlow *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used for API observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eventhub_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		approvalDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_approval_decisions_total",
			Help: "Approval workflow outcomes by decision.",
		}, []string{"decision"})

		registrationsFlow = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_registrations_total",
			Help: "Event registration workflow transitions.",
		}, []string{"transition"})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal, approvalDecisions, registrationsFlow)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// ApprovalDecisions exposes the counter for approval workflow outcomes.
func ApprovalDecisions() *prometheus.CounterVec {
	RegisterMetrics()
	return approvalDecisions
}

// Registrations exposes the counter for registration workflow transitions.
func Registrations() *prometheus.CounterVec {
	RegisterMetrics()
	return registrationsFlow
}
