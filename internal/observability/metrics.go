// Package observability holds the Prometheus collectors for the api and the
// worker.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets covers single completions up to a full four-step pipeline run.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300}

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloodtest_http_requests_total",
			Help: "HTTP requests by method, route and status class",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bloodtest_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method", "route"},
	)

	RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bloodtest_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		},
	)

	// PipelineRunsTotal counts pipeline runs by outcome (success | error).
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloodtest_pipeline_runs_total",
			Help: "Pipeline runs",
		},
		[]string{"status"},
	)

	// StepDuration records each agent step, including its tool calls.
	StepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bloodtest_pipeline_step_duration_seconds",
			Help:    "Pipeline step duration",
			Buckets: LLMBuckets,
		},
		[]string{"step", "status"},
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloodtest_llm_requests_total",
			Help: "Requests sent to the language model provider",
		},
		[]string{"provider", "model", "status"},
	)

	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloodtest_jobs_total",
			Help: "Queue jobs by state transition",
		},
		[]string{"state"},
	)

	RateLimitRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bloodtest_ratelimit_rejected_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		RequestsInFlight,
		PipelineRunsTotal,
		StepDuration,
		LLMRequestsTotal,
		JobsTotal,
		RateLimitRejectedTotal,
	)
}

// StatusClass turns 404 into "4xx".
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
