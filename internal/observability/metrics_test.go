package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistered(t *testing.T) {
	RequestsTotal.WithLabelValues("GET", "/", "2xx").Inc()
	RequestDuration.WithLabelValues("GET", "/").Observe(0.1)
	PipelineRunsTotal.WithLabelValues("success").Inc()
	StepDuration.WithLabelValues("verification", "ok").Observe(1)
	LLMRequestsTotal.WithLabelValues("gemini", "gemini-2.0-flash", "ok").Inc()
	JobsTotal.WithLabelValues("queued").Inc()
	RateLimitRejectedTotal.Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	expected := map[string]bool{
		"bloodtest_http_requests_total":            false,
		"bloodtest_http_request_duration_seconds":  false,
		"bloodtest_http_requests_in_flight":        false,
		"bloodtest_pipeline_runs_total":            false,
		"bloodtest_pipeline_step_duration_seconds": false,
		"bloodtest_llm_requests_total":             false,
		"bloodtest_jobs_total":                     false,
		"bloodtest_ratelimit_rejected_total":       false,
	}
	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}
	for name, found := range expected {
		assert.True(t, found, "metric %s not registered", name)
	}
}

func TestPipelineCounter(t *testing.T) {
	before := testutil.ToFloat64(PipelineRunsTotal.WithLabelValues("error"))
	PipelineRunsTotal.WithLabelValues("error").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PipelineRunsTotal.WithLabelValues("error")))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", StatusClass(200))
	assert.Equal(t, "3xx", StatusClass(302))
	assert.Equal(t, "4xx", StatusClass(429))
	assert.Equal(t, "5xx", StatusClass(503))
}
