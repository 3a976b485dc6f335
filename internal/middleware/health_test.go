package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	upCheck   = CheckFunc(func(context.Context) error { return nil })
	downCheck = CheckFunc(func(context.Context) error { return errors.New("connection refused") })
)

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{"database": upCheck, "storage": upCheck})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{"database": upCheck, "storage": downCheck})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, StatusUnhealthy, body.Status)
	assert.Equal(t, StatusHealthy, body.Checks["database"].Status)
	assert.Equal(t, "connection refused", body.Checks["storage"].Message)
}

func TestHealthDegradedWhenOptionalDown(t *testing.T) {
	checks := map[string]HealthChecker{"database": upCheck, "redis": Optional(downCheck)}

	rec := httptest.NewRecorder()
	HealthHandler(checks)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, StatusDegraded, body.Status)
	assert.True(t, body.Checks["redis"].Optional)
	assert.Equal(t, StatusUnhealthy, body.Checks["redis"].Status)
	assert.False(t, body.Checks["database"].Optional)
}

func TestRunChecksRequiredWinsOverOptional(t *testing.T) {
	h := RunChecks(context.Background(), map[string]HealthChecker{
		"database": downCheck,
		"redis":    Optional(downCheck),
	})
	assert.Equal(t, StatusUnhealthy, h.Status)
	assert.Len(t, h.Checks, 2)
}

func TestReadinessRunsCheckers(t *testing.T) {
	rec := httptest.NewRecorder()
	ReadinessHandler(map[string]HealthChecker{"database": upCheck, "redis": Optional(downCheck)})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)
	assert.Contains(t, rec.Body.String(), `"failing":[]`)

	rec = httptest.NewRecorder()
	ReadinessHandler(map[string]HealthChecker{"storage": downCheck, "database": downCheck})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status  string   `json:"status"`
		Failing []string `json:"failing"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, []string{"database", "storage"}, body.Failing)
}

func TestLiveness(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "ok", rec.Body.String())
}
