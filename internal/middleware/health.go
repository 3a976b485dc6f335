package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthChecker pings one dependency of the analyser (database, artifact
// store, job queue).
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a ping function, e.g. the queue's or the store's.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// DatabaseHealthChecker pings the analysis database.
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.DB.PingContext(ctx)
}

type optionalChecker struct{ HealthChecker }

// Optional marks a dependency the sync path can live without, like Redis
// for the api: its failure degrades the report instead of failing it.
func Optional(c HealthChecker) HealthChecker { return optionalChecker{c} }

func isOptional(c HealthChecker) bool {
	_, ok := c.(optionalChecker)
	return ok
}

type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

type CheckStatus struct {
	Status     string `json:"status"`
	Optional   bool   `json:"optional,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// RunChecks pings every dependency concurrently. Only a failing required
// check makes the result unhealthy.
func RunChecks(ctx context.Context, checkers map[string]HealthChecker) HealthStatus {
	health := HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]CheckStatus, len(checkers)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()
			start := time.Now()
			err := checker.Check(ctx)

			cs := CheckStatus{
				Status:     StatusHealthy,
				Optional:   isOptional(checker),
				DurationMS: time.Since(start).Milliseconds(),
			}
			if err != nil {
				cs.Status, cs.Message = StatusUnhealthy, err.Error()
			}
			mu.Lock()
			health.Checks[name] = cs
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()

	for _, cs := range health.Checks {
		if cs.Status == StatusHealthy {
			continue
		}
		if !cs.Optional {
			health.Status = StatusUnhealthy
			break
		}
		health.Status = StatusDegraded
	}
	return health
}

// HealthHandler serves the full report; 503 only when unhealthy.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := RunChecks(ctx, checkers)
		code := http.StatusOK
		if health.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeHealth(w, code, health)
	}
}

// ReadinessHandler answers whether uploads can be accepted right now and
// lists the required dependencies that are down.
func ReadinessHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		health := RunChecks(ctx, checkers)
		failing := make([]string, 0)
		for name, cs := range health.Checks {
			if cs.Status != StatusHealthy && !cs.Optional {
				failing = append(failing, name)
			}
		}
		sort.Strings(failing)

		status, code := "ready", http.StatusOK
		if len(failing) > 0 {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		writeHealth(w, code, map[string]any{
			"status":    status,
			"failing":   failing,
			"timestamp": health.Timestamp,
		})
	}
}

// LivenessHandler only proves the process is serving.
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeHealth(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
