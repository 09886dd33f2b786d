// Package handlers implements internal/server's route handlers: health
// checks, the error-response adapter, and the ingest/query/counts domain
// endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
)

// Checker is a single named health dependency.
type Checker interface {
	CheckHealth(ctx context.Context) error
}

// HealthResponse is the JSON body for every /health* route.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

// HealthManager runs a fixed set of registered Checkers and renders the
// result as a HealthResponse.
//
// Grounded on gonimbus's internal/cmd health-checker wiring (signal,
// telemetry, identity checkers registered against a manager and served
// over /health*), adapted here to logcove's own dependency set.
type HealthManager struct {
	version string

	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewHealthManager builds an empty manager reporting the given version.
func NewHealthManager(version string) *HealthManager {
	return &HealthManager{version: version, checkers: make(map[string]Checker)}
}

// RegisterChecker adds a named dependency check, overwriting any existing
// checker of the same name.
func (m *HealthManager) RegisterChecker(name string, checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers[name] = checker
}

func (m *HealthManager) runChecks(ctx context.Context) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make(map[string]string, len(m.checkers))
	for name, checker := range m.checkers {
		if err := checker.CheckHealth(ctx); err != nil {
			if err == context.DeadlineExceeded {
				results[name] = "timeout"
				continue
			}
			results[name] = "unhealthy"
			continue
		}
		results[name] = "healthy"
	}
	return results
}

// determineOverallStatus folds per-checker statuses into one overall
// status: any "unhealthy" wins outright, a "timeout" degrades the result
// without failing it, and an all-healthy (or empty) set is "healthy".
func (m *HealthManager) determineOverallStatus(checks map[string]string) string {
	degraded := false
	for _, status := range checks {
		switch status {
		case "unhealthy":
			return "unhealthy"
		case "timeout":
			degraded = true
		}
	}
	if degraded {
		return "degraded"
	}
	return "healthy"
}

// HealthHandler renders the full check set: 200 when healthy or degraded,
// 503 when unhealthy.
func (m *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	checks := m.runChecks(r.Context())
	status := m.determineOverallStatus(checks)
	resp := HealthResponse{Status: status, Version: m.version, Checks: checks}

	w.Header().Set("Content-Type", "application/json")
	if status == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"code":    "SERVICE_UNAVAILABLE",
				"message": "one or more dependencies are unhealthy",
				"details": map[string]interface{}{"checks": checks},
			},
		})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// LivenessHandler reports process liveness without running dependency
// checks; a process that can execute this handler at all is alive.
func (m *HealthManager) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "healthy", Version: m.version})
}

// ReadinessHandler reports whether the process is ready to serve traffic,
// i.e. every registered checker passes.
func (m *HealthManager) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	m.HealthHandler(w, r)
}

// StartupHandler reports whether the process has finished starting up.
// Identical to readiness here since logcove has no separate warm-up phase.
func (m *HealthManager) StartupHandler(w http.ResponseWriter, r *http.Request) {
	m.HealthHandler(w, r)
}

var (
	globalMu            sync.RWMutex
	globalHealthManager *HealthManager
)

// InitHealthManager installs the process-wide health manager used by the
// package-level handler functions.
func InitHealthManager(version string) *HealthManager {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalHealthManager = NewHealthManager(version)
	return globalHealthManager
}

// GetHealthManager returns the process-wide manager, or nil if
// InitHealthManager has never been called.
func GetHealthManager() *HealthManager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalHealthManager
}

func withGlobalManager(fn func(m *HealthManager, w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := GetHealthManager()
		if m == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{
					"code":    "SERVICE_UNAVAILABLE",
					"message": "health manager not initialized",
				},
			})
			return
		}
		fn(m, w, r)
	}
}

// HealthHandler, LivenessHandler, ReadinessHandler, and StartupHandler are
// the package-level entry points internal/server registers as routes; they
// delegate to the process-wide manager installed by InitHealthManager.
var (
	HealthHandler    = withGlobalManager((*HealthManager).HealthHandler)
	LivenessHandler  = withGlobalManager((*HealthManager).LivenessHandler)
	ReadinessHandler = withGlobalManager((*HealthManager).ReadinessHandler)
	StartupHandler   = withGlobalManager((*HealthManager).StartupHandler)
)
