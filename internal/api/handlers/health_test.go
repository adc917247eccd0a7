package handlers

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

func okProbe(context.Context) error { return nil }

func failingProbe(context.Context) error { return errors.New("upstream unreachable") }

func runHealth(t *testing.T, checker *HealthChecker) (int, HealthCheck) {
	t.Helper()
	w := httptest.NewRecorder()
	checker.Health().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var response HealthCheck
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return w.Code, response
}

func TestHealthCheck_AllHealthy(t *testing.T) {
	checker := NewHealthChecker("0.1.0", "test-commit").Register("overpass", okProbe, false)

	code, response := runHealth(t, checker)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "0.1.0", response.Version)
	assert.Equal(t, "test-commit", response.GitCommit)
	assert.NotEmpty(t, response.Timestamp)
	assert.Equal(t, "pass", response.Checks["overpass"].Status)
}

func TestHealthCheck_NonCriticalFailureDegrades(t *testing.T) {
	checker := NewHealthChecker("0.1.0", "c").Register("overpass", failingProbe, false)

	code, response := runHealth(t, checker)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", response.Status)
	assert.Equal(t, "warn", response.Checks["overpass"].Status)
	assert.Equal(t, "upstream unreachable", response.Checks["overpass"].Message)
}

func TestHealthCheck_CriticalFailureIsUnhealthy(t *testing.T) {
	checker := NewHealthChecker("0.1.0", "c").
		Register("templates", failingProbe, true).
		Register("overpass", okProbe, false)

	code, response := runHealth(t, checker)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", response.Status)
	assert.Equal(t, "fail", response.Checks["templates"].Status)
	assert.Equal(t, []string{"overpass", "templates"}, checker.Names())
}

func TestHealthCheck_ShuttingDown(t *testing.T) {
	checker := NewHealthChecker("0.1.0", "c").Register("overpass", okProbe, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/health", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	checker.Health().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "shutting_down")
}

func TestHealthzReadyz(t *testing.T) {
	for path, handler := range map[string]http.Handler{"/healthz": Healthz(), "/readyz": Readyz()} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	}
}
