package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// HealthCheck represents the health status of the server
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms"`
	Details   map[string]any `json:"details,omitempty"`
}

// Probe is a dependency check; a nil error means healthy.
type Probe func(ctx context.Context) error

type namedProbe struct {
	name     string
	probe    Probe
	critical bool
}

// HealthChecker runs dependency probes for /health.
type HealthChecker struct {
	probes    []namedProbe
	version   string
	gitCommit string
	timeout   time.Duration
}

// NewHealthChecker creates a health checker reporting version and gitCommit.
func NewHealthChecker(version, gitCommit string) *HealthChecker {
	return &HealthChecker{version: version, gitCommit: gitCommit, timeout: 5 * time.Second}
}

// Register adds a probe. A failing critical probe makes the server unhealthy
// (503); a failing non-critical one only degrades it.
func (h *HealthChecker) Register(name string, probe Probe, critical bool) *HealthChecker {
	h.probes = append(h.probes, namedProbe{name: name, probe: probe, critical: critical})
	return h
}

// Health returns the detailed health handler.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
			return
		default:
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		checks := h.run(ctx)

		overallStatus := "healthy"
		statusCode := http.StatusOK
		for _, p := range h.probes {
			switch checks[p.name].Status {
			case "fail":
				overallStatus = "unhealthy"
				statusCode = http.StatusServiceUnavailable
			case "warn":
				if overallStatus == "healthy" {
					overallStatus = "degraded"
				}
			}
		}

		writeJSON(w, statusCode, HealthCheck{
			Status:    overallStatus,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// run executes every probe concurrently.
func (h *HealthChecker) run(ctx context.Context) map[string]CheckResult {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(h.probes))
	)
	for _, p := range h.probes {
		wg.Add(1)
		go func(p namedProbe) {
			defer wg.Done()
			start := time.Now()
			err := p.probe(ctx)
			result := CheckResult{Status: "pass", LatencyMs: time.Since(start).Milliseconds()}
			if err != nil {
				result.Status = "warn"
				if p.critical {
					result.Status = "fail"
				}
				result.Message = err.Error()
			}
			mu.Lock()
			checks[p.name] = result
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	return checks
}

// Names lists the registered probes.
func (h *HealthChecker) Names() []string {
	names := make([]string, 0, len(h.probes))
	for _, p := range h.probes {
		names = append(names, p.name)
	}
	sort.Strings(names)
	return names
}

// Healthz returns a lightweight liveness response
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ok")
	})
}

// Readyz returns a readiness response
func Readyz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ready")
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: value})
}
