package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// healthcheckCmd represents the healthcheck command
	healthcheckCmd = &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is healthy",
		Long: `Performs a health check by calling the /health endpoint.

This command is used by Docker HEALTHCHECK to monitor container health.
It exits with code 0 if the server is healthy or degraded (the Overpass API
being slow does not make this server unhealthy), non-zero otherwise.`,
		RunE: runHealthcheck,
	}

	// Flags
	healthcheckTimeout int
	healthcheckURL     string
	healthcheckStrict  bool
)

func init() {
	healthcheckCmd.Flags().IntVar(&healthcheckTimeout, "timeout", 5, "timeout in seconds")
	healthcheckCmd.Flags().StringVar(&healthcheckURL, "url", "", "health check URL (default: http://localhost:{PORT}/health)")
	healthcheckCmd.Flags().BoolVar(&healthcheckStrict, "strict", false, "treat a degraded server as unhealthy")
}

// CheckResult mirrors one entry of the /health checks map.
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse matches the response from internal/api/handlers/health.go
type HealthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

func runHealthcheck(cmd *cobra.Command, args []string) error {
	url := healthcheckURL
	if url == "" {
		url = defaultHealthURL()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(healthcheckTimeout)*time.Second)
	defer cancel()

	resp, err := performHealthCheck(ctx, url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if !isHealthy(resp.Status, healthcheckStrict) {
		for name, check := range resp.Checks {
			if check.Status != "pass" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s %s\n", name, check.Status, check.Message)
			}
		}
		return fmt.Errorf("unhealthy: status=%s", resp.Status)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", resp.Status)
	return nil
}

func defaultHealthURL() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	return fmt.Sprintf("http://localhost:%s/health", port)
}

// performHealthCheck fetches url and decodes the health document. A 503 still
// carries a body describing the failed checks, so it is decoded too.
func performHealthCheck(ctx context.Context, url string) (HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return HealthResponse{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return HealthResponse{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return HealthResponse{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return HealthResponse{}, fmt.Errorf("invalid response: %w", err)
	}
	return health, nil
}

func isHealthy(status string, strict bool) bool {
	switch status {
	case "healthy":
		return true
	case "degraded":
		return !strict
	}
	return false
}
