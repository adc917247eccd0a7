package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PetMap-Recife/server/internal/api"
	"github.com/PetMap-Recife/server/internal/config"
	"github.com/PetMap-Recife/server/internal/geocoding/overpass"
	"github.com/PetMap-Recife/server/internal/metrics"
	"github.com/PetMap-Recife/server/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the PetMap HTTP server",
	Long: `Start the PetMap HTTP server and begin accepting requests.

The server will:
- Load configuration from the --config file and environment variables
- Serve the map page, static assets and the search API
- Query the Overpass API for each search
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (port 3000)
  petmap serve

  # Start on a specific host and port
  petmap serve --host 127.0.0.1 --port 9090

  # Start with debug logging on the console
  petmap serve --log-level debug --log-format console

  # Start with a config file
  petmap serve --config /etc/petmap/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 3000)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("environment", cfg.Environment).Msg("starting PetMap server")

	metrics.Init(Version, GitCommit, BuildDate)
	logger.Info().Str("version", Version).Msg("metrics initialized")

	tracingCtx, tracingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	shutdownTracing, err := telemetry.InitTracing(tracingCtx, cfg.Tracing, Version)
	tracingCancel()
	if err != nil {
		return fmt.Errorf("tracing init failed: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	client := newOverpassClient(cfg.Overpass)
	logger.Info().
		Str("endpoint", cfg.Overpass.URL).
		Float64("rate_limit", cfg.Overpass.RateLimit).
		Dur("timeout", cfg.Overpass.Timeout).
		Msg("overpass client configured")

	router := api.NewRouter(api.Deps{
		Config:    cfg,
		Logger:    logger,
		Searcher:  client,
		Upstream:  client.Status,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	})
	defer router.Close()

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Handler,
		ReadTimeout:       10 * time.Second, // Total time to read request
		WriteTimeout:      cfg.Overpass.Timeout + 15*time.Second,
		ReadHeaderTimeout: 5 * time.Second, // Time to read headers
		MaxHeaderBytes:    1 << 20,         // 1 MB max header size
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msgf("Servidor rodando em %s", cfg.Server.URL())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	return gracefulShutdown(server, serverErr, logger)
}

// newOverpassClient builds the geodata client from config.
func newOverpassClient(cfg config.OverpassConfig) *overpass.Client {
	return overpass.NewClient(cfg.URL,
		overpass.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		overpass.WithRateLimit(cfg.RateLimit),
		overpass.WithUserAgent(cfg.UserAgent),
	)
}

func gracefulShutdown(server *http.Server, serverErr <-chan error, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err, ok := <-serverErr:
		if ok && err != nil {
			logger.Error().Err(err).Msg("http server error")
			return err
		}
		return nil
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
