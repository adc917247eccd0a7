package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PetMap-Recife/server/internal/mapview"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"HOST", "PORT", "ENVIRONMENT", "LOG_LEVEL", "LOG_FORMAT",
	"OVERPASS_URL", "OVERPASS_TIMEOUT_SECONDS", "OVERPASS_RATE_LIMIT", "OVERPASS_USER_AGENT",
	"DEFAULT_LAT", "DEFAULT_LON", "DEFAULT_ZOOM", "DEFAULT_RADIUS",
	"RATE_LIMIT_PUBLIC", "TRUSTED_PROXY_CIDRS", "CORS_ALLOWED_ORIGINS",
	"TRACING_ENABLED", "TRACING_EXPORTER", "TRACING_SAMPLE_RATE", "OTEL_EXPORTER_OTLP_ENDPOINT",
}

// clearEnv blanks every key Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Addr())
	assert.Equal(t, "http://localhost:3000", cfg.Server.URL())
	assert.Equal(t, "https://overpass-api.de/api/interpreter", cfg.Overpass.URL)
	assert.Equal(t, 30*time.Second, cfg.Overpass.Timeout)
	assert.Equal(t, 1.0, cfg.Overpass.RateLimit)
	assert.Equal(t, mapview.DefaultView(), cfg.Map.View())
	assert.Equal(t, 1000.0, cfg.Map.DefaultRadius)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("OVERPASS_URL", "http://overpass.local/api/interpreter")
	t.Setenv("OVERPASS_TIMEOUT_SECONDS", "5")
	t.Setenv("OVERPASS_RATE_LIMIT", "0.5")
	t.Setenv("DEFAULT_LAT", "-8.1")
	t.Setenv("DEFAULT_LON", "-34.9")
	t.Setenv("DEFAULT_ZOOM", "12")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("TRACING_SAMPLE_RATE", "0.25")
	t.Setenv("TRUSTED_PROXY_CIDRS", "10.0.0.0/8, 192.168.0.0/16")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8081", cfg.Server.Addr())
	assert.Equal(t, "http://127.0.0.1:8081", cfg.Server.URL())
	assert.Equal(t, "http://overpass.local/api/interpreter", cfg.Overpass.URL)
	assert.Equal(t, 5*time.Second, cfg.Overpass.Timeout)
	assert.Equal(t, 0.5, cfg.Overpass.RateLimit)
	assert.Equal(t, mapview.View{Center: mapview.Point{Lat: -8.1, Lon: -34.9}, Zoom: 12}, cfg.Map.View())
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, 0.25, cfg.Tracing.SampleRate)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.0.0/16"}, cfg.RateLimit.TrustedProxyCIDRs)
}

func TestLoad_MalformedNumberFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-port")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"port out of range", "PORT", "70000", "PORT"},
		{"relative overpass url", "OVERPASS_URL", "/api/interpreter", "OVERPASS_URL"},
		{"latitude out of range", "DEFAULT_LAT", "123", "DEFAULT_LAT"},
		{"radius too large", "DEFAULT_RADIUS", "60000", "DEFAULT_RADIUS"},
		{"zoom too deep", "DEFAULT_ZOOM", "25", "DEFAULT_ZOOM"},
		{"sample rate above one", "TRACING_SAMPLE_RATE", "1.5", "TRACING_SAMPLE_RATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_OTLPRequiresEndpoint(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("TRACING_EXPORTER", "otlp")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_EXPORTER_OTLP_ENDPOINT")

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "collector:4317", cfg.Tracing.OTLPEndpoint)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "petmap.yaml")
	content := `
server:
  port: 4000
overpass:
  url: http://mirror.example/api/interpreter
  timeout: 10s
map:
  default_lat: -8.06
  default_lon: -34.88
  default_zoom: 14
  default_radius: 2500
logging:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "http://mirror.example/api/interpreter", cfg.Overpass.URL)
	assert.Equal(t, 10*time.Second, cfg.Overpass.Timeout)
	assert.Equal(t, 14, cfg.Map.DefaultZoom)
	assert.Equal(t, 2500.0, cfg.Map.DefaultRadius)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 1.0, cfg.Overpass.RateLimit, "unset keys keep their defaults")

	t.Setenv("PORT", "5000")
	cfg, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port, "environment wins over the file")
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))
	_, err = LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
	assert.Contains(t, buf.String(), `"service":"petmap"`)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LoggingConfig{Level: "loud"}, &buf)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LoggingConfig{Level: "info", Format: "console"}, &buf)
	logger.Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestLoad_CORS(t *testing.T) {
	tests := []struct {
		env          string
		origins      string
		wantAllowAll bool
		wantOrigins  int
	}{
		{"development", "", true, 0},
		{"test", "", true, 0},
		{"production", "https://petmap.recife,https://parceiro.example", false, 2},
		{"production", "", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.origins, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("ENVIRONMENT", tt.env)
			t.Setenv("CORS_ALLOWED_ORIGINS", tt.origins)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllowAll, cfg.CORS.AllowAllOrigins)
			assert.Len(t, cfg.CORS.AllowedOrigins, tt.wantOrigins)
		})
	}
}
