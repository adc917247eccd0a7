package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PetMap-Recife/server/internal/mapview"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Overpass    OverpassConfig  `yaml:"overpass"`
	Map         MapConfig       `yaml:"map"`
	Logging     LoggingConfig   `yaml:"logging"`
	Tracing     TracingConfig   `yaml:"tracing"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	CORS        CORSConfig      `yaml:"cors"`
	Environment string          `yaml:"environment"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// URL is the address printed at startup.
func (s ServerConfig) URL() string {
	host := s.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, s.Port)
}

type OverpassConfig struct {
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
	UserAgent string        `yaml:"user_agent"`
}

type MapConfig struct {
	DefaultLat    float64 `yaml:"default_lat"`
	DefaultLon    float64 `yaml:"default_lon"`
	DefaultZoom   int     `yaml:"default_zoom"`
	DefaultRadius float64 `yaml:"default_radius"`
}

// Center is the initial map center.
func (m MapConfig) Center() mapview.Point {
	return mapview.Point{Lat: m.DefaultLat, Lon: m.DefaultLon}
}

// View is the initial map view.
func (m MapConfig) View() mapview.View {
	return mapview.View{Center: m.Center(), Zoom: m.DefaultZoom}
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

type RateLimitConfig struct {
	PublicPerMinute   int      `yaml:"public_per_minute"`
	TrustedProxyCIDRs []string `yaml:"trusted_proxy_cidrs"`
}

// CORSConfig controls which sites may embed the search API.
// Development and test allow every origin.
type CORSConfig struct {
	AllowedOrigins  []string `yaml:"allowed_origins"`
	AllowAllOrigins bool     `yaml:"-"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Overpass: OverpassConfig{
			URL:       "https://overpass-api.de/api/interpreter",
			Timeout:   30 * time.Second,
			RateLimit: 1,
			UserAgent: "PetMap/1.0 (+https://github.com/PetMap-Recife/server)",
		},
		Map: MapConfig{
			DefaultLat:    mapview.DefaultLat,
			DefaultLon:    mapview.DefaultLon,
			DefaultZoom:   mapview.DefaultZoom,
			DefaultRadius: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Exporter:    "stdout",
			ServiceName: "petmap-server",
			SampleRate:  1.0,
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: 60,
		},
		Environment: "development",
	}
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile reads an optional YAML file and then the environment; environment
// variables win over file values.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)

	cfg.Overpass.URL = getEnv("OVERPASS_URL", cfg.Overpass.URL)
	cfg.Overpass.Timeout = time.Duration(getEnvInt("OVERPASS_TIMEOUT_SECONDS", int(cfg.Overpass.Timeout/time.Second))) * time.Second
	cfg.Overpass.RateLimit = getEnvFloat("OVERPASS_RATE_LIMIT", cfg.Overpass.RateLimit)
	cfg.Overpass.UserAgent = getEnv("OVERPASS_USER_AGENT", cfg.Overpass.UserAgent)

	cfg.Map.DefaultLat = getEnvFloat("DEFAULT_LAT", cfg.Map.DefaultLat)
	cfg.Map.DefaultLon = getEnvFloat("DEFAULT_LON", cfg.Map.DefaultLon)
	cfg.Map.DefaultZoom = getEnvInt("DEFAULT_ZOOM", cfg.Map.DefaultZoom)
	cfg.Map.DefaultRadius = getEnvFloat("DEFAULT_RADIUS", cfg.Map.DefaultRadius)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = getEnv("TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.SampleRate = getEnvFloat("TRACING_SAMPLE_RATE", cfg.Tracing.SampleRate)
	cfg.Tracing.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.OTLPEndpoint)

	cfg.RateLimit.PublicPerMinute = getEnvInt("RATE_LIMIT_PUBLIC", cfg.RateLimit.PublicPerMinute)
	cfg.RateLimit.TrustedProxyCIDRs = getEnvList("TRUSTED_PROXY_CIDRS", cfg.RateLimit.TrustedProxyCIDRs)

	cfg.CORS.AllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", cfg.CORS.AllowedOrigins)

	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.CORS.AllowAllOrigins = cfg.Environment == "development" || cfg.Environment == "test"
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port))
	}
	if u, err := url.Parse(c.Overpass.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("OVERPASS_URL must be an absolute URL, got %q", c.Overpass.URL))
	}
	if c.Overpass.Timeout <= 0 {
		errs = append(errs, errors.New("OVERPASS_TIMEOUT_SECONDS must be positive"))
	}
	if !c.Map.Center().Valid() {
		errs = append(errs, fmt.Errorf("DEFAULT_LAT/DEFAULT_LON out of range: %s", c.Map.Center()))
	}
	if c.Map.DefaultZoom < 0 || c.Map.DefaultZoom > 19 {
		errs = append(errs, fmt.Errorf("DEFAULT_ZOOM must be between 0 and 19, got %d", c.Map.DefaultZoom))
	}
	if c.Map.DefaultRadius <= 0 || c.Map.DefaultRadius > 50000 {
		errs = append(errs, fmt.Errorf("DEFAULT_RADIUS must be in (0, 50000], got %g", c.Map.DefaultRadius))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("TRACING_SAMPLE_RATE must be between 0.0 and 1.0, got %g", c.Tracing.SampleRate))
	}
	if c.Tracing.Enabled && c.Tracing.Exporter == "otlp" && c.Tracing.OTLPEndpoint == "" {
		errs = append(errs, errors.New("OTEL_EXPORTER_OTLP_ENDPOINT is required when TRACING_EXPORTER=otlp"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
