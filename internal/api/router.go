package api

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/PetMap-Recife/server/internal/api/handlers"
	"github.com/PetMap-Recife/server/internal/api/middleware"
	"github.com/PetMap-Recife/server/internal/config"
	"github.com/PetMap-Recife/server/internal/metrics"
	"github.com/PetMap-Recife/server/internal/session"
	"github.com/PetMap-Recife/server/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps holds what the router needs to build its handlers.
type Deps struct {
	Config   config.Config
	Logger   zerolog.Logger
	Searcher session.Searcher
	// Upstream reports whether the geodata provider answers. Optional.
	Upstream  func(ctx context.Context) error
	Version   string
	GitCommit string
	BuildDate string
}

// Router is the assembled HTTP handler plus the background pieces it owns.
type Router struct {
	Handler     http.Handler
	RateLimiter *middleware.RateLimiter
}

// Close stops background work started by NewRouter.
func (r *Router) Close() {
	if r == nil {
		return
	}
	r.RateLimiter.Stop()
}

func NewRouter(deps Deps) *Router {
	cfg := deps.Config
	logger := deps.Logger.With().Str("component", "router").Logger()

	placesHandler := handlers.NewPlacesHandler(
		deps.Searcher,
		cfg.Map.View(),
		cfg.Map.DefaultRadius,
		cfg.Overpass.Timeout,
		cfg.Environment,
	)

	health := handlers.NewHealthChecker(deps.Version, deps.GitCommit)
	if deps.Upstream != nil {
		health.Register("overpass", deps.Upstream, false)
	}

	getOnly := func(h http.Handler) http.Handler {
		return methodMux(map[string]http.Handler{
			http.MethodGet:  h,
			http.MethodHead: h,
		})
	}

	mux := http.NewServeMux()
	mux.Handle("/{$}", web.IndexHandler())
	mux.Handle("/static/", web.StaticHandler())
	mux.Handle("/robots.txt", web.RobotsTxtHandler())

	mux.Handle("/api/v1/search", getOnly(middleware.ContentNegotiation(http.HandlerFunc(placesHandler.Search))))
	mux.Handle("/api/v1/categories", getOnly(http.HandlerFunc(placesHandler.Categories)))
	mux.Handle("/api/v1/openapi.json", OpenAPIHandler())

	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz())
	mux.Handle("/health", getOnly(health.Health()))
	mux.Handle("/version", VersionHandler(deps.Version, deps.GitCommit, deps.BuildDate))
	mux.Handle("/metrics", getOnly(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.Environment)
	if limiter == nil {
		logger.Warn().Msg("api rate limiting disabled")
	}

	// Outermost first: the request ID must exist before tracing and logging read it.
	var handler http.Handler = mux
	handler = metrics.HTTPMiddleware(handler)
	handler = limiter.Middleware(handler)
	handler = middleware.CORS(cfg.CORS, deps.Logger)(handler)
	handler = middleware.SecurityHeaders(cfg.Environment == "production")(handler)
	handler = middleware.RequestLogging(deps.Logger)(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(deps.Logger)(handler)

	logger.Debug().Strs("health_checks", health.Names()).Msg("routes registered")

	return &Router{Handler: handler, RateLimiter: limiter}
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
