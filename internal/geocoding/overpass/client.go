package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PetMap-Recife/server/internal/domain/places"
	"github.com/PetMap-Recife/server/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public Overpass interpreter endpoint
	DefaultBaseURL = "https://overpass-api.de/api/interpreter"
	// DefaultUserAgent identifies the application to the Overpass operators
	DefaultUserAgent = "PetMap/1.0"
	// DefaultTimeout leaves room for the [timeout:25] the query asks for
	DefaultTimeout = 30 * time.Second
	// DefaultRateLimit keeps us well inside the public instance's slot policy
	DefaultRateLimit = rate.Limit(1.0)
	// maxBodyBytes caps how much of a response is read
	maxBodyBytes = 32 << 20

	tracerName = "github.com/PetMap-Recife/server/internal/geocoding/overpass"
)

// Client issues queries against an Overpass interpreter.
// A query is attempted exactly once; errors surface to the caller unchanged.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	inflight   singleflight.Group
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRateLimit sets a custom rate limit (requests per second).
// Zero or negative disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// NewClient creates a new Overpass API client.
// baseURL is the full interpreter URL (e.g. "https://overpass-api.de/api/interpreter").
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL:   baseURL,
		userAgent: DefaultUserAgent,
		limiter:   rate.NewLimiter(DefaultRateLimit, 1),
		tracer:    otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Search builds the query for params and runs it.
func (c *Client) Search(ctx context.Context, params places.SearchParams) (*places.Envelope, error) {
	query, err := BuildQuery(params)
	if err != nil {
		return nil, err
	}
	return c.Interpret(ctx, query)
}

// Interpret runs a raw Overpass QL query. Identical queries in flight at the
// same time share one upstream request.
func (c *Client) Interpret(ctx context.Context, query string) (*places.Envelope, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	ch := c.inflight.DoChan(query, func() (interface{}, error) {
		// Detached from the first caller's cancellation so joined callers
		// are not failed by it; the HTTP client timeout still bounds it.
		return c.do(context.WithoutCancel(ctx), query)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*places.Envelope), nil
	case <-ctx.Done():
		return nil, &NetworkError{Cause: ctx.Err()}
	}
}

func (c *Client) do(ctx context.Context, query string) (*places.Envelope, error) {
	ctx, span := c.tracer.Start(ctx, "overpass.interpret",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("overpass.endpoint", c.baseURL)),
	)
	defer span.End()

	start := time.Now()
	envelope, outcome, err := c.execute(ctx, query)
	metrics.OverpassLatency.Observe(time.Since(start).Seconds())
	metrics.OverpassRequestsTotal.WithLabelValues(outcome).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}

	metrics.OverpassRecords.Observe(float64(envelope.Len()))
	span.SetAttributes(attribute.Int("overpass.records", envelope.Len()))
	span.SetStatus(codes.Ok, "")
	return envelope, nil
}

func (c *Client) execute(ctx context.Context, query string) (*places.Envelope, string, error) {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "network_error", &NetworkError{Cause: fmt.Errorf("rate limiter: %w", err)}
	}

	params := url.Values{}
	params.Set("data", query)
	requestURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, "network_error", &NetworkError{Cause: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "network_error", &NetworkError{Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, "http_error", &NetworkError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "network_error", &NetworkError{Cause: fmt.Errorf("read response: %w", err)}
	}

	var envelope places.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, "parse_error", &ParseError{Cause: err}
	}
	return &envelope, "success", nil
}
