package overpass

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StatusURL derives the status page from the interpreter URL
// (".../api/interpreter" becomes ".../api/status").
func (c *Client) StatusURL() string {
	base := strings.TrimRight(c.baseURL, "/")
	if i := strings.LastIndex(base, "/"); i >= 0 && strings.HasSuffix(base, "/interpreter") {
		return base[:i] + "/status"
	}
	return base + "/status"
}

// Status checks that the endpoint answers. It bypasses the query rate limiter
// since the status page does not consume a query slot.
func (c *Client) Status(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StatusURL(), nil)
	if err != nil {
		return &NetworkError{Cause: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &NetworkError{StatusCode: resp.StatusCode}
	}
	return nil
}
