// Package upstream contains the HTTP adapters for the storefront API
// collaborators: auth, remote cart, product catalog, and the interaction
// sink. Each adapter implements its core port and maps transport failures to
// domain errors.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mesi0621/storefront-gateway/internal/core/domain"
)

const defaultRequestTimeout = 10 * time.Second

// Client is the thin JSON/REST client the adapters share.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a Client for the given base URL. If timeout <= 0,
// defaultRequestTimeout is used.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// statusError carries a non-2xx upstream response. It wraps
// domain.ErrUpstreamUnavailable so callers can errors.Is against the
// network-error class while still seeing the status code.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.code, e.body)
}

func (e *statusError) Unwrap() error { return domain.ErrUpstreamUnavailable }

// do issues a JSON request and decodes the response into out (when non-nil).
// Connection failures and timeouts wrap domain.ErrUpstreamUnavailable;
// non-2xx responses return a *statusError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusOf returns the HTTP status of err, or 0 for transport-level failures.
func statusOf(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.code
	}
	return 0
}
