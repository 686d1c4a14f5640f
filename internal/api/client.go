package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// defaultTimeout bounds every request; there is no per-operation override.
const defaultTimeout = 10 * time.Second

// TokenSource returns the bearer token to attach to outgoing requests, or
// empty when no credential is current.
type TokenSource func() string

// Client is the shared HTTP client for the Clario backend. All endpoints
// live under <origin>/api. Responses are JSON; errors follow the backend's
// {"detail": "..."} convention.
type Client struct {
	baseURL     string
	tokenSource TokenSource
	client      *http.Client
	limiter     *rate.Limiter
}

// NewClient creates a client for the given backend origin, e.g.
// "https://api.clario.co.in". The token source may be nil for a client that
// only hits unauthenticated endpoints.
func NewClient(origin string, tokenSource TokenSource) *Client {
	if origin != "" && origin[len(origin)-1] == '/' {
		origin = origin[:len(origin)-1]
	}

	return &Client{
		baseURL:     fmt.Sprintf("%s/api", origin),
		tokenSource: tokenSource,
		client:      &http.Client{Timeout: defaultTimeout},
		// Pacing guard: user actions are never auto-retried, but a misbehaving
		// caller in a loop must not storm the backend.
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

// BaseURL returns the resolved API base, for logging and diagnostics.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET to path and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
// Either body or out may be nil.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Delete issues a DELETE to path.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &NetworkError{Err: err}
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed at transport level")
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFromResponse(method, path, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// errorFromResponse maps a non-2xx response to the error taxonomy. The raw
// body is logged for diagnostics; only the detail message travels upward.
func (c *Client) errorFromResponse(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("body", string(raw)).
		Msg("backend returned an error")

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	detail := http.StatusText(resp.StatusCode)
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != "" {
		detail = payload.Detail
	}

	return &BackendError{StatusCode: resp.StatusCode, Detail: detail}
}
