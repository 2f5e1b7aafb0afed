// Package client talks to the workout backend over JSON/HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/atlas/internal/models"
	"github.com/google/uuid"
)

// Client issues requests against a fixed backend base URL. There are no
// retries; every failure is returned to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default transport, e.g. with a tailnet client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets an overall per-request timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Client targeting the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) get(ctx context.Context, path string, params url.Values, fallback string, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	return c.do(req, path, fallback, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body any, fallback string, out any) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return c.do(req, path, fallback, out)
}

func (c *Client) delete(ctx context.Context, path string, fallback string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	return c.do(req, path, fallback, out)
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("client: marshal %s body: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("client: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// send performs the round trip and converts non-2xx statuses into a
// RequestError. On success the caller owns resp.Body.
func (c *Client) send(req *http.Request, path, fallback string) (*http.Response, error) {
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", req.Method, "path", path, "request_id", reqID, "error", err)
		return nil, &NetworkError{Path: path, Err: err}
	}
	c.log.Debug("request",
		"method", req.Method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration", time.Since(start).String(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(resp.Body)
		return nil, newRequestError(path, resp.StatusCode, body, fallback)
	}
	return resp, nil
}

func (c *Client) do(req *http.Request, path, fallback string, out any) error {
	resp, err := c.send(req, path, fallback)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Path: path, Err: fmt.Errorf("read body: %w", err)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}

func newRequestError(path string, status int, body []byte, fallback string) *RequestError {
	msg := fallback
	var er models.ErrorResponse
	if len(body) > 0 && json.Unmarshal(body, &er) == nil && er.Error != "" {
		msg = er.Error
	}
	return &RequestError{Path: path, Status: status, Message: msg}
}
