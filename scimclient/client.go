// Package scimclient is a thin HTTP client for talking to SCIM servers.
//
// Every request carries the SCIM media type on Accept and Content-Type,
// attaches bearer or basic credentials, and transparently retries 429 Too
// Many Requests responses honoring the Retry-After header. TLS trust can
// be widened with a custom CA bundle or disabled outright for self-signed
// development servers, and traffic can be routed through an HTTP proxy.
package scimclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Retry policy for 429 Too Many Requests (RFC 6585).
const (
	maxRetries        = 3
	defaultRetryAfter = 2 * time.Second
	minRetryAfter     = time.Second
)

// Redacted replaces Authorization header values in [RedactAuth] output.
const Redacted = "***REDACTED***"

var (
	// ErrInvalidConfig is returned by [New] for unusable configuration.
	ErrInvalidConfig = errors.New("invalid client configuration")
	// ErrRequest wraps transport-level failures from the request methods.
	ErrRequest = errors.New("request failed")
)

// Config holds the connection settings for a SCIM server.
type Config struct {
	// BaseURL is the root of the SCIM endpoint, e.g.
	// "https://example.com/scim/v2". A trailing slash is stripped.
	BaseURL string
	// Token is a bearer token. It takes precedence over Username/Password.
	Token string
	// Username and Password select HTTP basic authentication when Token is
	// empty.
	Username string
	Password string
	// TLSNoVerify skips certificate verification. Ignored when CABundle is
	// set.
	TLSNoVerify bool
	// CABundle is a path to a PEM file of additional trusted roots.
	CABundle string
	// Proxy is an HTTP/HTTPS proxy URL applied to all requests.
	Proxy string
	// Timeout is the per-request timeout. Zero means 30 seconds.
	Timeout time.Duration
}

// Client issues SCIM requests against a single server.
type Client struct {
	baseURL  string
	token    string
	username string
	password string
	http     *http.Client
	sleep    func(time.Duration)
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The caller keeps
// responsibility for its transport and timeout settings.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithSleep replaces the sleep function used between 429 retries.
func WithSleep(sleep func(time.Duration)) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// New creates a client for the server described by cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	transport, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
		username: cfg.Username,
		password: cfg.Password,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		sleep: time.Sleep,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func newTransport(cfg Config) (*http.Transport, error) {
	transport, _ := http.DefaultTransport.(*http.Transport)
	transport = transport.Clone()

	// A CA bundle wins over TLSNoVerify: an explicit trust root means the
	// caller wants verification.
	switch {
	case cfg.CABundle != "":
		pem, err := os.ReadFile(cfg.CABundle)
		if err != nil {
			return nil, fmt.Errorf("%w: read CA bundle: %w", ErrInvalidConfig, err)
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: CA bundle %s contains no certificates", ErrInvalidConfig, cfg.CABundle)
		}

		transport.TLSClientConfig = &tls.Config{RootCAs: pool}
	case cfg.TLSNoVerify:
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in flag
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("%w: parse proxy URL: %w", ErrInvalidConfig, err)
		}

		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return transport, nil
}

// Header is an extra request header, used by the probe to send
// deliberately wrong values.
type Header struct {
	Name  string
	Value string
}

// Get sends a GET request to path under the base URL.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, nil)
}

// Post sends a POST request with a JSON payload.
func (c *Client) Post(ctx context.Context, path string, payload any, extra ...Header) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, payload, extra)
}

// Put sends a PUT request with a JSON payload.
func (c *Client) Put(ctx context.Context, path string, payload any, extra ...Header) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, payload, extra)
}

// Patch sends a PATCH request with a JSON payload.
func (c *Client) Patch(ctx context.Context, path string, payload any, extra ...Header) (*Response, error) {
	return c.do(ctx, http.MethodPatch, path, payload, extra)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, extra ...Header) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, extra)
}

// do executes one request with automatic 429 retry. It retries up to
// maxRetries times, sleeping for the Retry-After duration between
// attempts, and returns the final response when retries are exhausted.
func (c *Client) do(ctx context.Context, method, path string, payload any, extra []Header) (*Response, error) {
	var body []byte

	if payload != nil {
		var err error

		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: encode payload: %w", ErrRequest, err)
		}
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.once(ctx, method, path, body, extra)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries {
			c.sleep(parseRetryAfter(resp.Header.Get("Retry-After")))

			continue
		}

		return resp, nil
	}
}

func (c *Client) once(ctx context.Context, method, path string, body []byte, extra []Header) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	req.Header.Set("Accept", "application/scim+json")
	req.Header.Set("Content-Type", "application/scim+json")

	switch {
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	case c.username != "" && c.password != "":
		req.SetBasicAuth(c.username, c.password)
	}

	for _, h := range extra {
		req.Header.Set(h.Name, h.Value)
	}

	slog.Debug("scim request",
		"method", method,
		"url", req.URL.String(),
		"headers", RedactAuth(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrRequest, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// parseRetryAfter converts a Retry-After header value into a wait
// duration. Only integer-second values per RFC 7231 §7.1.3 are handled;
// missing or unparseable values get the default, and the result never
// drops below one second so a Retry-After of 0 cannot busy-loop.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return defaultRetryAfter
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return defaultRetryAfter
	}

	d := time.Duration(seconds * float64(time.Second))
	if d < minRetryAfter {
		return minRetryAfter
	}

	return d
}

// RedactAuth returns a copy of headers with every Authorization value
// replaced by [Redacted]. Name matching is case-insensitive, so maps
// built with non-canonical keys are redacted too. Use it before headers
// reach logs or reports.
func RedactAuth(headers http.Header) http.Header {
	redacted := headers.Clone()

	for name, vals := range redacted {
		if !strings.EqualFold(name, "Authorization") {
			continue
		}

		replaced := make([]string, len(vals))
		for i := range replaced {
			replaced[i] = Redacted
		}

		redacted[name] = replaced
	}

	return redacted
}
