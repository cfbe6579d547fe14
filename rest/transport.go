// Package rest implements the tenantflow backend interfaces against a
// TenantFlow HTTP API server.
//
// A single configured transport is shared by every API group. It
// attaches the bearer credential and a request correlation ID on the
// way out, and watches every response for HTTP 401 on the way back: an
// unauthorized response from any endpoint fires the registered
// forced-logout hook, regardless of which component issued the request.
package rest

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
	"sync"
	"time"

	"github.com/google/uuid"
	tenantflow "github.com/tenantflow/tenantflow-go"
)

// Config holds transport configuration.
type Config struct {
	// BaseURL is the API root, including the /api prefix.
	BaseURL string

	// Timeout is the fixed per-request timeout. Default: 10 seconds.
	// Timed-out requests fail hard and are never retried.
	Timeout time.Duration
}

// Client bundles the API groups sharing one configured transport.
type Client struct {
	transport     *Transport
	auth          *AuthAPI
	notifications *NotificationAPI
	profiles      *ProfileAPI
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a structured logger for the transport.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.transport.logger = l }
}

// WithCredentialStore sets the store the transport reads the bearer
// credential from. Without a store no Authorization header is attached.
func WithCredentialStore(s tenantflow.CredentialStore) Option {
	return func(c *Client) { c.transport.store = s }
}

// WithHTTPTransport replaces the underlying http.RoundTripper
// (primarily for tests).
func WithHTTPTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport.base = rt }
}

// New creates a Client for the given API server.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("rest: BaseURL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("rest: invalid BaseURL: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = tenantflow.DefaultTimeout
	}

	t := &Transport{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		base:    http.DefaultTransport,
		logger:  slog.Default(),
	}
	c := &Client{transport: t}
	for _, o := range opts {
		o(c)
	}
	t.http = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &interceptor{t: t},
	}

	c.auth = &AuthAPI{t: t}
	c.notifications = &NotificationAPI{t: t}
	c.profiles = &ProfileAPI{t: t}
	return c, nil
}

// Auth returns the authentication API group.
func (c *Client) Auth() *AuthAPI { return c.auth }

// Notifications returns the notification API group.
func (c *Client) Notifications() *NotificationAPI { return c.notifications }

// Profiles returns the profile API group.
func (c *Client) Profiles() *ProfileAPI { return c.profiles }

// Transport returns the shared transport.
func (c *Client) Transport() *Transport { return c.transport }

// Transport is the single configured HTTP client shared by all API
// groups. It is the process-wide owner of the attached-credential
// request header.
type Transport struct {
	baseURL string
	base    http.RoundTripper
	http    *http.Client
	store   tenantflow.CredentialStore
	logger  *slog.Logger

	mu             sync.Mutex
	onUnauthorized func(reason string)
}

// OnUnauthorized registers the forced-logout hook. The hook is invoked
// once per 401 response, from the goroutine that issued the request.
func (t *Transport) OnUnauthorized(fn func(reason string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onUnauthorized = fn
}

func (t *Transport) fireUnauthorized(reason string) {
	t.mu.Lock()
	fn := t.onUnauthorized
	t.mu.Unlock()
	if fn != nil {
		fn(reason)
	}
}

func (t *Transport) credential() (string, bool) {
	if t.store == nil {
		return "", false
	}
	token, err := t.store.Load()
	if err != nil {
		return "", false
	}
	return token, true
}

// interceptor is the request/response middleware: bearer attachment and
// request IDs outbound, 401 detection inbound.
type interceptor struct {
	t *Transport
}

func (i *interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if token, ok := i.t.credential(); ok && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if req.Header.Get("X-Request-ID") == "" {
		if id := tenantflow.RequestIDFromContext(req.Context()); id != "" {
			req.Header.Set("X-Request-ID", id)
		} else {
			req.Header.Set("X-Request-ID", uuid.NewString())
		}
	}

	resp, err := i.t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		i.t.logger.Warn("rest: unauthorized response, forcing logout",
			"method", req.Method, "path", req.URL.Path)
		i.t.fireUnauthorized(fmt.Sprintf("%s %s returned 401", req.Method, req.URL.Path))
	}
	return resp, nil
}

// errorBody is the error envelope the API uses for non-2xx responses.
type errorBody struct {
	Error string `json:"error"`
}

// doJSON issues a request with an optional JSON body and decodes the
// JSON response into out (when out is non-nil). Non-2xx responses are
// returned as *tenantflow.APIError.
func (t *Transport) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("rest: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("rest: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return t.do(req, out)
}

// do sends a prepared request and decodes the response.
func (t *Transport) do(req *http.Request, out any) error {
	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("rest: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("rest: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return &tenantflow.APIError{Status: resp.StatusCode, Message: eb.Error}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("rest: decode response: %w", err)
		}
	}
	return nil
}
