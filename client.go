// Package tenantflow provides a Go SDK for the TenantFlow PG/hostel
// management platform.
//
// The SDK defines interfaces for authentication, notifications, profile
// access, and credential persistence. Concrete implementations are
// injected via Option functions: rest/ talks to a real TenantFlow API
// server, fake/ provides in-memory implementations for tests.
//
// Example usage with the HTTP backend:
//
//	api, err := rest.New(rest.Config{BaseURL: "https://api.example.com/api"})
//	client, err := tenantflow.NewClient(
//	    tenantflow.Config{BaseURL: "https://api.example.com/api"},
//	    tenantflow.WithAuthBackend(api.Auth()),
//	    tenantflow.WithNotificationBackend(api.Notifications()),
//	    tenantflow.WithCredentialStore(store),
//	)
package tenantflow

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Client is the main entry point for TenantFlow operations.
// Service implementations are injected via Option functions.
type Client struct {
	config        Config
	logger        *slog.Logger
	auth          AuthBackend
	notifications NotificationBackend
	profiles      ProfileBackend
	credentials   CredentialStore
	alerter       Alerter
}

// Config holds connection and behavior configuration.
type Config struct {
	// BaseURL is the address of the TenantFlow API, including the /api
	// prefix. If empty, the TENANTFLOW_API_URL environment variable is
	// used.
	BaseURL string

	// Timeout is the fixed per-request timeout. Requests that exceed it
	// fail hard; nothing is retried. Default: 10 seconds.
	Timeout time.Duration

	// PageSize is the default notification page size. Default: 20.
	PageSize int
}

// Default configuration values.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultPageSize = 20
)

// EnvBaseURL is the environment variable consulted when Config.BaseURL
// is empty.
const EnvBaseURL = "TENANTFLOW_API_URL"

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a structured logger for the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithAuthBackend sets the authentication implementation.
func WithAuthBackend(b AuthBackend) Option {
	return func(c *Client) { c.auth = b }
}

// WithNotificationBackend sets the notification implementation.
func WithNotificationBackend(b NotificationBackend) Option {
	return func(c *Client) { c.notifications = b }
}

// WithProfileBackend sets the profile implementation.
func WithProfileBackend(b ProfileBackend) Option {
	return func(c *Client) { c.profiles = b }
}

// WithCredentialStore sets the durable credential store.
func WithCredentialStore(s CredentialStore) Option {
	return func(c *Client) { c.credentials = s }
}

// WithAlerter sets the user-visible message sink.
func WithAlerter(a Alerter) Option {
	return func(c *Client) { c.alerter = a }
}

// NewClient creates a new TenantFlow client with the given
// configuration and options.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv(EnvBaseURL)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("tenantflow: BaseURL is required (or set %s)", EnvBaseURL)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}

	c := &Client{config: cfg}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.alerter == nil {
		c.alerter = &logAlerter{logger: c.logger}
	}
	return c, nil
}

// Config returns the client configuration.
func (c *Client) Config() Config { return c.config }

// Logger returns the structured logger.
func (c *Client) Logger() *slog.Logger { return c.logger }

// Auth returns the authentication backend, or nil if not configured.
func (c *Client) Auth() AuthBackend { return c.auth }

// Notifications returns the notification backend, or nil if not configured.
func (c *Client) Notifications() NotificationBackend { return c.notifications }

// Profiles returns the profile backend, or nil if not configured.
func (c *Client) Profiles() ProfileBackend { return c.profiles }

// Credentials returns the credential store, or nil if not configured.
func (c *Client) Credentials() CredentialStore { return c.credentials }

// Alerter returns the user-visible message sink. Never nil.
func (c *Client) Alerter() Alerter { return c.alerter }

// Close releases all resources held by the client.
// Any injected service that implements io.Closer will be closed.
func (c *Client) Close() error {
	closers := []interface{}{
		c.auth, c.notifications, c.profiles, c.credentials,
	}
	var firstErr error
	for _, svc := range closers {
		if cl, ok := svc.(io.Closer); ok && cl != nil {
			if err := cl.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// logAlerter is the default Alerter: messages go to the structured log
// instead of a UI toast.
type logAlerter struct {
	logger *slog.Logger
}

func (a *logAlerter) Success(msg string) { a.logger.Info("alert", "kind", "success", "msg", msg) }
func (a *logAlerter) Error(msg string)   { a.logger.Warn("alert", "kind", "error", "msg", msg) }
