// Package client implements the BARB API client: an explicit handle holding
// the base URL and credential, a retrying transport, the async job poller and
// the fetch orchestration over both. Multiple clients can coexist - there is
// no process-wide state.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://barb-api.co.uk/api/v1/"

	defaultRequestTimeout = 5 * time.Minute
	defaultRetries        = 3
	defaultPollInterval   = 20 * time.Second
	defaultMaxWait        = 10 * time.Minute
)

// Client is an authenticated handle on the API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     *zap.Logger

	token        string
	retries      int
	pollInterval time.Duration
	maxWait      time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http client. The client's own
// timeout is the per-request timeout, distinct from the job poll deadline.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger attaches a logger. Defaults to a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithToken sets a pre-obtained bearer token, skipping Authenticate.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithRetries bounds transport retries for transient failures, on top of the
// initial attempt: WithRetries(3) allows up to four requests.
func WithRetries(retries int) Option {
	return func(c *Client) {
		if retries > 0 {
			c.retries = retries
		}
	}
}

// WithPollInterval sets the default polling interval for async jobs.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithMaxWait sets the default wall-clock deadline for async jobs.
func WithMaxWait(maxWait time.Duration) Option {
	return func(c *Client) {
		if maxWait > 0 {
			c.maxWait = maxWait
		}
	}
}

// New constructs a client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	c := &Client{
		baseURL:      parsed,
		http:         &http.Client{Timeout: defaultRequestTimeout},
		log:          zap.NewNop(),
		retries:      defaultRetries,
		pollInterval: defaultPollInterval,
		maxWait:      defaultMaxWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Authenticate obtains a bearer token from the auth endpoint and stores it on
// the client for subsequent requests.
func (c *Client) Authenticate(ctx context.Context, email, password string) error {
	var response struct {
		Access string `json:"access"`
	}

	err := c.postJSON(ctx, "auth/token/", map[string]string{
		"email":    email,
		"password": password,
	}, &response)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	if response.Access == "" {
		return fmt.Errorf("authenticate: no access token in response")
	}

	c.token = response.Access
	c.log.Debug("authenticated", zap.String("email", email))
	return nil
}
