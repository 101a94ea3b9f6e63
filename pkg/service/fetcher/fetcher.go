package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/utils/safe"
)

const (
	// DefaultTimeout bounds a single source request
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBodySize is the largest source document accepted
	DefaultMaxBodySize = 32 << 20
)

// Service retrieves remote source documents
type Service interface {
	// Fetch issues a GET request and returns the response body
	Fetch(ctx context.Context, endpoint string, headers map[string]string) ([]byte, error)
}

type client struct {
	httpClient  *http.Client
	timeout     time.Duration
	maxBodySize int64
}

// Option configures the fetcher
type Option func(*client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithMaxBodySize limits the accepted response size in bytes
func WithMaxBodySize(n int64) Option {
	return func(c *client) {
		c.maxBodySize = n
	}
}

// New creates a fetcher Service
func New(opts ...Option) Service {
	c := &client{
		httpClient:  http.DefaultClient,
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) Fetch(ctx context.Context, endpoint string, headers map[string]string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, goerr.Wrap(model.ErrSourceFetch, "failed to create request",
			goerr.V(model.EndpointKey, endpoint), goerr.V("error", err.Error()))
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(model.ErrSourceFetch, "request failed",
			goerr.V(model.EndpointKey, endpoint), goerr.V("error", err.Error()))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.Wrap(model.ErrSourceFetch, "source returned non-success status",
			goerr.V(model.EndpointKey, endpoint), goerr.V("status", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, goerr.Wrap(model.ErrSourceFetch, "failed to read response body",
			goerr.V(model.EndpointKey, endpoint), goerr.V("error", err.Error()))
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, goerr.Wrap(model.ErrSourceFetch, "source document is too large",
			goerr.V(model.EndpointKey, endpoint), goerr.V("limit", c.maxBodySize))
	}

	return body, nil
}
