// Package transport retrieves catalog files. Sources are either http(s) URLs,
// file:// URLs or plain filesystem paths.
package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/crankboy/romdb/pkg/constants"
	"github.com/crankboy/romdb/pkg/errors"
)

// Fetcher returns the raw bytes of a catalog source.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// Client fetches catalog sources over HTTP or from the local filesystem.
type Client struct {
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with HTTP requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a new transport client.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: constants.DefaultHTTPTimeout},
		userAgent: constants.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch reads a source. HTTP sources must answer 200 OK.
func (c *Client) Fetch(ctx context.Context, source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return c.get(ctx, source)
		case "file":
			return readFile(source, u.Path)
		}
	}
	return readFile(source, source)
}

// CloseIdleConnections releases pooled HTTP connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

func (c *Client) get(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", source, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &errors.FetchError{
			Source:  source,
			Message: "request failed",
			Err:     err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.FetchError{
			Source:     source,
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.FetchError{
			Source:  source,
			Message: "reading response body failed",
			Err:     err,
		}
	}
	return body, nil
}

func readFile(source, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errors.FetchError{
			Source:  source,
			Message: "reading file failed",
			Err:     err,
		}
	}
	return data, nil
}
