// Package client provides the HTTP client and URL builders shared by
// registry implementations.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/git-pkgs/enginecheck/fetch"
)

// maxBodySize caps registry documents. Popular npm packuments exceed 50MB.
const maxBodySize = 256 << 20

// RateLimiter controls request pacing. Wait blocks until a request may be
// sent or ctx is done.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Client fetches registry documents through a retrying, circuit-broken
// fetcher.
type Client struct {
	fetcher     fetch.FetcherInterface
	timeout     time.Duration
	maxRetries  int
	userAgent   string
	token       string
	rateLimiter RateLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout of a single HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxRetries sets the maximum number of retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithToken sends token as a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithRateLimiter paces requests through rl.
func WithRateLimiter(rl RateLimiter) Option {
	return func(c *Client) {
		c.rateLimiter = rl
	}
}

// WithFetcher replaces the default fetcher. Timeout, retry, user agent and
// token options are ignored when a fetcher is supplied.
func WithFetcher(f fetch.FetcherInterface) Option {
	return func(c *Client) {
		c.fetcher = f
	}
}

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - 3 retries with exponential backoff
// - Retry on 429 and 5xx responses
func DefaultClient() *Client {
	return NewClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout:    30 * time.Second,
		maxRetries: 3,
		userAgent:  "enginecheck",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		fetchOpts := []fetch.Option{
			fetch.WithTimeout(c.timeout),
			fetch.WithMaxRetries(c.maxRetries),
			fetch.WithUserAgent(c.userAgent),
		}
		if c.token != "" {
			token := c.token
			fetchOpts = append(fetchOpts, fetch.WithAuthFunc(func(string) (string, string) {
				return "Authorization", "Bearer " + token
			}))
		}
		c.fetcher = fetch.NewCircuitBreakerFetcher(fetch.NewFetcher(fetchOpts...))
	}
	return c
}

// BreakerStates reports the circuit breaker state per registry host, or nil
// when the fetcher does not break circuits.
func (c *Client) BreakerStates() map[string]string {
	if cbf, ok := c.fetcher.(*fetch.CircuitBreakerFetcher); ok {
		return cbf.BreakerStates()
	}
	return nil
}

// GetBody fetches url and returns the response body.
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	doc, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, translate(url, err)
	}
	defer func() { _ = doc.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(doc.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return body, nil
}

// GetJSON fetches url and decodes the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.GetBody(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{URL: url, Err: err}
	}
	return nil
}

func translate(url string, err error) error {
	var (
		statusErr *fetch.StatusError
		rateErr   *fetch.RateLimitedError
	)
	switch {
	case errors.Is(err, fetch.ErrNotFound):
		return &HTTPError{StatusCode: 404, URL: url}
	case errors.As(err, &rateErr):
		return &RateLimitError{URL: url, RetryAfter: rateErr.RetryAfter}
	case errors.Is(err, fetch.ErrRateLimited):
		return &RateLimitError{URL: url}
	case errors.As(err, &statusErr):
		return &HTTPError{StatusCode: statusErr.StatusCode, URL: url, Body: statusErr.Body}
	default:
		return err
	}
}
