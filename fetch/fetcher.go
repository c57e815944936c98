// Package fetch provides registry document downloading with retry, DNS
// caching and per-registry circuit breaking.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrRateLimited  = errors.New("rate limited by upstream")
	ErrUpstreamDown = errors.New("upstream registry unavailable")
)

// maxRetryAfter caps how long a Retry-After header can hold a fetch.
const maxRetryAfter = 30 * time.Second

// StatusError is returned for unexpected non-retryable HTTP statuses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// RateLimitedError is a 429 answer. RetryAfter is the wait the registry
// asked for, zero when it sent no usable Retry-After header.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", ErrRateLimited, e.RetryAfter)
	}
	return ErrRateLimited.Error()
}

// Is matches ErrRateLimited.
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// Document is a registry response body plus the headers callers care about.
type Document struct {
	Body        io.ReadCloser
	Size        int64 // -1 if unknown
	ContentType string
	ETag        string
}

// FetcherInterface defines the interface for document fetchers.
type FetcherInterface interface {
	Fetch(ctx context.Context, url string) (*Document, error)
}

// Fetcher downloads metadata documents from upstream registries.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration
	authFn     func(url string) (headerName, headerValue string)
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithTimeout sets the overall timeout of a single HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxRetries sets the maximum retry attempts.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// WithBaseDelay sets the first retry interval; later ones grow
// exponentially.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.baseDelay = d
	}
}

// WithAuthFunc sets a function that returns auth headers for a given URL.
// Return empty strings to skip authentication for that URL.
func WithAuthFunc(fn func(url string) (headerName, headerValue string)) Option {
	return func(f *Fetcher) {
		f.authFn = fn
	}
}

// cachingDialer dials the first reachable address of a host resolved through
// a shared DNS cache.
type cachingDialer struct {
	resolver *dnscache.Resolver
	dialer   *net.Dialer
}

func newCachingDialer() *cachingDialer {
	d := &cachingDialer{
		resolver: &dnscache.Resolver{},
		dialer:   &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second},
	}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			d.resolver.Refresh(true)
		}
	}()
	return d
}

func (d *cachingDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ips, err := d.resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, ip := range ips {
		conn, err := d.dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("dialing %s: %w", host, lastErr)
}

// NewFetcher creates a new Fetcher with the given options.
func NewFetcher(opts ...Option) *Fetcher {
	transport := &http.Transport{
		DialContext:           newCachingDialer().DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	f := &Fetcher{
		client:     &http.Client{Timeout: 30 * time.Second, Transport: transport},
		userAgent:  "enginecheck",
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.baseDelay
	b.RandomizationFactor = 0.1
	b.Multiplier = 2
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Fetch downloads the document at url. Rate limits and server errors are
// retried up to maxRetries times with exponential backoff; a Retry-After
// header on a 429 replaces the computed delay. The caller must close
// Document.Body.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Document, error) {
	b := f.newBackOff()

	for attempt := 0; ; attempt++ {
		doc, err := f.doFetch(ctx, url)
		if err == nil {
			return doc, nil
		}
		if attempt >= f.maxRetries || !retryable(err) {
			return nil, err
		}

		delay := b.NextBackOff()
		var rateErr *RateLimitedError
		if errors.As(err, &rateErr) && rateErr.RetryAfter > 0 {
			delay = rateErr.RetryAfter
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUpstreamDown)
}

// parseRetryAfter reads a Retry-After value given in seconds or as an HTTP
// date, capped at maxRetryAfter.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	var d time.Duration
	if secs, err := strconv.Atoi(value); err == nil {
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(value); err == nil {
		d = at.Sub(now)
	}
	if d <= 0 {
		return 0
	}
	return min(d, maxRetryAfter)
}

func (f *Fetcher) doFetch(ctx context.Context, url string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")
	if f.authFn != nil {
		if name, value := f.authFn(url); name != "" && value != "" {
			req.Header.Set(name, value)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching document: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		size := int64(-1)
		if n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); err == nil {
			size = n
		}
		return &Document{
			Body:        resp.Body,
			Size:        size,
			ContentType: resp.Header.Get("Content-Type"),
			ETag:        resp.Header.Get("ETag"),
		}, nil
	}

	defer func() { _ = resp.Body.Close() }()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitedError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())}
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, ErrUpstreamDown)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
}
