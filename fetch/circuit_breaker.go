package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// CircuitBreakerFetcher wraps a Fetcher with one circuit breaker per
// registry host.
type CircuitBreakerFetcher struct {
	fetcher   FetcherInterface
	threshold int64
	breakers  map[string]*circuit.Breaker
	mu        sync.RWMutex
}

// NewCircuitBreakerFetcher creates a breaker wrapper that trips after five
// consecutive connection failures to the same host.
func NewCircuitBreakerFetcher(f FetcherInterface) *CircuitBreakerFetcher {
	return &CircuitBreakerFetcher{
		fetcher:   f,
		threshold: 5,
		breakers:  make(map[string]*circuit.Breaker),
	}
}

func (cbf *CircuitBreakerFetcher) getBreaker(registry string) *circuit.Breaker {
	cbf.mu.RLock()
	breaker, exists := cbf.breakers[registry]
	cbf.mu.RUnlock()

	if exists {
		return breaker
	}

	cbf.mu.Lock()
	defer cbf.mu.Unlock()

	if breaker, exists := cbf.breakers[registry]; exists {
		return breaker
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	breaker = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(cbf.threshold),
	})

	cbf.breakers[registry] = breaker
	return breaker
}

// Fetch wraps the underlying fetcher's Fetch with circuit breaker logic.
// Only failures to reach the registry host count against the breaker; see
// countsAsFailure.
func (cbf *CircuitBreakerFetcher) Fetch(ctx context.Context, fetchURL string) (*Document, error) {
	registry := extractRegistry(fetchURL)
	breaker := cbf.getBreaker(registry)

	if !breaker.Ready() {
		return nil, fmt.Errorf("circuit breaker open for registry %s: %w", registry, ErrUpstreamDown)
	}

	var (
		doc       *Document
		passedErr error
	)
	err := breaker.Call(func() error {
		var fetchErr error
		doc, fetchErr = cbf.fetcher.Fetch(ctx, fetchURL)
		if fetchErr != nil && !countsAsFailure(fetchErr) {
			passedErr = fetchErr
			return nil
		}
		return fetchErr
	}, 0)

	if err != nil {
		return nil, err
	}
	if passedErr != nil {
		return nil, passedErr
	}
	return doc, nil
}

// countsAsFailure reports whether err means the registry host could not be
// reached at all. Any HTTP answer is about one document: a 404, a 429 or a
// 5xx for one broken packument says nothing about its siblings. Deadlines
// and cancellation belong to the caller.
func countsAsFailure(err error) bool {
	var (
		statusErr *StatusError
		netErr    net.Error
	)
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrRateLimited),
		errors.Is(err, ErrUpstreamDown),
		errors.As(err, &statusErr),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.As(err, &netErr) && netErr.Timeout():
		return false
	default:
		return true
	}
}

// extractRegistry returns the host used to group breakers.
func extractRegistry(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}

// BreakerStates reports "open" or "closed" for every registry seen so far.
func (cbf *CircuitBreakerFetcher) BreakerStates() map[string]string {
	cbf.mu.RLock()
	defer cbf.mu.RUnlock()

	states := make(map[string]string)
	for registry, breaker := range cbf.breakers {
		if breaker.Tripped() {
			states[registry] = "open"
		} else {
			states[registry] = "closed"
		}
	}
	return states
}
