package core

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Registry is the interface implemented by ecosystem registry clients.
type Registry interface {
	// Ecosystem returns the PURL type for this registry (e.g. "npm").
	Ecosystem() string
	// Engine returns the engines key its versions populate (e.g. "node").
	Engine() string
	// FetchVersions retrieves every published version of a package together
	// with its declared engine constraints.
	FetchVersions(ctx context.Context, name string) ([]Version, error)
	// URLs returns the URL builder for this registry.
	URLs() URLBuilder
}

// Factory creates a registry instance for a given base URL.
type Factory func(baseURL string, client *Client) Registry

var (
	factories = make(map[string]Factory)
	defaults  = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a registry factory. defaultURL is used when New is called
// without a base URL.
func Register(ecosystem string, defaultURL string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[ecosystem] = factory
	defaults[ecosystem] = defaultURL
}

// New creates a new registry for the given ecosystem.
// If baseURL is empty, the default registry URL is used.
// If client is nil, DefaultClient() is used.
func New(ecosystem string, baseURL string, client *Client) (Registry, error) {
	mu.RLock()
	factory, ok := factories[ecosystem]
	defaultURL := defaults[ecosystem]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown ecosystem: %s", ecosystem)
	}
	if baseURL == "" {
		baseURL = defaultURL
	}
	if client == nil {
		client = DefaultClient()
	}
	return factory(baseURL, client), nil
}

// SupportedEcosystems returns all registered ecosystem types, sorted.
func SupportedEcosystems() []string {
	mu.RLock()
	defer mu.RUnlock()

	ecosystems := make([]string, 0, len(factories))
	for eco := range factories {
		ecosystems = append(ecosystems, eco)
	}
	slices.Sort(ecosystems)
	return ecosystems
}

// DefaultURL returns the default registry URL for an ecosystem.
func DefaultURL(ecosystem string) string {
	mu.RLock()
	defer mu.RUnlock()
	return defaults[ecosystem]
}
