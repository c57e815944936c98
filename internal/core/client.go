package core

import (
	"github.com/git-pkgs/enginecheck/client"
)

// Type aliases so ecosystem implementations only import core.
type (
	RateLimiter = client.RateLimiter
	Client      = client.Client
	Option      = client.Option
	URLBuilder  = client.URLBuilder
	BaseURLs    = client.BaseURLs
)

var (
	DefaultClient  = client.DefaultClient
	NewClient      = client.NewClient
	WithTimeout    = client.WithTimeout
	WithMaxRetries = client.WithMaxRetries
	BuildURLs      = client.BuildURLs
)
