package core

import "github.com/git-pkgs/enginecheck/client"

// ErrNotFound is returned when a package or version is not found.
var ErrNotFound = client.ErrNotFound

type (
	HTTPError      = client.HTTPError
	NotFoundError  = client.NotFoundError
	RateLimitError = client.RateLimitError
	DecodeError    = client.DecodeError
)
