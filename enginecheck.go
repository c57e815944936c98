// Package enginecheck reports which version of each dependency in a
// package.json runs on a given runtime version, based on the engines field
// published with every version in the registry.
//
// Basic usage:
//
//	import (
//		"context"
//		"github.com/git-pkgs/enginecheck"
//		_ "github.com/git-pkgs/enginecheck/all"
//	)
//
//	reg, err := enginecheck.New("npm", "", enginecheck.DefaultClient())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	deps, err := enginecheck.ReadManifest("package.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	report, err := enginecheck.NewChecker(reg).Check(context.Background(), deps, "20.11.0")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, r := range report.Results {
//		fmt.Println(r.Name, r.CurrentCompatible, r.LatestSupported)
//	}
package enginecheck

import (
	"github.com/git-pkgs/enginecheck/client"
	"github.com/git-pkgs/enginecheck/internal/compat"
	"github.com/git-pkgs/enginecheck/internal/core"
	"github.com/git-pkgs/enginecheck/internal/manifest"
	"github.com/git-pkgs/enginecheck/internal/semver"
)

// Re-export types from internal/core
type (
	// Registry is the interface implemented by ecosystem registry clients.
	Registry = core.Registry
	// Version is a published version and its engine constraints.
	Version = core.Version
	// Requirement is a dependency given as a PURL.
	Requirement = core.Requirement
)

// Re-export types from client
type (
	// Client is an HTTP client with retry logic for registry APIs.
	Client = client.Client
	// Option configures a Client.
	Option = client.Option
	// URLBuilder constructs URLs for a registry.
	URLBuilder = client.URLBuilder
	// RateLimiter controls request pacing.
	RateLimiter = client.RateLimiter
)

// Re-export the engine
type (
	// Checker analyses every dependency of a manifest.
	Checker = compat.Checker
	// CheckerOption configures a Checker.
	CheckerOption = compat.Option
	// Source supplies published versions; Registry satisfies it.
	Source = compat.Source
	// Report is the ordered outcome of a check.
	Report = compat.Report
	// Result is the outcome for one dependency.
	Result = compat.Result
	// Published maps versions to engine constraints.
	Published = compat.Published
	// AnalyzeOptions tunes Analyze.
	AnalyzeOptions = compat.AnalyzeOptions
	// Dependency is a manifest entry.
	Dependency = manifest.Dependency
	// SemVer is a parsed major.minor.patch version.
	SemVer = semver.Version
)

// Errors
var (
	ErrNotFound       = client.ErrNotFound
	ErrNoDependencies = compat.ErrNoDependencies
)

// Error types
type (
	HTTPError                 = client.HTTPError
	NotFoundError             = client.NotFoundError
	RateLimitError            = client.RateLimitError
	DecodeError               = client.DecodeError
	PackageError              = compat.PackageError
	InvalidTargetVersionError = compat.InvalidTargetVersionError
	ManifestReadError         = manifest.ReadError
)

// New creates a new registry for the given ecosystem.
// If baseURL is empty, the default registry URL is used.
// If client is nil, DefaultClient() is used.
func New(ecosystem string, baseURL string, c *Client) (Registry, error) {
	return core.New(ecosystem, baseURL, c)
}

// DefaultClient returns a client with a 30s timeout and 3 retries.
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	return client.NewClient(opts...)
}

var (
	WithTimeout     = client.WithTimeout
	WithMaxRetries  = client.WithMaxRetries
	WithUserAgent   = client.WithUserAgent
	WithToken       = client.WithToken
	WithRateLimiter = client.WithRateLimiter
)

// SupportedEcosystems returns all registered ecosystem types.
// Note: ecosystems must be imported to be registered.
func SupportedEcosystems() []string {
	return core.SupportedEcosystems()
}

// NewChecker creates a Checker reading metadata from source.
func NewChecker(source Source, opts ...CheckerOption) *Checker {
	return compat.NewChecker(source, opts...)
}

var (
	WithEngine       = compat.WithEngine
	WithConcurrency  = compat.WithConcurrency
	WithFetchTimeout = compat.WithFetchTimeout
	WithVerbose      = compat.WithVerbose
	WithLogger       = compat.WithLogger
)

// Analyze runs the compatibility analysis for a single package.
func Analyze(name, declared string, target SemVer, published Published, opts AnalyzeOptions) Result {
	return compat.Analyze(name, declared, target, published, opts)
}

// ParseTarget reads a runtime version such as "v20" or "18.17.0".
func ParseTarget(s string) (SemVer, error) {
	return compat.ParseTarget(s)
}

// ReadManifest reads dependencies and devDependencies from a package.json.
func ReadManifest(path string) ([]Dependency, error) {
	return manifest.Read(path)
}

// ParseRequirement reads a PURL such as pkg:npm/lodash@4.17.21.
func ParseRequirement(purl string) (Requirement, error) {
	return core.ParseRequirement(purl)
}

// Satisfies reports whether version satisfies constraint.
func Satisfies(version, constraint string) bool {
	return semver.Satisfies(version, constraint)
}
