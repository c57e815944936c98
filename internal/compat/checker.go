package compat

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/git-pkgs/enginecheck/internal/core"
	"github.com/git-pkgs/enginecheck/internal/manifest"
	"github.com/git-pkgs/enginecheck/internal/semver"
)

const (
	DefaultEngine       = "node"
	DefaultConcurrency  = 8
	DefaultFetchTimeout = 10 * time.Second
)

// Source supplies the published versions of a package. core.Registry
// implementations satisfy it.
type Source interface {
	FetchVersions(ctx context.Context, name string) ([]core.Version, error)
}

// Report is the ordered outcome of a Check run.
type Report struct {
	Target  semver.Version
	Engine  string
	Results []Result
}

// Failures counts the results that are error records.
func (r *Report) Failures() int {
	n := 0
	for _, res := range r.Results {
		if res.Failed() {
			n++
		}
	}
	return n
}

// Checker runs Analyze for every dependency of a manifest.
type Checker struct {
	source       Source
	engine       string
	concurrency  int
	fetchTimeout time.Duration
	verbose      bool
	logger       *log.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithEngine selects the engines key to evaluate, "node" by default.
func WithEngine(name string) Option {
	return func(c *Checker) {
		c.engine = name
	}
}

// WithConcurrency bounds the number of packages fetched at once.
func WithConcurrency(n int) Option {
	return func(c *Checker) {
		c.concurrency = n
	}
}

// WithFetchTimeout bounds each package's metadata fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Checker) {
		c.fetchTimeout = d
	}
}

// WithVerbose keeps the engine constraints behind each decision in results.
func WithVerbose(v bool) Option {
	return func(c *Checker) {
		c.verbose = v
	}
}

// WithLogger sets the logger used for progress and per-package failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Checker) {
		c.logger = l
	}
}

// NewChecker creates a Checker reading package metadata from source.
func NewChecker(source Source, opts ...Option) *Checker {
	c := &Checker{
		source:       source,
		engine:       DefaultEngine,
		concurrency:  DefaultConcurrency,
		fetchTimeout: DefaultFetchTimeout,
		logger:       log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.concurrency < 1 {
		c.concurrency = 1
	}
	return c
}

// ParseTarget reads a runtime version such as "v20", "18.17" or "20.1.0".
func ParseTarget(s string) (semver.Version, error) {
	v, ok := semver.Coerce(s)
	if !ok {
		return semver.Version{}, &InvalidTargetVersionError{Input: s}
	}
	return v, nil
}

// Check analyses deps against the target runtime version. Results keep the
// order of deps. A package whose metadata cannot be fetched or decoded gets
// an error record; it never fails the whole run.
func (c *Checker) Check(ctx context.Context, deps []manifest.Dependency, target string) (*Report, error) {
	targetVersion, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}
	if len(deps) == 0 {
		return nil, ErrNoDependencies
	}

	c.logger.Debug("checking dependencies", "count", len(deps), "engine", c.engine, "target", targetVersion)

	results := make([]Result, len(deps))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, dep := range deps {
		g.Go(func() error {
			results[i] = c.checkOne(ctx, dep, targetVersion)
			return nil
		})
	}
	_ = g.Wait()

	return &Report{Target: targetVersion, Engine: c.engine, Results: results}, nil
}

func (c *Checker) checkOne(ctx context.Context, dep manifest.Dependency, target semver.Version) Result {
	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	start := time.Now()
	versions, err := c.source.FetchVersions(fetchCtx, dep.Name)
	if err != nil {
		pkgErr := &PackageError{Name: dep.Name, Kind: classify(err), Err: err}
		c.logger.Warn("package check failed", "name", dep.Name, "kind", pkgErr.Kind, "err", err)
		return Result{Name: dep.Name, DeclaredRange: dep.Range, Err: pkgErr}
	}

	res := Analyze(dep.Name, dep.Range, target, PublishedFromVersions(versions, c.engine), AnalyzeOptions{Verbose: c.verbose})
	res.LatestStatus = statusOf(versions, res.LatestSupported)
	c.logger.Debug("package checked",
		"name", dep.Name,
		"versions", len(versions),
		"current", res.CurrentVersion,
		"compatible", res.CurrentCompatible,
		"latest", res.LatestSupported,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return res
}

func statusOf(versions []core.Version, num string) core.VersionStatus {
	if num == "" {
		return core.StatusNone
	}
	for _, v := range versions {
		if v.Number == num {
			return v.Status
		}
	}
	return core.StatusNone
}

func classify(err error) ErrorKind {
	var decodeErr *core.DecodeError
	if errors.As(err, &decodeErr) {
		return KindParse
	}
	return KindFetch
}
