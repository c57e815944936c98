package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	_ "github.com/git-pkgs/enginecheck/all"
	"github.com/git-pkgs/enginecheck/client"
	"github.com/git-pkgs/enginecheck/internal/compat"
	"github.com/git-pkgs/enginecheck/internal/config"
	"github.com/git-pkgs/enginecheck/internal/core"
	"github.com/git-pkgs/enginecheck/internal/manifest"
	"github.com/git-pkgs/enginecheck/internal/report"
)

// defaultEcosystem is checked when no --package selects another one.
const defaultEcosystem = "npm"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
)

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"file":        config.KeyFile,
	"node":        config.KeyNode,
	"engine":      config.KeyEngine,
	"registry":    config.KeyRegistry,
	"token":       config.KeyToken,
	"timeout":     config.KeyTimeout,
	"concurrency": config.KeyConcurrency,
	"retries":     config.KeyRetries,
	"user-agent":  config.KeyUserAgent,
	"verbose":     config.KeyVerbose,
	"json":        config.KeyJSON,
	"debug":       config.KeyDebug,
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile  string
		packages []string
	)

	cmd := &cobra.Command{
		Use:   "enginecheck",
		Short: "Check dependency compatibility with a Node.js version",
		Long: `enginecheck reads the dependencies of a package.json, fetches every
published version from the npm registry and reports, for each package,
whether the declared version supports the target Node.js version and which
is the newest version that does.

Packages given with --package may also name crates (pkg:cargo/...) checked
against their rust_version, or PyPI projects (pkg:pypi/...) checked against
requires_python. All packages of a run must share one ecosystem.`,
		Example: `  enginecheck --node 20
  enginecheck -f app/package.json -n 16.20.0 --verbose
  enginecheck -p pkg:npm/express@4.18.2 --json
  enginecheck -n 1.70 -p pkg:cargo/tokio@1.38.0 -p pkg:cargo/serde@1.0.200`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.New(cfgFile)
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			if err := bindFlags(v, cmd); err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			cfg, err := config.Load(v)
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			return run(cmd.Context(), cmd.OutOrStdout(), cfg, packages, cmd.Flags().Changed("file"))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./enginecheck.yaml)")
	flags.StringP("file", "f", "./package.json", "path to package.json")
	flags.StringP("node", "n", "18.0.0", "target runtime version (Node.js, or Rust/Python for cargo/pypi packages)")
	flags.BoolP("verbose", "v", false, "show the engine ranges behind each decision")
	flags.String("engine", "", "engines key to evaluate (default is the ecosystem's runtime)")
	flags.String("registry", "", "registry base URL (default is the ecosystem's public registry)")
	flags.String("token", "", "bearer token for the registry")
	flags.Duration("timeout", compat.DefaultFetchTimeout, "timeout per package fetch")
	flags.Int("concurrency", compat.DefaultConcurrency, "packages fetched in parallel")
	flags.Int("retries", 3, "retries for rate limits and server errors")
	flags.String("user-agent", config.AppName, "User-Agent sent to the registry")
	flags.Bool("json", false, "write the report as JSON")
	flags.Bool("debug", false, "enable debug logging")
	flags.StringArrayVarP(&packages, "package", "p", nil, "extra dependency as a PURL, e.g. pkg:npm/lodash@4.17.21 (repeatable)")

	return cmd
}

// bindFlags lets flags that were set on the command line override the
// config file and environment.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

func newLogger(debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: config.AppName})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func run(ctx context.Context, out io.Writer, cfg *config.Config, packages []string, fileSet bool) error {
	logger := newLogger(cfg.Debug)

	target, err := compat.ParseTarget(cfg.Node)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	ecosystem, deps, err := collectDependencies(cfg.File, packages, fileSet)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	c := client.NewClient(
		client.WithTimeout(cfg.Timeout),
		client.WithMaxRetries(cfg.Retries),
		client.WithUserAgent(cfg.UserAgent),
		client.WithToken(cfg.Token),
	)
	reg, err := core.New(ecosystem, cfg.Registry, c)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	engine := cfg.Engine
	if engine == "" {
		engine = reg.Engine()
	}
	logger.Debug("checking", "ecosystem", ecosystem, "engine", engine, "dependencies", len(deps))

	if !cfg.JSON {
		fmt.Fprintf(out, "Checking compatibility for %s %s...\n", report.RuntimeName(engine), target)
	}

	checker := compat.NewChecker(reg,
		compat.WithEngine(engine),
		compat.WithConcurrency(cfg.Concurrency),
		compat.WithFetchTimeout(cfg.Timeout),
		compat.WithVerbose(cfg.Verbose),
		compat.WithLogger(logger),
	)
	rep, err := checker.Check(ctx, deps, cfg.Node)
	if errors.Is(err, compat.ErrNoDependencies) {
		fmt.Fprintln(out, "No packages found or all packages are compatible!")
		return nil
	}
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	for host, state := range c.BreakerStates() {
		logger.Debug("circuit breaker", "registry", host, "state", state)
	}

	opts := report.Options{Verbose: cfg.Verbose, URLs: reg.URLs()}
	if cfg.JSON {
		return report.JSON(out, rep, opts)
	}
	opts.Styles = report.DefaultStyles()
	return report.Text(out, rep, opts)
}

// collectDependencies parses the PURL requirements, picks the ecosystem
// they name and, for npm, reads the manifest too. A missing default manifest
// is tolerated when packages are given.
func collectDependencies(path string, packages []string, fileSet bool) (string, []manifest.Dependency, error) {
	ecosystem := ""
	reqs := make([]core.Requirement, 0, len(packages))
	for _, p := range packages {
		req, err := core.ParseRequirement(p)
		if err != nil {
			return "", nil, fmt.Errorf("parsing --package %q: %w", p, err)
		}
		if ecosystem != "" && req.Ecosystem != ecosystem {
			return "", nil, fmt.Errorf("--package %q: ecosystem %q mixed with %q", p, req.Ecosystem, ecosystem)
		}
		ecosystem = req.Ecosystem
		reqs = append(reqs, req)
	}
	if ecosystem == "" {
		ecosystem = defaultEcosystem
	}
	if !slices.Contains(core.SupportedEcosystems(), ecosystem) {
		return "", nil, fmt.Errorf("unsupported ecosystem %q, want one of %v", ecosystem, core.SupportedEcosystems())
	}

	var deps []manifest.Dependency
	if ecosystem == defaultEcosystem {
		var err error
		deps, err = manifest.Read(path)
		if err != nil {
			if len(packages) == 0 || fileSet || !errors.Is(err, fs.ErrNotExist) {
				return "", nil, err
			}
			deps = nil
		}
	} else if fileSet {
		return "", nil, fmt.Errorf("--file reads a package.json and cannot be combined with %s packages", ecosystem)
	}

	for _, req := range reqs {
		deps = append(deps, manifest.Dependency{Name: req.Name, Range: req.Range, Group: manifest.Dependencies})
	}
	return ecosystem, deps, nil
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Execute runs the root command and exits with its status.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
