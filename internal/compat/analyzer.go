// Package compat decides which published version of each dependency runs on
// a target runtime version.
package compat

import (
	"slices"

	"github.com/git-pkgs/enginecheck/internal/core"
	"github.com/git-pkgs/enginecheck/internal/semver"
)

// Published maps each published version to its engine constraint. An empty
// constraint means the version declares none.
type Published map[string]string

// PublishedFromVersions collects the constraint each version declares for
// the named engine.
func PublishedFromVersions(versions []core.Version, engine string) Published {
	p := make(Published, len(versions))
	for _, v := range versions {
		p[v.Number] = v.Engine(engine)
	}
	return p
}

// Result is the outcome for one dependency. When Err is set only Name and
// DeclaredRange are meaningful.
type Result struct {
	Name                 string
	DeclaredRange        string
	CurrentVersion       string
	CurrentCompatible    bool
	LatestSupported      string
	UpgradeAvailable     bool
	CurrentEngineSupport string
	LatestEngineSupport  string
	// LatestStatus flags a latest supported version the registry has
	// deprecated or yanked.
	LatestStatus         core.VersionStatus
	Err                  error
}

// Failed reports whether the result is an error record.
func (r Result) Failed() bool {
	return r.Err != nil
}

// AnalyzeOptions tunes Analyze.
type AnalyzeOptions struct {
	// Verbose keeps the engine constraints that justified each decision.
	Verbose bool
}

// CurrentVersion turns a declared range into the version it is assumed to
// resolve to: "^1.2" becomes "1.2.0". Ranges without digits are returned
// unchanged.
func CurrentVersion(declared string) string {
	if v, ok := semver.Coerce(declared); ok {
		return v.String()
	}
	return declared
}

// Analyze finds the newest published version whose engine constraint
// admits target and decides whether the version declared resolves to is
// compatible.
func Analyze(name, declared string, target semver.Version, published Published, opts AnalyzeOptions) Result {
	res := Result{
		Name:           name,
		DeclaredRange:  declared,
		CurrentVersion: CurrentVersion(declared),
	}

	numbers := make([]string, 0, len(published))
	for num := range published {
		numbers = append(numbers, num)
	}
	// Map iteration is random; sort first so ties in the stable sort below
	// do not depend on it.
	slices.Sort(numbers)
	versions := semver.SortDescending(numbers)

	targetStr := target.String()
	constrained := false
	currentMatched := false

	for _, num := range versions {
		constraint := published[num]
		if constraint == "" {
			continue
		}
		constrained = true

		satisfied := ""
		for _, alt := range semver.SplitAlternatives(constraint) {
			if semver.Satisfies(targetStr, alt) {
				satisfied = alt
				break
			}
		}

		if satisfied != "" && res.LatestSupported == "" {
			res.LatestSupported = num
			res.LatestEngineSupport = satisfied
		}

		if num == res.CurrentVersion {
			currentMatched = true
			res.CurrentCompatible = satisfied != ""
			res.CurrentEngineSupport = satisfied
			if satisfied == "" {
				res.CurrentEngineSupport = constraint
			}
		}
	}

	if !constrained && len(versions) > 0 {
		res.LatestSupported = versions[0]
		res.CurrentCompatible = true
	}

	if !currentMatched {
		for _, num := range versions {
			if !semver.Satisfies(num, declared) {
				continue
			}
			constraint := published[num]
			if constraint == "" {
				res.CurrentCompatible = true
			} else {
				res.CurrentCompatible = semver.Satisfies(targetStr, constraint)
				res.CurrentEngineSupport = constraint
			}
			break
		}
	}

	res.UpgradeAvailable = res.LatestSupported != "" && normalized(res.LatestSupported) != res.CurrentVersion

	if !opts.Verbose {
		res.CurrentEngineSupport = ""
		res.LatestEngineSupport = ""
	}
	return res
}

// normalized renders a published version key as M.m.p so it compares with
// CurrentVersion. Keys that do not parse are returned unchanged.
func normalized(num string) string {
	v, err := semver.Normalize(num)
	if err != nil {
		return num
	}
	return v.String()
}
