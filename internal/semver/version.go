// Package semver implements the small subset of semantic versioning that
// engine constraints in registry metadata rely on: M.m.p triples, exact
// matches, ">=" lower bounds and caret ranges joined with "||".
package semver

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	tripleRe = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)
	coerceRe = regexp.MustCompile(`(\d+)(?:\.(\d+))?(?:\.(\d+))?`)
)

// Version is a parsed major.minor.patch triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseError is returned when a string contains no version triple.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid version: %q", e.Input)
}

// Normalize pads s to three dot-separated segments and extracts the first
// numeric triple from the result.
func Normalize(s string) (Version, error) {
	parts := strings.Split(s, ".")
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	m := tripleRe.FindStringSubmatch(strings.Join(parts, "."))
	if m == nil {
		return Version{}, &ParseError{Input: s}
	}
	return fromGroups(s, m[1], m[2], m[3])
}

// Coerce strips leading non-digit characters and reads up to three numeric
// components, defaulting missing ones to zero. It reports false when s has
// no digits at all.
func Coerce(s string) (Version, bool) {
	s = strings.TrimLeftFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	m := coerceRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, false
	}
	for i := 2; i <= 3; i++ {
		if m[i] == "" {
			m[i] = "0"
		}
	}
	v, err := fromGroups(s, m[1], m[2], m[3])
	if err != nil {
		return Version{}, false
	}
	return v, true
}

// MustParse is like Normalize but panics on error. Intended for tests and
// package-level constants.
func MustParse(s string) Version {
	v, err := Normalize(s)
	if err != nil {
		panic(err)
	}
	return v
}

func fromGroups(input string, groups ...string) (Version, error) {
	var n [3]int
	for i, g := range groups {
		x, err := strconv.Atoi(g)
		if err != nil {
			return Version{}, &ParseError{Input: input}
		}
		n[i] = x
	}
	return Version{Major: n[0], Minor: n[1], Patch: n[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 depending on whether v sorts before, equal to
// or after o.
func (v Version) Compare(o Version) int {
	return Compare(v, o)
}

// Compare orders versions by major, then minor, then patch.
func Compare(a, b Version) int {
	switch {
	case a.Major != b.Major:
		return cmp.Compare(a.Major, b.Major)
	case a.Minor != b.Minor:
		return cmp.Compare(a.Minor, b.Minor)
	default:
		return cmp.Compare(a.Patch, b.Patch)
	}
}
