package semver

import (
	"slices"
	"strings"
)

// SplitAlternatives splits a constraint on "||" and returns the trimmed,
// non-empty alternatives.
func SplitAlternatives(constraint string) []string {
	parts := strings.Split(constraint, "||")
	alts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			alts = append(alts, p)
		}
	}
	return alts
}

// Satisfies reports whether version satisfies any "||" alternative of
// constraint. Recognized alternatives are ">=X", "^X" and exact matches.
// Exact matches compare the raw strings, so "1.0" does not satisfy "1.0.0".
func Satisfies(version, constraint string) bool {
	v, err := Normalize(version)
	if err != nil {
		return false
	}
	for _, alt := range SplitAlternatives(constraint) {
		if matchAlternative(version, v, alt) {
			return true
		}
	}
	return false
}

// SatisfiesVersion is Satisfies for an already parsed version.
func SatisfiesVersion(v Version, constraint string) bool {
	return Satisfies(v.String(), constraint)
}

func matchAlternative(raw string, v Version, alt string) bool {
	switch {
	case strings.HasPrefix(alt, ">="):
		target, err := Normalize(strings.TrimSpace(alt[2:]))
		if err != nil {
			return false
		}
		return Compare(v, target) >= 0
	case strings.HasPrefix(alt, "^"):
		target, err := Normalize(strings.TrimSpace(alt[1:]))
		if err != nil {
			return false
		}
		if v.Major != target.Major {
			return false
		}
		return v.Minor > target.Minor || (v.Minor == target.Minor && v.Patch >= target.Patch)
	default:
		return raw == alt
	}
}

// RCompare is a descending comparator over version strings. Strings that do
// not parse compare equal to everything.
func RCompare(a, b string) int {
	va, err := Normalize(a)
	if err != nil {
		return 0
	}
	vb, err := Normalize(b)
	if err != nil {
		return 0
	}
	return Compare(vb, va)
}

// SortDescending returns a copy of versions sorted newest first. Ties keep
// their input order.
func SortDescending(versions []string) []string {
	sorted := slices.Clone(versions)
	slices.SortStableFunc(sorted, RCompare)
	return sorted
}
