package core

import (
	"fmt"

	"github.com/git-pkgs/purl"
)

// PURL is a parsed Package URL.
type PURL = purl.PURL

// ParsePURL parses a Package URL string into its components.
func ParsePURL(s string) (*PURL, error) {
	return purl.Parse(s)
}

// Requirement is a dependency named on the command line rather than in a
// manifest.
type Requirement struct {
	Ecosystem string
	Name      string
	Range     string
}

// ParseRequirement reads a PURL such as pkg:npm/%40babel/core@7.24.0. The
// version component is taken as the declared range and is required.
func ParseRequirement(s string) (Requirement, error) {
	p, err := ParsePURL(s)
	if err != nil {
		return Requirement{}, err
	}
	if p.Version == "" {
		return Requirement{}, fmt.Errorf("PURL has no version: %s", s)
	}
	return Requirement{
		Ecosystem: p.Type,
		Name:      p.FullName(),
		Range:     p.Version,
	}, nil
}
