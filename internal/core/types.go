// Package core provides shared types and the registry system.
package core

import "time"

// Version represents a specific published version of a package.
type Version struct {
	Number      string
	PublishedAt time.Time
	Status      VersionStatus     // "", "deprecated", "yanked"
	Engines     map[string]string // runtime name -> constraint, e.g. "node" -> ">=14"
}

// Engine returns the constraint declared for the named runtime, or "" when
// the version declares none.
func (v Version) Engine(name string) string {
	return v.Engines[name]
}

// VersionStatus represents the status of a package version.
type VersionStatus string

const (
	StatusNone       VersionStatus = ""
	StatusDeprecated VersionStatus = "deprecated"
	StatusYanked     VersionStatus = "yanked"
)
