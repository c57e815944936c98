package compat

import (
	"errors"
	"fmt"
)

// ErrNoDependencies is returned by Check when there is nothing to check.
var ErrNoDependencies = errors.New("no dependencies to check")

// InvalidTargetVersionError is returned when the target runtime version
// contains no version number.
type InvalidTargetVersionError struct {
	Input string
}

func (e *InvalidTargetVersionError) Error() string {
	return fmt.Sprintf("invalid target runtime version: %q", e.Input)
}

// ErrorKind classifies a per-package failure.
type ErrorKind string

const (
	KindFetch ErrorKind = "fetch"
	KindParse ErrorKind = "parse"
)

// PackageError records why a single package could not be analysed.
type PackageError struct {
	Name string
	Kind ErrorKind
	Err  error
}

func (e *PackageError) Error() string {
	return e.Err.Error()
}

func (e *PackageError) Unwrap() error {
	return e.Err
}
