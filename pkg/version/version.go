// Package version exposes build metadata for the enrichr binary.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Build metadata, overridden at link time with -ldflags "-X".
//
//nolint:gochecknoglobals // Set by the linker.
var (
	version   = "0.3.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// GetVersion returns the semantic version of the binary.
func GetVersion() string {
	return version
}

// GetGitCommit returns the commit the binary was built from.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return buildDate
}

// Satisfies reports whether the running binary version matches constraint
// (for example ">= 0.2, < 1.0"). An empty constraint always matches.
func Satisfies(constraint string) (bool, error) {
	return satisfies(version, constraint)
}

func satisfies(current, constraint string) (bool, error) {
	if constraint == "" {
		return true, nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("parsing version constraint %q: %w", constraint, err)
	}

	v, err := semver.NewVersion(current)
	if err != nil {
		return false, fmt.Errorf("parsing binary version %q: %w", current, err)
	}

	return c.Check(v), nil
}
