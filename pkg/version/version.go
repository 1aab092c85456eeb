// Package version implements semantic version bumping against a local git
// repository.
package version

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"
)

// Part identifies which component of a semantic version to bump.
type Part string

const (
	PartMajor Part = "major"
	PartMinor Part = "minor"
	PartPatch Part = "patch"
)

// ParsePart parses a bump part from user input.
func ParsePart(s string) (Part, error) {
	switch Part(s) {
	case PartMajor, PartMinor, PartPatch:
		return Part(s), nil
	default:
		return "", fmt.Errorf("invalid part %q (expected major, minor, or patch)", s)
	}
}

// Bump returns the version that follows current when the given part is
// incremented. Lower-order parts reset to zero and any prerelease or build
// metadata is dropped.
func Bump(current string, part Part) (string, error) {
	v, err := goversion.NewVersion(current)
	if err != nil {
		return "", fmt.Errorf("failed to parse version %q: %w", current, err)
	}

	segments := v.Segments()
	major, minor, patch := segments[0], segments[1], segments[2]

	switch part {
	case PartMajor:
		major, minor, patch = major+1, 0, 0
	case PartMinor:
		minor, patch = minor+1, 0
	case PartPatch:
		patch++
	default:
		return "", fmt.Errorf("invalid part %q", part)
	}

	return fmt.Sprintf("%d.%d.%d", major, minor, patch), nil
}
