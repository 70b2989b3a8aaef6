// Package version parses SCPI standard version strings as reported by
// SYST:VERS? ("year.revision", e.g. "1996.0").
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Baseline is the oldest standard version this library is written
// against.
const Baseline = "1996.0"

// Version represents a parsed "year.revision" standard version.
type Version struct {
	Year     int
	Revision int
}

// Parse parses a "year.revision" version string.
func Parse(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("invalid version %q: expected year.revision", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil || parts[0] == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad year component", s)
	}

	revision, err := strconv.Atoi(parts[1])
	if err != nil || parts[1] == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad revision component", s)
	}

	return Version{Year: year, Revision: revision}, nil
}

// String returns the version as "year.revision".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Year, v.Revision)
}

// AtLeast reports whether v is the same as or newer than other.
func (v Version) AtLeast(other Version) bool {
	if v.Year != other.Year {
		return v.Year > other.Year
	}
	return v.Revision >= other.Revision
}
