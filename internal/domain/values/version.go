package values

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a project version. It keeps the raw string for rendering and
// the parsed semantic version when the string is valid semver.
type Version struct {
	raw    string
	parsed *semver.Version
}

// NewVersion wraps a version string. Non-semver strings are accepted;
// IsSemver reports whether parsing succeeded.
func NewVersion(raw string) Version {
	raw = strings.TrimSpace(raw)
	v := Version{raw: raw}
	if parsed, err := semver.NewVersion(raw); err == nil {
		v.parsed = parsed
	}
	return v
}

// String returns the version as written
func (v Version) String() string {
	return v.raw
}

// IsEmpty reports whether no version was set
func (v Version) IsEmpty() bool {
	return v.raw == ""
}

// IsSemver reports whether the version parses as a semantic version
func (v Version) IsSemver() bool {
	return v.parsed != nil
}

// IsSnapshot reports whether this is a pre-release build: a semver
// pre-release suffix or the Maven "-SNAPSHOT" convention.
func (v Version) IsSnapshot() bool {
	if strings.HasSuffix(strings.ToUpper(v.raw), "-SNAPSHOT") {
		return true
	}
	return v.parsed != nil && v.parsed.Prerelease() != ""
}

// MarshalText implements encoding.TextMarshaler
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.raw), nil
}
