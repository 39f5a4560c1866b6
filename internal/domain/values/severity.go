package values

import (
	"fmt"
	"strings"
)

// Severity ranks a workspace diagnostic. Only error diagnostics fail
// "monoforge check".
type Severity struct {
	level int
}

var (
	SevUnknown = Severity{0}
	SevNote    = Severity{1}
	SevWarning = Severity{2}
	SevError   = Severity{3}
)

var severityNames = map[Severity]string{
	SevNote:    "note",
	SevWarning: "warning",
	SevError:   "error",
}

// NewSeverity parses a severity name. "info" and "warn" are accepted as
// aliases; the empty string is SevUnknown.
func NewSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SevUnknown, nil
	case "note", "info":
		return SevNote, nil
	case "warning", "warn":
		return SevWarning, nil
	case "error":
		return SevError, nil
	default:
		return Severity{}, fmt.Errorf("invalid severity: %s", s)
	}
}

func (s Severity) String() string {
	return severityNames[s]
}

func (s Severity) IsHigherOrEqual(other Severity) bool {
	return s.level >= other.level
}

func (s Severity) Equals(other Severity) bool {
	return s == other
}

// MarshalText renders the severity name in JSON and YAML reports.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
