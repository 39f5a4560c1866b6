package values

import (
	"fmt"
	"strings"
)

// Maturity describes how far along a project is.
type Maturity int

const (
	MaturityPrototype Maturity = iota
	MaturityExperimental
	MaturityDevelopment
	MaturityStable
)

// ParseMaturity parses a maturity name case-insensitively.
// An empty string yields MaturityExperimental.
func ParseMaturity(s string) (Maturity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PROTOTYPE":
		return MaturityPrototype, nil
	case "EXPERIMENTAL", "":
		return MaturityExperimental, nil
	case "DEVELOPMENT":
		return MaturityDevelopment, nil
	case "STABLE":
		return MaturityStable, nil
	default:
		return MaturityExperimental, fmt.Errorf("invalid maturity: %q (valid: PROTOTYPE, EXPERIMENTAL, DEVELOPMENT, STABLE)", s)
	}
}

// String returns the upper-case name used in rendered documents
func (m Maturity) String() string {
	switch m {
	case MaturityPrototype:
		return "PROTOTYPE"
	case MaturityExperimental:
		return "EXPERIMENTAL"
	case MaturityDevelopment:
		return "DEVELOPMENT"
	case MaturityStable:
		return "STABLE"
	default:
		return fmt.Sprintf("Maturity(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler
func (m Maturity) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Maturity) UnmarshalText(data []byte) error {
	parsed, err := ParseMaturity(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
