package values

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Repository and publication names are interpolated into task names,
// so both are restricted to letters and digits.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// RepositoryName represents a validated publishing repository identifier.
type RepositoryName struct {
	value string
}

// NewRepositoryName creates a RepositoryName with validation
func NewRepositoryName(name string) (RepositoryName, error) {
	if !identifierPattern.MatchString(name) {
		return RepositoryName{}, fmt.Errorf("invalid repository name %q: only letters and digits are allowed", name)
	}
	return RepositoryName{value: name}, nil
}

// MustNewRepositoryName creates a RepositoryName or panics
func MustNewRepositoryName(name string) RepositoryName {
	rn, err := NewRepositoryName(name)
	if err != nil {
		panic(err)
	}
	return rn
}

// String returns the name as registered
func (r RepositoryName) String() string {
	return r.value
}

// Capitalized returns the name with its first letter upper-cased,
// the form used inside task names.
func (r RepositoryName) Capitalized() string {
	return capitalize(r.value)
}

// IsEmpty returns true if this is the zero value
func (r RepositoryName) IsEmpty() bool {
	return r.value == ""
}

// Equals checks if two repository names are equal
func (r RepositoryName) Equals(other RepositoryName) bool {
	return r.value == other.value
}

// MarshalText implements encoding.TextMarshaler
func (r RepositoryName) MarshalText() ([]byte, error) {
	return []byte(r.value), nil
}

// PublicationName identifies one publication of a project (jvm, js, ...).
type PublicationName struct {
	value string
}

// NewPublicationName creates a PublicationName with validation
func NewPublicationName(name string) (PublicationName, error) {
	if !identifierPattern.MatchString(name) {
		return PublicationName{}, fmt.Errorf("invalid publication name %q: only letters and digits are allowed", name)
	}
	return PublicationName{value: name}, nil
}

// MustNewPublicationName creates a PublicationName or panics
func MustNewPublicationName(name string) PublicationName {
	pn, err := NewPublicationName(name)
	if err != nil {
		panic(err)
	}
	return pn
}

// String returns the name as declared
func (p PublicationName) String() string {
	return p.value
}

// Capitalized returns the name with its first letter upper-cased
func (p PublicationName) Capitalized() string {
	return capitalize(p.value)
}

// Equals checks if two publication names are equal
func (p PublicationName) Equals(other PublicationName) bool {
	return p.value == other.value
}

// MarshalText implements encoding.TextMarshaler
func (p PublicationName) MarshalText() ([]byte, error) {
	return []byte(p.value), nil
}

// EnvKey turns a dotted property name into an environment variable name
// ("publishing.sonatype.user" -> "PUBLISHING_SONATYPE_USER").
func EnvKey(property string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(property))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
