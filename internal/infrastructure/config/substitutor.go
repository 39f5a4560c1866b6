package config

import (
	"fmt"
	"regexp"
	"strings"
)

// Property pattern: {{ .properties.key }}
var propertyPattern = regexp.MustCompile(`\{\{\s*\.properties\.([a-zA-Z0-9_.-]+)\s*\}\}`)

// PropertySubstitutor replaces property references in workspace strings.
type PropertySubstitutor struct {
	properties map[string]string
}

// NewPropertySubstitutor creates a substitutor over build properties.
func NewPropertySubstitutor(properties map[string]string) *PropertySubstitutor {
	return &PropertySubstitutor{properties: properties}
}

// Substitute replaces every {{ .properties.key }} in str. Returns an error
// if a referenced property is not set.
func (s *PropertySubstitutor) Substitute(str string) (string, error) {
	if !strings.Contains(str, "{{") {
		return str, nil
	}

	var lastErr error
	result := propertyPattern.ReplaceAllStringFunc(str, func(match string) string {
		submatches := propertyPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			lastErr = fmt.Errorf("invalid property pattern: %s", match)
			return match
		}

		key := submatches[1]
		value, ok := s.lookup(key)
		if !ok {
			lastErr = fmt.Errorf("property not found: %s", key)
			return match
		}
		return value
	})

	if lastErr != nil {
		return "", lastErr
	}
	return result, nil
}

// SubstituteAll applies Substitute to each field in place.
func (s *PropertySubstitutor) SubstituteAll(fields ...*string) error {
	for _, field := range fields {
		value, err := s.Substitute(*field)
		if err != nil {
			return err
		}
		*field = value
	}
	return nil
}

func (s *PropertySubstitutor) lookup(key string) (string, bool) {
	if v, ok := s.properties[key]; ok {
		return v, true
	}
	v, ok := s.properties[strings.ToLower(key)]
	return v, ok
}
