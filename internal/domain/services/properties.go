package services

import (
	"sort"
)

// Thunk produces a property value on demand.
type Thunk func() any

// Constant wraps a fixed value as a Thunk.
func Constant(v any) Thunk {
	return func() any { return v }
}

// PropertyMap maps template property keys to lazily evaluated values.
// Values are computed every time the map is resolved, so they reflect the
// project metadata at render time rather than at registration time.
type PropertyMap struct {
	entries map[string]Thunk
}

// NewPropertyMap creates an empty property map.
func NewPropertyMap() *PropertyMap {
	return &PropertyMap{entries: make(map[string]Thunk)}
}

// Set registers or replaces a lazily evaluated property.
func (m *PropertyMap) Set(key string, thunk Thunk) {
	m.entries[key] = thunk
}

// SetValue registers or replaces a constant property.
func (m *PropertyMap) SetValue(key string, value any) {
	m.entries[key] = Constant(value)
}

// Get returns the thunk for key.
func (m *PropertyMap) Get(key string) (Thunk, bool) {
	t, ok := m.entries[key]
	return t, ok
}

// Has reports whether key is registered.
func (m *PropertyMap) Has(key string) bool {
	_, ok := m.entries[key]
	return ok
}

// Keys returns the registered keys in sorted order.
func (m *PropertyMap) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve evaluates every thunk.
func (m *PropertyMap) Resolve() map[string]any {
	return m.ResolveExcept("")
}

// ResolveExcept evaluates every thunk except the one registered under skip.
// A template-backed property resolves the others through this so it never
// evaluates itself.
func (m *PropertyMap) ResolveExcept(skip string) map[string]any {
	resolved := make(map[string]any, len(m.entries))
	for k, thunk := range m.entries {
		if k == skip {
			continue
		}
		resolved[k] = thunk()
	}
	return resolved
}

// Clone returns a shallow copy; thunks are shared.
func (m *PropertyMap) Clone() *PropertyMap {
	clone := NewPropertyMap()
	for k, v := range m.entries {
		clone.entries[k] = v
	}
	return clone
}
