// Package sensitivedata keeps repository credentials out of logs, task
// messages, and captured publisher output.
package sensitivedata

import "sync"

// MinTrackedLength is the shortest value Track accepts. Shorter values
// would redact ordinary words from every line of output.
const MinTrackedLength = 4

// Provider implements ports.SensitiveValueProvider. It holds every
// credential resolved during a run; duplicates are stored once.
type Provider struct {
	mu     sync.RWMutex
	seen   map[string]struct{}
	values []string
}

// NewProvider creates an empty provider.
func NewProvider() *Provider {
	return &Provider{seen: make(map[string]struct{})}
}

// Track registers a value to be redacted.
func (p *Provider) Track(value string) {
	if len(value) < MinTrackedLength {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[value]; ok {
		return
	}
	p.seen[value] = struct{}{}
	p.values = append(p.values, value)
}

// AllValues returns a copy of the tracked values in tracking order.
func (p *Provider) AllValues() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.values...)
}

// Len returns the number of tracked values.
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.values)
}
