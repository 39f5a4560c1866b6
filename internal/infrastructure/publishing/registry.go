package publishing

import (
	"fmt"

	"github.com/monoforge/monoforge/internal/application/ports"
	"github.com/monoforge/monoforge/internal/domain/entities"
)

// Registry maps repository kinds to publishers.
type Registry struct {
	publishers map[entities.RepositoryKind]ports.Publisher
}

// NewRegistry creates a registry. Every Maven-layout kind shares maven.
func NewRegistry(maven, oci, command ports.Publisher) *Registry {
	r := &Registry{publishers: make(map[entities.RepositoryKind]ports.Publisher)}
	for _, name := range entities.SupportedKinds() {
		kind := entities.RepositoryKind(name)
		switch {
		case kind.UsesMavenLayout():
			r.Register(kind, maven)
		case kind == entities.KindOCI:
			r.Register(kind, oci)
		case kind == entities.KindCommand:
			r.Register(kind, command)
		}
	}
	return r
}

var _ ports.PublisherRegistry = (*Registry)(nil)

// Register sets the publisher of a kind. A nil publisher removes it.
func (r *Registry) Register(kind entities.RepositoryKind, p ports.Publisher) {
	if p == nil {
		delete(r.publishers, kind)
		return
	}
	r.publishers[kind] = p
}

// PublisherFor returns the publisher of a kind.
func (r *Registry) PublisherFor(kind entities.RepositoryKind) (ports.Publisher, error) {
	p, ok := r.publishers[kind]
	if !ok {
		return nil, fmt.Errorf("no publisher for repository kind %q", kind)
	}
	return p, nil
}
