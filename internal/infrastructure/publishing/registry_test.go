package publishing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monoforge/monoforge/internal/domain/entities"
)

func TestRegistry_PublisherFor(t *testing.T) {
	maven := NewMavenPublisher()
	oci := NewOCIPublisher()
	command := NewCommandPublisher(nil, nil)
	r := NewRegistry(maven, oci, command)

	for _, kind := range []entities.RepositoryKind{
		entities.KindMaven, entities.KindGitHub, entities.KindSpace, entities.KindSonatype, entities.KindLocal,
	} {
		p, err := r.PublisherFor(kind)
		require.NoError(t, err, kind)
		assert.Same(t, maven, p, kind)
	}

	p, err := r.PublisherFor(entities.KindOCI)
	require.NoError(t, err)
	assert.Same(t, oci, p)

	p, err = r.PublisherFor(entities.KindCommand)
	require.NoError(t, err)
	assert.Same(t, command, p)
}

func TestRegistry_Unknown(t *testing.T) {
	r := NewRegistry(NewMavenPublisher(), NewOCIPublisher(), NewCommandPublisher(nil, nil))
	r.Register(entities.KindOCI, nil)

	_, err := r.PublisherFor(entities.KindOCI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"oci"`)
}
