package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/monoforge/monoforge/internal/application/dto"
	apperrors "github.com/monoforge/monoforge/internal/application/errors"
	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReadmeUseCase(build func() *entities.Workspace, templates memTemplates, docs *memDocuments) *GenerateReadmeUseCase {
	return NewGenerateReadmeUseCase(&fakeLoader{build: build}, templates, docs, nil)
}

func TestGenerateReadme_WritesSubprojectsThenRoot(t *testing.T) {
	docs := newMemDocuments()
	uc := newReadmeUseCase(newFixtureWorkspace, memTemplates{}, docs)

	resp, err := uc.Execute(context.Background(), dto.GenerateReadmeRequest{})
	require.NoError(t, err)

	require.Len(t, resp.Documents, 3)
	assert.Equal(t, ":core", resp.Documents[0].Project)
	assert.Equal(t, ":io", resp.Documents[1].Project)
	assert.Equal(t, ":", resp.Documents[2].Project)
	for _, doc := range resp.Documents {
		assert.True(t, doc.Written, doc.Path)
	}

	assert.Contains(t, docs.files["/ws/core/README.md"], "# core\n\nCore types\n\n- [codec](#) : Codecs\n")

	root := docs.files["/ws/README.md"]
	assert.Equal(t, 2, strings.Count(root, "### "))
	assert.Contains(t, root, "### [core](core)")
	assert.Contains(t, root, "> - [codec](core/#) : Codecs")
	assert.NotContains(t, root, "internal")
	assert.Empty(t, resp.Skipped)
}

func TestGenerateReadme_DryRunAndCheck(t *testing.T) {
	docs := newMemDocuments()
	uc := newReadmeUseCase(newFixtureWorkspace, memTemplates{}, docs)

	resp, err := uc.Execute(context.Background(), dto.GenerateReadmeRequest{DryRun: true})
	require.NoError(t, err)
	assert.Empty(t, docs.files)
	assert.Len(t, resp.OutOfDate(), 3)

	_, err = uc.Execute(context.Background(), dto.GenerateReadmeRequest{})
	require.NoError(t, err)

	resp, err = uc.Execute(context.Background(), dto.GenerateReadmeRequest{Check: true})
	require.NoError(t, err)
	assert.Empty(t, resp.OutOfDate())

	docs.files["/ws/io/README.md"] = "stale"
	resp, err = uc.Execute(context.Background(), dto.GenerateReadmeRequest{Check: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"/ws/io/README.md"}, resp.OutOfDate())
	assert.Equal(t, "stale", docs.files["/ws/io/README.md"])
}

func TestGenerateReadme_MissingTemplateSkipsProject(t *testing.T) {
	build := func() *entities.Workspace {
		ws := newFixtureWorkspace()
		core := ws.Root.Children()[0]
		core.Readme.TemplatePath = "docs/README.tmpl"
		return ws
	}
	docs := newMemDocuments()
	uc := newReadmeUseCase(build, memTemplates{}, docs)

	resp, err := uc.Execute(context.Background(), dto.GenerateReadmeRequest{})
	require.NoError(t, err)

	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, ":core", resp.Skipped[0].Project)
	assert.Contains(t, resp.Skipped[0].Reason, "docs/README.tmpl")
	assert.Len(t, resp.Documents, 2)
	assert.NotContains(t, docs.files, "/ws/core/README.md")
}

func TestGenerateReadme_DefaultTemplatesDisabled(t *testing.T) {
	build := func() *entities.Workspace {
		ws := newFixtureWorkspace()
		ws.Root.Children()[1].Readme.UseDefaultTemplate = false
		return ws
	}
	uc := newReadmeUseCase(build, memTemplates{}, newMemDocuments())

	resp, err := uc.Execute(context.Background(), dto.GenerateReadmeRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, ":io", resp.Skipped[0].Project)
	assert.Equal(t, "no template configured", resp.Skipped[0].Reason)
}

func TestGenerateReadme_CustomTemplateWithProperties(t *testing.T) {
	build := func() *entities.Workspace {
		ws := newFixtureWorkspace()
		io := ws.Root.Children()[1]
		io.Readme = &entities.ReadmeSettings{
			TemplatePath:       "README.tmpl",
			Properties:         map[string]string{"badge": "stable"},
			TemplateProperties: map[string]string{"coords": "{{ .group }}:{{ .name }}"},
		}
		io.Group = "dev.acme"
		return ws
	}
	templates := memTemplates{files: map[string]string{"/ws/io/README.tmpl": "{{ .coords }} [{{ .badge }}]"}}
	docs := newMemDocuments()
	uc := newReadmeUseCase(build, templates, docs)

	_, err := uc.Execute(context.Background(), dto.GenerateReadmeRequest{Projects: []string{":io"}})
	require.NoError(t, err)
	assert.Equal(t, "dev.acme:io [stable]", docs.files["/ws/io/README.md"])
	assert.Len(t, docs.files, 1)
}

func TestGenerateReadme_UnknownProject(t *testing.T) {
	uc := newReadmeUseCase(newFixtureWorkspace, memTemplates{}, newMemDocuments())

	_, err := uc.Execute(context.Background(), dto.GenerateReadmeRequest{Projects: []string{":nope"}})
	var valErr *apperrors.ValidationError
	require.True(t, errors.As(err, &valErr))
}

func TestGenerateReadme_LoaderErrorIsConfigurationError(t *testing.T) {
	uc := NewGenerateReadmeUseCase(&fakeLoader{err: errors.New("no such file")}, memTemplates{}, newMemDocuments(), nil)

	_, err := uc.Execute(context.Background(), dto.GenerateReadmeRequest{})
	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "workspace", cfgErr.Aspect)
}
