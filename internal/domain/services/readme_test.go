package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTemplates serves templates from maps.
type memTemplates struct {
	files    map[string]string
	defaults map[string]string
}

func (m memTemplates) LoadTemplate(path string) (string, error) {
	if src, ok := m.files[path]; ok {
		return src, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrTemplateNotFound)
}

func (m memTemplates) DefaultTemplate(name string) (string, error) {
	if src, ok := m.defaults[name]; ok {
		return src, nil
	}
	return "", fmt.Errorf("no default template %q", name)
}

func defaultTemplates() memTemplates {
	return memTemplates{
		files: map[string]string{},
		defaults: map[string]string{
			ModuleTemplate:   "# {{ .name }}\n{{ .description }}\n{{ .features }}\n{{ .artifact }}",
			ArtifactTemplate: "{{ if .published }}{{ .group }}:{{ .name }}:{{ .version }}{{ end }}",
			RootTemplate:     "# {{ .name }}\n{{ .modules }}",
		},
	}
}

func TestRenderFeatureList(t *testing.T) {
	p := entities.NewProject(values.RootPath, "root", "/ws")
	p.RegisterFeature("io", "Binary IO\nSecond line is dropped")
	p.RegisterFeature("json", "JSON codec", entities.WithReference("docs/json.md"), entities.WithDisplayName("JSON"))
	p.RegisterFeature("io", "Duplicate")

	out := RenderFeatureList(p.Features(), "- ", "core/")
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, "- [io](core/#) : Binary IO", lines[0])
	assert.Equal(t, "- [JSON](core/docs/json.md) : JSON codec", lines[1])
	assert.Equal(t, "- [io](core/#) : Duplicate", lines[2])
}

func TestRenderFeatureList_Empty(t *testing.T) {
	assert.Equal(t, "", RenderFeatureList(nil, "- ", ""))
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Line1\nLine2", "Line1"},
		{"Line1\r\nLine2", "Line1"},
		{"single", "single"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FirstLine(tt.in))
	}
}

func TestPropertyMap_LazyEvaluation(t *testing.T) {
	m := NewPropertyMap()
	calls := 0
	m.Set("count", func() any {
		calls++
		return calls
	})
	m.SetValue("fixed", "x")

	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, m.Resolve()["count"])
	assert.Equal(t, 2, m.Resolve()["count"])
	assert.Equal(t, []string{"count", "fixed"}, m.Keys())

	except := m.ResolveExcept("count")
	assert.NotContains(t, except, "count")
	assert.Equal(t, "x", except["fixed"])

	clone := m.Clone()
	clone.SetValue("fixed", "y")
	assert.Equal(t, "x", m.Resolve()["fixed"])
}

func TestReadmeGenerator_Render_ReflectsLateChanges(t *testing.T) {
	registry := NewReadmeRegistry(defaultTemplates())
	p := entities.NewProject(values.MustNewProjectPath(":core"), "core", "/ws/core")
	p.Readme = &entities.ReadmeSettings{UseDefaultTemplate: true}

	g := registry.Attach(p)

	p.Description = "set after attach"
	p.RegisterFeature("io", "Binary IO")

	doc, ok, err := g.Render()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, doc, "# core")
	assert.Contains(t, doc, "set after attach")
	assert.Contains(t, doc, "- [io](#) : Binary IO")
}

func TestReadmeGenerator_Render_NoTemplate(t *testing.T) {
	registry := NewReadmeRegistry(defaultTemplates())
	p := entities.NewProject(values.MustNewProjectPath(":core"), "core", "/ws/core")
	p.Readme = &entities.ReadmeSettings{UseDefaultTemplate: false}

	doc, ok, err := registry.Attach(p).Render()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, doc)

	p.Readme.UseDefaultTemplate = true
	doc, ok, err = registry.Attach(p).Render()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, doc)
}

func TestReadmeGenerator_Render_MissingTemplateFile(t *testing.T) {
	registry := NewReadmeRegistry(defaultTemplates())
	p := entities.NewProject(values.MustNewProjectPath(":core"), "core", "/ws/core")
	p.Readme = &entities.ReadmeSettings{TemplatePath: "docs/README.tmpl", UseDefaultTemplate: true}

	_, ok, err := registry.Attach(p).Render()
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.Contains(t, err.Error(), "/ws/core/docs/README.tmpl")
}

func TestReadmeGenerator_Render_CustomTemplateAndOverrides(t *testing.T) {
	templates := defaultTemplates()
	templates.files["/ws/core/README.tmpl"] = "{{ .name }} by {{ .author }} ({{ .badge }})"

	registry := NewReadmeRegistry(templates)
	p := entities.NewProject(values.MustNewProjectPath(":core"), "core", "/ws/core")
	p.Version = values.NewVersion("1.2.0")
	p.Readme = &entities.ReadmeSettings{
		TemplatePath:       "README.tmpl",
		Properties:         map[string]string{"author": "platform team"},
		TemplateProperties: map[string]string{"badge": "v{{ .version }}"},
	}

	g := registry.Attach(p)
	require.NoError(t, g.ApplyConfiguredProperties())

	doc, ok, err := g.Render()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "core by platform team (v1.2.0)", doc)
}

func TestReadmeGenerator_PropertyByTemplate_Snapshots(t *testing.T) {
	registry := NewReadmeRegistry(defaultTemplates())
	p := entities.NewProject(values.MustNewProjectPath(":core"), "core", "/ws/core")
	p.Version = values.NewVersion("1.0.0")
	g := registry.Attach(p)

	require.NoError(t, g.PropertyByTemplate("title", "{{ .name }} {{ .version }}"))
	p.Version = values.NewVersion("2.0.0")

	props := g.Properties().Resolve()
	assert.Equal(t, "core 1.0.0", props["title"])
	assert.Equal(t, "2.0.0", props["version"])
}

func TestReadmeGenerator_PropertyByTemplate_UnknownKey(t *testing.T) {
	registry := NewReadmeRegistry(defaultTemplates())
	p := entities.NewProject(values.MustNewProjectPath(":core"), "core", "/ws/core")

	err := registry.Attach(p).PropertyByTemplate("title", "{{ .nope }}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
}

func TestReadmeGenerator_Artifact(t *testing.T) {
	registry := NewReadmeRegistry(defaultTemplates())
	p := entities.NewProject(values.MustNewProjectPath(":core"), "core", "/ws/core")
	p.Group = "dev.acme"
	p.Version = values.NewVersion("1.0.0")
	p.Readme = &entities.ReadmeSettings{UseDefaultTemplate: true}
	g := registry.Attach(p)

	doc, _, err := g.Render()
	require.NoError(t, err)
	assert.NotContains(t, doc, "dev.acme:core")

	p.Publications = []entities.Publication{{Name: values.MustNewPublicationName("jvm")}}
	doc, _, err = g.Render()
	require.NoError(t, err)
	assert.Contains(t, doc, "dev.acme:core:1.0.0")
}

func TestReadmeGenerator_ModuleSummary_SkipsProjectsWithoutGenerator(t *testing.T) {
	root := entities.NewProject(values.RootPath, "widgets", "/ws")
	ws := entities.NewWorkspace(root, "/ws")

	registry := NewReadmeRegistry(defaultTemplates())
	rootGen := registry.Attach(root)

	for _, name := range []string{"core", "io", "internal"} {
		child := entities.NewProject(values.RootPath.Child(name), name, "/ws/"+name)
		child.Description = name + " module\nmore detail"
		child.Maturity = values.MaturityStable
		require.NoError(t, ws.AddProject(root, child))
		if name != "internal" {
			child.Readme = &entities.ReadmeSettings{UseDefaultTemplate: true}
			registry.Attach(child)
		}
	}

	core, _ := ws.Project(values.MustNewProjectPath(":core"))
	core.RegisterFeature("codec", "Codecs", entities.WithReference("docs/codec.md"))

	summary := rootGen.ModuleSummary()

	assert.Equal(t, 2, strings.Count(summary, "### "))
	assert.Contains(t, summary, "\n### [core](core)\n> core module\n> more detail\n>\n> **Maturity**: STABLE\n>\n> **Features:**\n> - [codec](core/docs/codec.md) : Codecs\n")
	assert.Contains(t, summary, "### [io](io)")
	assert.NotContains(t, summary, "internal")
	assert.Less(t, strings.Index(summary, "[core]"), strings.Index(summary, "[io]"))

	root.Readme = &entities.ReadmeSettings{UseDefaultTemplate: true}
	doc, ok, err := rootGen.Render()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(doc, "# widgets\n"))
	assert.Contains(t, doc, summary)
}

func TestReadmeRegistry_AttachIsIdempotent(t *testing.T) {
	registry := NewReadmeRegistry(defaultTemplates())
	p := entities.NewProject(values.MustNewProjectPath(":core"), "core", "/ws/core")

	first := registry.Attach(p)
	second := registry.Attach(p)

	assert.Same(t, first, second)
	assert.Equal(t, 1, registry.Len())

	found, ok := registry.Lookup(values.MustNewProjectPath(":core"))
	require.True(t, ok)
	assert.Same(t, first, found)
}

func TestRenderDocument(t *testing.T) {
	out, err := RenderDocument("t", "{{ .a }}-{{ .b }}", map[string]any{"a": "x", "b": true})
	require.NoError(t, err)
	assert.Equal(t, "x-true", out)

	_, err = RenderDocument("t", "{{ .missing }}", map[string]any{})
	assert.Error(t, err)

	_, err = RenderDocument("t", "{{ .a ", map[string]any{})
	assert.Error(t, err)

	_, err = RenderDocument("t", "{{ .a }}", map[string]any{"a": fmt.Errorf("boom")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
