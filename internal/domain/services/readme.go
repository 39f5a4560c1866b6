package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/values"
)

// Names of the embedded default templates.
const (
	ModuleTemplate   = "module"
	ArtifactTemplate = "artifact"
	RootTemplate     = "root"
)

// ErrTemplateNotFound is returned by TemplateLoader when a template file
// does not exist.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateLoader provides template sources.
type TemplateLoader interface {
	// LoadTemplate reads a template file. Missing files wrap ErrTemplateNotFound.
	LoadTemplate(path string) (string, error)
	// DefaultTemplate returns one of the embedded templates.
	DefaultTemplate(name string) (string, error)
}

// ReadmeGenerator renders the readme of one project.
type ReadmeGenerator struct {
	project   *entities.Project
	registry  *ReadmeRegistry
	templates TemplateLoader
	props     *PropertyMap
}

func newReadmeGenerator(project *entities.Project, registry *ReadmeRegistry, templates TemplateLoader) *ReadmeGenerator {
	g := &ReadmeGenerator{
		project:   project,
		registry:  registry,
		templates: templates,
		props:     NewPropertyMap(),
	}
	g.registerDefaults()
	return g
}

func (g *ReadmeGenerator) registerDefaults() {
	p := g.project
	g.props.Set("name", func() any { return p.Name })
	g.props.Set("group", func() any { return p.Group })
	g.props.Set("version", func() any { return p.Version.String() })
	g.props.Set("description", func() any { return p.Description })
	g.props.Set("maturity", func() any { return p.Maturity.String() })
	g.props.Set("path", func() any { return p.Path.String() })
	g.props.Set("features", func() any { return g.FeaturesString() })
	g.props.Set("published", func() any { return p.IsPublished() })
	g.props.Set("modules", func() any { return g.ModuleSummary() })
	g.props.Set("artifact", func() any {
		text, err := g.renderArtifact()
		if err != nil {
			return err
		}
		return text
	})
}

// Project returns the project this generator renders.
func (g *ReadmeGenerator) Project() *entities.Project {
	return g.project
}

// Properties returns the template property map.
func (g *ReadmeGenerator) Properties() *PropertyMap {
	return g.props
}

// Property registers or overrides a lazily evaluated property.
func (g *ReadmeGenerator) Property(key string, thunk Thunk) {
	g.props.Set(key, thunk)
}

// PropertyValue registers or overrides a constant property.
func (g *ReadmeGenerator) PropertyValue(key string, value any) {
	g.props.SetValue(key, value)
}

// PropertyByTemplate renders source against the current property values and
// stores the result under key. The other properties are evaluated once, now,
// so later changes to the project do not reach this property.
func (g *ReadmeGenerator) PropertyByTemplate(key, source string) error {
	text, err := RenderDocument(key, source, g.props.ResolveExcept(key))
	if err != nil {
		return fmt.Errorf("property %q: %w", key, err)
	}
	g.props.SetValue(key, text)
	return nil
}

// ApplyConfiguredProperties applies the properties and template properties
// of the project's readme block. Template properties are applied in key order
// after the plain properties.
func (g *ReadmeGenerator) ApplyConfiguredProperties() error {
	settings := g.project.Readme
	if settings == nil {
		return nil
	}
	for k, v := range settings.Properties {
		g.props.SetValue(k, v)
	}

	keys := make([]string, 0, len(settings.TemplateProperties))
	for k := range settings.TemplateProperties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := g.PropertyByTemplate(k, settings.TemplateProperties[k]); err != nil {
			return err
		}
	}
	return nil
}

// FeaturesString renders the project's own feature list.
func (g *ReadmeGenerator) FeaturesString() string {
	return RenderFeatureList(g.project.Features(), "- ", "")
}

// ModuleSummary renders a blockquote entry for every direct subproject that
// has a generator, in declaration order. Other subprojects are skipped.
func (g *ReadmeGenerator) ModuleSummary() string {
	var b strings.Builder
	for _, child := range g.project.Children() {
		if g.registry == nil {
			break
		}
		if _, ok := g.registry.Lookup(child.Path); !ok {
			continue
		}

		rel := relativeDir(g.project.Dir, child.Dir, child.Path.Name())

		fmt.Fprintf(&b, "\n### [%s](%s)\n", child.Name, rel)
		if child.Description != "" {
			for _, line := range strings.Split(strings.TrimRight(child.Description, "\n"), "\n") {
				b.WriteString(strings.TrimRight("> "+line, " "))
				b.WriteString("\n")
			}
			b.WriteString(">\n")
		}
		fmt.Fprintf(&b, "> **Maturity**: %s\n", child.Maturity)

		features := child.Features()
		if len(features) > 0 {
			b.WriteString(">\n> **Features:**\n")
			b.WriteString(RenderFeatureList(features, "> - ", rel+"/"))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// TemplateSource returns the template this project renders with. ok is
// false when no template is configured and default templates are disabled.
func (g *ReadmeGenerator) TemplateSource() (name, source string, ok bool, err error) {
	settings := g.project.Readme
	if settings == nil {
		return "", "", false, nil
	}

	if settings.TemplatePath != "" {
		path := settings.TemplatePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(g.project.Dir, path)
		}
		source, err := g.templates.LoadTemplate(path)
		if err != nil {
			return path, "", false, err
		}
		return path, source, true, nil
	}

	if !settings.UseDefaultTemplate {
		return "", "", false, nil
	}

	name = ModuleTemplate
	if g.project.Path.IsRoot() {
		name = RootTemplate
	}
	source, err = g.templates.DefaultTemplate(name)
	if err != nil {
		return name, "", false, err
	}
	return name, source, true, nil
}

// Render produces the readme document. ok is false, with a nil error, when
// the project has no template to render.
func (g *ReadmeGenerator) Render() (string, bool, error) {
	name, source, ok, err := g.TemplateSource()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}

	text, err := RenderDocument(name, source, g.props.Resolve())
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (g *ReadmeGenerator) renderArtifact() (string, error) {
	source, err := g.templates.DefaultTemplate(ArtifactTemplate)
	if err != nil {
		return "", err
	}
	return RenderDocument(ArtifactTemplate, source, g.props.ResolveExcept("artifact"))
}

// RenderDocument executes a text/template against resolved properties.
// Every property is a top-level field ({{ .name }}); unknown keys fail.
// A property that resolved to an error fails the render.
func RenderDocument(name, source string, props map[string]any) (string, error) {
	for k, v := range props {
		if err, ok := v.(error); ok {
			return "", fmt.Errorf("property %q: %w", k, err)
		}
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(source)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, props); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return b.String(), nil
}

// ReadmeRegistry maps projects to their readme generators.
type ReadmeRegistry struct {
	templates  TemplateLoader
	generators map[string]*ReadmeGenerator
	order      []*ReadmeGenerator
}

// NewReadmeRegistry creates an empty registry whose generators load
// templates through templates.
func NewReadmeRegistry(templates TemplateLoader) *ReadmeRegistry {
	return &ReadmeRegistry{
		templates:  templates,
		generators: make(map[string]*ReadmeGenerator),
	}
}

// Attach returns the generator of a project, creating it on first use.
func (r *ReadmeRegistry) Attach(project *entities.Project) *ReadmeGenerator {
	if g, ok := r.generators[project.Path.String()]; ok {
		return g
	}
	g := newReadmeGenerator(project, r, r.templates)
	r.generators[project.Path.String()] = g
	r.order = append(r.order, g)
	return g
}

// Lookup returns the generator registered for path.
func (r *ReadmeRegistry) Lookup(path values.ProjectPath) (*ReadmeGenerator, bool) {
	g, ok := r.generators[path.String()]
	return g, ok
}

// Generators returns every generator in registration order.
func (r *ReadmeRegistry) Generators() []*ReadmeGenerator {
	result := make([]*ReadmeGenerator, len(r.order))
	copy(result, r.order)
	return result
}

// Len returns the number of registered generators.
func (r *ReadmeRegistry) Len() int {
	return len(r.order)
}

func relativeDir(base, target, fallback string) string {
	if base != "" && target != "" {
		if rel, err := filepath.Rel(base, target); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return fallback
}
