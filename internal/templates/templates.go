// Package templates provides the embedded readme templates, the workspace
// scaffold, and a filesystem template loader.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"

	"github.com/monoforge/monoforge/internal/domain/services"
)

//go:embed readme/*.tmpl
var readmeTemplates embed.FS

//go:embed scaffold/*.tmpl
var scaffoldTemplates embed.FS

// Loader reads readme templates from disk and serves the embedded defaults.
// It implements services.TemplateLoader.
type Loader struct{}

// NewLoader creates a template loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ services.TemplateLoader = (*Loader)(nil)

// LoadTemplate reads a template file.
func (l *Loader) LoadTemplate(path string) (string, error) {
	//nolint:gosec // G304: template paths come from the workspace descriptor
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", path, services.ErrTemplateNotFound)
		}
		return "", fmt.Errorf("reading template %s: %w", path, err)
	}
	return string(data), nil
}

// DefaultTemplate returns an embedded readme template by name.
func (l *Loader) DefaultTemplate(name string) (string, error) {
	data, err := readmeTemplates.ReadFile("readme/" + name + ".tmpl")
	if err != nil {
		return "", fmt.Errorf("no default template %q", name)
	}
	return string(data), nil
}

// DefaultTemplateNames lists the embedded readme templates.
func DefaultTemplateNames() ([]string, error) {
	entries, err := fs.ReadDir(readmeTemplates, "readme")
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".tmpl"))
	}
	return names, nil
}

// ScaffoldData contains the data used to render a new monoforge.yaml.
type ScaffoldData struct {
	// Name is the root project name
	Name        string
	Group       string
	Version     string
	Description string
	// Maturity is one of PROTOTYPE, EXPERIMENTAL, DEVELOPMENT, STABLE
	Maturity      string
	DefaultReadme bool
	VCSURL        string
	License       string
	Repositories  []ScaffoldRepository
	// Projects are subproject directories relative to the workspace
	Projects []string
}

// ScaffoldRepository is one repository entry of the scaffold.
type ScaffoldRepository struct {
	Name string
	Kind string
	URL  string
}

// RenderWorkspace renders a monoforge.yaml for data.
func RenderWorkspace(data ScaffoldData) (string, error) {
	content, err := scaffoldTemplates.ReadFile("scaffold/monoforge.yaml.tmpl")
	if err != nil {
		return "", fmt.Errorf("reading scaffold template: %w", err)
	}

	tmpl, err := template.New("monoforge.yaml").Option("missingkey=error").Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("parsing scaffold template: %w", err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering scaffold template: %w", err)
	}
	return b.String() + "\n", nil
}
