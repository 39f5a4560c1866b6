// Package entities contains the project graph of a monoforge workspace.
// These are pure domain types with NO infrastructure dependencies.
package entities

import (
	"github.com/monoforge/monoforge/internal/domain/values"
)

// Feature is one declared capability of a project. Features are immutable
// and rendered in declaration order.
type Feature struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Reference   string `json:"reference,omitempty" yaml:"reference,omitempty"`
	DisplayName string `json:"name" yaml:"name"`
}

// FeatureOption configures optional feature attributes.
type FeatureOption func(*Feature)

// WithReference sets the relative path or anchor a feature links to.
func WithReference(ref string) FeatureOption {
	return func(f *Feature) {
		f.Reference = ref
	}
}

// WithDisplayName overrides the rendered feature name.
func WithDisplayName(name string) FeatureOption {
	return func(f *Feature) {
		if name != "" {
			f.DisplayName = name
		}
	}
}

// NewFeature creates a feature. DisplayName defaults to the ID.
func NewFeature(id, description string, opts ...FeatureOption) Feature {
	f := Feature{
		ID:          id,
		Description: description,
		DisplayName: id,
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// Artifact is one file of a publication.
type Artifact struct {
	Path       string `json:"path" yaml:"path"`
	Classifier string `json:"classifier,omitempty" yaml:"classifier,omitempty"`
	Extension  string `json:"extension,omitempty" yaml:"extension,omitempty"`
}

// Publication is a named set of artifacts of one project.
type Publication struct {
	Name       values.PublicationName `json:"name" yaml:"name"`
	ArtifactID string                 `json:"artifact_id" yaml:"artifact_id"`
	Artifacts  []Artifact             `json:"artifacts" yaml:"artifacts"`
}

// ReadmeSettings is the readme block of a project. A project without one
// carries no readme metadata.
type ReadmeSettings struct {
	// TemplatePath is the template file, relative to the project directory.
	TemplatePath string
	// UseDefaultTemplate enables the embedded templates when TemplatePath is empty.
	UseDefaultTemplate bool
	// Properties are extra or overriding template properties.
	Properties map[string]string
	// TemplateProperties map a property key to a template rendered with
	// the other properties.
	TemplateProperties map[string]string
}

// Project is one node of the workspace hierarchy.
//
// Entity Identity: Path uniquely identifies each project within a workspace.
type Project struct {
	Name         string
	Group        string
	Description  string
	Version      values.Version
	Maturity     values.Maturity
	Path         values.ProjectPath
	Dir          string
	Readme       *ReadmeSettings
	Publications []Publication

	features []Feature
	children []*Project
	parent   *Project
	tasks    *TaskContainer
}

// NewProject creates a project rooted at dir.
func NewProject(path values.ProjectPath, name, dir string) *Project {
	return &Project{
		Name:     name,
		Path:     path,
		Dir:      dir,
		Maturity: values.MaturityExperimental,
		tasks:    NewTaskContainer(path),
	}
}

// RegisterFeature appends a feature to the project. Duplicate IDs are kept.
func (p *Project) RegisterFeature(id, description string, opts ...FeatureOption) Feature {
	f := NewFeature(id, description, opts...)
	p.features = append(p.features, f)
	return f
}

// Features returns the features in declaration order.
func (p *Project) Features() []Feature {
	result := make([]Feature, len(p.features))
	copy(result, p.features)
	return result
}

// DuplicateFeatureIDs returns feature IDs declared more than once, in
// order of first duplication.
func (p *Project) DuplicateFeatureIDs() []string {
	seen := make(map[string]int)
	var dups []string
	for _, f := range p.features {
		seen[f.ID]++
		if seen[f.ID] == 2 {
			dups = append(dups, f.ID)
		}
	}
	return dups
}

// Children returns direct subprojects in declaration order.
func (p *Project) Children() []*Project {
	result := make([]*Project, len(p.children))
	copy(result, p.children)
	return result
}

// Parent returns the parent project, or nil for the root.
func (p *Project) Parent() *Project {
	return p.parent
}

// IsPublished reports whether the project declares any publication.
func (p *Project) IsPublished() bool {
	return len(p.Publications) > 0
}

// HasReadme reports whether the project carries readme metadata.
func (p *Project) HasReadme() bool {
	return p.Readme != nil
}

// Tasks returns the project's task container.
func (p *Project) Tasks() *TaskContainer {
	return p.tasks
}

// Walk visits the project and its descendants depth-first in declaration order.
func (p *Project) Walk(fn func(*Project)) {
	fn(p)
	for _, child := range p.children {
		child.Walk(fn)
	}
}
