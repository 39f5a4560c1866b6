package entities

import (
	"fmt"

	"github.com/monoforge/monoforge/internal/domain/values"
)

// VCS describes the source repository. Some repository kinds refuse to
// publish without it because the generated POM must name it.
type VCS struct {
	URL        string
	Connection string
}

// License is the POM license block.
type License struct {
	Name string
	URL  string
}

// Developer is one POM developer entry.
type Developer struct {
	ID    string
	Name  string
	Email string
}

// Workspace is the aggregate root: the project hierarchy plus the
// publishing configuration shared by every project.
//
// Invariants Enforced:
// - Project paths are unique
// - Every project except the root has a parent inside the workspace
type Workspace struct {
	Root         *Project
	RootDir      string
	File         string
	Repositories []Repository
	VCS          *VCS
	License      *License
	Developers   []Developer
	Properties   map[string]string

	projects map[string]*Project
}

// NewWorkspace creates a workspace around its root project.
func NewWorkspace(root *Project, rootDir string) *Workspace {
	return &Workspace{
		Root:       root,
		RootDir:    rootDir,
		Properties: make(map[string]string),
		projects:   map[string]*Project{root.Path.String(): root},
	}
}

// AddProject attaches child under parent.
func (w *Workspace) AddProject(parent, child *Project) error {
	key := child.Path.String()
	if _, exists := w.projects[key]; exists {
		return fmt.Errorf("duplicate project path: %s", key)
	}
	if _, ok := w.projects[parent.Path.String()]; !ok {
		return fmt.Errorf("parent project %s is not part of the workspace", parent.Path)
	}
	child.parent = parent
	parent.children = append(parent.children, child)
	w.projects[key] = child
	return nil
}

// Project looks a project up by path.
func (w *Workspace) Project(path values.ProjectPath) (*Project, bool) {
	p, ok := w.projects[path.String()]
	return p, ok
}

// Projects returns every project depth-first in declaration order, root first.
func (w *Workspace) Projects() []*Project {
	result := make([]*Project, 0, len(w.projects))
	w.Root.Walk(func(p *Project) {
		result = append(result, p)
	})
	return result
}

// Repository looks a repository up by name.
func (w *Workspace) Repository(name string) (Repository, bool) {
	for _, repo := range w.Repositories {
		if repo.Name.String() == name {
			return repo, true
		}
	}
	return Repository{}, false
}

// Property returns a build property.
func (w *Workspace) Property(key string) (string, bool) {
	v, ok := w.Properties[key]
	return v, ok
}
