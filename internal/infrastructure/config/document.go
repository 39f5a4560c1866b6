// Package config loads monoforge workspaces from monoforge.yaml and
// project.yaml files.
package config

import "fmt"

// WorkspaceFileName is the root descriptor of a workspace.
const WorkspaceFileName = "monoforge.yaml"

// ProjectFileName is the optional descriptor of a subproject.
const ProjectFileName = "project.yaml"

// ProjectFile is the YAML form of one project.
type ProjectFile struct {
	Name         string            `yaml:"name"`
	Group        string            `yaml:"group"`
	Version      string            `yaml:"version"`
	Description  string            `yaml:"description"`
	Maturity     string            `yaml:"maturity"`
	Readme       *ReadmeFile       `yaml:"readme"`
	Features     []FeatureFile     `yaml:"features"`
	Publications []PublicationFile `yaml:"publications"`
	// Projects lists child directories relative to the declaring project.
	Projects []string `yaml:"projects"`
}

// ReadmeFile is the readme block of a project.
type ReadmeFile struct {
	Template string `yaml:"template"`
	// UseDefaultTemplate defaults to true when omitted.
	UseDefaultTemplate *bool          `yaml:"use_default_template"`
	Properties         map[string]any `yaml:"properties"`
	TemplateProperties map[string]any `yaml:"template_properties"`
}

// FeatureFile declares one feature.
type FeatureFile struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Reference   string `yaml:"reference"`
	Name        string `yaml:"name"`
}

// PublicationFile declares one publication.
type PublicationFile struct {
	Name       string         `yaml:"name"`
	ArtifactID string         `yaml:"artifact_id"`
	Artifacts  []ArtifactFile `yaml:"artifacts"`
}

// ArtifactFile declares one artifact of a publication.
type ArtifactFile struct {
	Path       string `yaml:"path"`
	Classifier string `yaml:"classifier"`
	Extension  string `yaml:"extension"`
}

// WorkspaceFile is the YAML form of monoforge.yaml: the root project plus
// the workspace-wide publishing blocks.
type WorkspaceFile struct {
	ProjectFile  `yaml:",inline"`
	VCS          *VCSFile         `yaml:"vcs"`
	License      *LicenseFile     `yaml:"license"`
	Developers   []DeveloperFile  `yaml:"developers"`
	Repositories []RepositoryFile `yaml:"repositories"`
}

// VCSFile is the source repository block.
type VCSFile struct {
	URL        string `yaml:"url"`
	Connection string `yaml:"connection"`
}

// LicenseFile is the license block.
type LicenseFile struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// DeveloperFile is one developer entry.
type DeveloperFile struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// RepositoryFile declares a publishing destination.
type RepositoryFile struct {
	Name         string `yaml:"name"`
	Kind         string `yaml:"kind"`
	URL          string `yaml:"url"`
	SnapshotURL  string `yaml:"snapshot_url"`
	ReleasesOnly bool   `yaml:"releases_only"`
	When         string `yaml:"when"`
	Command      string `yaml:"command"`
}

// stringMap flattens scalar YAML values to strings.
func stringMap(m map[string]any) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if v == nil {
			out[k] = ""
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
