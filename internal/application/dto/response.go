package dto

import (
	"time"

	"github.com/monoforge/monoforge/internal/domain/execution"
)

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// RequestID from the original request
	RequestID string

	// ProcessedAt is when the request was processed
	ProcessedAt time.Time

	// Duration is how long the request took
	Duration time.Duration
}

// ReadmeDocument is one rendered readme.
type ReadmeDocument struct {
	Project string
	Path    string
	Content string
	// Changed reports whether Content differs from the file on disk.
	Changed bool
	// Written reports whether the file was written.
	Written bool
}

// SkippedProject is a project that produced no readme, with the reason.
type SkippedProject struct {
	Project string
	Reason  string
}

// GenerateReadmeResponse contains the result of readme generation.
type GenerateReadmeResponse struct {
	Documents []ReadmeDocument
	Skipped   []SkippedProject
	Metadata  ResponseMetadata
}

// OutOfDate returns the paths of documents that differ from disk.
func (r *GenerateReadmeResponse) OutOfDate() []string {
	var paths []string
	for _, doc := range r.Documents {
		if doc.Changed {
			paths = append(paths, doc.Path)
		}
	}
	return paths
}

// RepositoryStatus describes whether one repository takes part in the release.
type RepositoryStatus struct {
	Name    string `json:"name" yaml:"name"`
	Kind    string `json:"kind" yaml:"kind"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Reason  string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// PlannedTask is one node of the release plan.
type PlannedTask struct {
	Path        string   `json:"path" yaml:"path"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	DependsOn   []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// PlanLevel groups tasks that can run concurrently.
type PlanLevel struct {
	Level int           `json:"level" yaml:"level"`
	Tasks []PlannedTask `json:"tasks" yaml:"tasks"`
}

// ReleasePlan is the release graph in execution order.
type ReleasePlan struct {
	Workspace    string             `json:"workspace" yaml:"workspace"`
	Version      string             `json:"version" yaml:"version"`
	Target       string             `json:"target" yaml:"target"`
	Repositories []RepositoryStatus `json:"repositories" yaml:"repositories"`
	Levels       []PlanLevel        `json:"levels" yaml:"levels"`
}

// TaskCount returns the number of planned tasks.
func (p *ReleasePlan) TaskCount() int {
	n := 0
	for _, level := range p.Levels {
		n += len(level.Tasks)
	}
	return n
}

// ReleasePlanResponse contains the release plan.
type ReleasePlanResponse struct {
	Plan     ReleasePlan
	Metadata ResponseMetadata
}

// ReleaseRunResponse contains the result of a release run.
type ReleaseRunResponse struct {
	Plan     ReleasePlan
	Report   *execution.Report
	Metadata ResponseMetadata
}

// CheckWorkspaceResponse contains workspace diagnostics.
type CheckWorkspaceResponse struct {
	Report   *execution.Report
	Metadata ResponseMetadata
}
