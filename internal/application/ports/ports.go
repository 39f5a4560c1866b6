// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"

	"github.com/monoforge/monoforge/internal/application/dto"
	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/execution"
	"github.com/monoforge/monoforge/internal/domain/services"
)

// WorkspaceLoader loads a workspace and its projects from storage.
type WorkspaceLoader interface {
	// LoadWorkspace accepts the workspace file or its directory. Overrides
	// take precedence over stored build properties.
	LoadWorkspace(ctx context.Context, path string, overrides map[string]string) (*entities.Workspace, error)
}

// TemplateLoader provides readme templates.
type TemplateLoader = services.TemplateLoader

// DocumentStore reads and writes generated documents.
type DocumentStore interface {
	// ReadDocument returns the current content; exists is false for missing files.
	ReadDocument(path string) (content string, exists bool, err error)
	WriteDocument(path, content string) error
}

// Credentials authenticate against one repository.
type Credentials struct {
	User  string
	Token string
}

// IsEmpty reports whether no credentials were found.
func (c Credentials) IsEmpty() bool {
	return c.User == "" && c.Token == ""
}

// CredentialResolver looks up repository credentials.
// Implementations track resolved values for redaction.
type CredentialResolver interface {
	// Resolve returns the credentials of repo. ok is false when either the
	// user or the token is missing.
	Resolve(repo entities.Repository, properties map[string]string) (creds Credentials, ok bool)
}

// PublishRequest is one publication going to one repository.
type PublishRequest struct {
	Workspace   *entities.Workspace
	Project     *entities.Project
	Publication entities.Publication
	Repository  entities.Repository
	Credentials Credentials
}

// PublishResult describes what a publisher did.
type PublishResult struct {
	// Locations are the uploaded URLs, paths, or references.
	Locations []string
	// Output is captured tool output, already redacted.
	Output string
}

// Publisher uploads publications to one kind of repository.
type Publisher interface {
	Publish(ctx context.Context, req PublishRequest) (*PublishResult, error)
}

// PublisherRegistry selects the publisher for a repository kind.
type PublisherRegistry interface {
	PublisherFor(kind entities.RepositoryKind) (Publisher, error)
}

// TaskRunner executes a set of tasks in dependency order, recording one
// report item per task. Failed tasks mark their dependents skipped.
type TaskRunner interface {
	Run(ctx context.Context, tasks []*entities.Task, opts dto.ExecutionOptions, report *execution.Report) error
}

// Redactor scrubs secrets from text.
type Redactor interface {
	Redact(s string) string
}

// OutputFormatter formats reports.
type OutputFormatter interface {
	Format(report *execution.Report) error
}

// PlanFormatter formats release plans.
type PlanFormatter interface {
	FormatPlan(plan *dto.ReleasePlan) error
}

// EnvironmentReader exposes the process environment to `when:` conditions.
type EnvironmentReader interface {
	Environ() map[string]string
}
