// Package dto contains data transfer objects for application layer use cases.
package dto

import "time"

// WorkspaceOptions locate the workspace and override build properties.
type WorkspaceOptions struct {
	// WorkspacePath is the workspace file or the directory containing it.
	WorkspacePath string
	// Properties override values from monoforge.properties (-P key=value).
	Properties map[string]string
}

// GenerateReadmeRequest encapsulates the inputs of readme generation.
type GenerateReadmeRequest struct {
	Workspace WorkspaceOptions
	Metadata  RequestMetadata
	// DryRun renders without writing.
	DryRun bool
	// Check renders without writing and reports out of date files.
	Check bool
	// Projects restricts generation to these project paths (empty = all).
	Projects []string
}

// ExecutionOptions controls how release tasks are executed.
type ExecutionOptions struct {
	// Parallel limits concurrent tasks (0 = number of CPUs).
	Parallel int
	// Timeout bounds the whole run (0 = no timeout).
	Timeout time.Duration
	// DryRun walks the graph without running task actions.
	DryRun bool
	// MaxOutputSize limits captured task output per task (0 = default).
	MaxOutputSize int
	// Retries is how many times a task failing with a transient error is retried.
	Retries int
	// RetryDelay is the initial delay between retries (doubled each attempt).
	RetryDelay time.Duration
}

// ReleaseRequest encapsulates the inputs of release planning and execution.
type ReleaseRequest struct {
	Workspace WorkspaceOptions
	Metadata  RequestMetadata
	// Target is the task to run: "release" or "release<Publication>".
	Target string
	// Repositories restricts publishing to these repositories (empty = all).
	Repositories []string
	Execution    ExecutionOptions
}

// CheckWorkspaceRequest encapsulates the inputs of workspace diagnostics.
type CheckWorkspaceRequest struct {
	Workspace WorkspaceOptions
	Metadata  RequestMetadata
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// RequestID uniquely identifies this request
	RequestID string
}
