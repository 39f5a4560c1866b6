// Package values contains domain value objects that encapsulate
// primitive types with validation.
package values

// Status is the outcome of a release task.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	// A task is skipped when a dependency failed or was skipped, or when
	// its repository is disabled.
	StatusSkipped Status = "skipped"
)

// IsFailure reports whether the task returned an error.
func (s Status) IsFailure() bool {
	return s == StatusFailed
}

// IsSkipped reports whether the task never ran.
func (s Status) IsSkipped() bool {
	return s == StatusSkipped
}
