package engine

import (
	"fmt"

	"github.com/monoforge/monoforge/internal/domain/values"
)

// generateTaskMessage generates a human-readable message for the task result.
func generateTaskMessage(status values.Status, attempts int, err error, dryRun bool) string {
	switch status {
	case values.StatusSuccess:
		switch {
		case dryRun:
			return "Dry run: action not executed"
		case attempts == 0:
			return "Nothing to do"
		case attempts == 1:
			return "Completed"
		default:
			return fmt.Sprintf("Completed after %d attempts", attempts)
		}

	case values.StatusFailed:
		if err == nil {
			return "Task failed"
		}
		if attempts > 1 {
			return fmt.Sprintf("%s (after %d attempts)", err.Error(), attempts)
		}
		return err.Error()

	case values.StatusSkipped:
		return "Skipped due to failed dependency"

	default:
		return "Unknown status"
	}
}
