package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/execution"
	"github.com/monoforge/monoforge/internal/domain/values"
)

// executeTask executes a single task and returns its result.
// The index parameter tracks the task's position in the run for deterministic output.
func (e *Engine) executeTask(ctx context.Context, task *entities.Task, index int, cfg ExecutionConfig, report *execution.Report) execution.ItemResult {
	startTime := time.Now()
	result := newItemResult(task, index)

	if skipReason := checkDependencies(task, report); skipReason != "" {
		e.logger.Info("skipping task", "task", result.ID, "reason", skipReason)
		return skipTask(result, skipReason, startTime)
	}

	if cfg.DryRun || task.Action == nil {
		result.Status = values.StatusSuccess
		result.Message = generateTaskMessage(result.Status, 0, nil, cfg.DryRun && task.Action != nil)
		result.Duration = time.Since(startTime)
		return result
	}

	e.logger.Debug("running task", "task", result.ID)
	output, attempts, err := e.runWithRetry(ctx, task, cfg)

	output = e.redact(output)
	result.Output, result.OutputMeta = e.truncator.Truncate(output, cfg.MaxOutputSize)

	if err != nil {
		result.Status = values.StatusFailed
		result.Message = e.redact(generateTaskMessage(result.Status, attempts, err, false))
		e.logger.Warn("task failed", "task", result.ID, "attempts", attempts, "error", result.Message)
	} else {
		result.Status = values.StatusSuccess
		result.Message = generateTaskMessage(result.Status, attempts, nil, false)
	}
	result.Duration = time.Since(startTime)
	return result
}

// newItemResult creates an initial ItemResult from a task.
func newItemResult(task *entities.Task, index int) execution.ItemResult {
	deps := task.Dependencies()
	dependsOn := make([]string, 0, len(deps))
	for _, dep := range deps {
		dependsOn = append(dependsOn, dep.Path())
	}
	return execution.ItemResult{
		Index:     index,
		ID:        task.Path(),
		Name:      task.Name,
		Project:   task.Project.String(),
		DependsOn: dependsOn,
		Status:    values.StatusPending,
	}
}

// checkDependencies verifies all dependencies have succeeded.
func checkDependencies(task *entities.Task, report *execution.Report) string {
	for _, dep := range task.Dependencies() {
		depStatus, found := report.ItemStatus(dep.Path())
		if !found {
			return fmt.Sprintf("Skipped: dependency '%s' not found", dep.Path())
		}
		if depStatus.IsFailure() || depStatus.IsSkipped() {
			return fmt.Sprintf("Skipped: dependency '%s' has status '%s'", dep.Path(), depStatus)
		}
	}
	return ""
}

// skipTask creates a skipped task result.
func skipTask(result execution.ItemResult, skipReason string, startTime time.Time) execution.ItemResult {
	result.Status = values.StatusSkipped
	result.SkipReason = skipReason
	result.Message = skipReason
	result.Duration = time.Since(startTime)
	return result
}

// runWithRetry runs the task action, retrying transient failures.
// It returns the output of the last attempt and the number of attempts made.
func (e *Engine) runWithRetry(ctx context.Context, task *entities.Task, cfg ExecutionConfig) (string, int, error) {
	attempt := 0
	for {
		attempt++
		output, err := task.Action(ctx)
		if err == nil || attempt > cfg.Retries || !shouldRetry(err) {
			return output, attempt, err
		}

		delay := cfg.RetryBackoff.Delay(attempt, cfg.RetryDelay, MaxRetryDelay)
		e.logger.Info("retrying task",
			"task", task.Path(),
			"attempt", attempt,
			"delay", delay,
			"error", e.redact(err.Error()))

		if sleepErr := e.sleep(ctx, delay); sleepErr != nil {
			return output, attempt, fmt.Errorf("%w (retry aborted: %v)", err, sleepErr)
		}
	}
}

func (e *Engine) redact(s string) string {
	if e.redactor == nil || s == "" {
		return s
	}
	return e.redactor.Redact(s)
}
