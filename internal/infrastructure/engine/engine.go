package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/monoforge/monoforge/internal/application/dto"
	"github.com/monoforge/monoforge/internal/application/ports"
	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/execution"
	"github.com/monoforge/monoforge/internal/domain/services"
)

// Engine executes task graphs. It implements ports.TaskRunner.
type Engine struct {
	redactor  ports.Redactor
	truncator execution.TruncationStrategy
	logger    *slog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithRedactor scrubs task output and error messages before they reach the report.
func WithRedactor(r ports.Redactor) Option {
	return func(e *Engine) {
		e.redactor = r
	}
}

// WithTruncator overrides the output truncation strategy.
func WithTruncator(t execution.TruncationStrategy) Option {
	return func(e *Engine) {
		e.truncator = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		truncator: &execution.HeadTailTruncator{},
		logger:    slog.Default(),
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ ports.TaskRunner = (*Engine)(nil)

// Run executes tasks in dependency order and adds one item per task to
// report. Every dependency of a task must be in tasks.
func (e *Engine) Run(ctx context.Context, tasks []*entities.Task, opts dto.ExecutionOptions, report *execution.Report) error {
	if err := ctxError(ctx); err != nil {
		return err
	}

	cfg := configFromOptions(opts)

	if cfg.MaxConcurrentTasks > 1 && len(tasks) > 1 {
		if err := e.executeTasksWithWorkerPool(ctx, tasks, cfg, report); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("execution timed out: %w", err)
			}
			return err
		}
		return ctxError(ctx)
	}

	ordered, err := sequentialOrder(tasks)
	if err != nil {
		return err
	}
	index := indexByTask(tasks)
	for _, task := range ordered {
		if err := ctxError(ctx); err != nil {
			return err
		}
		report.AddItem(e.executeTask(ctx, task, index[task], cfg, report))
	}
	return ctxError(ctx)
}

// sequentialOrder flattens the dependency levels of tasks.
func sequentialOrder(tasks []*entities.Task) ([]*entities.Task, error) {
	if err := checkClosed(tasks); err != nil {
		return nil, err
	}
	levels, err := services.NewDependencyResolver().BuildTaskLevels(tasks)
	if err != nil {
		return nil, err
	}
	ordered := make([]*entities.Task, 0, len(tasks))
	for _, level := range levels {
		ordered = append(ordered, level.Tasks...)
	}
	return ordered, nil
}

// checkClosed validates that all dependencies are part of the run.
func checkClosed(tasks []*entities.Task) error {
	scheduled := make(map[*entities.Task]bool, len(tasks))
	for _, t := range tasks {
		scheduled[t] = true
	}
	for _, t := range tasks {
		for _, dep := range t.Dependencies() {
			if !scheduled[dep] {
				return fmt.Errorf("task %s depends on task %s which is not scheduled", t.Path(), dep.Path())
			}
		}
	}
	return nil
}

func indexByTask(tasks []*entities.Task) map[*entities.Task]int {
	index := make(map[*entities.Task]int, len(tasks))
	for i, t := range tasks {
		index[t] = i
	}
	return index
}

func ctxError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("execution timed out: %w", err)
		}
		return err
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
