package engine

import (
	"context"
	"fmt"

	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/execution"
	"github.com/monoforge/monoforge/internal/domain/services"
	"golang.org/x/sync/errgroup"
)

// workerPoolState manages the state of dependency-aware parallel execution.
// Instead of organizing tasks into levels with barriers, this approach
// maintains a dynamic ready queue and executes tasks as soon as their
// dependencies are satisfied.
type workerPoolState struct {
	// Immutable after initialization (safe for concurrent reads)
	taskByID      map[string]*entities.Task // Task lookup by path
	taskIndexByID map[string]int            // Task path → position in the run (for deterministic output)
	reverseDeps   map[string][]string       // Task path → list of dependent task paths

	// Mutable state (owned by coordinator goroutine)
	inDegree   map[string]int  // Task path → count of unmet dependencies
	readyQueue []string        // Task paths ready to execute (dependencies satisfied)
	completed  map[string]bool // Task paths that have completed execution
	totalTasks int

	workChan chan string
	doneChan chan string

	ctx      context.Context
	cancel   context.CancelFunc
	errGroup *errgroup.Group

	engine *Engine
	config ExecutionConfig
	report *execution.Report
}

// initializeWorkerPoolState builds the dependency graph and prepares initial state.
// It validates dependencies, detects cycles, and creates the initial ready queue.
func (e *Engine) initializeWorkerPoolState(
	ctx context.Context,
	tasks []*entities.Task,
	cfg ExecutionConfig,
	report *execution.Report,
) (*workerPoolState, error) {
	if err := checkClosed(tasks); err != nil {
		return nil, err
	}

	taskByID := make(map[string]*entities.Task, len(tasks))
	taskIndexByID := make(map[string]int, len(tasks))
	inDegree := make(map[string]int, len(tasks))
	reverseDeps := make(map[string][]string)

	for i, task := range tasks {
		id := task.Path()
		taskByID[id] = task
		taskIndexByID[id] = i
		deps := task.Dependencies()
		inDegree[id] = len(deps)

		for _, dep := range deps {
			reverseDeps[dep.Path()] = append(reverseDeps[dep.Path()], id)
		}
	}

	if _, err := services.NewDependencyResolver().BuildTaskLevels(tasks); err != nil {
		return nil, err
	}

	readyQueue := []string{}
	for _, task := range tasks {
		if inDegree[task.Path()] == 0 {
			readyQueue = append(readyQueue, task.Path())
		}
	}

	// workChan is buffered to reduce blocking when the coordinator sends work;
	// doneChan is buffered so workers never block when signaling completion.
	maxConcurrent := cfg.MaxConcurrentTasks
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	workChan := make(chan string, maxConcurrent)
	doneChan := make(chan string, len(tasks))

	groupCtx, cancel := context.WithCancel(ctx)
	g, gCtx := errgroup.WithContext(groupCtx)

	return &workerPoolState{
		taskByID:      taskByID,
		taskIndexByID: taskIndexByID,
		reverseDeps:   reverseDeps,
		inDegree:      inDegree,
		readyQueue:    readyQueue,
		completed:     make(map[string]bool),
		totalTasks:    len(tasks),
		workChan:      workChan,
		doneChan:      doneChan,
		ctx:           gCtx,
		cancel:        cancel,
		errGroup:      g,
		engine:        e,
		config:        cfg,
		report:        report,
	}, nil
}

// enqueueReadyTasks sends as many ready tasks to the work channel as it
// accepts without blocking.
func (state *workerPoolState) enqueueReadyTasks() {
	for len(state.readyQueue) > 0 {
		select {
		case state.workChan <- state.readyQueue[0]:
			state.readyQueue = state.readyQueue[1:]
		default:
			return
		}
	}
}

// handleTaskCompletion decrements the in-degree of every dependent task.
// Dependents reaching zero become ready.
func (state *workerPoolState) handleTaskCompletion(taskID string) {
	state.completed[taskID] = true

	for _, dependentID := range state.reverseDeps[taskID] {
		state.inDegree[dependentID]--

		if state.inDegree[dependentID] == 0 {
			state.readyQueue = append(state.readyQueue, dependentID)
		}
	}
}

// coordinateExecution runs in a single goroutine and owns all mutable
// state (inDegree, readyQueue).
func (state *workerPoolState) coordinateExecution() error {
	defer close(state.workChan)

	state.enqueueReadyTasks()

	completedCount := 0

	for completedCount < state.totalTasks {
		select {
		case taskID := <-state.doneChan:
			completedCount++
			state.handleTaskCompletion(taskID)
			state.enqueueReadyTasks()

		case <-state.ctx.Done():
			return state.ctx.Err()
		}
	}

	return nil
}

// executeWorker pulls tasks from workChan until the coordinator closes it.
func (state *workerPoolState) executeWorker() {
	for taskID := range state.workChan {
		task, exists := state.taskByID[taskID]
		if !exists {
			continue
		}

		if state.ctx.Err() != nil {
			return
		}

		result := state.engine.executeTask(
			state.ctx,
			task,
			state.taskIndexByID[taskID],
			state.config,
			state.report,
		)

		state.report.AddItem(result)

		select {
		case state.doneChan <- taskID:
		case <-state.ctx.Done():
			return
		}
	}
}

// executeTasksWithWorkerPool executes tasks in parallel using a dependency-aware worker pool.
// Tasks execute immediately when dependencies are satisfied (no level barriers).
func (e *Engine) executeTasksWithWorkerPool(
	ctx context.Context,
	tasks []*entities.Task,
	cfg ExecutionConfig,
	report *execution.Report,
) error {
	state, err := e.initializeWorkerPoolState(ctx, tasks, cfg, report)
	if err != nil {
		return fmt.Errorf("failed to initialize worker pool: %w", err)
	}
	defer state.cancel()

	numWorkers := cfg.MaxConcurrentTasks
	if numWorkers > len(tasks) {
		numWorkers = len(tasks)
	}

	for i := 0; i < numWorkers; i++ {
		state.errGroup.Go(func() error {
			state.executeWorker()
			return nil
		})
	}

	state.errGroup.Go(func() error {
		return state.coordinateExecution()
	})

	if err := state.errGroup.Wait(); err != nil {
		return fmt.Errorf("worker pool execution failed: %w", err)
	}

	return nil
}
