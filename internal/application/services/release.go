package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/monoforge/monoforge/internal/application/dto"
	apperrors "github.com/monoforge/monoforge/internal/application/errors"
	"github.com/monoforge/monoforge/internal/application/ports"
	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/execution"
	"github.com/monoforge/monoforge/internal/domain/services"
)

// ReleaseSetup is a workspace with its release graph wired.
type ReleaseSetup struct {
	Workspace    *entities.Workspace
	Enabled      *EnabledRepositories
	Repositories []RepositoryDecision
	Graph        services.ReleaseGraph
}

// ReleaseUseCase plans and runs releases.
type ReleaseUseCase struct {
	loader     ports.WorkspaceLoader
	gate       *RepositoryGate
	publishers ports.PublisherRegistry
	runner     ports.TaskRunner
	resolver   *services.DependencyResolver
	version    string
	logger     *slog.Logger
}

// NewReleaseUseCase creates a new release use case.
func NewReleaseUseCase(
	loader ports.WorkspaceLoader,
	gate *RepositoryGate,
	publishers ports.PublisherRegistry,
	runner ports.TaskRunner,
	toolVersion string,
	logger *slog.Logger,
) *ReleaseUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReleaseUseCase{
		loader:     loader,
		gate:       gate,
		publishers: publishers,
		runner:     runner,
		resolver:   services.NewDependencyResolver(),
		version:    toolVersion,
		logger:     logger,
	}
}

// Configure loads the workspace, decides which repositories publish,
// registers one publish task per publication and enabled repository, and
// builds the release graph. It runs only once the whole workspace is
// loaded, so every publish task and repository is known.
func (uc *ReleaseUseCase) Configure(ctx context.Context, req dto.ReleaseRequest) (*ReleaseSetup, error) {
	ws, err := loadWorkspace(ctx, uc.loader, req.Workspace)
	if err != nil {
		return nil, err
	}

	selected, err := uc.selectRepositories(ws, req.Repositories)
	if err != nil {
		return nil, err
	}

	setup := &ReleaseSetup{
		Workspace: ws,
		Enabled:   NewEnabledRepositories(),
	}

	for _, repo := range ws.Repositories {
		if selected != nil && !selected.Contains(repo.Name.String()) {
			setup.Repositories = append(setup.Repositories, RepositoryDecision{
				Repository: repo,
				Reason:     "not selected",
			})
			continue
		}

		decision, err := uc.gate.Evaluate(ws, repo)
		if err != nil {
			return nil, err
		}
		setup.Repositories = append(setup.Repositories, decision)
		if !decision.Enabled {
			continue
		}
		if err := setup.Enabled.RegisterRepository(repo.Name.String()); err != nil {
			return nil, err
		}
		uc.registerPublishTasks(ws, decision)
	}

	graph, err := services.BuildReleaseGraph(ws.Root.Tasks(), collectPublishTasks(ws), setup.Enabled.Names())
	if err != nil {
		return nil, fmt.Errorf("failed to build release graph: %w", err)
	}
	setup.Graph = graph

	uc.logger.Debug("release graph built",
		"repositories", setup.Enabled.Len(),
		"publications", len(graph.PerPublication),
		"publish_tasks", len(graph.Records))
	return setup, nil
}

func (uc *ReleaseUseCase) selectRepositories(ws *entities.Workspace, names []string) (*EnabledRepositories, error) {
	if len(names) == 0 {
		return nil, nil
	}
	selected := NewEnabledRepositories()
	for _, name := range names {
		if err := selected.RegisterRepository(name); err != nil {
			return nil, err
		}
		if _, ok := ws.Repository(name); !ok {
			return nil, apperrors.NewConfigurationError("repository", fmt.Sprintf("unknown repository %s", name), nil)
		}
	}
	return selected, nil
}

// registerPublishTasks adds publish<Pub>PublicationTo<Repo>Repository to
// every project publishing anything. Existing tasks are reused; the loader
// rejects names that would collide.
func (uc *ReleaseUseCase) registerPublishTasks(ws *entities.Workspace, decision RepositoryDecision) {
	repo := decision.Repository
	for _, project := range ws.Projects() {
		// The gate judged the root version; a subproject may still carry
		// its own pre-release version.
		if repo.ReleasesOnly && project.Version.IsSnapshot() && len(project.Publications) > 0 {
			uc.logger.Info("repository accepts releases only, skipping project",
				"repository", repo.Name.String(),
				"project", project.Path.String(),
				"version", project.Version.String())
			continue
		}
		for _, pub := range project.Publications {
			task, created := project.Tasks().GetOrCreate(services.PublishTaskName(pub.Name, repo.Name))
			if !created {
				continue
			}
			task.Group = "publishing"
			task.Description = fmt.Sprintf("Publishes the %s publication of %s to the %s repository", pub.Name, project.Path, repo.Name)
			task.Action = uc.publishAction(task.Path(), ws, project, pub, decision)
		}
	}
}

func (uc *ReleaseUseCase) publishAction(
	taskPath string,
	ws *entities.Workspace,
	project *entities.Project,
	pub entities.Publication,
	decision RepositoryDecision,
) entities.TaskAction {
	return func(ctx context.Context) (string, error) {
		repo := decision.Repository
		publisher, err := uc.publishers.PublisherFor(repo.Kind)
		if err != nil {
			return "", apperrors.NewTaskError(taskPath, "no publisher", err)
		}

		result, err := publisher.Publish(ctx, ports.PublishRequest{
			Workspace:   ws,
			Project:     project,
			Publication: pub,
			Repository:  repo,
			Credentials: decision.Credentials,
		})
		if err != nil {
			return "", apperrors.NewTaskError(taskPath,
				fmt.Sprintf("failed to publish %s to %s", pub.Name, repo.Name), err)
		}

		uc.logger.Info("publication published",
			"project", project.Path.String(),
			"publication", pub.Name.String(),
			"repository", repo.Name.String(),
			"files", len(result.Locations))

		var b strings.Builder
		for _, loc := range result.Locations {
			b.WriteString(loc)
			b.WriteString("\n")
		}
		b.WriteString(result.Output)
		return b.String(), nil
	}
}

func collectPublishTasks(ws *entities.Workspace) []*entities.Task {
	var tasks []*entities.Task
	for _, project := range ws.Projects() {
		tasks = append(tasks, services.PublishTasks(project.Tasks())...)
	}
	return tasks
}

// targetTask resolves the task a plan or run starts from.
func (uc *ReleaseUseCase) targetTask(setup *ReleaseSetup, name string) (*entities.Task, error) {
	if name == "" {
		return setup.Graph.Root, nil
	}
	name = strings.TrimPrefix(name, ":")
	task, ok := setup.Workspace.Root.Tasks().FindByName(name)
	if !ok {
		available := []string{services.ReleaseTaskName}
		for _, t := range setup.Graph.PublicationTasks() {
			available = append(available, t.Name)
		}
		return nil, apperrors.NewValidationError("target",
			fmt.Sprintf("unknown release task %q (available: %s)", name, strings.Join(available, ", ")))
	}
	return task, nil
}

// Plan returns the release graph of the target in execution order.
func (uc *ReleaseUseCase) Plan(ctx context.Context, req dto.ReleaseRequest) (*dto.ReleasePlanResponse, error) {
	start := time.Now()

	setup, err := uc.Configure(ctx, req)
	if err != nil {
		return nil, err
	}

	plan, _, err := uc.buildPlan(setup, req.Target)
	if err != nil {
		return nil, err
	}

	return &dto.ReleasePlanResponse{
		Plan:     *plan,
		Metadata: responseMetadata(req.Metadata, start),
	}, nil
}

func (uc *ReleaseUseCase) buildPlan(setup *ReleaseSetup, target string) (*dto.ReleasePlan, []*entities.Task, error) {
	task, err := uc.targetTask(setup, target)
	if err != nil {
		return nil, nil, err
	}

	closure, err := uc.resolver.Closure(task)
	if err != nil {
		return nil, nil, apperrors.NewConfigurationError("tasks", "invalid release graph", err)
	}
	levels, err := uc.resolver.BuildTaskLevels(closure)
	if err != nil {
		return nil, nil, apperrors.NewConfigurationError("tasks", "invalid release graph", err)
	}

	ws := setup.Workspace
	plan := &dto.ReleasePlan{
		Workspace: ws.Root.Name,
		Version:   ws.Root.Version.String(),
		Target:    task.Path(),
	}

	for _, decision := range setup.Repositories {
		repo := decision.Repository
		plan.Repositories = append(plan.Repositories, dto.RepositoryStatus{
			Name:    repo.Name.String(),
			Kind:    string(repo.Kind),
			URL:     repo.URLFor(ws.Root.Version),
			Enabled: decision.Enabled,
			Reason:  decision.Reason,
		})
	}

	for _, level := range levels {
		pl := dto.PlanLevel{Level: level.Level}
		for _, t := range level.Tasks {
			pl.Tasks = append(pl.Tasks, dto.PlannedTask{
				Path:        t.Path(),
				Description: t.Description,
				DependsOn:   taskPaths(t.Dependencies()),
			})
		}
		plan.Levels = append(plan.Levels, pl)
	}

	return plan, closure, nil
}

// Run executes the target and everything it depends on.
func (uc *ReleaseUseCase) Run(ctx context.Context, req dto.ReleaseRequest) (*dto.ReleaseRunResponse, error) {
	start := time.Now()

	setup, err := uc.Configure(ctx, req)
	if err != nil {
		return nil, err
	}

	plan, closure, err := uc.buildPlan(setup, req.Target)
	if err != nil {
		return nil, err
	}

	if req.Execution.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Execution.Timeout)
		defer cancel()
	}

	ws := setup.Workspace
	report := execution.NewReport(execution.KindRelease, ws.Root.Name, ws.Root.Version.String())
	report.MonoforgeVersion = uc.version
	report.DryRun = req.Execution.DryRun

	uc.logger.Info("starting release",
		"run_id", report.RunID.String(),
		"target", plan.Target,
		"tasks", len(closure),
		"dry_run", req.Execution.DryRun)

	if err := uc.runner.Run(ctx, closure, req.Execution, report); err != nil {
		return nil, fmt.Errorf("release run failed: %w", err)
	}
	report.Finalize()

	uc.logger.Info("release complete",
		"run_id", report.RunID.String(),
		"duration", report.Duration,
		"success", report.Summary.Success,
		"failed", report.Summary.Failed,
		"skipped", report.Summary.Skipped)

	return &dto.ReleaseRunResponse{
		Plan:     *plan,
		Report:   report,
		Metadata: responseMetadata(req.Metadata, start),
	}, nil
}

func taskPaths(tasks []*entities.Task) []string {
	if len(tasks) == 0 {
		return nil
	}
	paths := make([]string, len(tasks))
	for i, t := range tasks {
		paths[i] = t.Path()
	}
	return paths
}
