package services

import (
	"context"
	"errors"
	"testing"

	"github.com/monoforge/monoforge/internal/application/dto"
	apperrors "github.com/monoforge/monoforge/internal/application/errors"
	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReleaseUseCase(build func() *entities.Workspace, publisher *recordingPublisher) *ReleaseUseCase {
	gate := NewRepositoryGate(mapCredentials{}, staticEnv{"CI": "true"}, nil, nil)
	return NewReleaseUseCase(&fakeLoader{build: build}, gate, publisher, sequentialRunner{}, "test", nil)
}

func planPaths(plan dto.ReleasePlan) [][]string {
	var levels [][]string
	for _, level := range plan.Levels {
		var paths []string
		for _, task := range level.Tasks {
			paths = append(paths, task.Path)
		}
		levels = append(levels, paths)
	}
	return levels
}

func TestEnabledRepositories_RegisterRepository(t *testing.T) {
	repos := NewEnabledRepositories()

	err := repos.RegisterRepository("my-repo")
	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "invalid repository name")

	require.NoError(t, repos.RegisterRepository("myrepo2"))
	require.NoError(t, repos.RegisterRepository("myrepo2"))
	assert.Equal(t, 1, repos.Len())
	assert.True(t, repos.Contains("myrepo2"))
}

func TestRelease_Plan(t *testing.T) {
	uc := newReleaseUseCase(newFixtureWorkspace, &recordingPublisher{})

	resp, err := uc.Plan(context.Background(), dto.ReleaseRequest{})
	require.NoError(t, err)

	plan := resp.Plan
	assert.Equal(t, ":release", plan.Target)
	assert.Equal(t, "1.0.0", plan.Version)

	require.Len(t, plan.Repositories, 3)
	assert.True(t, plan.Repositories[0].Enabled, "sonatype has credentials")
	assert.False(t, plan.Repositories[1].Enabled, "space has no credentials")
	assert.Contains(t, plan.Repositories[1].Reason, "publishing.space.user")
	assert.True(t, plan.Repositories[2].Enabled, "local needs no credentials")

	assert.Equal(t, [][]string{
		{
			":core:publishJsPublicationToLocalRepository",
			":core:publishJsPublicationToSonatypeRepository",
			":core:publishJvmPublicationToLocalRepository",
			":core:publishJvmPublicationToSonatypeRepository",
			":io:publishJvmPublicationToLocalRepository",
			":io:publishJvmPublicationToSonatypeRepository",
		},
		{":releaseJs", ":releaseJvm"},
		{":release"},
	}, planPaths(plan))
	assert.Equal(t, 9, plan.TaskCount())
}

func TestRelease_Plan_PublicationTarget(t *testing.T) {
	uc := newReleaseUseCase(newFixtureWorkspace, &recordingPublisher{})

	resp, err := uc.Plan(context.Background(), dto.ReleaseRequest{Target: "releaseJs", Repositories: []string{"sonatype"}})
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{":core:publishJsPublicationToSonatypeRepository"},
		{":releaseJs"},
	}, planPaths(resp.Plan))
	assert.Equal(t, "not selected", resp.Plan.Repositories[2].Reason)
}

func TestRelease_Plan_UnknownTarget(t *testing.T) {
	uc := newReleaseUseCase(newFixtureWorkspace, &recordingPublisher{})

	_, err := uc.Plan(context.Background(), dto.ReleaseRequest{Target: "releaseWasm"})
	var valErr *apperrors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, err.Error(), "releaseJvm")
}

func TestRelease_InvalidRepositorySelection(t *testing.T) {
	uc := newReleaseUseCase(newFixtureWorkspace, &recordingPublisher{})

	_, err := uc.Plan(context.Background(), dto.ReleaseRequest{Repositories: []string{"my-repo"}})
	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))

	_, err = uc.Plan(context.Background(), dto.ReleaseRequest{Repositories: []string{"nexus"}})
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "unknown repository nexus")
}

func TestRelease_MissingVCSIsFatal(t *testing.T) {
	build := func() *entities.Workspace {
		ws := newFixtureWorkspace()
		ws.VCS = nil
		return ws
	}
	uc := newReleaseUseCase(build, &recordingPublisher{})

	_, err := uc.Plan(context.Background(), dto.ReleaseRequest{})
	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "vcs", cfgErr.Aspect)
}

func TestRelease_RepositoryConditions(t *testing.T) {
	build := func() *entities.Workspace {
		ws := newFixtureWorkspace()
		ws.Root.Version = values.NewVersion("1.1.0-SNAPSHOT")
		ws.Repositories[0].ReleasesOnly = true
		ws.Repositories[2].When = `env["CI"] != "true"`
		return ws
	}
	publisher := &recordingPublisher{}
	uc := newReleaseUseCase(build, publisher)

	resp, err := uc.Plan(context.Background(), dto.ReleaseRequest{})
	require.NoError(t, err)

	for _, repo := range resp.Plan.Repositories {
		assert.False(t, repo.Enabled, repo.Name)
	}
	assert.Contains(t, resp.Plan.Repositories[0].Reason, "releases only")
	assert.Equal(t, "when condition is false", resp.Plan.Repositories[2].Reason)
	assert.Equal(t, [][]string{{":release"}}, planPaths(resp.Plan))
}

func TestRelease_InvalidConditionIsFatal(t *testing.T) {
	build := func() *entities.Workspace {
		ws := newFixtureWorkspace()
		ws.Repositories[2].When = `branch ==`
		return ws
	}
	uc := newReleaseUseCase(build, &recordingPublisher{})

	_, err := uc.Plan(context.Background(), dto.ReleaseRequest{})
	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
}

func TestRelease_Run(t *testing.T) {
	publisher := &recordingPublisher{}
	uc := newReleaseUseCase(newFixtureWorkspace, publisher)

	resp, err := uc.Run(context.Background(), dto.ReleaseRequest{})
	require.NoError(t, err)

	report := resp.Report
	assert.False(t, report.HasFailures())
	assert.Equal(t, 9, report.Summary.Total)
	assert.Equal(t, 9, report.Summary.Success)
	assert.Len(t, publisher.calls, 6)
	assert.Equal(t, "test", report.MonoforgeVersion)

	item := report.ItemByID(":core:publishJvmPublicationToSonatypeRepository")
	require.NotNil(t, item)
	assert.Contains(t, item.Output, "mem://:core/jvm@sonatype")
}

func TestRelease_Run_FailureSkipsDependents(t *testing.T) {
	publisher := &recordingPublisher{fail: map[string]error{
		":core/jvm@sonatype": errors.New("401 Unauthorized"),
	}}
	uc := newReleaseUseCase(newFixtureWorkspace, publisher)

	resp, err := uc.Run(context.Background(), dto.ReleaseRequest{})
	require.NoError(t, err)

	report := resp.Report
	assert.True(t, report.HasFailures())

	status, _ := report.ItemStatus(":core:publishJvmPublicationToSonatypeRepository")
	assert.Equal(t, values.StatusFailed, status)
	status, _ = report.ItemStatus(":releaseJvm")
	assert.Equal(t, values.StatusSkipped, status)
	status, _ = report.ItemStatus(":release")
	assert.Equal(t, values.StatusSkipped, status)
	status, _ = report.ItemStatus(":releaseJs")
	assert.Equal(t, values.StatusSuccess, status)

	assert.Contains(t, report.ItemByID(":core:publishJvmPublicationToSonatypeRepository").Message, "401 Unauthorized")
}

func TestRelease_Run_DryRun(t *testing.T) {
	publisher := &recordingPublisher{}
	uc := newReleaseUseCase(newFixtureWorkspace, publisher)

	resp, err := uc.Run(context.Background(), dto.ReleaseRequest{Execution: dto.ExecutionOptions{DryRun: true}})
	require.NoError(t, err)
	assert.True(t, resp.Report.DryRun)
	assert.Empty(t, publisher.calls)
}

func TestRelease_PropertyOverridesEnableRepository(t *testing.T) {
	uc := newReleaseUseCase(newFixtureWorkspace, &recordingPublisher{})

	resp, err := uc.Plan(context.Background(), dto.ReleaseRequest{
		Workspace: dto.WorkspaceOptions{Properties: map[string]string{
			"publishing.space.user":  "bot",
			"publishing.space.token": "t0k3n",
		}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Plan.Repositories[1].Enabled)
	assert.Equal(t, 12, resp.Plan.TaskCount())
}

func TestRelease_GitHubWithoutResolvableURLIsFatal(t *testing.T) {
	build := func() *entities.Workspace {
		ws := newFixtureWorkspace()
		ws.VCS = &entities.VCS{URL: "https://gitlab.com/acme/widgets"}
		gh := entities.Repository{Name: values.MustNewRepositoryName("gh"), Kind: entities.KindGitHub}
		gh.ApplyKindDefaults(ws.VCS)
		ws.Repositories = append(ws.Repositories, gh)
		return ws
	}
	publisher := &recordingPublisher{}
	uc := newReleaseUseCase(build, publisher)

	_, err := uc.Run(context.Background(), dto.ReleaseRequest{})
	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), `vcs url "https://gitlab.com/acme/widgets" is not a GitHub repository`)
	assert.Empty(t, publisher.calls)
}

func TestRelease_ReleasesOnlySkipsPreReleaseSubproject(t *testing.T) {
	build := func() *entities.Workspace {
		ws := newFixtureWorkspace()
		ws.Repositories[0].ReleasesOnly = true
		io, ok := ws.Project(values.MustNewProjectPath(":io"))
		require.True(t, ok)
		io.Version = values.NewVersion("1.1.0-rc.1")
		return ws
	}
	uc := newReleaseUseCase(build, &recordingPublisher{})

	resp, err := uc.Plan(context.Background(), dto.ReleaseRequest{})
	require.NoError(t, err)

	assert.True(t, resp.Plan.Repositories[0].Enabled)
	assert.Equal(t, [][]string{
		{
			":core:publishJsPublicationToLocalRepository",
			":core:publishJsPublicationToSonatypeRepository",
			":core:publishJvmPublicationToLocalRepository",
			":core:publishJvmPublicationToSonatypeRepository",
			":io:publishJvmPublicationToLocalRepository",
		},
		{":releaseJs", ":releaseJvm"},
		{":release"},
	}, planPaths(resp.Plan))
}
