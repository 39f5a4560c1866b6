package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/monoforge/monoforge/internal/application/dto"
	"github.com/monoforge/monoforge/internal/application/ports"
	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/execution"
	"github.com/monoforge/monoforge/internal/domain/services"
	"github.com/monoforge/monoforge/internal/domain/values"
)

// fakeLoader builds a fresh workspace on every load.
type fakeLoader struct {
	build func() *entities.Workspace
	err   error
}

func (l *fakeLoader) LoadWorkspace(_ context.Context, _ string, overrides map[string]string) (*entities.Workspace, error) {
	if l.err != nil {
		return nil, l.err
	}
	ws := l.build()
	for k, v := range overrides {
		ws.Properties[k] = v
	}
	return ws, nil
}

type memTemplates struct {
	files map[string]string
}

func (m memTemplates) LoadTemplate(path string) (string, error) {
	if src, ok := m.files[path]; ok {
		return src, nil
	}
	return "", fmt.Errorf("%s: %w", path, services.ErrTemplateNotFound)
}

func (m memTemplates) DefaultTemplate(name string) (string, error) {
	switch name {
	case services.ModuleTemplate:
		return "# {{ .name }}\n\n{{ .description }}\n\n{{ .features }}\n", nil
	case services.RootTemplate:
		return "# {{ .name }}\n{{ .modules }}", nil
	case services.ArtifactTemplate:
		return "{{ .group }}:{{ .name }}:{{ .version }}", nil
	}
	return "", fmt.Errorf("no default template %q", name)
}

type memDocuments struct {
	mu    sync.Mutex
	files map[string]string
}

func newMemDocuments() *memDocuments {
	return &memDocuments{files: make(map[string]string)}
}

func (m *memDocuments) ReadDocument(path string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[path]
	return content, ok, nil
}

func (m *memDocuments) WriteDocument(path, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
	return nil
}

// mapCredentials resolves credentials from properties only.
type mapCredentials struct{}

func (mapCredentials) Resolve(repo entities.Repository, props map[string]string) (ports.Credentials, bool) {
	userKey, tokenKey := repo.CredentialKeys()
	creds := ports.Credentials{User: props[userKey], Token: props[tokenKey]}
	return creds, creds.User != "" && creds.Token != ""
}

type staticEnv map[string]string

func (e staticEnv) Environ() map[string]string { return e }

type recordingPublisher struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (p *recordingPublisher) Publish(_ context.Context, req ports.PublishRequest) (*ports.PublishResult, error) {
	key := req.Project.Path.String() + "/" + req.Publication.Name.String() + "@" + req.Repository.Name.String()
	p.mu.Lock()
	p.calls = append(p.calls, key)
	p.mu.Unlock()
	if err := p.fail[key]; err != nil {
		return nil, err
	}
	return &ports.PublishResult{Locations: []string{"mem://" + key}}, nil
}

func (p *recordingPublisher) PublisherFor(entities.RepositoryKind) (ports.Publisher, error) {
	return p, nil
}

// sequentialRunner runs tasks in order, skipping dependents of failures.
type sequentialRunner struct{}

func (sequentialRunner) Run(ctx context.Context, tasks []*entities.Task, opts dto.ExecutionOptions, report *execution.Report) error {
	status := make(map[*entities.Task]values.Status)
	for i, task := range tasks {
		item := execution.ItemResult{ID: task.Path(), Name: task.Name, Project: task.Project.String(), Index: i}
		item.Status = values.StatusSuccess
		for _, dep := range task.Dependencies() {
			if s := status[dep]; s.IsFailure() || s.IsSkipped() {
				item.Status = values.StatusSkipped
				item.SkipReason = "dependency " + dep.Path() + " " + string(s)
			}
		}
		if item.Status == values.StatusSuccess && task.Action != nil && !opts.DryRun {
			out, err := task.Action(ctx)
			item.Output = out
			if err != nil {
				item.Status = values.StatusFailed
				item.Message = err.Error()
			}
		}
		status[task] = item.Status
		report.AddItem(item)
	}
	return nil
}

// newFixtureWorkspace builds:
//
//	:            (root, readme, group dev.acme, version 1.0.0)
//	:core        (readme, publication jvm + js)
//	:io          (readme, publication jvm)
//	:internal    (no readme)
func newFixtureWorkspace() *entities.Workspace {
	root := entities.NewProject(values.RootPath, "widgets", "/ws")
	root.Group = "dev.acme"
	root.Version = values.NewVersion("1.0.0")
	root.Readme = &entities.ReadmeSettings{UseDefaultTemplate: true}

	ws := entities.NewWorkspace(root, "/ws")
	ws.File = "/ws/monoforge.yaml"
	ws.VCS = &entities.VCS{URL: "https://github.com/acme/widgets"}

	core := entities.NewProject(values.MustNewProjectPath(":core"), "core", "/ws/core")
	core.Description = "Core types"
	core.Version = root.Version
	core.Readme = &entities.ReadmeSettings{UseDefaultTemplate: true}
	core.RegisterFeature("codec", "Codecs")
	core.Publications = []entities.Publication{
		{Name: values.MustNewPublicationName("jvm"), ArtifactID: "core"},
		{Name: values.MustNewPublicationName("js"), ArtifactID: "core-js"},
	}

	io := entities.NewProject(values.MustNewProjectPath(":io"), "io", "/ws/io")
	io.Version = root.Version
	io.Readme = &entities.ReadmeSettings{UseDefaultTemplate: true}
	io.Publications = []entities.Publication{{Name: values.MustNewPublicationName("jvm"), ArtifactID: "io"}}

	internal := entities.NewProject(values.MustNewProjectPath(":internal"), "internal", "/ws/internal")

	_ = ws.AddProject(root, core)
	_ = ws.AddProject(root, io)
	_ = ws.AddProject(root, internal)

	ws.Repositories = []entities.Repository{
		{Name: values.MustNewRepositoryName("sonatype"), Kind: entities.KindSonatype},
		{Name: values.MustNewRepositoryName("space"), Kind: entities.KindSpace, URL: "https://maven.example.com"},
		{Name: values.MustNewRepositoryName("local"), Kind: entities.KindLocal, URL: "/tmp/repo"},
	}
	for i := range ws.Repositories {
		ws.Repositories[i].ApplyKindDefaults(ws.VCS)
	}

	ws.Properties["publishing.sonatype.user"] = "ci"
	ws.Properties["publishing.sonatype.token"] = "s3cr3t"
	return ws
}
