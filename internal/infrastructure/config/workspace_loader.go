package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	apperrors "github.com/monoforge/monoforge/internal/application/errors"
	"github.com/monoforge/monoforge/internal/application/ports"
	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/values"
)

// WorkspaceLoader reads a workspace from monoforge.yaml and the
// project.yaml files of its subprojects.
type WorkspaceLoader struct {
	properties *PropertiesLoader
	logger     *slog.Logger
}

// LoaderOption configures a WorkspaceLoader.
type LoaderOption func(*WorkspaceLoader)

// WithPropertiesLoader replaces the build properties source.
func WithPropertiesLoader(p *PropertiesLoader) LoaderOption {
	return func(l *WorkspaceLoader) {
		l.properties = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *WorkspaceLoader) {
		l.logger = logger
	}
}

// NewWorkspaceLoader creates a workspace loader.
func NewWorkspaceLoader(opts ...LoaderOption) *WorkspaceLoader {
	l := &WorkspaceLoader{
		properties: NewPropertiesLoader(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.WorkspaceLoader = (*WorkspaceLoader)(nil)

// loadState carries what one load shares across projects.
type loadState struct {
	root          *os.Root
	rootDir       string
	substitutor   *PropertySubstitutor
	projectSchema *jsonschema.Schema
}

// LoadWorkspace loads the workspace at path, which may name monoforge.yaml
// or the directory holding it.
func (l *WorkspaceLoader) LoadWorkspace(ctx context.Context, path string, overrides map[string]string) (*entities.Workspace, error) {
	file, err := resolveWorkspaceFile(path)
	if err != nil {
		return nil, err
	}
	rootDir := filepath.Dir(file)

	wsSchema, projSchema, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	// All reads are confined to the workspace directory.
	root, err := os.OpenRoot(rootDir)
	if err != nil {
		return nil, apperrors.NewConfigurationError("workspace", "failed to open workspace directory", err)
	}
	defer func() { _ = root.Close() }()

	data, err := readFile(root, WorkspaceFileName)
	if err != nil {
		return nil, apperrors.NewConfigurationError("workspace", "failed to read "+WorkspaceFileName, err)
	}
	if err := validateDocument(wsSchema, WorkspaceFileName, data); err != nil {
		return nil, err
	}

	var doc WorkspaceFile
	if err := decode(data, &doc); err != nil {
		return nil, apperrors.NewValidationError(WorkspaceFileName, "failed to decode", err.Error())
	}

	props, err := l.properties.Load(rootDir, overrides)
	if err != nil {
		return nil, apperrors.NewConfigurationError("properties", "failed to load build properties", err)
	}

	state := &loadState{
		root:          root,
		rootDir:       rootDir,
		substitutor:   NewPropertySubstitutor(props),
		projectSchema: projSchema,
	}

	if doc.Name == "" {
		doc.Name = filepath.Base(rootDir)
	}
	rootProject, err := state.buildProject(&doc.ProjectFile, values.RootPath, rootDir, nil, WorkspaceFileName)
	if err != nil {
		return nil, err
	}

	ws := entities.NewWorkspace(rootProject, rootDir)
	ws.File = file
	ws.Properties = props
	if doc.VCS != nil {
		ws.VCS = &entities.VCS{URL: doc.VCS.URL, Connection: doc.VCS.Connection}
	}
	if doc.License != nil {
		ws.License = &entities.License{Name: doc.License.Name, URL: doc.License.URL}
	}
	for _, d := range doc.Developers {
		ws.Developers = append(ws.Developers, entities.Developer{ID: d.ID, Name: d.Name, Email: d.Email})
	}

	repos, err := state.buildRepositories(doc.Repositories, ws.VCS)
	if err != nil {
		return nil, err
	}
	ws.Repositories = repos

	if err := state.loadChildren(ctx, ws, rootProject, doc.Projects, "."); err != nil {
		return nil, err
	}

	l.logger.Debug("workspace loaded",
		"file", file,
		"projects", len(ws.Projects()),
		"repositories", len(ws.Repositories))
	return ws, nil
}

// loadChildren attaches the projects listed by parent. relDir is the
// parent's directory relative to the workspace root.
func (s *loadState) loadChildren(ctx context.Context, ws *entities.Workspace, parent *entities.Project, dirs []string, relDir string) error {
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}

		childRel := filepath.Clean(filepath.Join(relDir, filepath.FromSlash(dir)))
		if childRel == "." || childRel == ".." || strings.HasPrefix(childRel, ".."+string(filepath.Separator)) || filepath.IsAbs(childRel) {
			return apperrors.NewValidationError("projects",
				fmt.Sprintf("project directory %q of %s must be inside the workspace", dir, parent.Path))
		}

		info, err := s.root.Stat(childRel)
		if err != nil || !info.IsDir() {
			return apperrors.NewConfigurationError("workspace",
				fmt.Sprintf("project directory %q of %s does not exist", dir, parent.Path), err)
		}

		descriptor := filepath.ToSlash(filepath.Join(childRel, ProjectFileName))
		var doc ProjectFile
		data, err := readFile(s.root, filepath.Join(childRel, ProjectFileName))
		switch {
		case err == nil:
			if err := validateDocument(s.projectSchema, descriptor, data); err != nil {
				return err
			}
			if err := decode(data, &doc); err != nil {
				return apperrors.NewValidationError(descriptor, "failed to decode", err.Error())
			}
		case os.IsNotExist(err):
		default:
			return apperrors.NewConfigurationError("workspace", "failed to read "+descriptor, err)
		}

		if doc.Name == "" {
			doc.Name = filepath.Base(childRel)
		}
		path, err := values.NewProjectPath(parent.Path.Child(doc.Name).String())
		if err != nil {
			return apperrors.NewValidationError(descriptor, "invalid project name", err.Error())
		}

		child, err := s.buildProject(&doc, path, filepath.Join(s.rootDir, childRel), parent, descriptor)
		if err != nil {
			return err
		}
		if err := ws.AddProject(parent, child); err != nil {
			return apperrors.NewValidationError(descriptor, err.Error())
		}

		if err := s.loadChildren(ctx, ws, child, doc.Projects, childRel); err != nil {
			return err
		}
	}
	return nil
}

// buildProject converts a project document. Group and version fall back
// to the parent's.
func (s *loadState) buildProject(doc *ProjectFile, path values.ProjectPath, dir string, parent *entities.Project, file string) (*entities.Project, error) {
	if err := s.substitutor.SubstituteAll(&doc.Group, &doc.Version, &doc.Description); err != nil {
		return nil, apperrors.NewConfigurationError("properties", file, err)
	}

	project := entities.NewProject(path, doc.Name, dir)
	project.Group = doc.Group
	project.Description = doc.Description
	version := doc.Version
	if parent != nil {
		if project.Group == "" {
			project.Group = parent.Group
		}
		if version == "" {
			version = parent.Version.String()
		}
	}
	project.Version = values.NewVersion(version)

	maturity, err := values.ParseMaturity(doc.Maturity)
	if err != nil {
		return nil, apperrors.NewValidationError(file, "invalid maturity", err.Error())
	}
	project.Maturity = maturity

	if doc.Readme != nil {
		project.Readme = &entities.ReadmeSettings{
			TemplatePath:       doc.Readme.Template,
			UseDefaultTemplate: doc.Readme.UseDefaultTemplate == nil || *doc.Readme.UseDefaultTemplate,
			Properties:         stringMap(doc.Readme.Properties),
			TemplateProperties: stringMap(doc.Readme.TemplateProperties),
		}
	}

	for _, f := range doc.Features {
		project.RegisterFeature(f.ID, f.Description, entities.WithReference(f.Reference), entities.WithDisplayName(f.Name))
	}

	publications := make(map[string]string, len(doc.Publications))
	for _, p := range doc.Publications {
		name, err := values.NewPublicationName(p.Name)
		if err != nil {
			return nil, apperrors.NewValidationError(file, "invalid publication", err.Error())
		}
		if prev, dup := publications[name.Capitalized()]; dup {
			return nil, apperrors.NewConfigurationError("publication",
				fmt.Sprintf("project %s: publication %q clashes with publication %q", project.Path, name, prev), nil)
		}
		publications[name.Capitalized()] = name.String()
		pub := entities.Publication{Name: name, ArtifactID: p.ArtifactID}
		if pub.ArtifactID == "" {
			pub.ArtifactID = project.Name
		}
		for _, a := range p.Artifacts {
			pub.Artifacts = append(pub.Artifacts, entities.Artifact{
				Path:       a.Path,
				Classifier: a.Classifier,
				Extension:  a.Extension,
			})
		}
		project.Publications = append(project.Publications, pub)
	}

	return project, nil
}

func (s *loadState) buildRepositories(docs []RepositoryFile, vcs *entities.VCS) ([]entities.Repository, error) {
	seen := make(map[string]string, len(docs))
	repos := make([]entities.Repository, 0, len(docs))

	for _, doc := range docs {
		name, err := values.NewRepositoryName(doc.Name)
		if err != nil {
			return nil, apperrors.NewConfigurationError("repository", "invalid repository name", err)
		}
		// Task names embed the capitalized name, so "local" and "Local"
		// would share publish tasks.
		if prev, dup := seen[name.Capitalized()]; dup {
			return nil, apperrors.NewConfigurationError("repository",
				fmt.Sprintf("repository %q clashes with repository %q", name, prev), nil)
		}
		seen[name.Capitalized()] = name.String()

		kind, err := entities.ParseRepositoryKind(doc.Kind)
		if err != nil {
			return nil, apperrors.NewConfigurationError("repository", "repository "+name.String(), err)
		}

		if err := s.substitutor.SubstituteAll(&doc.URL, &doc.SnapshotURL, &doc.Command); err != nil {
			return nil, apperrors.NewConfigurationError("repository", "repository "+name.String(), err)
		}

		repo := entities.Repository{
			Name:         name,
			Kind:         kind,
			URL:          doc.URL,
			SnapshotURL:  doc.SnapshotURL,
			ReleasesOnly: doc.ReleasesOnly,
			When:         doc.When,
			Command:      doc.Command,
		}
		repo.ApplyKindDefaults(vcs)

		if kind.RequiresURL() && repo.URL == "" {
			return nil, apperrors.NewConfigurationError("repository",
				fmt.Sprintf("repository %s of kind %s requires a url", name, kind), nil)
		}
		if kind == entities.KindCommand && strings.TrimSpace(repo.Command) == "" {
			return nil, apperrors.NewConfigurationError("repository",
				fmt.Sprintf("repository %s of kind command requires a command", name), nil)
		}

		repos = append(repos, repo)
	}
	return repos, nil
}

// resolveWorkspaceFile turns a file or directory argument into the
// absolute path of monoforge.yaml.
func resolveWorkspaceFile(path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", apperrors.NewConfigurationError("workspace", "invalid workspace path", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", apperrors.NewConfigurationError("workspace", "workspace not found", err)
	}
	if info.IsDir() {
		return filepath.Join(abs, WorkspaceFileName), nil
	}
	if filepath.Base(abs) != WorkspaceFileName {
		return "", apperrors.NewConfigurationError("workspace",
			fmt.Sprintf("workspace file must be named %s", WorkspaceFileName), nil)
	}
	return abs, nil
}

func readFile(root *os.Root, name string) ([]byte, error) {
	f, err := root.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

func decode(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return yaml.NewDecoder(bytes.NewReader(data)).Decode(v)
}
