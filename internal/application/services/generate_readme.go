package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/monoforge/monoforge/internal/application/dto"
	apperrors "github.com/monoforge/monoforge/internal/application/errors"
	"github.com/monoforge/monoforge/internal/application/ports"
	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/services"
	"github.com/monoforge/monoforge/internal/domain/values"
)

// ReadmeFileName is the name of generated documents.
const ReadmeFileName = "README.md"

// GenerateReadmeUseCase renders and writes the readme of every project.
// Generation is best effort: a project whose template is missing or broken
// is logged and skipped.
type GenerateReadmeUseCase struct {
	loader    ports.WorkspaceLoader
	templates ports.TemplateLoader
	documents ports.DocumentStore
	logger    *slog.Logger
}

// NewGenerateReadmeUseCase creates a new readme generation use case.
func NewGenerateReadmeUseCase(
	loader ports.WorkspaceLoader,
	templates ports.TemplateLoader,
	documents ports.DocumentStore,
	logger *slog.Logger,
) *GenerateReadmeUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerateReadmeUseCase{
		loader:    loader,
		templates: templates,
		documents: documents,
		logger:    logger,
	}
}

// BuildRegistry attaches a readme generator to every project carrying
// readme metadata and applies configured properties. Errors applying
// properties are returned keyed by project path.
func BuildRegistry(ws *entities.Workspace, templates ports.TemplateLoader) (*services.ReadmeRegistry, map[string]error) {
	registry := services.NewReadmeRegistry(templates)
	for _, p := range ws.Projects() {
		if p.HasReadme() {
			registry.Attach(p)
		}
	}

	failed := make(map[string]error)
	for _, g := range registry.Generators() {
		if err := g.ApplyConfiguredProperties(); err != nil {
			failed[g.Project().Path.String()] = err
		}
	}
	return registry, failed
}

// Execute renders every registered project, subprojects first and the
// root last, and writes the documents unless DryRun or Check is set.
func (uc *GenerateReadmeUseCase) Execute(ctx context.Context, req dto.GenerateReadmeRequest) (*dto.GenerateReadmeResponse, error) {
	start := time.Now()

	ws, err := loadWorkspace(ctx, uc.loader, req.Workspace)
	if err != nil {
		return nil, err
	}

	only, err := projectFilter(ws, req.Projects)
	if err != nil {
		return nil, err
	}

	registry, failed := BuildRegistry(ws, uc.templates)
	resp := &dto.GenerateReadmeResponse{}

	for _, g := range renderOrder(registry) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		project := g.Project()
		path := project.Path.String()
		if only != nil && !only[path] {
			continue
		}

		if err, ok := failed[path]; ok {
			uc.logger.Warn("failed to apply readme properties, skipping", "project", path, "error", err)
			resp.Skipped = append(resp.Skipped, dto.SkippedProject{Project: path, Reason: err.Error()})
			continue
		}

		content, ok, err := g.Render()
		switch {
		case errors.Is(err, services.ErrTemplateNotFound):
			uc.logger.Warn("readme template not found, skipping", "project", path, "error", err)
			resp.Skipped = append(resp.Skipped, dto.SkippedProject{Project: path, Reason: err.Error()})
			continue
		case err != nil:
			uc.logger.Warn("failed to render readme, skipping", "project", path, "error", err)
			resp.Skipped = append(resp.Skipped, dto.SkippedProject{Project: path, Reason: err.Error()})
			continue
		case !ok:
			uc.logger.Info("no readme template configured, skipping", "project", path)
			resp.Skipped = append(resp.Skipped, dto.SkippedProject{Project: path, Reason: "no template configured"})
			continue
		}

		doc, err := uc.store(project, content, req)
		if err != nil {
			return nil, err
		}
		resp.Documents = append(resp.Documents, doc)
	}

	resp.Metadata = responseMetadata(req.Metadata, start)
	uc.logger.Debug("readme generation complete",
		"documents", len(resp.Documents),
		"skipped", len(resp.Skipped),
		"duration", resp.Metadata.Duration)
	return resp, nil
}

func (uc *GenerateReadmeUseCase) store(project *entities.Project, content string, req dto.GenerateReadmeRequest) (dto.ReadmeDocument, error) {
	target := filepath.Join(project.Dir, ReadmeFileName)
	doc := dto.ReadmeDocument{
		Project: project.Path.String(),
		Path:    target,
		Content: content,
	}

	current, exists, err := uc.documents.ReadDocument(target)
	if err != nil {
		return doc, fmt.Errorf("failed to read %s: %w", target, err)
	}
	doc.Changed = !exists || current != content

	if req.DryRun || req.Check || !doc.Changed {
		return doc, nil
	}

	if err := uc.documents.WriteDocument(target, content); err != nil {
		return doc, fmt.Errorf("failed to write %s: %w", target, err)
	}
	doc.Written = true
	uc.logger.Info("readme written", "project", doc.Project, "path", target)
	return doc, nil
}

// renderOrder returns subproject generators in workspace order followed
// by the root generator, so the aggregate document is produced last.
func renderOrder(registry *services.ReadmeRegistry) []*services.ReadmeGenerator {
	generators := registry.Generators()
	ordered := make([]*services.ReadmeGenerator, 0, len(generators))
	var root *services.ReadmeGenerator
	for _, g := range generators {
		if g.Project().Path.IsRoot() {
			root = g
			continue
		}
		ordered = append(ordered, g)
	}
	if root != nil {
		ordered = append(ordered, root)
	}
	return ordered
}

func projectFilter(ws *entities.Workspace, paths []string) (map[string]bool, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	only := make(map[string]bool, len(paths))
	for _, raw := range paths {
		path, err := values.NewProjectPath(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("project", err.Error())
		}
		if _, ok := ws.Project(path); !ok {
			return nil, apperrors.NewValidationError("project", fmt.Sprintf("unknown project %s", path))
		}
		only[path.String()] = true
	}
	return only, nil
}
