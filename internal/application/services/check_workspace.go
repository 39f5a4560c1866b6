package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/monoforge/monoforge/internal/application/dto"
	"github.com/monoforge/monoforge/internal/application/ports"
	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/execution"
	"github.com/monoforge/monoforge/internal/domain/services"
	"github.com/monoforge/monoforge/internal/domain/values"
)

// Diagnostic rule identifiers.
const (
	RuleDuplicateFeatureID      = "duplicate-feature-id"
	RuleReadmeTemplateMissing   = "readme-template-missing"
	RuleReadmeRenderFailed      = "readme-render-failed"
	RuleReadmeDisabled          = "readme-disabled"
	RuleModuleWithoutReadme     = "module-without-readme"
	RuleRepositoryDisabled      = "repository-disabled"
	RuleRepositoryMisconfigured = "repository-misconfigured"
	RuleVersionNotSemver        = "version-not-semver"
)

// RuleDescriptions describes every diagnostic rule, for report formats
// that list rules.
var RuleDescriptions = map[string]string{
	RuleDuplicateFeatureID:      "A project declares two features with the same id",
	RuleReadmeTemplateMissing:   "A configured readme template file does not exist",
	RuleReadmeRenderFailed:      "A readme template failed to render",
	RuleReadmeDisabled:          "A project has readme metadata but no template and default templates are disabled",
	RuleModuleWithoutReadme:     "A subproject without readme metadata is left out of its parent's module summary",
	RuleRepositoryDisabled:      "A repository does not take part in the release",
	RuleRepositoryMisconfigured: "A repository cannot publish with the current configuration",
	RuleVersionNotSemver:        "A project version is not a semantic version",
}

// CheckWorkspaceUseCase reports workspace diagnostics without writing anything.
type CheckWorkspaceUseCase struct {
	loader    ports.WorkspaceLoader
	templates ports.TemplateLoader
	gate      *RepositoryGate
	version   string
	logger    *slog.Logger
}

// NewCheckWorkspaceUseCase creates a new check use case.
func NewCheckWorkspaceUseCase(
	loader ports.WorkspaceLoader,
	templates ports.TemplateLoader,
	gate *RepositoryGate,
	toolVersion string,
	logger *slog.Logger,
) *CheckWorkspaceUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckWorkspaceUseCase{
		loader:    loader,
		templates: templates,
		gate:      gate,
		version:   toolVersion,
		logger:    logger,
	}
}

// Execute loads the workspace and runs every rule.
func (uc *CheckWorkspaceUseCase) Execute(ctx context.Context, req dto.CheckWorkspaceRequest) (*dto.CheckWorkspaceResponse, error) {
	start := time.Now()

	ws, err := loadWorkspace(ctx, uc.loader, req.Workspace)
	if err != nil {
		return nil, err
	}

	report := execution.NewReport(execution.KindCheck, ws.Root.Name, ws.Root.Version.String())
	report.MonoforgeVersion = uc.version

	uc.checkProjects(ws, report)
	uc.checkReadmes(ws, report)
	uc.checkRepositories(ws, report)

	report.Finalize()

	uc.logger.Debug("workspace check complete",
		"errors", report.Summary.Errors,
		"warnings", report.Summary.Warnings,
		"notes", report.Summary.Notes)

	return &dto.CheckWorkspaceResponse{
		Report:   report,
		Metadata: responseMetadata(req.Metadata, start),
	}, nil
}

func (uc *CheckWorkspaceUseCase) checkProjects(ws *entities.Workspace, report *execution.Report) {
	for _, p := range ws.Projects() {
		path := p.Path.String()

		if !p.Version.IsEmpty() && !p.Version.IsSemver() {
			report.AddDiagnostic(RuleVersionNotSemver, values.SevWarning, path, projectLocation(ws, p),
				fmt.Sprintf("version %q is not a semantic version", p.Version))
		}

		for _, id := range p.DuplicateFeatureIDs() {
			report.AddDiagnostic(RuleDuplicateFeatureID, values.SevWarning, path, projectLocation(ws, p),
				fmt.Sprintf("feature %q is declared more than once", id))
		}
	}
}

func (uc *CheckWorkspaceUseCase) checkReadmes(ws *entities.Workspace, report *execution.Report) {
	registry, failed := BuildRegistry(ws, uc.templates)

	for _, p := range ws.Projects() {
		path := p.Path.String()

		if !p.HasReadme() {
			if parent := p.Parent(); parent != nil && parent.HasReadme() {
				report.AddDiagnostic(RuleModuleWithoutReadme, values.SevNote, path, projectLocation(ws, p),
					fmt.Sprintf("%s has no readme block and is left out of the module summary of %s", path, parent.Path))
			}
			continue
		}

		if err, ok := failed[path]; ok {
			report.AddDiagnostic(RuleReadmeRenderFailed, values.SevWarning, path, projectLocation(ws, p), err.Error())
			continue
		}

		g, _ := registry.Lookup(p.Path)
		_, ok, err := g.Render()
		switch {
		case errors.Is(err, services.ErrTemplateNotFound):
			report.AddDiagnostic(RuleReadmeTemplateMissing, values.SevWarning, path, projectLocation(ws, p), err.Error())
		case err != nil:
			report.AddDiagnostic(RuleReadmeRenderFailed, values.SevWarning, path, projectLocation(ws, p), err.Error())
		case !ok:
			report.AddDiagnostic(RuleReadmeDisabled, values.SevNote, path, projectLocation(ws, p),
				"no template configured and default templates are disabled")
		}
	}
}

func (uc *CheckWorkspaceUseCase) checkRepositories(ws *entities.Workspace, report *execution.Report) {
	location := workspaceLocation(ws)
	for _, repo := range ws.Repositories {
		name := repo.Name.String()
		decision, err := uc.gate.Evaluate(ws, repo)
		if err != nil {
			report.AddDiagnostic(RuleRepositoryMisconfigured, values.SevError, name, location, err.Error())
			continue
		}
		if !decision.Enabled {
			report.AddDiagnostic(RuleRepositoryDisabled, values.SevNote, name, location,
				fmt.Sprintf("repository %s is disabled: %s", name, decision.Reason))
		}
	}
}

func workspaceLocation(ws *entities.Workspace) string {
	if ws.File == "" {
		return ""
	}
	if rel, err := filepath.Rel(ws.RootDir, ws.File); err == nil {
		return filepath.ToSlash(rel)
	}
	return ws.File
}

func projectLocation(ws *entities.Workspace, p *entities.Project) string {
	if p.Path.IsRoot() {
		return workspaceLocation(ws)
	}
	if rel, err := filepath.Rel(ws.RootDir, p.Dir); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return p.Path.Dir()
}
