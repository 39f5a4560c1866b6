// Package container provides dependency injection for the application.
package container

import (
	"fmt"
	"log/slog"
	"net/http"

	apperrors "github.com/monoforge/monoforge/internal/application/errors"
	"github.com/monoforge/monoforge/internal/application/ports"
	"github.com/monoforge/monoforge/internal/application/services"
	domainservices "github.com/monoforge/monoforge/internal/domain/services"
	"github.com/monoforge/monoforge/internal/infrastructure/config"
	"github.com/monoforge/monoforge/internal/infrastructure/engine"
	"github.com/monoforge/monoforge/internal/infrastructure/filesystem"
	"github.com/monoforge/monoforge/internal/infrastructure/publishing"
	"github.com/monoforge/monoforge/internal/infrastructure/secrets"
	"github.com/monoforge/monoforge/internal/infrastructure/sensitivedata"
	"github.com/monoforge/monoforge/internal/infrastructure/system"
	"github.com/monoforge/monoforge/internal/templates"
)

// Container holds all application dependencies.
type Container struct {
	workspaceLoader ports.WorkspaceLoader
	templates       *templates.Loader
	readmeUseCase   *services.GenerateReadmeUseCase
	releaseUseCase  *services.ReleaseUseCase
	checkUseCase    *services.CheckWorkspaceUseCase
	redactor        *sensitivedata.Redactor
	systemCfg       *system.Config
	logger          *slog.Logger
}

// Options configure the container.
type Options struct {
	Logger           *slog.Logger
	SystemConfigPath string
	// Version is the monoforge version reported in outputs and user agents.
	Version string
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SystemConfigPath == "" {
		opts.SystemConfigPath = system.DefaultConfigPath()
	}

	// A missing file yields defaults; a broken one is fatal.
	systemCfg, err := system.NewConfigLoader().Load(opts.SystemConfigPath)
	if err != nil {
		return nil, apperrors.NewConfigurationError("system config", opts.SystemConfigPath, err)
	}

	// Every credential the resolver hands out is scrubbed from output.
	provider := sensitivedata.NewProvider()
	redactor, err := sensitivedata.NewWithProvider(sensitivedata.Config{
		Patterns:        systemCfg.Redaction.Patterns,
		HashMode:        systemCfg.Redaction.HashMode.Enabled,
		Salt:            systemCfg.Redaction.HashMode.Salt,
		DisableGitleaks: systemCfg.Redaction.DisableGitleaks,
	}, provider)
	if err != nil {
		return nil, err
	}

	timeout, err := systemCfg.Publishing.Timeout(publishing.DefaultHTTPTimeout)
	if err != nil {
		return nil, err
	}

	resolver := secrets.NewResolver(&systemCfg.SensitiveData.Secrets, provider)
	loader := config.NewWorkspaceLoader(config.WithLogger(opts.Logger))
	templateLoader := templates.NewLoader()
	documents := filesystem.NewDocumentStore()

	publishers := publishing.NewRegistry(
		publishing.NewMavenPublisher(
			publishing.WithHTTPClient(&http.Client{Timeout: timeout}),
			publishing.WithUserAgent(fmt.Sprintf("monoforge/%s", opts.Version)),
			publishing.WithMavenLogger(opts.Logger),
		),
		publishing.NewOCIPublisher(),
		publishing.NewCommandPublisher(redactor, provider),
	)

	runner := engine.NewEngine(
		engine.WithRedactor(redactor),
		engine.WithLogger(opts.Logger),
	)

	gate := services.NewRepositoryGate(resolver, system.Environment{}, domainservices.NewRepositoryCondition(), opts.Logger)

	return &Container{
		workspaceLoader: loader,
		templates:       templateLoader,
		readmeUseCase:   services.NewGenerateReadmeUseCase(loader, templateLoader, documents, opts.Logger),
		releaseUseCase:  services.NewReleaseUseCase(loader, gate, publishers, runner, opts.Version, opts.Logger),
		checkUseCase:    services.NewCheckWorkspaceUseCase(loader, templateLoader, gate, opts.Version, opts.Logger),
		redactor:        redactor,
		systemCfg:       systemCfg,
		logger:          opts.Logger,
	}, nil
}

// GenerateReadmeUseCase returns the readme generation use case.
func (c *Container) GenerateReadmeUseCase() *services.GenerateReadmeUseCase {
	return c.readmeUseCase
}

// ReleaseUseCase returns the release use case.
func (c *Container) ReleaseUseCase() *services.ReleaseUseCase {
	return c.releaseUseCase
}

// CheckWorkspaceUseCase returns the workspace check use case.
func (c *Container) CheckWorkspaceUseCase() *services.CheckWorkspaceUseCase {
	return c.checkUseCase
}

// WorkspaceLoader returns the workspace loader port.
func (c *Container) WorkspaceLoader() ports.WorkspaceLoader {
	return c.workspaceLoader
}

// Redactor returns the redactor shared by all components.
func (c *Container) Redactor() ports.Redactor {
	return c.redactor
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
