package services

import (
	"fmt"
	"log/slog"

	apperrors "github.com/monoforge/monoforge/internal/application/errors"
	"github.com/monoforge/monoforge/internal/application/ports"
	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/services"
	"github.com/monoforge/monoforge/internal/domain/values"
)

// EnabledRepositories is the set of repositories publishing in one
// invocation, in registration order.
type EnabledRepositories struct {
	names []values.RepositoryName
	seen  map[string]bool
}

// NewEnabledRepositories creates an empty set.
func NewEnabledRepositories() *EnabledRepositories {
	return &EnabledRepositories{seen: make(map[string]bool)}
}

// RegisterRepository adds a repository to the set. Names are interpolated
// into task names, so anything but letters and digits is a configuration
// error. Registering a name twice is a no-op.
func (e *EnabledRepositories) RegisterRepository(name string) error {
	rn, err := values.NewRepositoryName(name)
	if err != nil {
		return apperrors.NewConfigurationError("repository", "invalid repository name", err)
	}
	if e.seen[rn.String()] {
		return nil
	}
	e.seen[rn.String()] = true
	e.names = append(e.names, rn)
	return nil
}

// Contains reports whether name is registered.
func (e *EnabledRepositories) Contains(name string) bool {
	return e.seen[name]
}

// Names returns the registered names.
func (e *EnabledRepositories) Names() []values.RepositoryName {
	result := make([]values.RepositoryName, len(e.names))
	copy(result, e.names)
	return result
}

// Len returns the number of registered repositories.
func (e *EnabledRepositories) Len() int {
	return len(e.names)
}

// RepositoryDecision is the outcome of evaluating one repository.
type RepositoryDecision struct {
	Repository  entities.Repository
	Enabled     bool
	Reason      string
	Credentials ports.Credentials
}

// RepositoryGate decides which configured repositories take part in a
// release. Decisions are soft (the repository is skipped) except for the
// configuration errors that make publishing impossible.
type RepositoryGate struct {
	credentials ports.CredentialResolver
	env         ports.EnvironmentReader
	condition   *services.RepositoryCondition
	logger      *slog.Logger
}

// NewRepositoryGate creates a repository gate.
func NewRepositoryGate(
	credentials ports.CredentialResolver,
	env ports.EnvironmentReader,
	condition *services.RepositoryCondition,
	logger *slog.Logger,
) *RepositoryGate {
	if logger == nil {
		logger = slog.Default()
	}
	if condition == nil {
		condition = services.NewRepositoryCondition()
	}
	return &RepositoryGate{
		credentials: credentials,
		env:         env,
		condition:   condition,
		logger:      logger,
	}
}

// ConditionEnv builds the `when:` environment of a workspace.
func (g *RepositoryGate) ConditionEnv(ws *entities.Workspace) services.ConditionEnv {
	env := services.ConditionEnv{
		Group:      ws.Root.Group,
		Version:    ws.Root.Version.String(),
		Snapshot:   ws.Root.Version.IsSnapshot(),
		Properties: ws.Properties,
	}
	if g.env != nil {
		env.Env = g.env.Environ()
	}
	return env
}

// Evaluate decides whether repo publishes. Checks run in order: VCS
// requirement and a resolvable url (both fatal), `when:` condition,
// releases_only, credentials.
func (g *RepositoryGate) Evaluate(ws *entities.Workspace, repo entities.Repository) (RepositoryDecision, error) {
	decision := RepositoryDecision{Repository: repo}
	name := repo.Name.String()

	if repo.Kind.RequiresVCS() && ws.VCS == nil {
		return decision, apperrors.NewConfigurationError("vcs",
			fmt.Sprintf("repository %s (%s) requires a vcs block in the workspace", name, repo.Kind), nil)
	}

	if repo.URL == "" && repo.Kind != entities.KindCommand {
		msg := fmt.Sprintf("repository %s (%s) has no url", name, repo.Kind)
		if repo.Kind == entities.KindGitHub && ws.VCS != nil {
			msg = fmt.Sprintf("repository %s (github) has no url: vcs url %q is not a GitHub repository", name, ws.VCS.URL)
		}
		return decision, apperrors.NewConfigurationError("repository", msg, nil)
	}

	if repo.When != "" {
		env := g.ConditionEnv(ws)
		env.Name = name
		ok, err := g.condition.Evaluate(repo.When, env)
		if err != nil {
			return decision, apperrors.NewConfigurationError("repository",
				fmt.Sprintf("invalid when condition on repository %s", name), err)
		}
		if !ok {
			decision.Reason = "when condition is false"
			g.logger.Info("repository condition not met, skipping repository", "repository", name, "when", repo.When)
			return decision, nil
		}
	}

	if repo.ReleasesOnly && ws.Root.Version.IsSnapshot() {
		decision.Reason = fmt.Sprintf("releases only, version %s is a pre-release", ws.Root.Version)
		g.logger.Info("repository accepts releases only, skipping repository", "repository", name, "version", ws.Root.Version.String())
		return decision, nil
	}

	if repo.Kind.RequiresCredentials() {
		creds, ok := g.credentials.Resolve(repo, ws.Properties)
		if !ok {
			userKey, tokenKey := repo.CredentialKeys()
			decision.Reason = fmt.Sprintf("missing credentials %s / %s", userKey, tokenKey)
			g.logger.Info("publishing credentials missing, skipping repository",
				"repository", name, "user", userKey, "token", tokenKey)
			return decision, nil
		}
		decision.Credentials = creds
	}

	decision.Enabled = true
	return decision, nil
}
