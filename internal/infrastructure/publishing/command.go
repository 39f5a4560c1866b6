package publishing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/monoforge/monoforge/internal/application/ports"
	"github.com/monoforge/monoforge/internal/infrastructure/sensitivedata"
)

// maxErrorLines is how much command output is quoted in a failure.
const maxErrorLines = 10

// CommandPublisher runs the repository's shell command once per
// publication. The command runs in the project directory with the
// publication described in MONOFORGE_* variables and the credentials in
// PUBLISHING_USER and PUBLISHING_TOKEN.
type CommandPublisher struct {
	redactor *sensitivedata.Redactor
	provider ports.SensitiveValueProvider
	environ  func() []string
	logger   *slog.Logger
}

// NewCommandPublisher creates a command publisher. Output is scrubbed with
// redactor; provider supplies the values scrubbed from errors.
func NewCommandPublisher(redactor *sensitivedata.Redactor, provider ports.SensitiveValueProvider) *CommandPublisher {
	return &CommandPublisher{
		redactor: redactor,
		provider: provider,
		environ:  os.Environ,
		logger:   slog.Default(),
	}
}

var _ ports.Publisher = (*CommandPublisher)(nil)

// Publish runs the command. A non-zero exit fails the publication.
func (p *CommandPublisher) Publish(ctx context.Context, req ports.PublishRequest) (*ports.PublishResult, error) {
	source := strings.TrimSpace(req.Repository.Command)
	if source == "" {
		return nil, fmt.Errorf("repository %s has no command", req.Repository.Name)
	}

	file, err := syntax.NewParser().Parse(strings.NewReader(source), req.Repository.Name.String())
	if err != nil {
		return nil, fmt.Errorf("invalid command for repository %s: %w", req.Repository.Name, err)
	}

	var out bytes.Buffer
	w := sensitivedata.NewWriter(&out, p.redactor)

	runner, err := interp.New(
		interp.Dir(req.Project.Dir),
		interp.Env(expand.ListEnviron(p.commandEnv(req)...)),
		interp.StdIO(nil, w, w),
		interp.Params("-e"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare command: %w", err)
	}

	p.logger.Debug("running publish command",
		"repository", req.Repository.Name.String(),
		"project", req.Project.Path.String())

	runErr := runner.Run(ctx, file)
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to capture command output: %w", err)
	}
	output := strings.TrimRight(out.String(), "\n")
	if runErr != nil {
		var status interp.ExitStatus
		if errors.As(runErr, &status) {
			runErr = fmt.Errorf("command exited with status %d%s", uint8(status), quoteTail(output))
		} else {
			runErr = fmt.Errorf("command failed: %w", runErr)
		}
		return nil, sensitivedata.SafeError(runErr, p.provider)
	}

	return &ports.PublishResult{
		Locations: []string{req.Repository.Name.String()},
		Output:    output,
	}, nil
}

func (p *CommandPublisher) commandEnv(req ports.PublishRequest) []string {
	coords := coordinates(req)

	paths := make([]string, 0, len(req.Publication.Artifacts))
	for _, a := range req.Publication.Artifacts {
		paths = append(paths, artifactPath(req.Project, a))
	}

	env := append([]string{}, p.environ()...)
	env = append(env,
		"MONOFORGE_PROJECT="+req.Project.Path.String(),
		"MONOFORGE_PROJECT_DIR="+req.Project.Dir,
		"MONOFORGE_GROUP="+coords.Group,
		"MONOFORGE_ARTIFACT_ID="+coords.ArtifactID,
		"MONOFORGE_VERSION="+coords.Version,
		"MONOFORGE_PUBLICATION="+req.Publication.Name.String(),
		"MONOFORGE_ARTIFACTS="+strings.Join(paths, "\n"),
		"MONOFORGE_REPOSITORY="+req.Repository.Name.String(),
		"MONOFORGE_REPOSITORY_URL="+req.Repository.URLFor(req.Project.Version),
		"PUBLISHING_USER="+req.Credentials.User,
		"PUBLISHING_TOKEN="+req.Credentials.Token,
	)
	return env
}

// quoteTail returns the last lines of output for an error message.
func quoteTail(output string) string {
	if output == "" {
		return ""
	}
	lines := strings.Split(output, "\n")
	if len(lines) > maxErrorLines {
		lines = lines[len(lines)-maxErrorLines:]
	}
	return ":\n" + strings.Join(lines, "\n")
}
