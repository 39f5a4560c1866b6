package publishing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monoforge/monoforge/internal/application/ports"
	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/values"
)

const (
	jarContent     = "jar-bytes"
	sourcesContent = "sources-bytes"
)

// newRequest builds a workspace with one published project whose
// artifacts exist on disk.
func newRequest(t *testing.T, kind entities.RepositoryKind, url string) ports.PublishRequest {
	t.Helper()

	dir := t.TempDir()
	coreDir := filepath.Join(dir, "core")
	require.NoError(t, os.MkdirAll(filepath.Join(coreDir, "build", "libs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(coreDir, "build", "libs", "core.jar"), []byte(jarContent), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(coreDir, "build", "libs", "core-sources.jar"), []byte(sourcesContent), 0o600))

	root := entities.NewProject(values.RootPath, "toolkit", dir)
	core := entities.NewProject(values.MustNewProjectPath(":core"), "core", coreDir)
	core.Group = "dev.monoforge"
	core.Version = values.NewVersion("1.0.0")
	core.Description = "Core types"

	ws := entities.NewWorkspace(root, dir)
	require.NoError(t, ws.AddProject(root, core))
	ws.VCS = &entities.VCS{URL: "https://github.com/monoforge/toolkit", Connection: "scm:git:https://github.com/monoforge/toolkit.git"}
	ws.License = &entities.License{Name: "Apache-2.0", URL: "https://www.apache.org/licenses/LICENSE-2.0"}
	ws.Developers = []entities.Developer{{ID: "octo", Name: "Octo Cat", Email: "octo@example.com"}}

	return ports.PublishRequest{
		Workspace: ws,
		Project:   core,
		Publication: entities.Publication{
			Name:       values.MustNewPublicationName("jvm"),
			ArtifactID: "toolkit-core",
			Artifacts: []entities.Artifact{
				{Path: "build/libs/core.jar"},
				{Path: "build/libs/core-sources.jar", Classifier: "sources"},
			},
		},
		Repository: entities.Repository{
			Name: values.MustNewRepositoryName("space"),
			Kind: kind,
			URL:  url,
		},
		Credentials: ports.Credentials{User: "bot", Token: "t0k3n"},
	}
}
