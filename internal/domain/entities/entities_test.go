package entities

import (
	"context"
	"regexp"
	"testing"

	"github.com/monoforge/monoforge/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_RegisterFeature_KeepsOrderAndDuplicates(t *testing.T) {
	p := NewProject(values.RootPath, "root", "/ws")

	p.RegisterFeature("io", "Binary IO")
	p.RegisterFeature("json", "JSON codec", WithReference("docs/json.md"), WithDisplayName("JSON"))
	p.RegisterFeature("io", "Second declaration")

	features := p.Features()
	require.Len(t, features, 3)
	assert.Equal(t, "io", features[0].DisplayName)
	assert.Equal(t, "JSON", features[1].DisplayName)
	assert.Equal(t, "docs/json.md", features[1].Reference)
	assert.Equal(t, "Second declaration", features[2].Description)
	assert.Equal(t, []string{"io"}, p.DuplicateFeatureIDs())
}

func TestProject_FeaturesReturnsCopy(t *testing.T) {
	p := NewProject(values.RootPath, "root", "/ws")
	p.RegisterFeature("a", "A")

	features := p.Features()
	features[0].ID = "mutated"

	assert.Equal(t, "a", p.Features()[0].ID)
}

func TestNewFeature_EmptyDisplayNameKeepsID(t *testing.T) {
	f := NewFeature("core", "desc", WithDisplayName(""))
	assert.Equal(t, "core", f.DisplayName)
}

func TestWorkspace_AddProject(t *testing.T) {
	root := NewProject(values.RootPath, "root", "/ws")
	ws := NewWorkspace(root, "/ws")

	core := NewProject(values.RootPath.Child("core"), "core", "/ws/core")
	require.NoError(t, ws.AddProject(root, core))

	io := NewProject(core.Path.Child("io"), "io", "/ws/core/io")
	require.NoError(t, ws.AddProject(core, io))

	found, ok := ws.Project(values.MustNewProjectPath(":core:io"))
	require.True(t, ok)
	assert.Same(t, io, found)
	assert.Same(t, core, io.Parent())

	var names []string
	for _, p := range ws.Projects() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"root", "core", "io"}, names)

	err := ws.AddProject(root, NewProject(values.RootPath.Child("core"), "core", "/ws/core"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate project path")
}

func TestWorkspace_AddProject_UnknownParent(t *testing.T) {
	ws := NewWorkspace(NewProject(values.RootPath, "root", "/ws"), "/ws")
	stray := NewProject(values.RootPath.Child("stray"), "stray", "/ws/stray")

	err := ws.AddProject(stray, NewProject(stray.Path.Child("x"), "x", "/ws/stray/x"))
	assert.Error(t, err)
}

func TestTaskContainer_GetOrCreate(t *testing.T) {
	c := NewTaskContainer(values.RootPath)

	first, created := c.GetOrCreate("release")
	assert.True(t, created)

	second, created := c.GetOrCreate("release")
	assert.False(t, created)
	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, ":release", first.Path())
}

func TestTaskContainer_Register_Duplicate(t *testing.T) {
	c := NewTaskContainer(values.MustNewProjectPath(":core"))

	_, err := c.Register("publishJvmPublicationToSonatypeRepository")
	require.NoError(t, err)

	_, err = c.Register("publishJvmPublicationToSonatypeRepository")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":core:publishJvmPublicationToSonatypeRepository")
}

func TestTaskContainer_Matching(t *testing.T) {
	c := NewTaskContainer(values.RootPath)
	c.GetOrCreate("publishJvmPublicationToSonatypeRepository")
	c.GetOrCreate("build")
	c.GetOrCreate("publishJsPublicationToSonatypeRepository")

	matched := c.Matching(regexp.MustCompile(`^publish`))
	require.Len(t, matched, 2)
	assert.Equal(t, "publishJvmPublicationToSonatypeRepository", matched[0].Name)
}

func TestTask_DependsOn_Idempotent(t *testing.T) {
	c := NewTaskContainer(values.RootPath)
	release, _ := c.GetOrCreate("release")
	jvm, _ := c.GetOrCreate("releaseJvm")

	release.DependsOn(jvm)
	release.DependsOn(jvm, nil, release)

	assert.Len(t, release.Dependencies(), 1)
	assert.True(t, release.HasDependency(jvm))
}

func TestTask_Action(t *testing.T) {
	c := NewTaskContainer(values.RootPath)
	task, _ := c.GetOrCreate("noop")

	ran := false
	task.Action = func(context.Context) (string, error) {
		ran = true
		return "done", nil
	}

	out, err := task.Action(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.True(t, ran)
}

func TestParseRepositoryKind(t *testing.T) {
	kind, err := ParseRepositoryKind("")
	require.NoError(t, err)
	assert.Equal(t, KindMaven, kind)

	kind, err = ParseRepositoryKind("Sonatype")
	require.NoError(t, err)
	assert.True(t, kind.RequiresVCS())
	assert.True(t, kind.RequiresCredentials())

	kind, err = ParseRepositoryKind("local")
	require.NoError(t, err)
	assert.False(t, kind.RequiresCredentials())
	assert.True(t, kind.UsesMavenLayout())

	_, err = ParseRepositoryKind("ivy")
	assert.Error(t, err)
}

func TestRepository_ApplyKindDefaults(t *testing.T) {
	gh := Repository{Name: values.MustNewRepositoryName("github"), Kind: KindGitHub}
	gh.ApplyKindDefaults(&VCS{URL: "https://github.com/acme/widgets.git"})
	assert.Equal(t, "https://maven.pkg.github.com/acme/widgets", gh.URL)

	st := Repository{Name: values.MustNewRepositoryName("sonatype"), Kind: KindSonatype}
	st.ApplyKindDefaults(nil)
	assert.Equal(t, sonatypeReleaseURL, st.URLFor(values.NewVersion("1.0.0")))
	assert.Equal(t, sonatypeSnapshotURL, st.URLFor(values.NewVersion("1.0.0-SNAPSHOT")))
}

func TestRepository_CredentialKeys(t *testing.T) {
	repo := Repository{Name: values.MustNewRepositoryName("space")}
	user, token := repo.CredentialKeys()
	assert.Equal(t, "publishing.space.user", user)
	assert.Equal(t, "publishing.space.token", token)
}
