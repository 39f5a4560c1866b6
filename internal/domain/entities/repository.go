package entities

import (
	"fmt"
	"strings"

	"github.com/monoforge/monoforge/internal/domain/values"
)

// RepositoryKind selects how a repository is published to. The kind is
// resolved once when the workspace is loaded; per-kind behavior is looked
// up in kindTraits instead of being re-derived at each use.
type RepositoryKind string

const (
	KindMaven    RepositoryKind = "maven"
	KindGitHub   RepositoryKind = "github"
	KindSpace    RepositoryKind = "space"
	KindSonatype RepositoryKind = "sonatype"
	KindOCI      RepositoryKind = "oci"
	KindLocal    RepositoryKind = "local"
	KindCommand  RepositoryKind = "command"
)

type kindTraits struct {
	requiresVCS         bool
	requiresCredentials bool
	requiresURL         bool
	mavenLayout         bool
}

var repositoryKinds = map[RepositoryKind]kindTraits{
	KindMaven:    {requiresCredentials: true, requiresURL: true, mavenLayout: true},
	KindGitHub:   {requiresVCS: true, requiresCredentials: true, mavenLayout: true},
	KindSpace:    {requiresCredentials: true, requiresURL: true, mavenLayout: true},
	KindSonatype: {requiresVCS: true, requiresCredentials: true, mavenLayout: true},
	KindOCI:      {requiresCredentials: true, requiresURL: true},
	KindLocal:    {requiresURL: true, mavenLayout: true},
	KindCommand:  {requiresCredentials: true},
}

// ParseRepositoryKind validates a kind name.
func ParseRepositoryKind(s string) (RepositoryKind, error) {
	kind := RepositoryKind(strings.ToLower(strings.TrimSpace(s)))
	if kind == "" {
		return KindMaven, nil
	}
	if _, ok := repositoryKinds[kind]; !ok {
		return "", fmt.Errorf("unknown repository kind %q (supported: %s)", s, strings.Join(SupportedKinds(), ", "))
	}
	return kind, nil
}

// SupportedKinds lists the kind names.
func SupportedKinds() []string {
	return []string{
		string(KindMaven), string(KindGitHub), string(KindSpace), string(KindSonatype),
		string(KindOCI), string(KindLocal), string(KindCommand),
	}
}

// RequiresVCS reports whether publishing needs the workspace VCS block.
func (k RepositoryKind) RequiresVCS() bool {
	return repositoryKinds[k].requiresVCS
}

// RequiresCredentials reports whether missing credentials disable the repository.
func (k RepositoryKind) RequiresCredentials() bool {
	return repositoryKinds[k].requiresCredentials
}

// RequiresURL reports whether the repository must declare a URL.
func (k RepositoryKind) RequiresURL() bool {
	return repositoryKinds[k].requiresURL
}

// UsesMavenLayout reports whether artifacts are laid out as a Maven 2 repository.
func (k RepositoryKind) UsesMavenLayout() bool {
	return repositoryKinds[k].mavenLayout
}

// Repository is a publishing destination.
type Repository struct {
	Name         values.RepositoryName
	Kind         RepositoryKind
	URL          string
	SnapshotURL  string
	ReleasesOnly bool
	When         string
	Command      string
}

// CredentialKeys returns the property names holding the user and token.
func (r Repository) CredentialKeys() (user, token string) {
	prefix := "publishing." + r.Name.String()
	return prefix + ".user", prefix + ".token"
}

// URLFor returns the upload URL for a version; snapshots use SnapshotURL
// when one is configured.
func (r Repository) URLFor(version values.Version) string {
	if version.IsSnapshot() && r.SnapshotURL != "" {
		return r.SnapshotURL
	}
	return r.URL
}

const (
	sonatypeReleaseURL  = "https://s01.oss.sonatype.org/service/local/staging/deploy/maven2/"
	sonatypeSnapshotURL = "https://s01.oss.sonatype.org/content/repositories/snapshots/"
)

// ApplyKindDefaults fills in URLs the kind implies. GitHub Packages URLs
// are derived from the VCS URL.
func (r *Repository) ApplyKindDefaults(vcs *VCS) {
	switch r.Kind {
	case KindSonatype:
		if r.URL == "" {
			r.URL = sonatypeReleaseURL
		}
		if r.SnapshotURL == "" {
			r.SnapshotURL = sonatypeSnapshotURL
		}
	case KindGitHub:
		if r.URL == "" && vcs != nil {
			if slug, ok := githubSlug(vcs.URL); ok {
				r.URL = "https://maven.pkg.github.com/" + slug
			}
		}
	}
}

// githubSlug extracts "owner/repo" from a GitHub URL.
func githubSlug(url string) (string, bool) {
	for _, prefix := range []string{"https://github.com/", "http://github.com/", "git@github.com:"} {
		if rest, ok := strings.CutPrefix(url, prefix); ok {
			rest = strings.TrimSuffix(strings.TrimSuffix(rest, "/"), ".git")
			if strings.Count(rest, "/") == 1 {
				return rest, true
			}
		}
	}
	return "", false
}
