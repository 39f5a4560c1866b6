// Package publishing uploads publications to repositories.
package publishing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/monoforge/monoforge/internal/application/ports"
	"github.com/monoforge/monoforge/internal/domain/entities"
)

// Coordinates identify a publication in a Maven-style repository.
type Coordinates struct {
	Group      string
	ArtifactID string
	Version    string
}

// coordinates returns the coordinates of a request without validation.
func coordinates(req ports.PublishRequest) Coordinates {
	c := Coordinates{
		Group:      req.Project.Group,
		ArtifactID: req.Publication.ArtifactID,
		Version:    req.Project.Version.String(),
	}
	if c.ArtifactID == "" {
		c.ArtifactID = req.Project.Name
	}
	return c
}

// coordinatesOf validates and returns the coordinates of a request.
func coordinatesOf(req ports.PublishRequest) (Coordinates, error) {
	c := coordinates(req)

	var missing []string
	if c.Group == "" {
		missing = append(missing, "group")
	}
	if c.Version == "" {
		missing = append(missing, "version")
	}
	if len(missing) > 0 {
		return c, fmt.Errorf("project %s has no %s", req.Project.Path, strings.Join(missing, " or "))
	}
	return c, nil
}

// Dir returns the repository directory of the coordinates
// ("dev/monoforge/core/1.0.0").
func (c Coordinates) Dir() string {
	return strings.ReplaceAll(c.Group, ".", "/") + "/" + c.ArtifactID + "/" + c.Version
}

// FileName returns the file name of one artifact.
func (c Coordinates) FileName(classifier, extension string) string {
	name := c.ArtifactID + "-" + c.Version
	if classifier != "" {
		name += "-" + classifier
	}
	return name + "." + extension
}

// String returns group:artifact:version.
func (c Coordinates) String() string {
	return c.Group + ":" + c.ArtifactID + ":" + c.Version
}

// extensionOf returns the declared extension or the one of the file name.
func extensionOf(a entities.Artifact) string {
	if a.Extension != "" {
		return strings.TrimPrefix(a.Extension, ".")
	}
	base := filepath.Base(a.Path)
	for _, double := range []string{".tar.gz", ".tar.bz2", ".tar.xz"} {
		if strings.HasSuffix(base, double) {
			return strings.TrimPrefix(double, ".")
		}
	}
	return strings.TrimPrefix(filepath.Ext(base), ".")
}

// artifactPath resolves an artifact path against the project directory.
func artifactPath(project *entities.Project, a entities.Artifact) string {
	if filepath.IsAbs(a.Path) {
		return a.Path
	}
	return filepath.Join(project.Dir, a.Path)
}

// artifactFile is one artifact read from the project directory.
type artifactFile struct {
	artifact  entities.Artifact
	extension string
	data      []byte
}

// readArtifacts loads every artifact of the publication. Relative paths
// are resolved against the project directory.
func readArtifacts(req ports.PublishRequest) ([]artifactFile, error) {
	if len(req.Publication.Artifacts) == 0 {
		return nil, nil
	}

	files := make([]artifactFile, 0, len(req.Publication.Artifacts))
	seen := make(map[string]bool)
	for _, a := range req.Publication.Artifacts {
		ext := extensionOf(a)
		if ext == "" {
			return nil, fmt.Errorf("artifact %s has no extension", a.Path)
		}
		key := a.Classifier + "." + ext
		if seen[key] {
			return nil, fmt.Errorf("publication %s declares classifier %q with extension %q twice", req.Publication.Name, a.Classifier, ext)
		}
		seen[key] = true

		//nolint:gosec // G304: artifact paths come from the workspace descriptor
		data, err := os.ReadFile(artifactPath(req.Project, a))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("artifact %s does not exist; build it before publishing", a.Path)
			}
			return nil, fmt.Errorf("failed to read artifact %s: %w", a.Path, err)
		}
		files = append(files, artifactFile{artifact: a, extension: ext, data: data})
	}
	return files, nil
}

// primaryExtension is the extension of the first unclassified artifact,
// used as the POM packaging.
func primaryExtension(files []artifactFile) string {
	for _, f := range files {
		if f.artifact.Classifier == "" {
			return f.extension
		}
	}
	return "pom"
}
