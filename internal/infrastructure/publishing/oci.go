package publishing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/retry"

	"github.com/monoforge/monoforge/internal/application/ports"
)

// Media types of published OCI artifacts.
const (
	ArtifactType      = "application/vnd.monoforge.publication.v1"
	mediaTypePOM      = "application/vnd.maven.pom+xml"
	mediaTypeArchive  = "application/java-archive"
	mediaTypeGeneric  = "application/octet-stream"
	annotationCoords  = "dev.monoforge.coordinates"
	annotationProject = "dev.monoforge.project"
)

// OCIPublisher pushes a publication as one OCI artifact tagged with the
// project version. Every file becomes a layer titled with its Maven file name.
type OCIPublisher struct {
	logger    *slog.Logger
	newTarget func(ref string, req ports.PublishRequest) (oras.Target, error)
}

// NewOCIPublisher creates a publisher for OCI registries.
func NewOCIPublisher() *OCIPublisher {
	return &OCIPublisher{
		logger:    slog.Default(),
		newTarget: remoteTarget,
	}
}

var _ ports.Publisher = (*OCIPublisher)(nil)

// Publish packs and pushes the artifact.
func (p *OCIPublisher) Publish(ctx context.Context, req ports.PublishRequest) (*ports.PublishResult, error) {
	coords, err := coordinatesOf(req)
	if err != nil {
		return nil, err
	}
	files, err := readArtifacts(req)
	if err != nil {
		return nil, err
	}
	pom, err := BuildPOM(req.Workspace, req.Project, coords, primaryExtension(files))
	if err != nil {
		return nil, err
	}

	store := memory.New()
	layers := make([]ocispec.Descriptor, 0, len(files)+1)

	push := func(name, mediaType string, data []byte) error {
		desc, err := oras.PushBytes(ctx, store, mediaType, data)
		if err != nil {
			return fmt.Errorf("failed to stage %s: %w", name, err)
		}
		desc.Annotations = map[string]string{ocispec.AnnotationTitle: name}
		layers = append(layers, desc)
		return nil
	}

	for _, f := range files {
		if err := push(coords.FileName(f.artifact.Classifier, f.extension), layerMediaType(f.extension), f.data); err != nil {
			return nil, err
		}
	}
	if err := push(coords.FileName("", "pom"), mediaTypePOM, pom); err != nil {
		return nil, err
	}

	annotations := map[string]string{
		annotationCoords:          coords.String(),
		annotationProject:         req.Project.Path.String(),
		ocispec.AnnotationVersion: coords.Version,
		ocispec.AnnotationTitle:   coords.ArtifactID,
	}
	if src := sourceURL(req); src != "" {
		annotations[ocispec.AnnotationSource] = src
	}

	manifest, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              layers,
		ManifestAnnotations: annotations,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pack manifest: %w", err)
	}

	tag := OCITag(coords.Version)
	if err := store.Tag(ctx, manifest, tag); err != nil {
		return nil, fmt.Errorf("failed to tag manifest: %w", err)
	}

	ref, err := ociReference(req.Repository.URL, coords.ArtifactID)
	if err != nil {
		return nil, err
	}
	target, err := p.newTarget(ref, req)
	if err != nil {
		return nil, err
	}

	if _, err := oras.Copy(ctx, store, tag, target, tag, oras.DefaultCopyOptions); err != nil {
		return nil, fmt.Errorf("failed to push %s:%s: %w", ref, tag, err)
	}

	location := fmt.Sprintf("%s:%s@%s", ref, tag, manifest.Digest)
	p.logger.Debug("pushed OCI artifact", "reference", location, "layers", len(layers))
	return &ports.PublishResult{
		Locations: []string{location},
		Output:    fmt.Sprintf("pushed %s as %s", coords, location),
	}, nil
}

// OCITag converts a version into a valid tag; build metadata separators
// are not allowed in tags.
func OCITag(version string) string {
	return strings.ReplaceAll(version, "+", "_")
}

func layerMediaType(ext string) string {
	switch ext {
	case "jar", "war", "aar":
		return mediaTypeArchive
	case "pom":
		return mediaTypePOM
	default:
		return mediaTypeGeneric
	}
}

func sourceURL(req ports.PublishRequest) string {
	if req.Workspace != nil && req.Workspace.VCS != nil {
		return req.Workspace.VCS.URL
	}
	return ""
}

// ociReference builds "registry/namespace/artifact" from the repository URL.
func ociReference(raw, artifactID string) (string, error) {
	ref := strings.TrimPrefix(raw, "oci://")
	ref = strings.TrimPrefix(ref, "https://")
	ref = strings.TrimPrefix(ref, "http://")
	ref = strings.TrimRight(ref, "/")
	if ref == "" {
		return "", fmt.Errorf("invalid OCI repository URL %q", raw)
	}
	return ref + "/" + artifactID, nil
}

func remoteTarget(ref string, req ports.PublishRequest) (oras.Target, error) {
	repo, err := remote.NewRepository(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid OCI reference %s: %w", ref, err)
	}
	repo.PlainHTTP = strings.HasPrefix(req.Repository.URL, "http://")

	client := &auth.Client{
		Client: retry.DefaultClient,
		Cache:  auth.NewCache(),
	}
	if !req.Credentials.IsEmpty() {
		client.Credential = auth.StaticCredential(repo.Reference.Registry, auth.Credential{
			Username: req.Credentials.User,
			Password: req.Credentials.Token,
		})
	}
	repo.Client = client
	return repo, nil
}
