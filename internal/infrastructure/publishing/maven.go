package publishing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/monoforge/monoforge/internal/application/ports"
	"github.com/monoforge/monoforge/internal/domain/entities"
)

// DefaultHTTPTimeout bounds a single upload request.
const DefaultHTTPTimeout = 60 * time.Second

// MavenPublisher uploads a publication, its POM, and checksum sidecars
// in Maven 2 layout. Local repositories are written to disk; the other
// kinds are uploaded with HTTP PUT.
type MavenPublisher struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// MavenOption configures a MavenPublisher.
type MavenOption func(*MavenPublisher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) MavenOption {
	return func(p *MavenPublisher) {
		p.client = c
	}
}

// WithUserAgent sets the User-Agent of uploads.
func WithUserAgent(ua string) MavenOption {
	return func(p *MavenPublisher) {
		p.userAgent = ua
	}
}

// WithMavenLogger sets the logger.
func WithMavenLogger(l *slog.Logger) MavenOption {
	return func(p *MavenPublisher) {
		p.logger = l
	}
}

// NewMavenPublisher creates a publisher for Maven-layout repositories.
func NewMavenPublisher(opts ...MavenOption) *MavenPublisher {
	p := &MavenPublisher{
		client: &http.Client{Timeout: DefaultHTTPTimeout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ ports.Publisher = (*MavenPublisher)(nil)

// Publish uploads every artifact followed by the POM. Each file is
// followed by its checksums.
func (p *MavenPublisher) Publish(ctx context.Context, req ports.PublishRequest) (*ports.PublishResult, error) {
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

	t, err := p.transportFor(req)
	if err != nil {
		return nil, err
	}

	type upload struct {
		name string
		data []byte
	}
	uploads := make([]upload, 0, len(files)+1)
	for _, f := range files {
		uploads = append(uploads, upload{name: coords.FileName(f.artifact.Classifier, f.extension), data: f.data})
	}
	uploads = append(uploads, upload{name: coords.FileName("", "pom"), data: pom})

	result := &ports.PublishResult{}
	for _, u := range uploads {
		remote := coords.Dir() + "/" + u.name
		location, err := t.Put(ctx, remote, u.data)
		if err != nil {
			return nil, err
		}
		result.Locations = append(result.Locations, location)

		for _, sum := range checksums(u.data) {
			if _, err := t.Put(ctx, remote+"."+sum.ext, []byte(sum.sum)); err != nil {
				return nil, err
			}
		}
		p.logger.Debug("uploaded", "file", remote, "bytes", len(u.data))
	}

	result.Output = fmt.Sprintf("published %s to %s (%d files)", coords, req.Repository.Name, len(uploads))
	return result, nil
}

func (p *MavenPublisher) transportFor(req ports.PublishRequest) (transport, error) {
	repo := req.Repository
	target := repo.URLFor(req.Project.Version)

	if repo.Kind == entities.KindLocal {
		base := ""
		if req.Workspace != nil {
			base = req.Workspace.RootDir
		}
		root, err := localRoot(target, base)
		if err != nil {
			return nil, err
		}
		return &dirTransport{root: root}, nil
	}

	if target == "" {
		return nil, fmt.Errorf("repository %s has no URL", repo.Name)
	}
	return &httpTransport{
		client:    p.client,
		baseURL:   target,
		creds:     req.Credentials,
		userAgent: p.userAgent,
	}, nil
}
