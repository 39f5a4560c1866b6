package publishing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/monoforge/monoforge/internal/application/ports"
)

// transport stores one file under a repository-relative path.
type transport interface {
	Put(ctx context.Context, path string, data []byte) (location string, err error)
}

// StatusError is a non-2xx upload response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Retryable reports whether the server may accept the upload later.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

const maxErrorBody = 512

// httpTransport uploads with HTTP PUT, the Maven repository protocol.
type httpTransport struct {
	client    *http.Client
	baseURL   string
	creds     ports.Credentials
	userAgent string
}

func (t *httpTransport) Put(ctx context.Context, path string, data []byte) (string, error) {
	target := strings.TrimRight(t.baseURL, "/") + "/" + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("invalid upload URL %s: %w", target, err)
	}
	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Type", "application/octet-stream")
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if !t.creds.IsEmpty() {
		req.SetBasicAuth(t.creds.User, t.creds.Token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("PUT %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{
			Method:     http.MethodPut,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return target, nil
}

// dirTransport writes into a local Maven repository directory.
type dirTransport struct {
	root string
}

func (t *dirTransport) Put(ctx context.Context, path string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target := filepath.Join(t.root, filepath.FromSlash(path))
	//nolint:gosec // G301: repository directories are shared with build tools
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
	}
	//nolint:gosec // G306: published artifacts are world-readable
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	return target, nil
}

// localRoot turns a repository URL into a directory. Relative paths are
// resolved against base.
func localRoot(raw, base string) (string, error) {
	path := raw
	if strings.HasPrefix(raw, "file:") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("invalid repository URL %q: %w", raw, err)
		}
		path = u.Path
		if path == "" {
			path = u.Opaque
		}
	}
	if path == "" {
		return "", fmt.Errorf("repository URL %q has no path", raw)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	return filepath.Clean(path), nil
}
