// Package filesystem stores generated documents on disk.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/monoforge/monoforge/internal/application/ports"
)

// DocumentStore provides file-based persistence for generated readmes.
type DocumentStore struct {
	perm fs.FileMode
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{perm: 0o644}
}

var _ ports.DocumentStore = (*DocumentStore)(nil)

// ReadDocument returns the content of path. A missing file is not an error.
func (s *DocumentStore) ReadDocument(path string) (string, bool, error) {
	//nolint:gosec // G304: document paths are derived from project directories
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), true, nil
}

// WriteDocument replaces path with content. The file is written next to
// its target and renamed so readers never see a partial document.
func (s *DocumentStore) WriteDocument(path, content string) error {
	dir := filepath.Dir(path)
	//nolint:gosec // G301: 0o755 is standard for project directories
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, s.perm); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
