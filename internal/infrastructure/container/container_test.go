package container

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/monoforge/monoforge/internal/application/errors"
)

func TestNew_Defaults(t *testing.T) {
	c, err := New(Options{SystemConfigPath: filepath.Join(t.TempDir(), "missing.yaml"), Version: "1.0.0"})
	require.NoError(t, err)

	assert.NotNil(t, c.GenerateReadmeUseCase())
	assert.NotNil(t, c.ReleaseUseCase())
	assert.NotNil(t, c.CheckWorkspaceUseCase())
	assert.NotNil(t, c.WorkspaceLoader())
	assert.NotNil(t, c.Logger())
	assert.Empty(t, c.SystemConfig().Redaction.Patterns)
}

func TestNew_RedactionPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
redaction:
  disable_gitleaks: true
  patterns:
    - "INT-[A-Z0-9]{8}"
`), 0o600))

	c, err := New(Options{SystemConfigPath: path})
	require.NoError(t, err)
	assert.NotContains(t, c.Redactor().Redact("ticket INT-ABCD1234"), "INT-ABCD1234")
}

func TestNew_InvalidTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("publishing:\n  http_timeout: soon\n"), 0o600))

	_, err := New(Options{SystemConfigPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http_timeout")
}

func TestNew_BrokenSystemConfigIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("redaction: [unclosed"), 0o600))

	_, err := New(Options{SystemConfigPath: path})
	var cfgErr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "system config", cfgErr.Aspect)
	assert.Contains(t, err.Error(), "failed to parse system config")
}
