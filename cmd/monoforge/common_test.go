package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProperties(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr string
	}{
		{
			name: "empty",
		},
		{
			name:  "single",
			pairs: []string{"version=2.0.0"},
			want:  map[string]string{"version": "2.0.0"},
		},
		{
			name:  "value with equals",
			pairs: []string{"flags=-a=b"},
			want:  map[string]string{"flags": "-a=b"},
		},
		{
			name:  "empty value",
			pairs: []string{"suffix="},
			want:  map[string]string{"suffix": ""},
		},
		{
			name:  "later wins",
			pairs: []string{"version=1", "version=2"},
			want:  map[string]string{"version": "2"},
		},
		{
			name:    "missing equals",
			pairs:   []string{"version"},
			wantErr: `invalid property "version": expected key=value`,
		},
		{
			name:    "empty key",
			pairs:   []string{"=1.0"},
			wantErr: "expected key=value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseProperties(tt.pairs)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommonOptions_ValidateFormat(t *testing.T) {
	t.Parallel()

	formats := []string{"table", "json", "yaml"}

	opts := CommonOptions{Format: "json"}
	assert.NoError(t, opts.ValidateFormat(formats))

	opts.Format = "sarif"
	err := opts.ValidateFormat(formats)
	require.Error(t, err)
	assert.Equal(t, "invalid format: sarif (valid: table, json, yaml)", err.Error())
}

func TestCommonOptions_WorkspaceOptions(t *testing.T) {
	t.Parallel()

	opts := CommonOptions{Workspace: "toolkit", Properties: []string{"version=3.1.0"}}
	ws, err := opts.WorkspaceOptions()
	require.NoError(t, err)
	assert.Equal(t, "toolkit", ws.WorkspacePath)
	assert.Equal(t, map[string]string{"version": "3.1.0"}, ws.Properties)

	opts.Properties = []string{"broken"}
	_, err = opts.WorkspaceOptions()
	assert.Error(t, err)
}

func TestCommonOptions_OpenOutput(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	opts := CommonOptions{}
	w, closeFn, err := opts.OpenOutput(cmd)
	require.NoError(t, err)
	closeFn()
	assert.Same(t, &buf, w)

	opts.Output = filepath.Join(t.TempDir(), "report.json")
	w, closeFn, err = opts.OpenOutput(cmd)
	require.NoError(t, err)
	_, err = w.Write([]byte("{}"))
	require.NoError(t, err)
	closeFn()

	data, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestWorkspaceDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "monoforge.yaml")
	require.NoError(t, os.WriteFile(file, []byte("name: x\n"), 0o600))

	assert.Equal(t, ".", workspaceDir(""))
	assert.Equal(t, dir, workspaceDir(dir))
	assert.Equal(t, dir, workspaceDir(file))
	// Missing paths are returned unchanged.
	assert.Equal(t, "missing", workspaceDir("missing"))
}

func TestFormatterOptions_NoColorForBuffers(t *testing.T) {
	t.Parallel()

	opts := CommonOptions{Workspace: "."}
	fo := opts.FormatterOptions(&bytes.Buffer{})
	assert.True(t, fo.Indent)
	assert.False(t, fo.Color)
	assert.Equal(t, ".", fo.WorkspaceDir)
}

//nolint:paralleltest // Mutates the global viper instance
func TestCommonOptions_ApplyConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("workspace", "from-config")
	viper.Set("format", "json")

	t.Run("config fills unset flags", func(t *testing.T) {
		opts := DefaultCommonOptions()
		cmd := &cobra.Command{}
		opts.RegisterFlags(cmd)
		opts.RegisterOutputFlags(cmd, []string{"table", "json"})

		opts.ApplyConfig(cmd)
		assert.Equal(t, "from-config", opts.Workspace)
		assert.Equal(t, "json", opts.Format)
	})

	t.Run("flags win over config", func(t *testing.T) {
		opts := DefaultCommonOptions()
		cmd := &cobra.Command{}
		opts.RegisterFlags(cmd)
		opts.RegisterOutputFlags(cmd, []string{"table", "json"})
		require.NoError(t, cmd.Flags().Parse([]string{"--workspace", "cli", "--format", "table"}))

		opts.ApplyConfig(cmd)
		assert.Equal(t, "cli", opts.Workspace)
		assert.Equal(t, "table", opts.Format)
	})
}
