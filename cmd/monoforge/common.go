package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/monoforge/monoforge/internal/application/dto"
	"github.com/monoforge/monoforge/internal/infrastructure/output"
)

// CommonOptions contains flags shared across workspace commands.
type CommonOptions struct {
	// Workspace is the monoforge.yaml file or its directory.
	Workspace string
	// Properties are -P key=value build property overrides.
	Properties []string

	// Output
	Format  string
	Output  string
	NoColor bool
}

// DefaultCommonOptions returns sensible defaults.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Workspace: ".",
		Format:    "table",
	}
}

// RegisterFlags adds the workspace flags to a cobra command.
func (opts *CommonOptions) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&opts.Workspace, "workspace", "w", opts.Workspace,
		"Workspace directory or monoforge.yaml file")
	cmd.Flags().StringArrayVarP(&opts.Properties, "property", "P", nil,
		"Override a build property (key=value, repeatable)")
}

// RegisterOutputFlags adds the output flags to a cobra command.
func (opts *CommonOptions) RegisterOutputFlags(cmd *cobra.Command, formats []string) {
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		"Output format: "+strings.Join(formats, ", "))
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "",
		"Output file path (default: stdout)")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false,
		"Disable colored table output")
}

// ApplyConfig fills flags the user did not set from the tool config.
func (opts *CommonOptions) ApplyConfig(cmd *cobra.Command) {
	if f := cmd.Flags().Lookup("workspace"); f != nil && !f.Changed && viper.IsSet("workspace") {
		opts.Workspace = viper.GetString("workspace")
	}
	if f := cmd.Flags().Lookup("format"); f != nil && !f.Changed && viper.IsSet("format") {
		opts.Format = viper.GetString("format")
	}
}

// ValidateFormat checks the format against the supported list.
func (opts *CommonOptions) ValidateFormat(formats []string) error {
	for _, f := range formats {
		if opts.Format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format: %s (valid: %s)", opts.Format, strings.Join(formats, ", "))
}

// WorkspaceOptions parses the workspace flags.
func (opts *CommonOptions) WorkspaceOptions() (dto.WorkspaceOptions, error) {
	props, err := parseProperties(opts.Properties)
	if err != nil {
		return dto.WorkspaceOptions{}, err
	}
	return dto.WorkspaceOptions{
		WorkspacePath: opts.Workspace,
		Properties:    props,
	}, nil
}

// OpenOutput returns the writer selected by --output. The returned close
// function is never nil.
func (opts *CommonOptions) OpenOutput(cmd *cobra.Command) (io.Writer, func(), error) {
	if opts.Output == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	//nolint:gosec // G304: User-controlled output file path is intentional
	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}

// FormatterOptions derives formatter options for writer w.
func (opts *CommonOptions) FormatterOptions(w io.Writer) output.Options {
	return output.Options{
		Indent:       true,
		WorkspaceDir: workspaceDir(opts.Workspace),
		Color:        !opts.NoColor && isTerminal(w),
	}
}

// parseProperties turns key=value pairs into a map. Later pairs win.
func parseProperties(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	props := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property %q: expected key=value", pair)
		}
		props[key] = value
	}
	return props, nil
}

// workspaceDir returns the directory of a workspace argument.
func workspaceDir(path string) string {
	if path == "" {
		return "."
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}

// isTerminal reports whether w is a character device. NO_COLOR disables
// color everywhere.
func isTerminal(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
