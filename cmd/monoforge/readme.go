package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/monoforge/monoforge/internal/application/dto"
)

var readmeOpts = struct {
	CommonOptions
	DryRun bool
	Check  bool
}{CommonOptions: DefaultCommonOptions()}

// readmeCmd renders README.md files from project metadata.
var readmeCmd = &cobra.Command{
	Use:   "readme [project...]",
	Short: "Generate README.md files from project metadata",
	Long: `Render the readme template of every project carrying readme metadata and
write README.md into its directory. Subprojects are rendered first and the
workspace root last, so the root module summary sees every subproject.

Projects whose template is missing or fails to render are skipped with a
warning. Use --check in CI to fail when a README.md is out of date.`,
	Example: `  monoforge readme
  monoforge readme :core :io --dry-run
  monoforge readme --check -P version=1.4.0`,
	RunE: withContainer(runReadme),
}

func init() {
	readmeOpts.RegisterFlags(readmeCmd)
	readmeCmd.Flags().BoolVar(&readmeOpts.DryRun, "dry-run", false, "Print rendered documents instead of writing them")
	readmeCmd.Flags().BoolVar(&readmeOpts.Check, "check", false, "Report out of date README.md files and exit non-zero")
	readmeCmd.MarkFlagsMutuallyExclusive("dry-run", "check")

	rootCmd.AddCommand(readmeCmd)
}

//nolint:errcheck // Best-effort terminal output
func runReadme(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	readmeOpts.ApplyConfig(cmd)

	ws, err := readmeOpts.WorkspaceOptions()
	if err != nil {
		return err
	}

	resp, err := ctx.Container.GenerateReadmeUseCase().Execute(ctx.Context, dto.GenerateReadmeRequest{
		Workspace: ws,
		DryRun:    readmeOpts.DryRun,
		Check:     readmeOpts.Check,
		Projects:  args,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case readmeOpts.DryRun:
		printDocuments(out, resp)
		return nil
	case readmeOpts.Check:
		return reportDrift(out, resp)
	}

	written := 0
	for _, doc := range resp.Documents {
		if doc.Written {
			written++
			fmt.Fprintf(out, "✓ %s\n", relPath(doc.Path))
		}
	}
	fmt.Fprintf(out, "%d written, %d up to date, %d skipped\n",
		written, len(resp.Documents)-written, len(resp.Skipped))
	return nil
}

//nolint:errcheck // Best-effort terminal output
func printDocuments(out io.Writer, resp *dto.GenerateReadmeResponse) {
	for _, doc := range resp.Documents {
		fmt.Fprintf(out, "==> %s (%s)\n", relPath(doc.Path), doc.Project)
		fmt.Fprintln(out, doc.Content)
	}
	for _, s := range resp.Skipped {
		fmt.Fprintf(out, "==> skipped %s: %s\n", s.Project, s.Reason)
	}
}

// reportDrift lists stale documents and fails when there are any.
//
//nolint:errcheck // Best-effort terminal output
func reportDrift(out io.Writer, resp *dto.GenerateReadmeResponse) error {
	stale := resp.OutOfDate()
	if len(stale) == 0 {
		fmt.Fprintf(out, "All %d README.md files are up to date\n", len(resp.Documents))
		return nil
	}
	for _, path := range stale {
		fmt.Fprintf(out, "✗ %s is out of date\n", relPath(path))
	}
	return fmt.Errorf("%d README.md files are out of date; run 'monoforge readme'", len(stale))
}

// relPath shortens path relative to the working directory when it is below it.
func relPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
