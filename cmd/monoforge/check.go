package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/monoforge/monoforge/internal/application/dto"
	"github.com/monoforge/monoforge/internal/infrastructure/output"
)

var checkOpts = DefaultCommonOptions()

// checkCmd reports workspace diagnostics.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report workspace problems without changing anything",
	Long: `Load the workspace and report diagnostics: duplicate feature ids, missing
or broken readme templates, subprojects left out of module summaries,
repositories that will not publish, and versions that are not semantic
versions.

Only error diagnostics make the command fail.`,
	Example: `  monoforge check
  monoforge check --format sarif -o monoforge.sarif`,
	Args: cobra.NoArgs,
	RunE: withContainer(runCheck),
}

func init() {
	checkOpts.RegisterFlags(checkCmd)
	checkOpts.RegisterOutputFlags(checkCmd, output.NewFormatterFactory().SupportedFormats())

	rootCmd.AddCommand(checkCmd)
}

func runCheck(ctx *CommandContext, cmd *cobra.Command, _ []string) error {
	checkOpts.ApplyConfig(cmd)

	factory := output.NewFormatterFactory()
	if err := checkOpts.ValidateFormat(factory.SupportedFormats()); err != nil {
		return err
	}

	ws, err := checkOpts.WorkspaceOptions()
	if err != nil {
		return err
	}

	resp, err := ctx.Container.CheckWorkspaceUseCase().Execute(ctx.Context, dto.CheckWorkspaceRequest{Workspace: ws})
	if err != nil {
		return err
	}

	w, closeOutput, err := checkOpts.OpenOutput(cmd)
	if err != nil {
		return err
	}
	defer closeOutput()

	formatter, err := factory.Create(checkOpts.Format, w, checkOpts.FormatterOptions(w))
	if err != nil {
		return err
	}
	if err := formatter.Format(resp.Report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if s := resp.Report.Summary; s.Errors > 0 {
		return fmt.Errorf("check failed: %d errors, %d warnings, %d notes", s.Errors, s.Warnings, s.Notes)
	}
	return nil
}
