package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/monoforge/monoforge/internal/application/dto"
	"github.com/monoforge/monoforge/internal/infrastructure/output"
)

// releaseOptions are the flags of the release subcommands.
type releaseOptions struct {
	CommonOptions
	Repositories []string
	Parallel     int
	Timeout      time.Duration
	Retries      int
	DryRun       bool
}

var (
	releasePlanOpts = releaseOptions{CommonOptions: DefaultCommonOptions()}
	releaseRunOpts  = releaseOptions{CommonOptions: DefaultCommonOptions(), Timeout: 30 * time.Minute}
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Plan and run releases across every configured repository",
	Long: `Every project publication is published to every enabled repository by a
publish<Publication>PublicationTo<Repository>Repository task. The root
release task depends on one release<Publication> task per publication,
which in turn depends on the matching publish tasks.

A repository takes part when its when: condition holds, it is not
releases_only during a pre-release, and its credentials are set.`,
}

var releasePlanCmd = &cobra.Command{
	Use:   "plan [task]",
	Short: "Print the release graph in execution order",
	Example: `  monoforge release plan
  monoforge release plan releaseMaven --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: withContainer(runReleasePlan),
}

var releaseRunCmd = &cobra.Command{
	Use:   "run [task]",
	Short: "Publish every publication to every enabled repository",
	Example: `  monoforge release run
  monoforge release run releaseMaven --repository space --parallel 4
  monoforge release run --dry-run -P version=2.0.0`,
	Args: cobra.MaximumNArgs(1),
	RunE: withContainer(runReleaseRun),
}

func init() {
	factory := output.NewFormatterFactory()

	releasePlanOpts.RegisterFlags(releasePlanCmd)
	releasePlanOpts.RegisterOutputFlags(releasePlanCmd, factory.SupportedPlanFormats())
	releasePlanCmd.Flags().StringSliceVar(&releasePlanOpts.Repositories, "repository", nil,
		"Only publish to these repositories (comma-separated)")

	releaseRunOpts.RegisterFlags(releaseRunCmd)
	releaseRunOpts.RegisterOutputFlags(releaseRunCmd, factory.SupportedFormats())
	releaseRunCmd.Flags().StringSliceVar(&releaseRunOpts.Repositories, "repository", nil,
		"Only publish to these repositories (comma-separated)")
	releaseRunCmd.Flags().IntVar(&releaseRunOpts.Parallel, "parallel", 0,
		"Maximum concurrent publish tasks (0 = number of CPUs, 1 = sequential)")
	releaseRunCmd.Flags().DurationVar(&releaseRunOpts.Timeout, "timeout", releaseRunOpts.Timeout,
		"Timeout for the whole release (0 to disable)")
	releaseRunCmd.Flags().IntVar(&releaseRunOpts.Retries, "retries", 0,
		"Retries for publish tasks failing with a transient error")
	releaseRunCmd.Flags().BoolVar(&releaseRunOpts.DryRun, "dry-run", false,
		"Walk the release graph without publishing")

	releaseCmd.AddCommand(releasePlanCmd, releaseRunCmd)
	rootCmd.AddCommand(releaseCmd)
}

func (opts *releaseOptions) request(target string) (dto.ReleaseRequest, error) {
	ws, err := opts.WorkspaceOptions()
	if err != nil {
		return dto.ReleaseRequest{}, err
	}
	return dto.ReleaseRequest{
		Workspace:    ws,
		Target:       target,
		Repositories: opts.Repositories,
	}, nil
}

func runReleasePlan(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	releasePlanOpts.ApplyConfig(cmd)

	factory := output.NewFormatterFactory()
	if err := releasePlanOpts.ValidateFormat(factory.SupportedPlanFormats()); err != nil {
		return err
	}

	req, err := releasePlanOpts.request(firstArg(args))
	if err != nil {
		return err
	}

	resp, err := ctx.Container.ReleaseUseCase().Plan(ctx.Context, req)
	if err != nil {
		return err
	}

	w, closeOutput, err := releasePlanOpts.OpenOutput(cmd)
	if err != nil {
		return err
	}
	defer closeOutput()

	formatter, err := factory.CreatePlan(releasePlanOpts.Format, w, releasePlanOpts.FormatterOptions(w))
	if err != nil {
		return err
	}
	return formatter.FormatPlan(&resp.Plan)
}

func runReleaseRun(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	opts := &releaseRunOpts
	opts.ApplyConfig(cmd)

	factory := output.NewFormatterFactory()
	if err := opts.ValidateFormat(factory.SupportedFormats()); err != nil {
		return err
	}

	req, err := opts.request(firstArg(args))
	if err != nil {
		return err
	}

	publishing := ctx.Container.SystemConfig().Publishing
	req.Execution = dto.ExecutionOptions{
		Parallel:      opts.Parallel,
		Timeout:       opts.Timeout,
		DryRun:        opts.DryRun,
		Retries:       opts.Retries,
		MaxOutputSize: publishing.MaxOutputSizeBytes,
	}
	if !cmd.Flags().Changed("parallel") && viper.IsSet("parallel") {
		req.Execution.Parallel = viper.GetInt("parallel")
	}
	if !cmd.Flags().Changed("retries") {
		req.Execution.Retries = publishing.Retries
	}
	if req.Execution.Parallel < 0 || req.Execution.Retries < 0 {
		return fmt.Errorf("--parallel and --retries must not be negative")
	}

	resp, err := ctx.Container.ReleaseUseCase().Run(ctx.Context, req)
	if err != nil {
		return err
	}

	w, closeOutput, err := opts.OpenOutput(cmd)
	if err != nil {
		return err
	}
	defer closeOutput()

	formatter, err := factory.Create(opts.Format, w, opts.FormatterOptions(w))
	if err != nil {
		return err
	}
	if err := formatter.Format(resp.Report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if resp.Report.HasFailures() {
		s := resp.Report.Summary
		return fmt.Errorf("release failed: %d succeeded, %d failed, %d skipped", s.Success, s.Failed, s.Skipped)
	}
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
