package main

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/values"
	"github.com/monoforge/monoforge/internal/infrastructure/config"
	"github.com/monoforge/monoforge/internal/infrastructure/filesystem"
	"github.com/monoforge/monoforge/internal/templates"
)

// InitOptions holds the answers used to scaffold monoforge.yaml.
type InitOptions struct {
	Name          string
	Group         string
	Version       string
	Description   string
	Maturity      string
	VCSURL        string
	License       string
	Repositories  []string
	Projects      []string
	NoReadme      bool
	NoInteractive bool
	Force         bool
}

var initOpts = InitOptions{Version: "0.1.0", Maturity: "EXPERIMENTAL"}

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Scaffold a monoforge.yaml workspace file",
	Long: `Create monoforge.yaml in the given directory (default: current directory).
Answers are collected through interactive prompts unless --no-interactive is
set or stdin is not a terminal, in which case flags are used as given.

Repositories are given as name:kind[:url], for example
space:space:https://maven.pkg.jetbrains.space/acme/p/main/maven.`,
	Example: `  monoforge init
  monoforge init toolkit --no-interactive --name toolkit --group dev.acme \
      --project core --project io --repository local:local:build/repo`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initOpts.Name, "name", "", "Root project name (default: directory name)")
	initCmd.Flags().StringVar(&initOpts.Group, "group", "", "Maven group of all projects")
	initCmd.Flags().StringVar(&initOpts.Version, "version", initOpts.Version, "Workspace version")
	initCmd.Flags().StringVar(&initOpts.Description, "description", "", "Root project description")
	initCmd.Flags().StringVar(&initOpts.Maturity, "maturity", initOpts.Maturity, "PROTOTYPE, EXPERIMENTAL, DEVELOPMENT or STABLE")
	initCmd.Flags().StringVar(&initOpts.VCSURL, "vcs-url", "", "Source repository URL")
	initCmd.Flags().StringVar(&initOpts.License, "license", "", "License name")
	initCmd.Flags().StringArrayVar(&initOpts.Repositories, "repository", nil, "Repository as name:kind[:url] (repeatable)")
	initCmd.Flags().StringArrayVar(&initOpts.Projects, "project", nil, "Subproject directory (repeatable)")
	initCmd.Flags().BoolVar(&initOpts.NoReadme, "no-default-readme", false, "Disable the default readme templates")
	initCmd.Flags().BoolVar(&initOpts.NoInteractive, "no-interactive", false, "Disable interactive prompts")
	initCmd.Flags().BoolVar(&initOpts.Force, "force", false, "Overwrite an existing monoforge.yaml")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	target := filepath.Join(abs, config.WorkspaceFileName)
	if _, err := os.Stat(target); err == nil && !initOpts.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", target)
	}

	opts := initOpts
	if opts.Name == "" {
		opts.Name = filepath.Base(abs)
	}

	if !opts.NoInteractive && isInteractive() {
		if err := promptInit(&opts); err != nil {
			return err
		}
	}

	data, err := scaffoldData(opts)
	if err != nil {
		return err
	}

	content, err := templates.RenderWorkspace(data)
	if err != nil {
		return err
	}

	for _, p := range data.Projects {
		if err := os.MkdirAll(filepath.Join(abs, filepath.FromSlash(p)), 0o750); err != nil {
			return fmt.Errorf("failed to create project directory %s: %w", p, err)
		}
	}
	if err := filesystem.NewDocumentStore().WriteDocument(target, content); err != nil {
		return err
	}

	// The scaffold must load like any hand-written workspace.
	if _, err := config.NewWorkspaceLoader().LoadWorkspace(cmd.Context(), target, nil); err != nil {
		return fmt.Errorf("generated %s does not load: %w", target, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Workspace saved to %s\n", target)
	fmt.Fprintln(cmd.OutOrStdout(), "Run 'monoforge check' to validate it and 'monoforge readme' to generate README files.")
	return nil
}

// scaffoldData validates the answers and converts them for the template.
func scaffoldData(opts InitOptions) (templates.ScaffoldData, error) {
	maturity, err := values.ParseMaturity(opts.Maturity)
	if err != nil {
		return templates.ScaffoldData{}, err
	}

	data := templates.ScaffoldData{
		Name:          strings.TrimSpace(opts.Name),
		Group:         strings.TrimSpace(opts.Group),
		Version:       strings.TrimSpace(opts.Version),
		Description:   strings.TrimSpace(opts.Description),
		Maturity:      maturity.String(),
		DefaultReadme: !opts.NoReadme,
		VCSURL:        strings.TrimSpace(opts.VCSURL),
		License:       strings.TrimSpace(opts.License),
	}
	if data.Name == "" || strings.ContainsAny(data.Name, ":/\\ ") {
		return data, fmt.Errorf("invalid project name %q", opts.Name)
	}

	for _, spec := range opts.Repositories {
		repo, err := parseRepositorySpec(spec)
		if err != nil {
			return data, err
		}
		data.Repositories = append(data.Repositories, repo)
	}

	for _, p := range opts.Projects {
		dir := path.Clean(filepath.ToSlash(strings.TrimSpace(p)))
		if dir == "." || path.IsAbs(dir) || strings.HasPrefix(dir, "..") {
			return data, fmt.Errorf("invalid project directory %q", p)
		}
		data.Projects = append(data.Projects, dir)
	}
	return data, nil
}

// parseRepositorySpec parses name:kind[:url]. The url may contain colons.
func parseRepositorySpec(spec string) (templates.ScaffoldRepository, error) {
	parts := strings.SplitN(strings.TrimSpace(spec), ":", 3)
	if len(parts) < 2 {
		return templates.ScaffoldRepository{}, fmt.Errorf("invalid repository %q: expected name:kind[:url]", spec)
	}

	name, err := values.NewRepositoryName(parts[0])
	if err != nil {
		return templates.ScaffoldRepository{}, err
	}
	kind, err := entities.ParseRepositoryKind(parts[1])
	if err != nil {
		return templates.ScaffoldRepository{}, err
	}
	if kind == entities.KindCommand {
		return templates.ScaffoldRepository{}, errors.New("command repositories need a command; add them to monoforge.yaml by hand")
	}

	repo := templates.ScaffoldRepository{Name: name.String(), Kind: string(kind)}
	if len(parts) == 3 {
		repo.URL = strings.TrimSpace(parts[2])
	}
	if kind.RequiresURL() && repo.URL == "" {
		return repo, fmt.Errorf("repository %s of kind %s requires a url", name, kind)
	}
	return repo, nil
}

// promptInit asks for every answer not given on the command line.
func promptInit(opts *InitOptions) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Value(&opts.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Group").
				Description("Maven group shared by all projects, e.g. dev.acme").
				Value(&opts.Group),
			huh.NewInput().
				Title("Version").
				Value(&opts.Version),
			huh.NewInput().
				Title("Description").
				Value(&opts.Description),
			huh.NewSelect[string]().
				Title("Maturity").
				Options(
					huh.NewOption("Prototype", "PROTOTYPE"),
					huh.NewOption("Experimental", "EXPERIMENTAL"),
					huh.NewOption("Development", "DEVELOPMENT"),
					huh.NewOption("Stable", "STABLE"),
				).
				Value(&opts.Maturity),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Source repository URL").
				Description("Required by github and sonatype repositories").
				Value(&opts.VCSURL),
			huh.NewInput().
				Title("License").
				Value(&opts.License),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if len(opts.Projects) == 0 {
		var projects string
		err := huh.NewInput().
			Title("Subproject directories").
			Description("Comma-separated, e.g. core, io").
			Value(&projects).
			Run()
		if err != nil {
			return err
		}
		opts.Projects = splitList(projects)
	}

	if len(opts.Repositories) == 0 {
		var repos string
		err := huh.NewInput().
			Title("Repositories").
			Description("Comma-separated name:kind[:url], e.g. local:local:build/repo").
			Value(&repos).
			Run()
		if err != nil {
			return err
		}
		opts.Repositories = splitList(repos)
	}

	useDefault := !opts.NoReadme
	if err := huh.NewConfirm().
		Title("Use the default readme templates?").
		Value(&useDefault).
		Run(); err != nil {
		return err
	}
	opts.NoReadme = !useDefault
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// isInteractive checks if stdin is a terminal.
func isInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
