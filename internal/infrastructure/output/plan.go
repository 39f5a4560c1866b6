package output

import (
	"fmt"
	"strings"

	"github.com/monoforge/monoforge/internal/application/dto"
)

// FormatPlan writes the release plan level by level.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatPlan(plan *dto.ReleasePlan) error {
	fmt.Fprintln(f.writer, f.rule())
	fmt.Fprintf(f.writer, "Release plan: %s", f.colorize(plan.Workspace, colorBold))
	if plan.Version != "" {
		fmt.Fprintf(f.writer, " (v%s)", plan.Version)
	}
	fmt.Fprintln(f.writer)
	fmt.Fprintf(f.writer, "Target: %s\n", plan.Target)
	fmt.Fprintln(f.writer)

	if len(plan.Repositories) > 0 {
		fmt.Fprintln(f.writer, f.colorize("Repositories:", colorBold))
		for _, repo := range plan.Repositories {
			symbol, color := "✓", colorGreen
			if !repo.Enabled {
				symbol, color = "⊘", colorGray
			}
			fmt.Fprintf(f.writer, "  %s %s (%s)", f.colorize(symbol, color), f.colorize(repo.Name, color), repo.Kind)
			if repo.URL != "" {
				fmt.Fprintf(f.writer, " %s", repo.URL)
			}
			fmt.Fprintln(f.writer)
			if repo.Reason != "" {
				fmt.Fprintf(f.writer, "      %s\n", f.colorize(repo.Reason, colorYellow))
			}
		}
		fmt.Fprintln(f.writer)
	}

	fmt.Fprintln(f.writer, f.colorize("Tasks:", colorBold))
	fmt.Fprintln(f.writer, f.rule())
	for _, level := range plan.Levels {
		fmt.Fprintf(f.writer, "%s\n", f.colorize(fmt.Sprintf("Level %d", level.Level), colorCyan))
		for _, task := range level.Tasks {
			fmt.Fprintf(f.writer, "  %s", task.Path)
			if task.Description != "" {
				fmt.Fprintf(f.writer, "  %s", f.colorize(task.Description, colorGray))
			}
			fmt.Fprintln(f.writer)
			if len(task.DependsOn) > 0 {
				fmt.Fprintf(f.writer, "      after %s\n", strings.Join(task.DependsOn, ", "))
			}
		}
	}
	fmt.Fprintln(f.writer, f.rule())
	fmt.Fprintf(f.writer, "%d tasks in %d levels\n", plan.TaskCount(), len(plan.Levels))
	return nil
}

// FormatPlan writes the release plan as JSON.
func (f *JSONFormatter) FormatPlan(plan *dto.ReleasePlan) error {
	return f.encode(plan)
}

// FormatPlan writes the release plan as YAML.
func (f *YAMLFormatter) FormatPlan(plan *dto.ReleasePlan) error {
	return f.encode(plan)
}
