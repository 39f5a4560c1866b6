// Package output provides formatters for monoforge reports and release plans.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/monoforge/monoforge/internal/domain/execution"
	"github.com/monoforge/monoforge/internal/domain/values"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

const ruleWidth = 80

// TableFormatter formats reports and plans as human-readable text.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true,
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

func (f *TableFormatter) rule() string {
	return f.colorize(strings.Repeat("─", ruleWidth), colorGray)
}

// Format writes the report as a table.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) Format(report *execution.Report) error {
	fmt.Fprintln(f.writer, f.rule())
	title := "Release"
	if report.Kind == execution.KindCheck {
		title = "Check"
	}
	if report.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintf(f.writer, "%s: %s", title, f.colorize(report.Workspace, colorBold))
	if report.Version != "" {
		fmt.Fprintf(f.writer, " (v%s)", report.Version)
	}
	fmt.Fprintln(f.writer)
	fmt.Fprintf(f.writer, "Executed: %s\n", report.StartTime.Format(time.RFC3339))
	fmt.Fprintf(f.writer, "Duration: %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintln(f.writer)

	if len(report.Items) == 0 {
		if report.Kind == execution.KindCheck {
			fmt.Fprintln(f.writer, f.colorize("No problems found.", colorGreen))
		} else {
			fmt.Fprintln(f.writer, "No tasks executed.")
		}
		return nil
	}

	heading := "Tasks:"
	if report.Kind == execution.KindCheck {
		heading = "Diagnostics:"
	}
	fmt.Fprintln(f.writer, f.colorize(heading, colorBold))
	fmt.Fprintln(f.writer, f.rule())

	for _, item := range report.Items {
		if report.Kind == execution.KindCheck {
			f.formatDiagnostic(item)
		} else {
			f.formatTask(item)
		}
	}

	fmt.Fprintln(f.writer, f.rule())
	fmt.Fprintln(f.writer)

	f.formatSummary(report)
	return nil
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatTask(item execution.ItemResult) {
	symbol, color := f.getStatusInfo(item.Status)
	fmt.Fprintf(f.writer, "%s %s\n", f.colorize(symbol, color), f.colorize(item.ID, color))

	if item.Name != "" && item.Name != item.ID {
		fmt.Fprintf(f.writer, "  Description: %s\n", item.Name)
	}
	fmt.Fprintf(f.writer, "  Status: %s\n", f.colorize(strings.ToUpper(string(item.Status)), color))
	if item.Message != "" {
		fmt.Fprintf(f.writer, "  Message: %s\n", item.Message)
	}
	if item.SkipReason != "" && item.SkipReason != item.Message {
		fmt.Fprintf(f.writer, "  Skip Reason: %s\n", item.SkipReason)
	}
	if len(item.DependsOn) > 0 {
		fmt.Fprintf(f.writer, "  Depends On: %s\n", strings.Join(item.DependsOn, ", "))
	}
	fmt.Fprintf(f.writer, "  Duration: %s\n", item.Duration.Round(time.Millisecond))
	f.formatOutput(item)
	fmt.Fprintln(f.writer)
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatOutput(item execution.ItemResult) {
	out := strings.TrimRight(item.Output, "\n")
	if out == "" {
		return
	}
	fmt.Fprintln(f.writer, "  Output:")
	for _, line := range strings.Split(out, "\n") {
		fmt.Fprintf(f.writer, "    %s\n", f.colorize(line, colorBlue))
	}
	if item.OutputMeta != nil && item.OutputMeta.Truncated {
		fmt.Fprintf(f.writer, "    %s\n", f.colorize(
			fmt.Sprintf("(truncated from %d bytes)", item.OutputMeta.OriginalSize), colorGray))
	}
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatDiagnostic(item execution.ItemResult) {
	symbol, color := f.getSeverityInfo(item.Severity)
	where := item.Project
	if item.Location != "" {
		where = item.Location
	}
	fmt.Fprintf(f.writer, "%s %s %s\n",
		f.colorize(symbol, color),
		f.colorize(strings.ToUpper(item.Severity), color),
		f.colorize(item.Rule, colorCyan))
	if where != "" {
		fmt.Fprintf(f.writer, "  At: %s\n", where)
	}
	fmt.Fprintf(f.writer, "  %s\n", item.Message)
	fmt.Fprintln(f.writer)
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatSummary(report *execution.Report) {
	s := report.Summary
	fmt.Fprintln(f.writer, f.colorize("Summary:", colorBold))

	if report.Kind == execution.KindCheck {
		fmt.Fprintf(f.writer, "  Errors:   %s\n", f.colorize(fmt.Sprint(s.Errors), colorRed))
		fmt.Fprintf(f.writer, "  Warnings: %s\n", f.colorize(fmt.Sprint(s.Warnings), colorYellow))
		fmt.Fprintf(f.writer, "  Notes:    %s\n", f.colorize(fmt.Sprint(s.Notes), colorBlue))
		return
	}

	fmt.Fprintf(f.writer, "  Total:   %d\n", s.Total)
	fmt.Fprintf(f.writer, "  Success: %s\n", f.colorize(fmt.Sprint(s.Success), colorGreen))
	fmt.Fprintf(f.writer, "  Failed:  %s\n", f.colorize(fmt.Sprint(s.Failed), colorRed))
	fmt.Fprintf(f.writer, "  Skipped: %s\n", f.colorize(fmt.Sprint(s.Skipped), colorGray))
	if s.Pending > 0 {
		fmt.Fprintf(f.writer, "  Pending: %d\n", s.Pending)
	}
}

// getStatusInfo returns the display symbol and color for a task status.
func (f *TableFormatter) getStatusInfo(status values.Status) (string, string) {
	switch status {
	case values.StatusSuccess:
		return "✓", colorGreen
	case values.StatusFailed:
		return "✗", colorRed
	case values.StatusSkipped:
		return "⊘", colorGray
	default:
		return "?", colorYellow
	}
}

func (f *TableFormatter) getSeverityInfo(severity string) (string, string) {
	sev, err := values.NewSeverity(severity)
	if err != nil {
		return "?", colorGray
	}
	switch {
	case sev.Equals(values.SevError):
		return "✗", colorRed
	case sev.Equals(values.SevWarning):
		return "⚠", colorYellow
	default:
		return "ℹ", colorBlue
	}
}
