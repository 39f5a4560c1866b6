package output

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
	"github.com/monoforge/monoforge/internal/domain/execution"
)

// SARIFFormatter formats reports as SARIF 2.1.0 JSON.
// Check diagnostics map to rule results with file locations; release
// tasks map to one result per task.
//
// Usage:
//
//	formatter := output.NewSARIFFormatter(os.Stdout, "path/to/workspace")
//	if err := formatter.Format(report); err != nil {
//	    log.Fatal(err)
//	}
type SARIFFormatter struct {
	writer       io.Writer
	workspaceDir string
}

// NewSARIFFormatter creates a new SARIF formatter.
// workspaceDir resolves the workspace-relative locations of diagnostics.
func NewSARIFFormatter(writer io.Writer, workspaceDir string) *SARIFFormatter {
	return &SARIFFormatter{
		writer:       writer,
		workspaceDir: workspaceDir,
	}
}

// Format writes the report as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) Format(report *execution.Report) error {
	out := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("monoforge", "https://github.com/monoforge/monoforge")
	version := report.MonoforgeVersion
	if version == "" {
		version = "dev"
	}
	run.Tool.Driver.Version = &version
	run.Tool.Driver.Organization = ptrString("monoforge")

	newSARIFMapper(report, f.workspaceDir).mapToRun(run)
	out.AddRun(run)

	if err := out.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}
	_, err := f.writer.Write([]byte("\n"))
	return err
}

func ptrString(s string) *string {
	return &s
}

func ptrBool(b bool) *bool {
	return &b
}
