package output

import (
	"fmt"
	"io"

	"github.com/monoforge/monoforge/internal/application/ports"
)

// Options tune the formatters.
type Options struct {
	// Indent pretty-prints JSON.
	Indent bool
	// WorkspaceDir resolves diagnostic locations in SARIF output.
	WorkspaceDir string
	// Color enables ANSI colors in table output.
	Color bool
}

type reportConstructor func(io.Writer, Options) ports.OutputFormatter

type planConstructor func(io.Writer, Options) ports.PlanFormatter

func newTable(w io.Writer, o Options) *TableFormatter {
	t := NewTableFormatter(w)
	t.EnableColor = o.Color
	return t
}

// reportFormats lists report formats in the order shown in help text.
var reportFormats = []struct {
	name  string
	build reportConstructor
}{
	{"table", func(w io.Writer, o Options) ports.OutputFormatter { return newTable(w, o) }},
	{"json", func(w io.Writer, o Options) ports.OutputFormatter { return NewJSONFormatter(w, o.Indent) }},
	{"yaml", func(w io.Writer, _ Options) ports.OutputFormatter { return NewYAMLFormatter(w) }},
	{"junit", func(w io.Writer, _ Options) ports.OutputFormatter { return NewJUnitFormatter(w) }},
	{"sarif", func(w io.Writer, o Options) ports.OutputFormatter { return NewSARIFFormatter(w, o.WorkspaceDir) }},
}

// Plans are structured data, so only the formats that can carry a DAG
// are offered.
var planFormats = []struct {
	name  string
	build planConstructor
}{
	{"table", func(w io.Writer, o Options) ports.PlanFormatter { return newTable(w, o) }},
	{"json", func(w io.Writer, o Options) ports.PlanFormatter { return NewJSONFormatter(w, o.Indent) }},
	{"yaml", func(w io.Writer, _ Options) ports.PlanFormatter { return NewYAMLFormatter(w) }},
}

// FormatterFactory creates report and plan formatters by name.
type FormatterFactory struct{}

func NewFormatterFactory() *FormatterFactory {
	return &FormatterFactory{}
}

// Create returns the report formatter registered under format.
func (f *FormatterFactory) Create(format string, writer io.Writer, options Options) (ports.OutputFormatter, error) {
	for _, rf := range reportFormats {
		if rf.name == format {
			return rf.build(writer, options), nil
		}
	}
	return nil, fmt.Errorf("unknown format: %s (supported: %v)", format, f.SupportedFormats())
}

// CreatePlan returns the plan formatter registered under format.
func (f *FormatterFactory) CreatePlan(format string, writer io.Writer, options Options) (ports.PlanFormatter, error) {
	for _, pf := range planFormats {
		if pf.name == format {
			return pf.build(writer, options), nil
		}
	}
	return nil, fmt.Errorf("unknown plan format: %s (supported: %v)", format, f.SupportedPlanFormats())
}

func (f *FormatterFactory) SupportedFormats() []string {
	names := make([]string, len(reportFormats))
	for i, rf := range reportFormats {
		names[i] = rf.name
	}
	return names
}

func (f *FormatterFactory) SupportedPlanFormats() []string {
	names := make([]string, len(planFormats))
	for i, pf := range planFormats {
		names[i] = pf.name
	}
	return names
}
