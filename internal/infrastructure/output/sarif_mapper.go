package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
	"github.com/monoforge/monoforge/internal/application/services"
	"github.com/monoforge/monoforge/internal/domain/execution"
	"github.com/monoforge/monoforge/internal/domain/values"
)

type sarifMapper struct {
	report       *execution.Report
	workspaceDir string
	cwd          string
	artifacts    map[string]*sarif.Artifact
}

func newSARIFMapper(report *execution.Report, workspaceDir string) *sarifMapper {
	cwd, _ := os.Getwd() // Best effort
	return &sarifMapper{
		report:       report,
		workspaceDir: workspaceDir,
		cwd:          cwd,
		artifacts:    make(map[string]*sarif.Artifact),
	}
}

// mapToRun populates the SARIF run with rules, results, artifacts, and
// the invocation.
func (m *sarifMapper) mapToRun(run *sarif.Run) {
	if m.report.Kind == execution.KindCheck {
		m.addDiagnosticRules(run)
	} else {
		m.addTaskRules(run)
	}
	for _, item := range m.report.Items {
		run.AddResult(m.mapItem(item))
	}
	m.addArtifacts(run)
	m.addInvocation(run)

	props := sarif.NewPropertyBag()
	props.Add("summary", m.report.Summary)
	run.WithProperties(props)
}

// addDiagnosticRules lists every diagnostic rule, whether it fired or not.
func (m *sarifMapper) addDiagnosticRules(run *sarif.Run) {
	ids := make([]string, 0, len(services.RuleDescriptions))
	for id := range services.RuleDescriptions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		desc := services.RuleDescriptions[id]
		rule := sarif.NewReportingDescriptor().
			WithID(id).
			WithName(id).
			WithShortDescription(&sarif.MultiformatMessageString{Text: ptrString(desc)}).
			WithFullDescription(&sarif.MultiformatMessageString{Text: ptrString(desc)}).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "warning"})
		run.Tool.Driver.AddRule(rule)
	}
}

// addTaskRules adds one rule per executed task.
func (m *sarifMapper) addTaskRules(run *sarif.Run) {
	for _, item := range m.report.Items {
		name := item.Name
		if name == "" {
			name = item.ID
		}
		rule := sarif.NewReportingDescriptor().
			WithID(item.ID).
			WithName(item.ID).
			WithShortDescription(&sarif.MultiformatMessageString{Text: ptrString(name)}).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "error"})
		run.Tool.Driver.AddRule(rule)
	}
}

func (m *sarifMapper) mapItem(item execution.ItemResult) *sarif.Result {
	ruleID := item.ID
	if m.report.Kind == execution.KindCheck {
		ruleID = item.Rule
	}
	result := sarif.NewRuleResult(ruleID)

	if m.report.Kind == execution.KindCheck {
		result.Level = severityToLevel(item.Severity)
		result.Kind = "fail"
		if loc := m.createLocation(item.Location); loc != nil {
			result.Locations = []*sarif.Location{loc}
		}
	} else {
		result.Level = statusToLevel(item.Status)
		result.Kind = statusToKind(item.Status)
	}

	msg := item.Message
	if msg == "" {
		msg = defaultMessage(item)
	}
	result.Message = sarif.NewTextMessage(msg)

	props := sarif.NewPropertyBag()
	if item.Project != "" {
		props.Add("project", item.Project)
	}
	if m.report.Kind == execution.KindRelease {
		props.Add("duration_ms", item.Duration.Milliseconds())
		if len(item.DependsOn) > 0 {
			props.Add("dependsOn", item.DependsOn)
		}
		if item.SkipReason != "" {
			props.Add("skipReason", item.SkipReason)
		}
	}
	result.WithProperties(props)

	return result
}

func (m *sarifMapper) createLocation(location string) *sarif.Location {
	if location == "" {
		return nil
	}
	uri := m.normalizeURI(location)
	if _, ok := m.artifacts[uri]; !ok {
		m.artifacts[uri] = sarif.NewArtifact().
			WithLocation(sarif.NewArtifactLocation().WithURI(uri))
	}

	pLoc := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewArtifactLocation().WithURI(uri))
	return sarif.NewLocation().WithPhysicalLocation(pLoc)
}

// normalizeURI resolves a workspace-relative location and makes it
// relative to the working directory when possible.
func (m *sarifMapper) normalizeURI(location string) string {
	path := filepath.FromSlash(location)
	if m.workspaceDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(m.workspaceDir, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(location)
	}
	if m.cwd != "" {
		if rel, err := filepath.Rel(m.cwd, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return "file://" + filepath.ToSlash(abs)
}

func (m *sarifMapper) addArtifacts(run *sarif.Run) {
	uris := make([]string, 0, len(m.artifacts))
	for uri := range m.artifacts {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	for _, uri := range uris {
		run.AddArtifact(m.artifacts[uri])
	}
}

func (m *sarifMapper) addInvocation(run *sarif.Run) {
	invocation := sarif.NewInvocation()

	invocation.ExecutionSuccessful = ptrBool(!m.reportFailed())

	startTime := m.report.StartTime.UTC().Format("2006-01-02T15:04:05.000Z")
	endTime := m.report.EndTime.UTC().Format("2006-01-02T15:04:05.000Z")
	invocation.StartTimeUtc = &startTime
	invocation.EndTimeUtc = &endTime

	if m.cwd != "" {
		cwd := "file://" + filepath.ToSlash(m.cwd)
		invocation.WorkingDirectory = sarif.NewArtifactLocation().WithURI(cwd)
	}

	props := sarif.NewPropertyBag()
	props.Add("workspace", m.report.Workspace)
	props.Add("version", m.report.Version)
	props.Add("runId", m.report.RunID.String())
	props.Add("dryRun", m.report.DryRun)
	invocation.WithProperties(props)

	run.AddInvocation(invocation)
}

// reportFailed is true when a release task failed. Diagnostics of a check
// never make the invocation itself unsuccessful.
func (m *sarifMapper) reportFailed() bool {
	return m.report.Kind == execution.KindRelease && m.report.Summary.Failed > 0
}

func severityToLevel(severity string) string {
	sev, err := values.NewSeverity(severity)
	if err != nil {
		return "warning"
	}
	switch {
	case sev.Equals(values.SevError):
		return "error"
	case sev.Equals(values.SevWarning):
		return "warning"
	default:
		return "note"
	}
}

func statusToLevel(status values.Status) string {
	switch status {
	case values.StatusSuccess:
		return "note"
	case values.StatusFailed:
		return "error"
	case values.StatusSkipped:
		return "none"
	default:
		return "warning"
	}
}

func statusToKind(status values.Status) string {
	switch status {
	case values.StatusSuccess:
		return "pass"
	case values.StatusFailed:
		return "fail"
	case values.StatusSkipped:
		return "notApplicable"
	default:
		return "open"
	}
}

func defaultMessage(item execution.ItemResult) string {
	switch item.Status {
	case values.StatusSuccess:
		return fmt.Sprintf("Task %s succeeded", item.ID)
	case values.StatusFailed:
		return fmt.Sprintf("Task %s failed", item.ID)
	case values.StatusSkipped:
		return fmt.Sprintf("Task %s was skipped", item.ID)
	default:
		return fmt.Sprintf("Task %s completed with status %s", item.ID, item.Status)
	}
}
