// Package execution provides domain models for run and check reports.
package execution

import (
	"sort"
	"sync"
	"time"

	"github.com/monoforge/monoforge/internal/domain/values"
)

// ReportKind tells formatters what the items of a report are.
type ReportKind string

const (
	// KindRelease reports executed release tasks.
	KindRelease ReportKind = "release"
	// KindCheck reports workspace diagnostics.
	KindCheck ReportKind = "check"
)

// Report is the complete result of a release run or a workspace check.
type Report struct {
	StartTime        time.Time     `json:"start_time" yaml:"start_time"`
	EndTime          time.Time     `json:"end_time" yaml:"end_time"`
	MonoforgeVersion string        `json:"monoforge_version,omitempty" yaml:"monoforge_version,omitempty"`
	Kind             ReportKind    `json:"kind" yaml:"kind"`
	Workspace        string        `json:"workspace" yaml:"workspace"`
	Version          string        `json:"version,omitempty" yaml:"version,omitempty"`
	DryRun           bool          `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Items            []ItemResult  `json:"items" yaml:"items"`
	Summary          ReportSummary `json:"summary" yaml:"summary"`
	Duration         time.Duration `json:"duration_ms" yaml:"duration_ms"`
	mu               sync.Mutex
	RunID            values.RunID `json:"run_id" yaml:"run_id"`
}

// ItemResult is one executed task or one diagnostic.
type ItemResult struct {
	ID         string        `json:"id" yaml:"id"`
	Name       string        `json:"name" yaml:"name"`
	Project    string        `json:"project,omitempty" yaml:"project,omitempty"`
	Rule       string        `json:"rule,omitempty" yaml:"rule,omitempty"`
	Severity   string        `json:"severity,omitempty" yaml:"severity,omitempty"`
	Status     values.Status `json:"status" yaml:"status"`
	Message    string        `json:"message,omitempty" yaml:"message,omitempty"`
	SkipReason string        `json:"skip_reason,omitempty" yaml:"skip_reason,omitempty"`
	Location   string        `json:"location,omitempty" yaml:"location,omitempty"`
	DependsOn  []string      `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Output     string        `json:"output,omitempty" yaml:"output,omitempty"`
	OutputMeta *OutputMeta   `json:"output_meta,omitempty" yaml:"output_meta,omitempty"`
	Index      int           `json:"index" yaml:"index"`
	Duration   time.Duration `json:"duration_ms" yaml:"duration_ms"`
}

// ReportSummary provides aggregate statistics about the report.
type ReportSummary struct {
	Total    int `json:"total" yaml:"total"`
	Success  int `json:"success" yaml:"success"`
	Failed   int `json:"failed" yaml:"failed"`
	Skipped  int `json:"skipped" yaml:"skipped"`
	Pending  int `json:"pending" yaml:"pending"`
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Notes    int `json:"notes" yaml:"notes"`
}

// NewReport creates a report with a fresh run ID.
func NewReport(kind ReportKind, workspace, version string) *Report {
	return NewReportWithID(values.NewRunID(), kind, workspace, version)
}

// NewReportWithID creates a report with a specific run ID.
func NewReportWithID(id values.RunID, kind ReportKind, workspace, version string) *Report {
	return &Report{
		RunID:     id,
		Kind:      kind,
		Workspace: workspace,
		Version:   version,
		StartTime: time.Now(),
		Items:     make([]ItemResult, 0),
	}
}

// AddItem adds an item to the report.
// Thread-safe for concurrent calls from workers.
func (r *Report) AddItem(item ItemResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Items = append(r.Items, item)
}

// AddDiagnostic records a check finding. Error severity diagnostics fail.
func (r *Report) AddDiagnostic(rule string, severity values.Severity, project, location, message string) {
	status := values.StatusSuccess
	if severity.IsHigherOrEqual(values.SevError) {
		status = values.StatusFailed
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.Items = append(r.Items, ItemResult{
		ID:       rule + "@" + project,
		Name:     rule,
		Rule:     rule,
		Project:  project,
		Severity: severity.String(),
		Status:   status,
		Message:  message,
		Location: location,
		Index:    len(r.Items),
	})
}

// ItemStatus returns the status of an item by ID.
// Thread-safe.
func (r *Report) ItemStatus(id string) (values.Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.Items {
		if item.ID == id {
			return item.Status, true
		}
	}
	return "", false
}

// ItemByID returns a pointer to the item with the given ID, or nil.
// Thread-safe.
func (r *Report) ItemByID(id string) *ItemResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.Items {
		if r.Items[i].ID == id {
			return &r.Items[i]
		}
	}
	return nil
}

// HasFailures reports whether any item failed.
func (r *Report) HasFailures() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.Items {
		if item.Status.IsFailure() {
			return true
		}
	}
	return false
}

// Finalize completes the report and calculates the summary.
// Items are sorted by Index for deterministic output.
func (r *Report) Finalize() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)

	sort.SliceStable(r.Items, func(i, j int) bool {
		return r.Items[i].Index < r.Items[j].Index
	})

	r.calculateSummary()
}

func (r *Report) calculateSummary() {
	r.Summary = ReportSummary{
		Total: len(r.Items),
	}

	for _, item := range r.Items {
		switch item.Status {
		case values.StatusSuccess:
			r.Summary.Success++
		case values.StatusFailed:
			r.Summary.Failed++
		case values.StatusSkipped:
			r.Summary.Skipped++
		case values.StatusPending:
			r.Summary.Pending++
		}

		sev, err := values.NewSeverity(item.Severity)
		if err != nil {
			continue
		}
		switch {
		case sev.Equals(values.SevError):
			r.Summary.Errors++
		case sev.Equals(values.SevWarning):
			r.Summary.Warnings++
		case sev.Equals(values.SevNote):
			r.Summary.Notes++
		}
	}
}
