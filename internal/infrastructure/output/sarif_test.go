package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
	"github.com/monoforge/monoforge/internal/application/services"
	"github.com/monoforge/monoforge/internal/domain/execution"
	"github.com/monoforge/monoforge/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formatSARIF(t *testing.T, report *execution.Report, workspaceDir string) *sarif.Report {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewSARIFFormatter(&buf, workspaceDir).Format(report))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "2.1.0", raw["version"])

	parsed, err := sarif.FromBytes(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, parsed.Validate())
	require.Len(t, parsed.Runs, 1)
	return parsed
}

func TestSARIFFormatter_ToolMetadata(t *testing.T) {
	report := createReleaseReport()
	parsed := formatSARIF(t, report, "")

	driver := parsed.Runs[0].Tool.Driver
	require.NotNil(t, driver.Name)
	assert.Equal(t, "monoforge", *driver.Name)
	require.NotNil(t, driver.Version)
	assert.Equal(t, "0.3.0", *driver.Version)
}

func TestSARIFFormatter_Release(t *testing.T) {
	parsed := formatSARIF(t, createReleaseReport(), "")
	run := parsed.Runs[0]

	require.Len(t, run.Results, 3)
	assert.Len(t, run.Tool.Driver.Rules, 3)

	tests := []struct {
		ruleID string
		level  string
		kind   string
	}{
		{ruleID: ":core:publishMavenPublicationToSpaceRepository", level: "note", kind: "pass"},
		{ruleID: ":io:publishMavenPublicationToSpaceRepository", level: "error", kind: "fail"},
		{ruleID: ":release", level: "none", kind: "notApplicable"},
	}
	for i, tt := range tests {
		result := run.Results[i]
		require.NotNil(t, result.RuleID)
		assert.Equal(t, tt.ruleID, *result.RuleID)
		assert.Equal(t, tt.level, result.Level)
		assert.Equal(t, tt.kind, result.Kind)
	}

	require.Len(t, run.Invocations, 1)
	require.NotNil(t, run.Invocations[0].ExecutionSuccessful)
	assert.False(t, *run.Invocations[0].ExecutionSuccessful)
}

func TestSARIFFormatter_Check(t *testing.T) {
	dir := t.TempDir()
	parsed := formatSARIF(t, createCheckReport(), dir)
	run := parsed.Runs[0]

	assert.Len(t, run.Tool.Driver.Rules, len(services.RuleDescriptions))

	require.Len(t, run.Results, 3)
	levels := make(map[string]string)
	for _, result := range run.Results {
		levels[*result.RuleID] = result.Level
		assert.Equal(t, "fail", result.Kind)
	}
	assert.Equal(t, "error", levels["duplicate-feature-id"])
	assert.Equal(t, "warning", levels["version-not-semver"])
	assert.Equal(t, "note", levels["module-without-readme"])

	first := run.Results[0]
	require.Len(t, first.Locations, 1)
	uri := *first.Locations[0].PhysicalLocation.ArtifactLocation.URI
	assert.Contains(t, uri, "core/project.yaml")

	assert.Len(t, run.Artifacts, 3)

	require.NotNil(t, run.Invocations[0].ExecutionSuccessful)
	assert.True(t, *run.Invocations[0].ExecutionSuccessful)
}

func TestSARIFMapper_NormalizeURI(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	m := newSARIFMapper(createCheckReport(), cwd)
	assert.Equal(t, "core/project.yaml", m.normalizeURI("core/project.yaml"))

	outside := filepath.Dir(cwd)
	m = newSARIFMapper(createCheckReport(), outside)
	assert.Equal(t, "file://"+filepath.ToSlash(filepath.Join(outside, "monoforge.yaml")), m.normalizeURI("monoforge.yaml"))
}

func TestSARIFMapper_ArtifactDeduplication(t *testing.T) {
	report := execution.NewReport(execution.KindCheck, "toolkit", "1.0.0")
	report.AddDiagnostic("duplicate-feature-id", values.SevError, ":core", "core/project.yaml", "a")
	report.AddDiagnostic("readme-template-missing", values.SevError, ":core", "core/project.yaml", "b")
	report.Finalize()

	parsed := formatSARIF(t, report, t.TempDir())
	assert.Len(t, parsed.Runs[0].Artifacts, 1)
}

func TestSARIFMapper_Levels(t *testing.T) {
	assert.Equal(t, "warning", severityToLevel("bogus"))
	assert.Equal(t, "open", statusToKind(values.StatusPending))
	assert.Equal(t, "warning", statusToLevel(values.StatusPending))
	assert.Equal(t, "Task :x was skipped", defaultMessage(execution.ItemResult{ID: ":x", Status: values.StatusSkipped}))
}
