package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/monoforge/monoforge/internal/domain/execution"
	"github.com/monoforge/monoforge/internal/domain/values"
)

// JUnitFormatter formats reports as JUnit XML. Each project becomes a
// test suite.
type JUnitFormatter struct {
	writer io.Writer
}

// NewJUnitFormatter creates a new JUnit formatter.
func NewJUnitFormatter(w io.Writer) *JUnitFormatter {
	return &JUnitFormatter{
		writer: w,
	}
}

// JUnitTestSuites JUnit XML structures
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// Format writes the report as JUnit XML.
func (f *JUnitFormatter) Format(report *execution.Report) error {
	suites := JUnitTestSuites{
		Name: fmt.Sprintf("monoforge %s %s", report.Kind, report.Workspace),
		Time: report.Duration.Seconds(),
	}

	index := make(map[string]int)
	for _, item := range report.Items {
		project := item.Project
		if project == "" {
			project = values.RootPath.String()
		}
		i, ok := index[project]
		if !ok {
			i = len(suites.TestSuites)
			index[project] = i
			suites.TestSuites = append(suites.TestSuites, JUnitTestSuite{Name: project})
		}
		suite := &suites.TestSuites[i]

		c := JUnitTestCase{
			Name:      item.ID,
			ClassName: project,
			Time:      item.Duration.Seconds(),
			SystemOut: item.Output,
		}
		if report.Kind == execution.KindCheck {
			c.Name = item.Rule
		}

		switch item.Status {
		case values.StatusFailed:
			c.Failure = &JUnitFailure{
				Message: item.Message,
				Type:    item.Rule,
				Content: failureDetail(item),
			}
			suite.Failures++
			suites.Failures++
		case values.StatusSkipped:
			c.Skipped = &JUnitSkipped{Message: item.SkipReason}
			suite.Skipped++
		}

		suite.Tests++
		suite.Time += c.Time
		suites.Tests++
		suite.TestCases = append(suite.TestCases, c)
	}

	if _, err := f.writer.Write([]byte(xml.Header)); err != nil {
		return err
	}

	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}

	_, err := f.writer.Write([]byte("\n"))
	return err
}

func failureDetail(item execution.ItemResult) string {
	var b strings.Builder
	if item.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", item.Location)
	}
	if item.Severity != "" {
		fmt.Fprintf(&b, "Severity: %s\n", item.Severity)
	}
	if item.Message != "" {
		fmt.Fprintf(&b, "%s\n", item.Message)
	}
	return b.String()
}
