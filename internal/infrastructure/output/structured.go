package output

import (
	"encoding/json"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/monoforge/monoforge/internal/domain/execution"
)

// JSONFormatter writes reports and plans as a single JSON document
// followed by a newline.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{writer: w, indent: indent}
}

func (f *JSONFormatter) Format(report *execution.Report) error {
	return f.encode(report)
}

func (f *JSONFormatter) encode(v any) error {
	enc := json.NewEncoder(f.writer)
	// Repository URLs carry query strings; keep '&' readable.
	enc.SetEscapeHTML(false)
	if f.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// YAMLFormatter writes reports and plans as YAML with two-space indent.
type YAMLFormatter struct {
	writer io.Writer
}

func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

func (f *YAMLFormatter) Format(report *execution.Report) error {
	return f.encode(report)
}

func (f *YAMLFormatter) encode(v any) error {
	enc := yaml.NewEncoder(f.writer, yaml.Indent(2))
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
