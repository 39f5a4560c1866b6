package config

import (
	"bytes"
	"encoding/json"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-yaml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	apperrors "github.com/monoforge/monoforge/internal/application/errors"
)

//go:embed schema/monoforge.schema.json
var workspaceSchemaJSON []byte

const schemaURL = "monoforge.schema.json"

var (
	schemaOnce      sync.Once
	workspaceSchema *jsonschema.Schema
	projectSchema   *jsonschema.Schema
	errSchema       error
)

func compileSchemas() (*jsonschema.Schema, *jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource(schemaURL, bytes.NewReader(workspaceSchemaJSON)); err != nil {
			errSchema = fmt.Errorf("failed to add workspace schema: %w", err)
			return
		}
		if workspaceSchema, errSchema = compiler.Compile(schemaURL); errSchema != nil {
			errSchema = fmt.Errorf("failed to compile workspace schema: %w", errSchema)
			return
		}
		if projectSchema, errSchema = compiler.Compile(schemaURL + "#/$defs/project"); errSchema != nil {
			errSchema = fmt.Errorf("failed to compile project schema: %w", errSchema)
		}
	})
	return workspaceSchema, projectSchema, errSchema
}

// validateDocument checks raw YAML against a schema. file names the
// document in error messages.
func validateDocument(schema *jsonschema.Schema, file string, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}

	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return apperrors.NewValidationError(file, "invalid YAML", err.Error())
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return apperrors.NewValidationError(file, "invalid YAML", err.Error())
	}

	if err := schema.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return formatSchemaValidationError(file, validationErr)
		}
		return fmt.Errorf("%s: schema validation failed: %w", file, err)
	}
	return nil
}

// formatSchemaValidationError flattens the leaf causes into details.
func formatSchemaValidationError(file string, err *jsonschema.ValidationError) error {
	var messages []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 && e.Message != "" {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(messages) == 0 {
		messages = append(messages, err.Error())
	}
	return apperrors.NewValidationError(file, "does not match the workspace schema", messages...)
}
