package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema validates raw tool input against a compiled JSON Schema. It is
// the single source of truth for what a handler accepts: dispatch never
// invokes a handler with input that fails validation.
type Schema struct {
	source   string
	compiled *jsonschema.Schema
}

// CompileSchema compiles a JSON Schema document. The name appears in
// compilation errors only.
func CompileSchema(name, source string) (*Schema, error) {
	compiled, err := jsonschema.CompileString(name, source)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{source: source, compiled: compiled}, nil
}

// MustSchema compiles a schema and panics on failure. For statically
// declared tool schemas, where a bad schema is a programming error.
func MustSchema(name, source string) *Schema {
	s, err := CompileSchema(name, source)
	if err != nil {
		panic(err)
	}
	return s
}

// Source returns the schema document as written.
func (s *Schema) Source() string {
	return s.source
}

// Validate checks raw input. A nil or empty input is treated as an empty
// object. Violations are returned as a *ViolationsError enumerating every
// failed field, not just the first.
func (s *Schema) Validate(raw json.RawMessage) error {
	var value any
	if len(raw) == 0 {
		value = map[string]any{}
	} else if err := json.Unmarshal(raw, &value); err != nil {
		return &ViolationsError{Violations: []Violation{{
			Field:   "(root)",
			Message: "input is not valid JSON",
		}}}
	}

	err := s.compiled.Validate(value)
	if err == nil {
		return nil
	}
	var validation *jsonschema.ValidationError
	if !errors.As(err, &validation) {
		return &ViolationsError{Violations: []Violation{{
			Field:   "(root)",
			Message: err.Error(),
		}}}
	}
	return &ViolationsError{Violations: flattenViolations(validation)}
}

// Violation names one failed field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ViolationsError carries every schema violation found in one input so
// the caller can fix them all in a single round trip.
type ViolationsError struct {
	Violations []Violation
}

func (e *ViolationsError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Message
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// flattenViolations walks the validation error tree and keeps the leaf
// causes, which carry the concrete field-level messages.
func flattenViolations(err *jsonschema.ValidationError) []Violation {
	if len(err.Causes) == 0 {
		return []Violation{{
			Field:   instanceField(err.InstanceLocation),
			Message: err.Message,
		}}
	}
	var out []Violation
	for _, cause := range err.Causes {
		out = append(out, flattenViolations(cause)...)
	}
	return out
}

func instanceField(location string) string {
	field := strings.TrimPrefix(location, "/")
	if field == "" {
		return "(root)"
	}
	return strings.ReplaceAll(field, "/", ".")
}
