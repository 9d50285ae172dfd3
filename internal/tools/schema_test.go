package tools

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const accountSchema = `{
  "type": "object",
  "required": ["account_id"],
  "properties": {
    "account_id": { "type": "string", "minLength": 1 },
    "limit": { "type": "integer", "minimum": 1 }
  },
  "additionalProperties": false
}`

func TestSchemaValidateAccepts(t *testing.T) {
	s, err := CompileSchema("account", accountSchema)
	if err != nil {
		t.Fatalf("CompileSchema() error = %v", err)
	}
	if err := s.Validate(json.RawMessage(`{"account_id": "acct-123", "limit": 5}`)); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestSchemaValidateMissingFieldNamesIt(t *testing.T) {
	s := MustSchema("account", accountSchema)

	err := s.Validate(json.RawMessage(`{}`))
	if err == nil {
		t.Fatal("Validate() accepted input missing account_id")
	}
	var violations *ViolationsError
	if !errors.As(err, &violations) {
		t.Fatalf("Validate() error type = %T, want *ViolationsError", err)
	}
	if !strings.Contains(violations.Error(), "account_id") {
		t.Fatalf("Error() = %q, want mention of account_id", violations.Error())
	}
}

func TestSchemaValidateEnumeratesAllViolations(t *testing.T) {
	s := MustSchema("account", accountSchema)

	// Two independent violations: wrong type and out-of-range.
	err := s.Validate(json.RawMessage(`{"account_id": 42, "limit": 0}`))
	if err == nil {
		t.Fatal("Validate() accepted invalid input")
	}
	var violations *ViolationsError
	if !errors.As(err, &violations) {
		t.Fatalf("Validate() error type = %T, want *ViolationsError", err)
	}
	if len(violations.Violations) < 2 {
		t.Fatalf("Violations = %+v, want both fields reported", violations.Violations)
	}
	msg := violations.Error()
	if !strings.Contains(msg, "account_id") || !strings.Contains(msg, "limit") {
		t.Fatalf("Error() = %q, want both account_id and limit", msg)
	}
}

func TestSchemaValidateEmptyInputIsEmptyObject(t *testing.T) {
	s := MustSchema("open", `{"type": "object"}`)
	if err := s.Validate(nil); err != nil {
		t.Fatalf("Validate(nil) error = %v", err)
	}
}

func TestSchemaValidateMalformedJSON(t *testing.T) {
	s := MustSchema("open", `{"type": "object"}`)
	err := s.Validate(json.RawMessage(`{not json`))
	var violations *ViolationsError
	if !errors.As(err, &violations) {
		t.Fatalf("Validate() error = %v, want *ViolationsError", err)
	}
}

func TestCompileSchemaRejectsBadDocument(t *testing.T) {
	if _, err := CompileSchema("bad", `{"type": 12}`); err == nil {
		t.Fatal("CompileSchema() accepted invalid schema document")
	}
}
