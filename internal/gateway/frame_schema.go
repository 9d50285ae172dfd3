package gateway

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The call frame is validated against a compiled JSON Schema before any
// routing work happens. Tool input validation is a separate, per-tool
// concern handled inside the dispatcher; this schema guards only the
// transport envelope.

type frameSchemaRegistry struct {
	once    sync.Once
	initErr error
	call    *jsonschema.Schema
}

var frameSchemas frameSchemaRegistry

func initFrameSchemas() error {
	frameSchemas.once.Do(func() {
		compiled, err := jsonschema.CompileString("call_frame", callFrameSchema)
		if err != nil {
			frameSchemas.initErr = err
			return
		}
		frameSchemas.call = compiled
	})
	return frameSchemas.initErr
}

func validateCallFrame(raw []byte, frame *callFrame) error {
	if err := initFrameSchemas(); err != nil {
		return err
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("request body is not valid JSON")
	}
	if err := frameSchemas.call.Validate(payload); err != nil {
		return fmt.Errorf("invalid call frame: tool name is required")
	}
	return json.Unmarshal(raw, frame)
}

const callFrameSchema = `{
  "type": "object",
  "required": ["tool"],
  "properties": {
    "tool": { "type": "string", "minLength": 1 },
    "input": {}
  },
  "additionalProperties": false
}`
