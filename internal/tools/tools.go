// Package tools defines the tool catalog exposed by a session actor and
// the dispatch pipeline that validates and routes inbound calls to
// handlers.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stewardhq/steward/internal/auth"
)

// Failure kinds surfaced in results and the response envelope.
const (
	KindUnknownTool    = "unknown_tool"
	KindInvalidInput   = "invalid_input"
	KindHandlerFailure = "handler_failure"
)

// Content is one ordered block of a successful result.
type Content struct {
	Type string          `json:"type"`
	Text string          `json:"text,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Content block types.
const (
	ContentText = "text"
	ContentJSON = "json"
)

// Error is a normalized handler or dispatch failure.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Result is the outcome of one dispatch: either an ordered content
// sequence or a normalized error, never both.
type Result struct {
	Content []Content `json:"content,omitempty"`
	Err     *Error    `json:"error,omitempty"`
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return r.Err == nil
}

// Text builds a single-block text result.
func Text(format string, args ...any) Result {
	return Result{Content: []Content{{Type: ContentText, Text: fmt.Sprintf(format, args...)}}}
}

// JSON builds a single-block structured result. Marshal failures become a
// handler failure rather than a panic.
func JSON(v any) Result {
	data, err := json.Marshal(v)
	if err != nil {
		return Errorf(KindHandlerFailure, "failed to encode result: %v", err)
	}
	return Result{Content: []Content{{Type: ContentJSON, Data: data}}}
}

// Errorf builds an error result of the given kind.
func Errorf(kind, format string, args ...any) Result {
	return Result{Err: &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// Session is the handler-facing view of the owning actor's session state.
// Handlers go through these accessors rather than inventing ad hoc cell
// keys, which keeps the persisted schema stable.
type Session interface {
	// ActiveAccountID returns the active account, with ok=false when
	// none has been selected yet.
	ActiveAccountID(ctx context.Context) (id string, ok bool, err error)

	// SetActiveAccountID durably selects the active account.
	SetActiveAccountID(ctx context.Context, id string) error
}

// Invocation carries everything a handler may touch for one call. The
// authorization is passed explicitly so the one-context-per-call rule is
// enforced by the signature, not by convention.
type Invocation struct {
	Authorization *auth.Authorization
	Session       Session
	Input         json.RawMessage
}

// Handler executes one validated tool call. Input already satisfies the
// descriptor's schema when the handler runs.
type Handler func(ctx context.Context, inv Invocation) (Result, error)

// Descriptor declares one named operation. Descriptors are registered
// during actor initialization and immutable afterwards.
type Descriptor struct {
	// Name is the unique snake_case operation name.
	Name string

	// Description is shown in catalog listings.
	Description string

	// Schema validates raw input before the handler runs.
	Schema *Schema

	// Handler executes the call.
	Handler Handler
}
