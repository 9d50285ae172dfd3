// Package actor implements the session actor: the single addressable
// instance per identity that serializes calls, resolves a per-call
// authorization, dispatches tool invocations, and owns the durable cell
// holding that identity's session state.
package actor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stewardhq/steward/internal/auth"
	"github.com/stewardhq/steward/internal/cell"
	"github.com/stewardhq/steward/internal/telemetry"
	"github.com/stewardhq/steward/internal/tools"
)

// Envelope error kinds for failures that happen before dispatch.
const (
	errorKindUnauthorized = "unauthorized"
	errorKindAmbiguous    = "ambiguous_credentials"
	errorKindInitFailed   = "initialization_failed"
)

// activeAccountKey is the cell key behind the session-state accessors.
// Handlers must use the accessors rather than this key directly.
const activeAccountKey = "active_account_id"

// Setup registers the actor's tool catalog during initialization. It runs
// on first call and again after eviction; it must be idempotent with
// respect to external effects because of that.
type Setup func(registry *tools.Registry) error

// Options configures actors created by a Manager.
type Options struct {
	// Builder resolves credentials into per-call authorizations.
	Builder *auth.Builder

	// Store provides each actor's durable cell.
	Store cell.Store

	// Setup registers tools at initialization.
	Setup Setup

	// Sink receives dispatch telemetry. Optional.
	Sink telemetry.Sink

	// Logger receives structured runtime logs. Optional.
	Logger *slog.Logger
}

// Call is one inbound invocation addressed to an actor.
type Call struct {
	Tool       string
	Input      json.RawMessage
	Credential auth.Credential
}

// Response is the uniform envelope returned for every call.
type Response struct {
	OK        bool            `json:"ok"`
	Content   []tools.Content `json:"content,omitempty"`
	ErrorKind string          `json:"errorKind,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// Actor is the per-identity unit of serialization. All calls for one
// identity pass through callMu, so a handler runs to completion,
// including any I/O it awaits, before the next call begins. In-memory
// fields are a cache: the cell is the source of truth, and an evicted
// actor rebuilds itself from storage on the next call.
type Actor struct {
	identity string
	opts     Options
	cell     cell.Cell
	logger   *slog.Logger

	callMu      sync.Mutex
	initialized bool
	registry    *tools.Registry
	dispatcher  *tools.Dispatcher

	inflight atomic.Int32
	lastUsed atomic.Int64
	closed   atomic.Bool
}

func newActor(identity string, opts Options) *Actor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &Actor{
		identity: identity,
		opts:     opts,
		cell:     opts.Store.Open(identity),
		logger:   logger.With("identity", identity),
	}
	a.touch()
	return a
}

// Identity returns the addressing key this actor serves.
func (a *Actor) Identity() string {
	return a.identity
}

// Call processes one inbound call: initialize if needed, build the
// authorization, dispatch, envelope. Calls for the same identity execute
// strictly one at a time; many identities run in parallel.
func (a *Actor) Call(ctx context.Context, call Call) Response {
	a.inflight.Add(1)
	defer func() {
		a.touch()
		a.inflight.Add(-1)
	}()
	return a.process(ctx, call)
}

// tryCall is Call with eviction detection: if the manager closed this
// instance before the inflight count was visible, the caller must fetch
// a fresh instance instead of running on a reclaimed one.
func (a *Actor) tryCall(ctx context.Context, call Call) (Response, bool) {
	a.inflight.Add(1)
	if a.closed.Load() {
		a.inflight.Add(-1)
		return Response{}, false
	}
	defer func() {
		a.touch()
		a.inflight.Add(-1)
	}()
	return a.process(ctx, call), true
}

func (a *Actor) process(ctx context.Context, call Call) Response {
	a.callMu.Lock()
	defer a.callMu.Unlock()

	if !a.initialized {
		if err := a.init(); err != nil {
			a.logger.Error("actor initialization failed", "error", err)
			return Response{
				OK:        false,
				ErrorKind: errorKindInitFailed,
				Message:   "agent failed to initialize",
			}
		}
	}

	authz, err := a.opts.Builder.Build(call.Credential)
	if err != nil {
		return authFailureResponse(err)
	}

	ctx = auth.WithAuthorization(ctx, authz)
	result := a.dispatcher.Dispatch(ctx, call.Tool, tools.Invocation{
		Authorization: authz,
		Session:       a,
		Input:         call.Input,
	})
	if result.Err != nil {
		return Response{OK: false, ErrorKind: result.Err.Kind, Message: result.Err.Message}
	}
	return Response{OK: true, Content: result.Content}
}

// init builds the tool registry and dispatcher. A registration failure
// (duplicate name, malformed descriptor) aborts initialization entirely:
// the actor never serves a partial catalog, and the next call retries.
func (a *Actor) init() error {
	registry := tools.NewRegistry()
	if a.opts.Setup != nil {
		if err := a.opts.Setup(registry); err != nil {
			return err
		}
	}
	a.registry = registry
	a.dispatcher = tools.NewDispatcher(registry, a.opts.Sink, a.logger)
	a.initialized = true
	a.logger.Debug("actor initialized", "tools", registry.Len())
	return nil
}

// Registry returns the actor's tool registry, initializing on demand.
// Used by catalog listings.
func (a *Actor) Registry() (*tools.Registry, error) {
	a.callMu.Lock()
	defer a.callMu.Unlock()
	if !a.initialized {
		if err := a.init(); err != nil {
			return nil, err
		}
	}
	return a.registry, nil
}

// ActiveAccountID implements tools.Session. A never-written key is
// (_, false, nil); a storage outage surfaces as an error so callers do
// not mistake it for first use.
func (a *Actor) ActiveAccountID(ctx context.Context) (string, bool, error) {
	value, err := a.cell.Get(ctx, activeAccountKey)
	if errors.Is(err, cell.ErrNotSet) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(value), true, nil
}

// SetActiveAccountID implements tools.Session. The write is durable
// before the call that issued it completes.
func (a *Actor) SetActiveAccountID(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("account id is required")
	}
	return a.cell.Set(ctx, activeAccountKey, []byte(id))
}

func (a *Actor) touch() {
	a.lastUsed.Store(time.Now().UnixNano())
}

// idleSince reports how long the actor has been without traffic.
func (a *Actor) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, a.lastUsed.Load()))
}

func (a *Actor) busy() bool {
	return a.inflight.Load() > 0
}

func authFailureResponse(err error) Response {
	kind := errorKindUnauthorized
	if errors.Is(err, auth.ErrAmbiguousCredentials) {
		kind = errorKindAmbiguous
	}
	return Response{
		OK:        false,
		ErrorKind: kind,
		Message:   authFailureMessage(kind),
	}
}

func authFailureMessage(kind string) string {
	if kind == errorKindAmbiguous {
		return "request presents credentials for more than one scheme"
	}
	return "credentials missing, invalid, or expired"
}
