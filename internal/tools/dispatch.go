package tools

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/stewardhq/steward/internal/telemetry"
)

// Dispatcher routes one named call through lookup, validation, handler
// invocation, and result normalization. Every outcome is recorded to the
// telemetry sink; no handler failure crosses the dispatch boundary
// unconverted.
type Dispatcher struct {
	registry *Registry
	sink     telemetry.Sink
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil sink drops telemetry; a nil
// logger uses the default.
func NewDispatcher(registry *Registry, sink telemetry.Sink, logger *slog.Logger) *Dispatcher {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{registry: registry, sink: sink, logger: logger}
}

// Dispatch executes one call. Serialization per identity is the owning
// actor's concern; the dispatcher itself is stateless.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, inv Invocation) Result {
	start := time.Now()

	desc, ok := d.registry.Get(name)
	if !ok {
		result := Errorf(KindUnknownTool, "unknown tool: %s", name)
		d.record(name, result, start)
		return result
	}

	if err := desc.Schema.Validate(inv.Input); err != nil {
		var violations *ViolationsError
		var result Result
		if errors.As(err, &violations) {
			result = Errorf(KindInvalidInput, "%s", violations.Error())
		} else {
			result = Errorf(KindInvalidInput, "invalid input: %v", err)
		}
		d.record(name, result, start)
		return result
	}

	result := d.invoke(ctx, desc, inv)
	d.record(name, result, start)
	return result
}

// invoke runs the handler with panic containment. A panicking handler
// yields a handler_failure result with no internals exposed; the detail
// goes to the log only.
func (d *Dispatcher) invoke(ctx context.Context, desc Descriptor, inv Invocation) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool handler panicked",
				"tool", desc.Name,
				"panic", r,
			)
			result = Errorf(KindHandlerFailure, "tool %s failed internally", desc.Name)
		}
	}()

	result, err := desc.Handler(ctx, inv)
	if err != nil {
		d.logger.Warn("tool handler failed",
			"tool", desc.Name,
			"error", err,
		)
		return Errorf(KindHandlerFailure, "tool %s failed: %v", desc.Name, err)
	}
	if result.Err != nil && result.Err.Kind == "" {
		result.Err.Kind = KindHandlerFailure
	}
	return result
}

func (d *Dispatcher) record(name string, result Result, start time.Time) {
	kind := "ok"
	if result.Err != nil {
		kind = result.Err.Kind
	}
	d.sink.Record(telemetry.Event{
		Tool:     name,
		Kind:     kind,
		Duration: time.Since(start),
	})
}
