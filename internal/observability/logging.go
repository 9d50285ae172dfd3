// Package observability provides the structured logging used across the
// steward runtime.
//
// Logging is built on Go's slog package with JSON output for production
// and text for development, plus redaction of credential material so
// bearer tokens and service tokens never reach a log line.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// LogConfig configures logging behavior.
type LogConfig struct {
	// Level sets the minimum log level: "debug", "info", "warn", "error".
	Level string

	// Format is "json" or "text". JSON is the production default.
	Format string

	// Output defaults to os.Stdout.
	Output io.Writer

	// AddSource includes file and line in records.
	AddSource bool
}

// defaultRedactPatterns cover the credential shapes steward handles.
var defaultRedactPatterns = []*regexp.Regexp{
	// JWTs.
	regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`),
	// Service tokens.
	regexp.MustCompile(`sk_[a-zA-Z0-9-]+_[a-zA-Z0-9]+-[a-f0-9]{8}`),
	// Generic secret assignments.
	regexp.MustCompile(`(?i)(secret|password|token)[\s:=]+["']?[^\s"']{8,}["']?`),
}

// NewLogger creates a structured logger. Invalid or empty level defaults
// to "info"; empty format defaults to "json".
func NewLogger(config LogConfig) *slog.Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	level := slog.LevelInfo
	switch strings.ToLower(config.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   config.AddSource,
		ReplaceAttr: redactAttr,
	}

	var handler slog.Handler
	if strings.ToLower(config.Format) == "text" {
		handler = slog.NewTextHandler(config.Output, opts)
	} else {
		handler = slog.NewJSONHandler(config.Output, opts)
	}
	return slog.New(handler)
}

// redactAttr masks credential material in string attribute values.
func redactAttr(groups []string, attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindString {
		return attr
	}
	value := attr.Value.String()
	for _, pattern := range defaultRedactPatterns {
		value = pattern.ReplaceAllString(value, "[REDACTED]")
	}
	attr.Value = slog.StringValue(value)
	return attr
}

type requestIDContextKey struct{}

// WithRequestID attaches a request correlation id to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// RequestID retrieves the request correlation id, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
