package observability

import (
	"io"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

type Tags map[string]string

// NewTags creates a new Tags from a mix of slog.Attr and a string and its
// corresponding value. It ignores incomplete pairs and other types.
func NewTags(args ...any) Tags {
	tags := Tags{}
	for len(args) > 0 {
		switch x := args[0].(type) {
		case slog.Attr:
			tags[x.Key] = x.Value.String()
			args = args[1:]
		case string:
			if len(args) < 2 {
				return tags
			}
			attr := slog.Any(x, args[1])
			tags[attr.Key] = attr.Value.String()
			args = args[2:]
		default:
			args = args[1:]
		}
	}
	return tags
}

type CoreLoggerParams struct {
	// Sentry is the hub that captured errors and messages are sent to.
	//
	// If nil, nothing is sent to Sentry.
	Sentry *sentry.Hub

	// RateLimiter deduplicates repeated Sentry captures. May be nil.
	RateLimiter *CaptureRateLimiter

	Tags Tags
}

// CoreLogger is the logger shared by all chart components.
//
// It is a slog.Logger that can additionally report problems to Sentry,
// tagged with the chart the message came from.
type CoreLogger struct {
	*slog.Logger
	baseTags    Tags
	sentry      *sentry.Hub
	rateLimiter *CaptureRateLimiter
}

func NewCoreLogger(logger *slog.Logger, params *CoreLoggerParams) *CoreLogger {
	if params == nil {
		params = &CoreLoggerParams{}
	}

	tags := Tags{}
	var args []any
	for key, value := range params.Tags {
		args = append(args, slog.String(key, value))
		tags[key] = value
	}

	return &CoreLogger{
		Logger:      logger.With(args...),
		baseTags:    tags,
		sentry:      params.Sentry,
		rateLimiter: params.RateLimiter,
	}
}

// withArgs merges the given args with the logger's base tags.
//
// The logger's base tags take precedence over args.
func (cl *CoreLogger) withArgs(args ...any) Tags {
	tags := NewTags(args...)
	for key, value := range cl.baseTags {
		tags[key] = value
	}
	return tags
}

// With returns a derived logger that includes the given tags in each message.
func (cl *CoreLogger) With(args ...any) *CoreLogger {
	return &CoreLogger{
		Logger:      cl.Logger.With(args...),
		baseTags:    cl.baseTags,
		sentry:      cl.sentry,
		rateLimiter: cl.rateLimiter,
	}
}

// WithTags returns a derived logger whose tags are also attached to
// Sentry events.
func (cl *CoreLogger) WithTags(tags Tags) *CoreLogger {
	merged := Tags{}
	var args []any
	for key, value := range cl.baseTags {
		merged[key] = value
	}
	for key, value := range tags {
		merged[key] = value
		args = append(args, slog.String(key, value))
	}

	return &CoreLogger{
		Logger:      cl.Logger.With(args...),
		baseTags:    merged,
		sentry:      cl.sentry,
		rateLimiter: cl.rateLimiter,
	}
}

// CaptureError logs an error and sends it to Sentry.
func (cl *CoreLogger) CaptureError(err error, args ...any) {
	cl.Error(err.Error(), args...)

	if cl.sentry == nil || !cl.rateLimiter.AllowCapture(err.Error()) {
		return
	}

	hub := cl.sentry.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(cl.withArgs(args...))
	})
	hub.CaptureException(err)
}

// CaptureWarn logs a warning and sends it to Sentry.
func (cl *CoreLogger) CaptureWarn(msg string, args ...any) {
	cl.Warn(msg, args...)
	cl.captureMessage(sentry.LevelWarning, msg, args...)
}

// CaptureInfo logs an info message and sends it to Sentry.
func (cl *CoreLogger) CaptureInfo(msg string, args ...any) {
	cl.Info(msg, args...)
	cl.captureMessage(sentry.LevelInfo, msg, args...)
}

func (cl *CoreLogger) captureMessage(
	level sentry.Level,
	msg string,
	args ...any,
) {
	if cl.sentry == nil || !cl.rateLimiter.AllowCapture(msg) {
		return
	}

	hub := cl.sentry.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		scope.SetTags(cl.withArgs(args...))
	})
	hub.CaptureMessage(msg)
}

// GetTags returns the tags associated with the logger.
//
// Used for testing.
func (cl *CoreLogger) GetTags() Tags {
	return cl.baseTags
}

// NewNoOpLogger returns a logger that discards all messages.
//
// Used for testing.
func NewNoOpLogger() *CoreLogger {
	return NewCoreLogger(
		slog.New(slog.NewJSONHandler(io.Discard, nil)),
		nil,
	)
}
