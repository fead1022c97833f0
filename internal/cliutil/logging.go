package cliutil

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"
	"github.com/getsentry/sentry-go"

	"github.com/wandb/lovely-chart/internal/observability"
)

// LoggerParams configures NewLogger.
type LoggerParams struct {
	Out   io.Writer
	Level slog.Level

	// SentryDSN enables error reporting when set.
	SentryDSN string

	// Release tags Sentry events.
	Release string
}

// NewLogger returns a logger printing through charmbracelet/log.
//
// The returned function flushes pending Sentry events.
func NewLogger(params LoggerParams) (*observability.CoreLogger, func(), error) {
	handler := log.NewWithOptions(params.Out, log.Options{
		Level:           log.Level(params.Level),
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})

	if params.SentryDSN == "" {
		return observability.NewCoreLogger(slog.New(handler), nil), func() {}, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              params.SentryDSN,
		AttachStacktrace: true,
		Release:          params.Release,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("cliutil: sentry: %v", err)
	}
	hub := sentry.NewHub(client, sentry.NewScope())

	rateLimiter, err := observability.NewCaptureRateLimiter(64, time.Minute)
	if err != nil {
		return nil, nil, fmt.Errorf("cliutil: %v", err)
	}

	logger := observability.NewCoreLogger(slog.New(handler), &observability.CoreLoggerParams{
		Sentry:      hub,
		RateLimiter: rateLimiter,
	})
	return logger, func() { hub.Flush(2 * time.Second) }, nil
}
