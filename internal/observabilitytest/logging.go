// Package observabilitytest builds loggers for tests.
package observabilitytest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/require"

	"github.com/wandb/lovely-chart/internal/observability"
)

// tLogWriter prints each log line through t.Log.
type tLogWriter struct{ t *testing.T }

func (w tLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(bytes.TrimSuffix(p, []byte("\n"))))
	return len(p), nil
}

func newLogger(
	t *testing.T,
	recorded io.Writer,
	hub *sentry.Hub,
) *observability.CoreLogger {
	t.Helper()

	var w io.Writer = tLogWriter{t}
	if recorded != nil {
		w = io.MultiWriter(w, recorded)
	}

	var params *observability.CoreLoggerParams
	if hub != nil {
		params = &observability.CoreLoggerParams{Sentry: hub}
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{})
	return observability.NewCoreLogger(slog.New(handler), params)
}

// NewTestLogger logs through t.Log.
func NewTestLogger(t *testing.T) *observability.CoreLogger {
	t.Helper()
	return newLogger(t, nil, nil)
}

// NewRecordingTestLogger also writes JSON records into the returned
// buffer; see ExtractLogs.
func NewRecordingTestLogger(t *testing.T) (
	*observability.CoreLogger,
	*bytes.Buffer,
) {
	t.Helper()
	logs := &bytes.Buffer{}
	return newLogger(t, logs, nil), logs
}

// NewSentryTestLogger also sends captures to a mock Sentry transport.
func NewSentryTestLogger(t *testing.T) (
	*observability.CoreLogger,
	*bytes.Buffer,
	*sentry.MockTransport,
) {
	t.Helper()

	transport := &sentry.MockTransport{}
	client, err := sentry.NewClient(sentry.ClientOptions{Transport: transport})
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	hub := sentry.NewHub(client, sentry.NewScope())
	return newLogger(t, logs, hub), logs, transport
}

// ExtractLogs decodes the records of a recording logger without their
// "time" field.
func ExtractLogs(t *testing.T, logs *bytes.Buffer) []map[string]any {
	t.Helper()

	records := []map[string]any{}
	scanner := bufio.NewScanner(bytes.NewReader(logs.Bytes()))
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}

		record := map[string]any{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
		delete(record, "time")
		records = append(records, record)
	}
	require.NoError(t, scanner.Err())

	return records
}
