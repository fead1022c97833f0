package zoomsource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/observability"
)

// HTTP fetches detailed charts with GET <url>?x=<value>.
//
// A 404 response means there is no detailed data for the label.
type HTTP struct {
	client  *retryablehttp.Client
	baseURL *url.URL
	logger  *observability.CoreLogger
}

type HTTPOption func(*HTTP)

func WithHTTPLogger(logger *observability.CoreLogger) HTTPOption {
	return func(h *HTTP) {
		h.logger = logger
		h.client.Logger = slog.NewLogLogger(logger.Logger.Handler(), slog.LevelDebug)
	}
}

func WithRetryMax(retryMax int) HTTPOption {
	return func(h *HTTP) { h.client.RetryMax = retryMax }
}

func WithRetryWait(minWait, maxWait time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.client.RetryWaitMin = minWait
		h.client.RetryWaitMax = maxWait
	}
}

func WithHTTPTimeout(timeout time.Duration) HTTPOption {
	return func(h *HTTP) { h.client.HTTPClient.Timeout = timeout }
}

// WithTransport replaces the client's round tripper.
func WithTransport(transport http.RoundTripper) HTTPOption {
	return func(h *HTTP) { h.client.HTTPClient.Transport = transport }
}

func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTP, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("zoomsource: invalid URL %q: %v", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("zoomsource: unsupported URL scheme %q", u.Scheme)
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 3

	h := &HTTP{
		client:  client,
		baseURL: u,
		logger:  observability.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Fetch implements zoomer.DataSource.
func (h *HTTP) Fetch(
	ctx context.Context,
	labelValue float64,
) (*chartdata.RawChart, error) {
	u := *h.baseURL
	query := u.Query()
	query.Set("x", ObjectName(labelValue))
	u.RawQuery = query.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("zoomsource: building request: %v", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zoomsource: GET %s: %w", u.Redacted(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		h.logger.Debug("zoomsource: no zoom data", "url", u.Redacted())
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf(
			"zoomsource: GET %s: unexpected status %s", u.Redacted(), resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("zoomsource: reading response: %v", err)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "yaml") {
		return chartdata.ParseYAML(body)
	}
	return chartdata.ParseJSON(body)
}
