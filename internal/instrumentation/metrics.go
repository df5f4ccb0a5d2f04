package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Label keys shared by the metric families below.
const (
	keyMethod    = attribute.Key("method")
	keyPath      = attribute.Key("path")
	keyStatus    = attribute.Key("status")
	keyService   = attribute.Key("service")
	keyOperation = attribute.Key("operation")
	keyTool      = attribute.Key("tool")
	keyAccount   = attribute.Key("account")
)

// Metrics records the server's metric families: HTTP traffic on the ops
// endpoint, upstream Google API calls, summary fetches, and MCP tool
// invocations. The zero value is inert, so callers that run without
// instrumentation can record into it safely.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	httpInFlight        metric.Int64UpDownCounter

	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	summaryFetchesTotal metric.Int64Counter
	summaryMessages     metric.Int64Histogram

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels opts in to high-cardinality labels such as account
	detailedLabels bool
}

// NewMetrics registers every instrument on the given meter. Creation
// errors are collected and the first one is returned.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	var firstErr error
	check := func(name string, err error) {
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("creating %s: %w", name, err)
		}
	}

	var err error
	m.httpRequestsTotal, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("HTTP requests served by the ops endpoint"),
		metric.WithUnit("{request}"))
	check("http_requests_total", err)

	m.httpRequestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("Latency of HTTP requests on the ops endpoint"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0))
	check("http_request_duration_seconds", err)

	m.httpInFlight, err = meter.Int64UpDownCounter("http_requests_in_flight",
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"))
	check("http_requests_in_flight", err)

	m.googleAPIOperationsTotal, err = meter.Int64Counter("google_api_operations_total",
		metric.WithDescription("Calls issued to Google APIs"),
		metric.WithUnit("{operation}"))
	check("google_api_operations_total", err)

	m.googleAPIOperationDuration, err = meter.Float64Histogram("google_api_operation_duration_seconds",
		metric.WithDescription("Latency of Google API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0))
	check("google_api_operation_duration_seconds", err)

	m.summaryFetchesTotal, err = meter.Int64Counter("gmail_summary_fetches_total",
		metric.WithDescription("Inbox summary fetches"),
		metric.WithUnit("{fetch}"))
	check("gmail_summary_fetches_total", err)

	// A summary carries at most ten messages, hence the narrow buckets.
	m.summaryMessages, err = meter.Int64Histogram("gmail_summary_messages",
		metric.WithDescription("Messages returned per summary fetch"),
		metric.WithUnit("{message}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 5, 10))
	check("gmail_summary_messages", err)

	m.toolInvocationsTotal, err = meter.Int64Counter("mcp_tool_invocations_total",
		metric.WithDescription("MCP tool invocations"),
		metric.WithUnit("{invocation}"))
	check("mcp_tool_invocations_total", err)

	m.toolDuration, err = meter.Float64Histogram("mcp_tool_duration_seconds",
		metric.WithDescription("Latency of MCP tool invocations"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0))
	check("mcp_tool_duration_seconds", err)

	if firstErr != nil {
		return nil, firstErr
	}
	return m, nil
}

// RecordHTTPRequest counts one served request and its latency.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}
	attrs := metric.WithAttributes(
		keyMethod.String(method),
		keyPath.String(path),
		keyStatus.String(strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// TrackHTTPInFlight bumps the in-flight request gauge and returns the
// function that releases it.
func (m *Metrics) TrackHTTPInFlight(ctx context.Context) func() {
	if m.httpInFlight == nil {
		return func() {}
	}
	m.httpInFlight.Add(ctx, 1)
	return func() { m.httpInFlight.Add(ctx, -1) }
}

// RecordGoogleAPIOperation counts one upstream call, labeled by service
// ("gmail"), operation ("list", "get", ...), and outcome.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return
	}
	attrs := metric.WithAttributes(
		keyService.String(service),
		keyOperation.String(operation),
		keyStatus.String(status),
	)
	m.googleAPIOperationsTotal.Add(ctx, 1, attrs)
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordSummaryFetch counts one inbox summary fetch and, on success, the
// number of messages it returned. Failed fetches skip the size histogram
// so that error runs do not read as empty inboxes. Latency is already
// covered by the Google API histogram.
func (m *Metrics) RecordSummaryFetch(ctx context.Context, status string, messageCount int) {
	if m.summaryFetchesTotal == nil || m.summaryMessages == nil {
		return
	}
	attrs := metric.WithAttributes(keyStatus.String(status))
	m.summaryFetchesTotal.Add(ctx, 1, attrs)
	if status == StatusSuccess {
		m.summaryMessages.Record(ctx, int64(messageCount), attrs)
	}
}

// RecordToolInvocation counts one MCP tool call and its latency.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	m.RecordToolInvocationWithAccount(ctx, toolName, status, "", duration)
}

// RecordToolInvocationWithAccount is RecordToolInvocation with an account
// label. The label is dropped unless detailed labels were enabled, keeping
// per-account cardinality out of the default configuration.
func (m *Metrics) RecordToolInvocationWithAccount(ctx context.Context, toolName, status, account string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}
	kvs := []attribute.KeyValue{
		keyTool.String(toolName),
		keyStatus.String(status),
	}
	if m.detailedLabels && account != "" {
		kvs = append(kvs, keyAccount.String(account))
	}
	attrs := metric.WithAttributes(kvs...)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}
