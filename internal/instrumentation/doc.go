// Package instrumentation wires OpenTelemetry metrics, tracing, and audit
// logging for the gmail-agent MCP server.
//
// NewProvider builds everything from a Config, which DefaultConfig reads
// from the environment (INSTRUMENTATION_ENABLED, METRICS_EXPORTER,
// TRACING_EXPORTER, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_TRACES_SAMPLER_ARG,
// OTEL_SERVICE_NAME). A disabled provider still hands out a usable
// *Metrics whose recorders are no-ops, so call sites never branch.
//
// # Metrics
//
// Metrics records to a fixed set of instruments:
//
//   - http_requests_total, http_request_duration_seconds, and
//     http_requests_in_flight for the operational HTTP server
//   - google_api_operations_total and
//     google_api_operation_duration_seconds per Gmail API call
//   - gmail_summary_fetches_total and gmail_summary_messages per
//     whole-inbox summary fetch
//   - mcp_tool_invocations_total and mcp_tool_duration_seconds per MCP
//     tool call
//
// The default exporter is Prometheus on a private registry, served by
// Provider.PrometheusHandler. OTLP and stdout exporters are available for
// push-based setups.
//
// # Tracing
//
// StartToolSpan opens a server span per MCP tool call (tool.<name>) and
// StartGoogleAPISpan a client span per Gmail API call
// (google.<service>.<operation>). Tracing is off unless TRACING_EXPORTER
// selects otlp or stdout.
//
// # Audit logging
//
// AuditLogger emits one structured record per tool invocation. By default
// user identities are reduced to their domain; IncludePII switches to full
// addresses for deployments that route audit logs to restricted storage.
package instrumentation
