package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies this module's tracer in exported spans.
const TracerName = "github.com/drkstar360/Gmail-API-Async-Agent"

// Span attribute keys. Tool spans use the mcp.* keys; Gmail API spans use
// the google.* keys.
const (
	SpanAttrTool         = "mcp.tool"
	SpanAttrAccount      = "mcp.account"
	SpanAttrResourceID   = "mcp.resource_id"
	SpanAttrResourceType = "mcp.resource_type"
	SpanAttrService      = "google.service"
	SpanAttrOperation    = "google.operation"
)

// SpanAttrs assembles span attributes under the keys above, so every span in
// the module names things the same way. The zero value is ready to use.
type SpanAttrs struct {
	attrs []attribute.KeyValue
}

// NewSpanAttrs creates an empty attribute set.
func NewSpanAttrs() *SpanAttrs {
	return &SpanAttrs{}
}

func (a *SpanAttrs) add(key, value string) *SpanAttrs {
	a.attrs = append(a.attrs, attribute.String(key, value))
	return a
}

// WithService adds the Google service name attribute.
func (a *SpanAttrs) WithService(service string) *SpanAttrs {
	return a.add(SpanAttrService, service)
}

// WithOperation adds the Google operation attribute.
func (a *SpanAttrs) WithOperation(operation string) *SpanAttrs {
	return a.add(SpanAttrOperation, operation)
}

// WithAccount adds the account attribute when non-empty.
func (a *SpanAttrs) WithAccount(account string) *SpanAttrs {
	if account == "" {
		return a
	}
	return a.add(SpanAttrAccount, account)
}

// WithResource adds resource type and ID attributes, skipping empty values.
// For this service the resource is typically a message ("message", id).
func (a *SpanAttrs) WithResource(resourceType, resourceID string) *SpanAttrs {
	if resourceType != "" {
		a.add(SpanAttrResourceType, resourceType)
	}
	if resourceID != "" {
		a.add(SpanAttrResourceID, resourceID)
	}
	return a
}

// Build returns the assembled attributes.
func (a *SpanAttrs) Build() []attribute.KeyValue {
	return a.attrs
}

// StartSpan starts an internal span with the given name and attributes. The
// caller must end it.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return start(ctx, name, trace.SpanKindInternal, attrs)
}

// StartToolSpan starts the server-side span for an MCP tool invocation. The
// span is named tool.<name> and carries the tool attribute.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return start(ctx, "tool."+toolName, trace.SpanKindServer, all)
}

// StartGoogleAPISpan starts the client-side span for one Google API call,
// named google.<service>.<operation>.
func StartGoogleAPISpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append(NewSpanAttrs().WithService(service).WithOperation(operation).Build(), attrs...)
	return start(ctx, "google."+service+"."+operation, trace.SpanKindClient, all)
}

func start(ctx context.Context, name string, kind trace.SpanKind, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(kind),
	)
}

// SetSpanError records err on the span and flips its status to error.
// A nil err is a no-op.
func SetSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanSuccess marks the span status OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID of the span in ctx, or "" without one.
func GetTraceID(ctx context.Context) string {
	if sc, ok := spanContext(ctx); ok {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID of the span in ctx, or "" without one.
func GetSpanID(ctx context.Context) string {
	if sc, ok := spanContext(ctx); ok {
		return sc.SpanID().String()
	}
	return ""
}

func spanContext(ctx context.Context) (trace.SpanContext, bool) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	return sc, sc.IsValid()
}
