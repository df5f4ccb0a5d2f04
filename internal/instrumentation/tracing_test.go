package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupSpanRecorder installs a recording tracer provider globally and
// restores the previous one when the test ends.
func setupSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})

	return recorder
}

func attributeMap(attrs []attribute.KeyValue) map[string]interface{} {
	m := make(map[string]interface{}, len(attrs))
	for _, attr := range attrs {
		m[string(attr.Key)] = attr.Value.AsInterface()
	}
	return m
}

func TestSpanAttrs(t *testing.T) {
	attrs := NewSpanAttrs().
		WithService(ServiceGmail).
		WithOperation(OperationFetchSummary).
		WithAccount("work").
		WithResource("message", "18c2f5a9b3d4e7f1").
		Build()

	if len(attrs) != 5 {
		t.Fatalf("expected 5 attributes, got %d", len(attrs))
	}

	m := attributeMap(attrs)
	want := map[string]interface{}{
		SpanAttrService:      ServiceGmail,
		SpanAttrOperation:    OperationFetchSummary,
		SpanAttrAccount:      "work",
		SpanAttrResourceType: "message",
		SpanAttrResourceID:   "18c2f5a9b3d4e7f1",
	}
	for key, value := range want {
		if m[key] != value {
			t.Errorf("%s = %v, want %v", key, m[key], value)
		}
	}
}

func TestSpanAttrsSkipsEmptyValues(t *testing.T) {
	attrs := NewSpanAttrs().
		WithService(ServiceGmail).
		WithAccount("").
		WithResource("", "").
		Build()

	if len(attrs) != 1 {
		t.Errorf("expected only the service attribute, got %d attributes", len(attrs))
	}
}

func TestStartToolSpan(t *testing.T) {
	recorder := setupSpanRecorder(t)

	_, span := StartToolSpan(context.Background(), "gmail_fetch_summary",
		attribute.String(SpanAttrAccount, "work"))
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 recorded span, got %d", len(ended))
	}

	got := ended[0]
	if got.Name() != "tool.gmail_fetch_summary" {
		t.Errorf("span name = %q, want %q", got.Name(), "tool.gmail_fetch_summary")
	}
	if got.SpanKind() != trace.SpanKindServer {
		t.Errorf("span kind = %v, want %v", got.SpanKind(), trace.SpanKindServer)
	}

	m := attributeMap(got.Attributes())
	if m[SpanAttrTool] != "gmail_fetch_summary" {
		t.Errorf("%s = %v, want %q", SpanAttrTool, m[SpanAttrTool], "gmail_fetch_summary")
	}
	if m[SpanAttrAccount] != "work" {
		t.Errorf("%s = %v, want %q", SpanAttrAccount, m[SpanAttrAccount], "work")
	}
}

func TestStartGoogleAPISpan(t *testing.T) {
	recorder := setupSpanRecorder(t)

	_, span := StartGoogleAPISpan(context.Background(), ServiceGmail, OperationGet,
		attribute.String(SpanAttrResourceID, "msg-001"))
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 recorded span, got %d", len(ended))
	}

	got := ended[0]
	if got.Name() != "google.gmail.get" {
		t.Errorf("span name = %q, want %q", got.Name(), "google.gmail.get")
	}
	if got.SpanKind() != trace.SpanKindClient {
		t.Errorf("span kind = %v, want %v", got.SpanKind(), trace.SpanKindClient)
	}

	m := attributeMap(got.Attributes())
	if m[SpanAttrService] != ServiceGmail {
		t.Errorf("%s = %v, want %q", SpanAttrService, m[SpanAttrService], ServiceGmail)
	}
	if m[SpanAttrOperation] != OperationGet {
		t.Errorf("%s = %v, want %q", SpanAttrOperation, m[SpanAttrOperation], OperationGet)
	}
	if m[SpanAttrResourceID] != "msg-001" {
		t.Errorf("%s = %v, want %q", SpanAttrResourceID, m[SpanAttrResourceID], "msg-001")
	}
}

func TestSetSpanError(t *testing.T) {
	recorder := setupSpanRecorder(t)

	_, span := StartSpan(context.Background(), "fetch")
	SetSpanError(span, errors.New("token expired"))
	span.End()

	got := recorder.Ended()[0]
	if got.Status().Code != codes.Error {
		t.Errorf("status code = %v, want %v", got.Status().Code, codes.Error)
	}
	if got.Status().Description != "token expired" {
		t.Errorf("status description = %q, want %q", got.Status().Description, "token expired")
	}
	if len(got.Events()) != 1 {
		t.Errorf("expected 1 recorded error event, got %d", len(got.Events()))
	}
}

func TestSetSpanErrorNil(t *testing.T) {
	recorder := setupSpanRecorder(t)

	_, span := StartSpan(context.Background(), "fetch")
	SetSpanError(span, nil)
	span.End()

	got := recorder.Ended()[0]
	if got.Status().Code != codes.Unset {
		t.Errorf("status code = %v, want %v after nil error", got.Status().Code, codes.Unset)
	}
}

func TestSetSpanSuccess(t *testing.T) {
	recorder := setupSpanRecorder(t)

	_, span := StartSpan(context.Background(), "fetch")
	SetSpanSuccess(span)
	span.End()

	got := recorder.Ended()[0]
	if got.Status().Code != codes.Ok {
		t.Errorf("status code = %v, want %v", got.Status().Code, codes.Ok)
	}
}

func TestTraceAndSpanIDs(t *testing.T) {
	setupSpanRecorder(t)

	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("trace ID without a span = %q, want empty", id)
	}
	if id := GetSpanID(context.Background()); id != "" {
		t.Errorf("span ID without a span = %q, want empty", id)
	}

	ctx, span := StartSpan(context.Background(), "fetch")
	defer span.End()

	if got, want := GetTraceID(ctx), span.SpanContext().TraceID().String(); got != want {
		t.Errorf("GetTraceID = %q, want %q", got, want)
	}
	if got, want := GetSpanID(ctx), span.SpanContext().SpanID().String(); got != want {
		t.Errorf("GetSpanID = %q, want %q", got, want)
	}
}
