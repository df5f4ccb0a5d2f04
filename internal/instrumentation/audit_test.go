package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"
)

const (
	testEmail       = "jane@example.com"
	testDomain      = "example.com"
	testAccount     = "work"
	testTraceID     = "4bf92f3577b34da6a3ce929d0e0e4736"
	testSpanID      = "00f067aa0ba902b7"
	testToolSummary = "gmail_fetch_summary"
	testToolGet     = "gmail_get_message"
	testToolLabels  = "gmail_list_labels"
)

func slogAttrMap(attrs []slog.Attr) map[string]slog.Attr {
	m := make(map[string]slog.Attr, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a
	}
	return m
}

func decodeAuditRecord(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decoding log output %q: %v", buf.String(), err)
	}
	return record
}

func TestToolInvocationComplete(t *testing.T) {
	cases := []struct {
		name       string
		complete   func(ti *ToolInvocation) *ToolInvocation
		wantOK     bool
		wantErr    string
		wantStatus string
	}{
		{
			name:       "success",
			complete:   (*ToolInvocation).CompleteSuccess,
			wantOK:     true,
			wantStatus: StatusSuccess,
		},
		{
			name: "failure",
			complete: func(ti *ToolInvocation) *ToolInvocation {
				return ti.CompleteWithError(errors.New("quota exceeded"))
			},
			wantOK:     false,
			wantErr:    "quota exceeded",
			wantStatus: StatusError,
		},
		{
			name: "failure without error detail",
			complete: func(ti *ToolInvocation) *ToolInvocation {
				return ti.Complete(false, nil)
			},
			wantOK:     false,
			wantStatus: StatusError,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ti := NewToolInvocation(testToolSummary)
			if ti.Tool != testToolSummary {
				t.Errorf("Tool = %q, want %q", ti.Tool, testToolSummary)
			}
			if ti.StartTime.IsZero() {
				t.Fatal("StartTime not set")
			}
			ti.StartTime = time.Now().Add(-time.Second)

			if got := tc.complete(ti); got != ti {
				t.Error("completion should return the receiver")
			}
			if ti.Success != tc.wantOK {
				t.Errorf("Success = %v, want %v", ti.Success, tc.wantOK)
			}
			if ti.Error != tc.wantErr {
				t.Errorf("Error = %q, want %q", ti.Error, tc.wantErr)
			}
			if ti.Status() != tc.wantStatus {
				t.Errorf("Status() = %q, want %q", ti.Status(), tc.wantStatus)
			}
			if ti.Duration < time.Second {
				t.Errorf("Duration = %v, want at least 1s from the backdated start", ti.Duration)
			}
		})
	}
}

func TestToolInvocationBuilders(t *testing.T) {
	ti := NewToolInvocation(testToolGet).
		WithUser(testEmail).
		WithAccount(testAccount).
		WithService(ServiceGmail, OperationGet)

	if ti.UserEmail != testEmail {
		t.Errorf("UserEmail = %q, want %q", ti.UserEmail, testEmail)
	}
	if ti.Account != testAccount {
		t.Errorf("Account = %q, want %q", ti.Account, testAccount)
	}
	if ti.ServiceName != ServiceGmail {
		t.Errorf("ServiceName = %q, want %q", ti.ServiceName, ServiceGmail)
	}
	if ti.Operation != OperationGet {
		t.Errorf("Operation = %q, want %q", ti.Operation, OperationGet)
	}
	if got := ti.UserDomain(); got != testDomain {
		t.Errorf("UserDomain() = %q, want %q", got, testDomain)
	}
}

func TestToolInvocationSpanContext(t *testing.T) {
	setupSpanRecorder(t)

	ctx, span := StartToolSpan(context.Background(), testToolSummary)
	defer span.End()

	ti := NewToolInvocation(testToolSummary).WithSpanContext(ctx)
	sc := span.SpanContext()
	if ti.TraceID != sc.TraceID().String() {
		t.Errorf("TraceID = %q, want %q", ti.TraceID, sc.TraceID().String())
	}
	if ti.SpanID != sc.SpanID().String() {
		t.Errorf("SpanID = %q, want %q", ti.SpanID, sc.SpanID().String())
	}

	bare := NewToolInvocation(testToolSummary).WithSpanContext(context.Background())
	if bare.TraceID != "" || bare.SpanID != "" {
		t.Errorf("context without a span populated IDs: trace=%q span=%q", bare.TraceID, bare.SpanID)
	}
}

func TestLogAttrsAnonymizesUser(t *testing.T) {
	cases := []struct {
		name   string
		setup  func() *ToolInvocation
		want   map[string]string
		absent []string
	}{
		{
			name: "populated record",
			setup: func() *ToolInvocation {
				ti := NewToolInvocation(testToolLabels).
					WithUser(testEmail).
					WithAccount(testAccount).
					WithService(ServiceGmail, OperationList)
				ti.TraceID = testTraceID
				ti.SpanID = testSpanID
				return ti.CompleteWithError(errors.New("backend unavailable"))
			},
			want: map[string]string{
				"tool":        testToolLabels,
				"user_domain": testDomain,
				"account":     testAccount,
				"service":     ServiceGmail,
				"operation":   OperationList,
				"trace_id":    testTraceID,
				"error":       "backend unavailable",
			},
			absent: []string{"user", "span_id"},
		},
		{
			name: "default account dropped",
			setup: func() *ToolInvocation {
				return NewToolInvocation(testToolSummary).
					WithUser(testEmail).
					WithAccount("default").
					CompleteSuccess()
			},
			want: map[string]string{
				"tool":        testToolSummary,
				"user_domain": testDomain,
			},
			absent: []string{"account", "service", "operation", "trace_id", "error"},
		},
		{
			name: "empty record",
			setup: func() *ToolInvocation {
				return NewToolInvocation(testToolGet).CompleteSuccess()
			},
			want: map[string]string{
				"tool":        testToolGet,
				"user_domain": "unknown",
			},
			absent: []string{"account", "user", "error"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := slogAttrMap(tc.setup().LogAttrs())
			for key, want := range tc.want {
				attr, ok := got[key]
				if !ok {
					t.Errorf("missing attr %q", key)
					continue
				}
				if v := attr.Value.String(); v != want {
					t.Errorf("%s = %q, want %q", key, v, want)
				}
			}
			for _, key := range tc.absent {
				if _, ok := got[key]; ok {
					t.Errorf("attr %q should be absent", key)
				}
			}
			for _, key := range []string{"duration", "success"} {
				if _, ok := got[key]; !ok {
					t.Errorf("missing attr %q", key)
				}
			}
		})
	}
}

func TestLogAuditAttrsCarriesPII(t *testing.T) {
	ti := NewToolInvocation(testToolLabels).
		WithUser(testEmail).
		WithAccount("default").
		WithService(ServiceGmail, OperationList)
	ti.TraceID = testTraceID
	ti.SpanID = testSpanID
	ti.CompleteWithError(errors.New("backend unavailable"))

	got := slogAttrMap(ti.LogAuditAttrs())
	want := map[string]string{
		"tool":      testToolLabels,
		"user":      testEmail,
		"account":   "default", // kept here, unlike the operational set
		"service":   ServiceGmail,
		"operation": OperationList,
		"trace_id":  testTraceID,
		"span_id":   testSpanID,
		"error":     "backend unavailable",
	}
	for key, wantVal := range want {
		attr, ok := got[key]
		if !ok {
			t.Errorf("missing attr %q", key)
			continue
		}
		if v := attr.Value.String(); v != wantVal {
			t.Errorf("%s = %q, want %q", key, v, wantVal)
		}
	}
	if _, ok := got["user_domain"]; ok {
		t.Error("audit set should carry the full address, not user_domain")
	}
}

func TestAuditLoggerEmission(t *testing.T) {
	cases := []struct {
		name        string
		newLogger   func(l *slog.Logger) *AuditLogger
		emit        func(al *AuditLogger, ti *ToolInvocation)
		fail        bool
		wantMsg     string
		wantLevel   string
		wantUserKey string
	}{
		{
			name:        "successful invocation",
			newLogger:   NewAuditLogger,
			emit:        (*AuditLogger).LogToolInvocation,
			wantMsg:     "tool_executed",
			wantLevel:   "INFO",
			wantUserKey: "user_domain",
		},
		{
			name:        "failed invocation",
			newLogger:   NewAuditLogger,
			emit:        (*AuditLogger).LogToolInvocation,
			fail:        true,
			wantMsg:     "tool_failed",
			wantLevel:   "WARN",
			wantUserKey: "user_domain",
		},
		{
			name: "pii configured",
			newLogger: func(l *slog.Logger) *AuditLogger {
				return NewAuditLoggerWithConfig(l, AuditLoggingConfig{Enabled: true, IncludePII: true})
			},
			emit:        (*AuditLogger).LogToolInvocation,
			wantMsg:     "tool_executed",
			wantLevel:   "INFO",
			wantUserKey: "user",
		},
		{
			name:        "audit stream always carries the address",
			newLogger:   NewAuditLogger,
			emit:        (*AuditLogger).LogToolAudit,
			wantMsg:     "tool_audit",
			wantLevel:   "INFO",
			wantUserKey: "user",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			al := tc.newLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

			ti := NewToolInvocation(testToolSummary).WithUser(testEmail)
			if tc.fail {
				ti.CompleteWithError(errors.New("token expired"))
			} else {
				ti.CompleteSuccess()
			}
			tc.emit(al, ti)

			record := decodeAuditRecord(t, &buf)
			if record["msg"] != tc.wantMsg {
				t.Errorf("msg = %v, want %q", record["msg"], tc.wantMsg)
			}
			if record["level"] != tc.wantLevel {
				t.Errorf("level = %v, want %q", record["level"], tc.wantLevel)
			}
			wantUser := testDomain
			if tc.wantUserKey == "user" {
				wantUser = testEmail
			}
			if record[tc.wantUserKey] != wantUser {
				t.Errorf("%s = %v, want %q", tc.wantUserKey, record[tc.wantUserKey], wantUser)
			}
			other := "user"
			if tc.wantUserKey == "user" {
				other = "user_domain"
			}
			if _, ok := record[other]; ok {
				t.Errorf("record should not carry %q alongside %q", other, tc.wantUserKey)
			}
		})
	}
}

func TestAuditLoggerToggles(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{})

	ti := NewToolInvocation(testToolSummary).WithUser(testEmail).CompleteSuccess()
	al.LogToolInvocation(ti)
	al.LogToolAudit(ti)
	if buf.Len() != 0 {
		t.Fatalf("disabled logger wrote output: %s", buf.String())
	}

	al.SetEnabled(true)
	al.SetIncludePII(true)
	al.LogToolInvocation(ti)

	record := decodeAuditRecord(t, &buf)
	if record["msg"] != "tool_executed" {
		t.Errorf("msg = %v, want %q", record["msg"], "tool_executed")
	}
	if record["user"] != testEmail {
		t.Errorf("user = %v, want %q after SetIncludePII", record["user"], testEmail)
	}
}

func TestNewAuditLoggerDefaults(t *testing.T) {
	al := NewAuditLogger(nil)
	if al.logger == nil {
		t.Error("nil logger should fall back to slog.Default")
	}
	if !al.enabled {
		t.Error("new loggers start enabled")
	}
	if al.includePII {
		t.Error("PII stays off unless configured")
	}
}
