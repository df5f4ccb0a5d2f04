package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// ToolInvocation is the audit record for one MCP tool call: who ran which
// tool against which account, how long it took, and how it ended.
//
// UserEmail is PII. General operational logs should go through LogAttrs,
// which reduces it to the domain; the full address only appears in
// LogAuditAttrs for streams with audit-grade access controls.
type ToolInvocation struct {
	Tool string

	// UserEmail is the profile address, when a handler resolved one
	UserEmail string

	Account     string // account name (default, work, personal)
	ServiceName string // Google service (gmail)
	Operation   string // operation type (list, get, fetch_summary)

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts an audit record for the named tool. Timing runs
// until one of the Complete methods is called.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithUser sets the user identity information.
func (ti *ToolInvocation) WithUser(email string) *ToolInvocation {
	ti.UserEmail = email
	return ti
}

// WithAccount sets the Google account name.
func (ti *ToolInvocation) WithAccount(account string) *ToolInvocation {
	ti.Account = account
	return ti
}

// WithService sets the Google service and operation.
func (ti *ToolInvocation) WithService(serviceName, operation string) *ToolInvocation {
	ti.ServiceName = serviceName
	ti.Operation = operation
	return ti
}

// WithSpanContext copies trace and span IDs from the span in ctx, if any.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	ti.SpanID = GetSpanID(ctx)
	return ti
}

// Complete stops the clock and records the outcome.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed with the given error.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// UserDomain returns the domain part of the user's email, keeping log and
// metric cardinality bounded by the number of customer domains.
func (ti *ToolInvocation) UserDomain() string {
	return ExtractUserDomain(ti.UserEmail)
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns the attribute set for operational logging. The user is
// reduced to a domain and the default account is dropped as noise.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	return ti.attrSet(false)
}

// LogAuditAttrs returns the attribute set for the audit stream. It carries
// the full user email and span ID; route it only to storage with audit-grade
// access controls.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	return ti.attrSet(true)
}

// attrSet builds either attribute set; unset fields are skipped. The audit
// variant carries the raw user and span ID, the operational variant carries
// the user domain and treats the default account as noise.
func (ti *ToolInvocation) attrSet(audit bool) []slog.Attr {
	attrs := []slog.Attr{slog.String("tool", ti.Tool)}

	if audit {
		attrs = append(attrs, slog.String("user", ti.UserEmail))
	} else {
		attrs = append(attrs, slog.String("user_domain", ti.UserDomain()))
	}

	attrs = append(attrs,
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	)

	if ti.Account != "" && (audit || ti.Account != "default") {
		attrs = append(attrs, slog.String("account", ti.Account))
	}
	if ti.ServiceName != "" {
		attrs = append(attrs, slog.String("service", ti.ServiceName))
	}
	if ti.Operation != "" {
		attrs = append(attrs, slog.String("operation", ti.Operation))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if audit && ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	return attrs
}

// AuditLogger writes tool invocation records through slog.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates an enabled AuditLogger that anonymizes user
// identities. A nil logger falls back to slog.Default().
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger:  orDefault(logger),
		enabled: true,
	}
}

// NewAuditLoggerWithConfig creates an AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	return &AuditLogger{
		logger:     orDefault(logger),
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// SetIncludePII sets whether to include full email addresses in audit logs.
func (al *AuditLogger) SetIncludePII(include bool) {
	al.includePII = include
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogToolInvocation records one tool call. Unless the logger was configured
// with IncludePII it uses the anonymized attribute set.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if !al.enabled {
		return
	}

	attrs := ti.LogAttrs()
	if al.includePII {
		attrs = ti.LogAuditAttrs()
	}

	level := slog.LevelInfo
	msg := "tool_executed"
	if !ti.Success {
		level = slog.LevelWarn
		msg = "tool_failed"
	}
	al.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogToolAudit records one tool call with the full audit attribute set,
// including PII, regardless of the IncludePII setting. Use
// LogToolInvocation for configuration-aware logging.
func (al *AuditLogger) LogToolAudit(ti *ToolInvocation) {
	if !al.enabled {
		return
	}
	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "tool_audit", ti.LogAuditAttrs()...)
}
