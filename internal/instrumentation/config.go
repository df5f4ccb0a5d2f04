package instrumentation

import (
	"fmt"
	"os"
	"strconv"
)

// Label values shared by metrics, spans, and audit records.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	// ServiceGmail tags Google API operations.
	ServiceGmail = "gmail"
)

// Exporter names accepted by Config.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Config controls how telemetry is exported. DefaultConfig fills it from
// the environment; a zero Config keeps instrumentation off entirely.
type Config struct {
	// Enabled gates metrics and tracing as a whole. Overridden by
	// INSTRUMENTATION_ENABLED.
	Enabled bool

	// ServiceName, ServiceVersion, and ServiceInstanceID identify this
	// process in exported telemetry. The instance ID falls back to the
	// hostname when unset.
	ServiceName       string
	ServiceVersion    string
	ServiceInstanceID string

	// K8sNamespace and K8sPodName become resource attributes when the
	// agent runs inside a cluster.
	K8sNamespace string
	K8sPodName   string

	// MetricsExporter selects prometheus, otlp, or stdout.
	MetricsExporter string

	// TracingExporter selects otlp, stdout, or none.
	TracingExporter string

	// OTLPEndpoint is the collector address as host:port without a
	// scheme. Required whenever an exporter is set to otlp.
	OTLPEndpoint string

	// OTLPInsecure exports over plain HTTP instead of TLS. Local use only.
	OTLPInsecure bool

	// TraceSamplingRate is the head sampling ratio in [0, 1]. A sampled
	// parent span always wins over the ratio.
	TraceSamplingRate float64

	// DetailedLabels adds per-account metric labels. Leave off unless the
	// account cardinality is known to be small.
	DetailedLabels bool

	// AuditLogging configures the tool invocation audit trail.
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig controls the audit trail emitted for tool calls.
type AuditLoggingConfig struct {
	// Enabled turns audit records on. Overridden by AUDIT_LOGGING_ENABLED.
	Enabled bool

	// IncludePII logs full account addresses instead of bare domains.
	// Route the audit stream to access-controlled storage before
	// enabling this.
	IncludePII bool
}

// DefaultConfig builds a Config from the environment. Unset variables get
// the documented defaults: instrumentation on, Prometheus metrics, no
// tracing, 10% trace sampling.
func DefaultConfig() Config {
	return Config{
		Enabled:           envBool("INSTRUMENTATION_ENABLED", true),
		ServiceName:       envString("OTEL_SERVICE_NAME", "gmail-agent"),
		ServiceVersion:    "unknown",
		ServiceInstanceID: os.Getenv("OTEL_SERVICE_INSTANCE_ID"),
		K8sNamespace:      envString("K8S_NAMESPACE", os.Getenv("POD_NAMESPACE")),
		K8sPodName:        envString("K8S_POD_NAME", os.Getenv("HOSTNAME")),
		MetricsExporter:   envString("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter:   envString("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:      envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate: envFloat("OTEL_TRACES_SAMPLER_ARG", 0.1),
		DetailedLabels:    envBool("METRICS_DETAILED_LABELS", false),
		AuditLogging: AuditLoggingConfig{
			Enabled:    envBool("AUDIT_LOGGING_ENABLED", true),
			IncludePII: envBool("AUDIT_LOGGING_INCLUDE_PII", false),
		},
	}
}

// Validate reports configuration errors before a provider is built from
// this Config.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate %f outside [0, 1]", c.TraceSamplingRate)
	}

	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterStdout:
	case ExporterOTLP:
		if c.OTLPEndpoint == "" {
			return fmt.Errorf("metrics exporter %q requires an OTLP endpoint", ExporterOTLP)
		}
	default:
		return fmt.Errorf("unknown metrics exporter %q", c.MetricsExporter)
	}

	switch c.TracingExporter {
	case "", ExporterNone, ExporterStdout:
	case ExporterOTLP:
		if c.OTLPEndpoint == "" {
			return fmt.Errorf("tracing exporter %q requires an OTLP endpoint", ExporterOTLP)
		}
	default:
		return fmt.Errorf("unknown tracing exporter %q", c.TracingExporter)
	}

	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
