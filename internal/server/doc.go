// Package server provides the MCP server context and the operational HTTP
// endpoints for the gmail-agent application.
//
// # Key Components
//
// ServerContext manages Gmail API clients with lazy initialization and
// caching. It supports multiple accounts through a google.TokenProvider:
// clients are created on first use for any account the provider has a
// token for.
//
// MetricsServer serves Prometheus metrics and health probes on a dedicated
// port, separate from MCP traffic. HealthChecker backs the /healthz,
// /readyz, and /healthz/detailed endpoints for Kubernetes probes.
package server
