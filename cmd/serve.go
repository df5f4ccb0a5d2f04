package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/drkstar360/Gmail-API-Async-Agent/internal/google"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/instrumentation"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/logging"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/resources"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/server"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/tools/gmail_tools"
)

// opsStartTimeout bounds how long serve waits for the operational server's
// listener before giving up on the whole run.
const opsStartTimeout = 5 * time.Second

// MetricsConfig holds configuration for the operational metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: false)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		token          string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server on stdio, providing
read-only Gmail summary tools and resources for AI assistants.

Tools accept an optional account argument; bearer tokens are resolved per
account from the GMAIL_ACCESS_TOKEN environment variable or the account's
token file. A --token value is served for every account instead. Token
acquisition and refresh are not handled.

An operational HTTP server carrying /metrics and health probes can be
started on a dedicated port with --metrics-enabled. Logs go to stderr as
JSON; stdout carries only the MCP protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := resolveMetricsConfig(
				MetricsConfig{Enabled: metricsEnabled, Addr: metricsAddr},
				cmd.Flags().Changed("metrics-enabled"),
				cmd.Flags().Changed("metrics-addr"),
			)

			return runServe(debugMode, token, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&token, "token", "", "Bearer access token served for every account. Without it, tokens are resolved per account from the environment or token files.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", false, "Start the operational metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Operational metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// resolveMetricsConfig fills settings the user did not pass as flags from the
// METRICS_ENABLED and METRICS_ADDR environment variables. An explicit flag
// always wins over the environment.
func resolveMetricsConfig(config MetricsConfig, enabledSet, addrSet bool) MetricsConfig {
	if !enabledSet {
		if parsed, err := strconv.ParseBool(os.Getenv("METRICS_ENABLED")); err == nil {
			config.Enabled = parsed
		}
	}
	if !addrSet {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			config.Addr = addr
		}
	}
	return config
}

func runServe(debugMode bool, token string, metricsConfig MetricsConfig) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.NewLogger(os.Stderr, debugMode)
	slog.SetDefault(logger)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("creating instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	serverContext, err := server.NewServerContext(shutdownCtx, newTokenProvider(token), logging.NewSlogAdapter(logger))
	if err != nil {
		return fmt.Errorf("creating server context: %w", err)
	}
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}

	var ops *server.MetricsServer
	var checker *server.HealthChecker
	if metricsConfig.Enabled && provider.Enabled() {
		ops, checker, err = startOpsServer(logger, provider, serverContext, metricsConfig.Addr)
		if err != nil {
			return err
		}
	}
	defer stopServe(logger, checker, ops, serverContext)

	mcpSrv := mcpserver.NewMCPServer("gmail-agent", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
	if err := registerAll(mcpSrv, serverContext); err != nil {
		return err
	}

	logger.Info("starting MCP server on stdio", logging.Service("gmail"))
	return runStdioServer(shutdownCtx, mcpSrv)
}

// newTokenProvider picks the token source for a serve run: an explicit
// --token is served for every account, otherwise the environment and token
// files are consulted per account.
func newTokenProvider(token string) google.TokenProvider {
	if token != "" {
		return google.NewStaticTokenProvider(token)
	}
	return google.NewChainTokenProvider(
		google.NewEnvTokenProvider(""),
		google.NewFileTokenProvider(),
	)
}

// startOpsServer brings up the operational HTTP server and blocks until its
// listener accepts connections, so a scrape cannot race server startup.
func startOpsServer(logger *slog.Logger, provider *instrumentation.Provider, sc *server.ServerContext, addr string) (*server.MetricsServer, *server.HealthChecker, error) {
	checker := server.NewHealthChecker(sc)
	ops, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
		HealthChecker:           checker,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating metrics server: %w", err)
	}

	ready := make(chan struct{})
	failed := make(chan error, 1)
	go func() {
		if err := ops.StartWithReadySignal(ready); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
		close(failed)
	}()

	select {
	case <-ready:
		logger.Info("metrics server started", "addr", ops.Addr())
		return ops, checker, nil
	case err := <-failed:
		return nil, nil, fmt.Errorf("starting metrics server: %w", err)
	case <-time.After(opsStartTimeout):
		return nil, nil, errors.New("timed out waiting for the metrics server to start")
	}
}

// stopServe unwinds the serving stack: readiness flips first so probes drain
// traffic, then the operational server stops, then the server context.
func stopServe(logger *slog.Logger, checker *server.HealthChecker, ops *server.MetricsServer, sc *server.ServerContext) {
	if checker != nil {
		checker.SetReady(false)
	}
	if ops != nil {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := ops.Shutdown(ctx); err != nil {
			logger.Error("metrics server shutdown failed", logging.Err(err))
		}
	}
	if err := sc.Shutdown(); err != nil {
		logger.Error("server context shutdown failed", logging.Err(err))
	}
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	done := make(chan error, 1)
	go func() {
		done <- mcpserver.ServeStdio(mcpSrv)
	}()

	select {
	case <-ctx.Done():
		// Deferred cleanup in runServe takes over once the signal lands.
		return nil
	case err := <-done:
		if err != nil {
			return fmt.Errorf("stdio server: %w", err)
		}
		return nil
	}
}

// registerAll wires every MCP tool and resource onto the server. generate-docs
// calls it too, so the reference documentation always matches the served set.
func registerAll(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext) error {
	if err := gmail_tools.RegisterGmailTools(mcpSrv, ctx); err != nil {
		return fmt.Errorf("registering Gmail tools: %w", err)
	}
	if err := resources.RegisterGmailResources(mcpSrv, ctx); err != nil {
		return fmt.Errorf("registering Gmail resources: %w", err)
	}
	return nil
}
