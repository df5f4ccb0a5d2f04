package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drkstar360/Gmail-API-Async-Agent/internal/instrumentation"
)

// DefaultMetricsAddr is where the ops server listens unless configured
// otherwise.
const DefaultMetricsAddr = ":9090"

// DefaultShutdownTimeout bounds graceful shutdown of the ops server.
const DefaultShutdownTimeout = 10 * time.Second

// HTTP timeouts for the ops server. Scrapes and probes are small, quick
// requests, so these are deliberately tight.
const (
	opsReadHeaderTimeout = 10 * time.Second
	opsWriteTimeout      = 10 * time.Second
	opsIdleTimeout       = 60 * time.Second
)

// MetricsServerConfig configures the ops server.
type MetricsServerConfig struct {
	// Addr to bind; DefaultMetricsAddr when empty.
	Addr string

	// Enabled gates whether serve starts the server at all.
	Enabled bool

	// InstrumentationProvider supplies the scrape handler and the HTTP
	// metrics recorder.
	InstrumentationProvider *instrumentation.Provider

	// HealthChecker registers /healthz, /readyz, and /healthz/detailed
	// when set. Without it the server only answers a basic /healthz.
	HealthChecker *HealthChecker
}

// MetricsServer serves the Prometheus scrape endpoint and health probes on
// a dedicated port, keeping operational endpoints away from MCP traffic.
type MetricsServer struct {
	httpServer *http.Server
	addr       string
	health     *HealthChecker
	metrics    *instrumentation.Metrics
	scrape     http.Handler
}

// NewMetricsServer builds the ops server from config. It needs an enabled
// instrumentation provider; without one there is nothing to scrape.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	provider := config.InstrumentationProvider
	if provider == nil {
		return nil, errors.New("metrics server requires an instrumentation provider")
	}
	if !provider.Enabled() {
		return nil, errors.New("instrumentation provider is disabled")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}

	return &MetricsServer{
		addr:    addr,
		health:  config.HealthChecker,
		metrics: provider.Metrics(),
		scrape:  provider.PrometheusHandler(),
	}, nil
}

// Start runs the server, blocking until it stops. It returns
// http.ErrServerClosed after a graceful shutdown.
func (s *MetricsServer) Start() error {
	return s.StartWithReadySignal(make(chan struct{}))
}

// StartWithReadySignal runs the server and closes ready once the listener
// is accepting connections. Blocks like Start.
func (s *MetricsServer) StartWithReadySignal(ready chan<- struct{}) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	// The bound address differs from the configured one when listening on
	// port 0.
	s.addr = ln.Addr().String()

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.instrument(s.routes()),
		ReadHeaderTimeout: opsReadHeaderTimeout,
		WriteTimeout:      opsWriteTimeout,
		IdleTimeout:       opsIdleTimeout,
	}
	close(ready)

	slog.Info("starting metrics server", "addr", s.addr)
	return s.httpServer.Serve(ln)
}

// routes assembles the ops mux: the scrape endpoint plus health probes.
func (s *MetricsServer) routes() http.Handler {
	mux := http.NewServeMux()

	// The provider's scrape handler serves its private registry. When a
	// non-prometheus exporter is configured there is none, and the default
	// registry handler still exposes process metrics.
	scrape := s.scrape
	if scrape == nil {
		scrape = promhttp.Handler()
	}
	mux.Handle("/metrics", scrape)

	if s.health != nil {
		s.health.RegisterHealthEndpoints(mux)
		return mux
	}

	// Bare liveness probe for the ops server itself
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// instrument wraps a handler so requests are recorded as HTTP metrics.
func (s *MetricsServer) instrument(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		release := s.metrics.TrackHTTPInFlight(r.Context())
		defer release()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, sw.status, time.Since(start))
	})
}

// statusWriter captures the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Shutdown stops the server gracefully. Safe to call before Start.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	slog.Info("shutting down metrics server")
	return s.httpServer.Shutdown(ctx)
}

// Addr reports the server address: the configured one until Start binds a
// listener, the bound one after.
func (s *MetricsServer) Addr() string {
	return s.addr
}
