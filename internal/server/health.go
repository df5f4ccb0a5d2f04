package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Status values the probe endpoints report. Orchestrators match on them.
const (
	statusHealthy      = "ok"
	statusNotReady     = "not ready"
	statusShuttingDown = "shutting down"
)

// HealthResponse is the JSON document served by /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse extends the probe response with uptime and the
// number of accounts holding a live Gmail client.
type DetailedHealthResponse struct {
	Status       string            `json:"status"`
	Uptime       string            `json:"uptime"`
	GmailClients int               `json:"gmail_clients"`
	Checks       map[string]string `json:"checks,omitempty"`
}

// HealthChecker answers Kubernetes liveness and readiness probes for the
// operational server. A fresh checker reports ready until SetReady or a
// server shutdown withdraws it.
type HealthChecker struct {
	ready atomic.Bool

	// serverContext supplies shutdown state and the cached-client count;
	// may be nil in tests.
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker creates a checker bound to sc, which may be nil.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness gate reported by /readyz. Serve withdraws
// readiness before stopping the listener so probes drain traffic first.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the server should receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// RegisterHealthEndpoints mounts the probe endpoints on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

// LivenessHandler serves /healthz. Liveness only says the process is up;
// failing it tells the orchestrator to restart the pod, so nothing beyond
// that is checked here.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: statusHealthy})
	})
}

// ReadinessHandler serves /readyz. Readiness gates traffic: it fails while
// the gate is closed or the server is shutting down.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks, ok := h.runChecks()

		code := http.StatusOK
		body := HealthResponse{Status: statusHealthy, Checks: checks}
		if !ok {
			code = http.StatusServiceUnavailable
			body.Status = statusNotReady
		}
		respondJSON(w, code, body)
	})
}

// DetailedHealthHandler serves /healthz/detailed for operators.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks, ok := h.runChecks()

		code := http.StatusOK
		body := DetailedHealthResponse{
			Status: statusHealthy,
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
			Checks: checks,
		}
		if h.serverContext != nil {
			body.GmailClients = h.serverContext.CachedClientCount()
		}
		if !ok {
			code = http.StatusServiceUnavailable
			body.Status = statusNotReady
			if h.shuttingDown() {
				body.Status = statusShuttingDown
			}
		}
		respondJSON(w, code, body)
	})
}

// runChecks evaluates every readiness condition and reports whether all of
// them passed.
func (h *HealthChecker) runChecks() (map[string]string, bool) {
	checks := map[string]string{
		"ready":    statusHealthy,
		"shutdown": statusHealthy,
	}
	ok := true

	if !h.ready.Load() {
		checks["ready"] = statusNotReady
		ok = false
	}
	if h.shuttingDown() {
		checks["shutdown"] = statusShuttingDown
		ok = false
	}
	return checks, ok
}

func (h *HealthChecker) shuttingDown() bool {
	return h.serverContext != nil && h.serverContext.IsShutdown()
}

func respondJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
