package server

import (
	"context"
	"sync"

	"github.com/drkstar360/Gmail-API-Async-Agent/internal/gmail"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/google"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/instrumentation"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/logging"
)

// ServerContext carries the shared state MCP tool handlers work against:
// per-account Gmail clients built lazily from the token provider, the
// logger, and the optional instrumentation hooks.
type ServerContext struct {
	ctx          context.Context
	cancel       context.CancelFunc
	tokens       google.TokenProvider
	gmailClients map[string]*gmail.Client // keyed by account name
	logger       logging.Logger
	metrics      *instrumentation.Metrics
	auditLogger  *instrumentation.AuditLogger
	mu           sync.RWMutex
	shutdown     bool
}

// NewServerContext creates a new server context. Gmail clients are created
// lazily per account from the token provider; a missing token for the
// default account is not an error at startup.
func NewServerContext(ctx context.Context, tokens google.TokenProvider, logger logging.Logger) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if tokens == nil {
		tokens = google.NewChainTokenProvider(
			google.NewEnvTokenProvider(""),
			google.NewFileTokenProvider(),
		)
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	return &ServerContext{
		ctx:          shutdownCtx,
		cancel:       cancel,
		tokens:       tokens,
		gmailClients: make(map[string]*gmail.Client),
		logger:       logger,
	}, nil
}

// Context returns the context cancelled on server shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the structured logger for the server.
func (sc *ServerContext) Logger() logging.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder used by tool handlers.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// AuditLogger returns the audit logger, or nil when audit logging is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger used by tool handlers.
func (sc *ServerContext) SetAuditLogger(auditLogger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = auditLogger
}

// GmailClientForAccount returns the cached Gmail client for an account,
// building one from the account's token on first use. Returns nil when the
// account has no token.
func (sc *ServerContext) GmailClientForAccount(account string) *gmail.Client {
	sc.mu.RLock()
	client, ok := sc.gmailClients[account]
	sc.mu.RUnlock()
	if ok {
		return client
	}
	return sc.buildGmailClient(account)
}

func (sc *ServerContext) buildGmailClient(account string) *gmail.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Another handler may have built the client since the read-locked check.
	if client, ok := sc.gmailClients[account]; ok {
		return client
	}

	if !sc.tokens.HasTokenForAccount(account) {
		return nil
	}
	token, err := sc.tokens.GetTokenForAccount(sc.ctx, account)
	if err != nil {
		sc.logger.Warn("failed to resolve token",
			logging.Account(account), logging.Err(err))
		return nil
	}

	client, err := gmail.NewClientForToken(sc.ctx, token.AccessToken)
	if err != nil {
		sc.logger.Warn("failed to create Gmail client",
			logging.Account(account), logging.Err(err))
		return nil
	}
	sc.logger.Debug("Gmail client ready",
		logging.Account(account), logging.Token(token.AccessToken))

	sc.gmailClients[account] = client
	return client
}

// GmailClient returns the Gmail client for the default account.
func (sc *ServerContext) GmailClient() *gmail.Client {
	return sc.GmailClientForAccount("default")
}

// SetGmailClientForAccount installs a client for an account, replacing any
// cached one. Tests use this to inject clients backed by fake transports.
func (sc *ServerContext) SetGmailClientForAccount(account string, client *gmail.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.gmailClients[account] = client
}

// SetGmailClient installs a client for the default account.
func (sc *ServerContext) SetGmailClient(client *gmail.Client) {
	sc.SetGmailClientForAccount("default", client)
}

// CachedClientCount reports how many accounts currently hold a cached Gmail client.
func (sc *ServerContext) CachedClientCount() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.gmailClients)
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context. Calling it again is a no-op.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.shutdown = true
	sc.cancel()
	return nil
}
