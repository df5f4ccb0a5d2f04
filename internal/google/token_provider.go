package google

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

// TokenProvider is an interface for supplying bearer tokens for Google APIs.
// This abstraction allows different token sources (static, environment,
// file-based) to be plugged into the server context. Providers only surface
// tokens the caller already holds; none of them acquire or refresh tokens.
type TokenProvider interface {
	// GetTokenForAccount retrieves a token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

// StaticTokenProvider serves one fixed token for every account. Used when
// the token arrives on the command line or is resolved before startup.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider around a fixed access token.
func NewStaticTokenProvider(accessToken string) *StaticTokenProvider {
	return &StaticTokenProvider{token: accessToken}
}

// GetTokenForAccount returns the fixed token regardless of account.
func (p *StaticTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	if p.token == "" {
		return nil, fmt.Errorf("no access token configured")
	}
	return &oauth2.Token{AccessToken: p.token, TokenType: "Bearer"}, nil
}

// HasTokenForAccount reports whether a token was configured.
func (p *StaticTokenProvider) HasTokenForAccount(account string) bool {
	return p.token != ""
}

// EnvTokenProvider reads the token from an environment variable on every
// request, so externally rotated tokens are picked up without a restart.
type EnvTokenProvider struct {
	envVar string
}

// NewEnvTokenProvider creates a provider reading the given environment
// variable. An empty name defaults to EnvAccessToken.
func NewEnvTokenProvider(envVar string) *EnvTokenProvider {
	if envVar == "" {
		envVar = EnvAccessToken
	}
	return &EnvTokenProvider{envVar: envVar}
}

// GetTokenForAccount returns the token from the environment.
func (p *EnvTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	token := os.Getenv(p.envVar)
	if token == "" {
		return nil, fmt.Errorf("environment variable %s is not set", p.envVar)
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// HasTokenForAccount reports whether the environment variable is set.
func (p *EnvTokenProvider) HasTokenForAccount(account string) bool {
	return os.Getenv(p.envVar) != ""
}

// FileTokenProvider provides tokens from per-account files in the user
// cache directory (for STDIO setups).
type FileTokenProvider struct{}

// NewFileTokenProvider creates a new file-based token provider
func NewFileTokenProvider() *FileTokenProvider {
	return &FileTokenProvider{}
}

// GetTokenForAccount retrieves a token from disk for the specified account
func (p *FileTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	accessToken, err := ReadTokenForAccount(account)
	if err != nil {
		return nil, fmt.Errorf("failed to read token for account %s: %w", account, err)
	}
	return &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}, nil
}

// HasTokenForAccount checks if a token file exists for the specified account
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return HasTokenForAccount(account)
}

// ChainTokenProvider consults providers in order and serves the first token
// found. This backs the flag-env-file precedence of the CLI.
type ChainTokenProvider struct {
	providers []TokenProvider
}

// NewChainTokenProvider creates a provider chaining the given providers.
func NewChainTokenProvider(providers ...TokenProvider) *ChainTokenProvider {
	return &ChainTokenProvider{providers: providers}
}

// GetTokenForAccount returns the first available token.
func (p *ChainTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	for _, provider := range p.providers {
		if provider.HasTokenForAccount(account) {
			return provider.GetTokenForAccount(ctx, account)
		}
	}
	return nil, fmt.Errorf("no token available for account %s: %s", account, GetAuthenticationErrorMessage(account))
}

// HasTokenForAccount reports whether any chained provider has a token.
func (p *ChainTokenProvider) HasTokenForAccount(account string) bool {
	for _, provider := range p.providers {
		if provider.HasTokenForAccount(account) {
			return true
		}
	}
	return false
}
