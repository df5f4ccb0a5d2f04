package gmail_tools

import (
	"errors"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/drkstar360/Gmail-API-Async-Agent/internal/gmail"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/google"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/server"
)

// RegisterGmailTools registers every Gmail tool on the MCP server: the
// mailbox summary tool plus the message, label, and profile tools.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterSummaryTools(s, sc); err != nil {
		return fmt.Errorf("registering summary tools: %w", err)
	}
	if err := RegisterMessageTools(s, sc); err != nil {
		return fmt.Errorf("registering message tools: %w", err)
	}
	return nil
}

// getGmailClient returns the cached or lazily created Gmail client for the
// given account. When no token can be resolved for the account the returned
// error tells the caller where to put one.
func getGmailClient(account string, sc *server.ServerContext) (*gmail.Client, error) {
	client := sc.GmailClientForAccount(account)
	if client == nil {
		return nil, errors.New(google.GetAuthenticationErrorMessage(account))
	}
	return client, nil
}
