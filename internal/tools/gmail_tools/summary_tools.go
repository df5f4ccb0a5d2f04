package gmail_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/drkstar360/Gmail-API-Async-Agent/internal/instrumentation"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/logging"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/server"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/tools/common"
)

// RegisterSummaryTools registers the mailbox summary tool with the MCP server
func RegisterSummaryTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Fetch summary tool
	fetchSummaryTool := mcp.NewTool("gmail_fetch_summary",
		mcp.WithDescription("Fetch a mailbox summary: all labels, the user profile, and the most recent messages reduced to their essential fields"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithNumber("max_messages",
			mcp.Description("Maximum number of recent messages to include, 1-10 (default: 10)"),
		),
	)

	s.AddTool(fetchSummaryTool, mcpserver.ToolHandlerFunc(common.InstrumentedToolHandlerWithService(
		"gmail_fetch_summary", "gmail", "fetch_summary", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFetchSummary(ctx, request, sc)
		})))

	return nil
}

func handleFetchSummary(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	client, err := getGmailClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Per-call message cap without mutating the cached client
	if maxVal, ok := args["max_messages"].(float64); ok {
		client = client.WithMaxMessages(int64(maxVal))
	}

	summary, err := client.FetchSummary(ctx)
	if err != nil {
		recordSummaryFetch(ctx, sc, instrumentation.StatusError, 0)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch summary: %v", err)), nil
	}
	recordSummaryFetch(ctx, sc, instrumentation.StatusSuccess, len(summary.Emails))
	sc.Logger().Debug("summary fetched",
		logging.UserHash(summary.Profile.EmailAddress),
		"messages", len(summary.Emails))

	result, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal summary: %v", err)), nil
	}

	return mcp.NewToolResultText(string(result)), nil
}

func recordSummaryFetch(ctx context.Context, sc *server.ServerContext, status string, messageCount int) {
	if metrics := sc.Metrics(); metrics != nil {
		metrics.RecordSummaryFetch(ctx, status, messageCount)
	}
}
