package gmail_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/drkstar360/Gmail-API-Async-Agent/internal/instrumentation"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/server"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/tools/batch"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/tools/common"
)

// RegisterMessageTools registers message, label, and profile tools with the MCP server
func RegisterMessageTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Get message tool (supports single or multiple message IDs)
	getMessageTool := mcp.NewTool("gmail_get_message",
		mcp.WithDescription("Get one or more Gmail messages reduced to their essential fields (sender, subject, labels, timestamp, extracted text)"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs to fetch"),
		),
	)

	s.AddTool(getMessageTool, mcpserver.ToolHandlerFunc(common.InstrumentedToolHandlerWithService(
		"gmail_get_message", "gmail", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMessage(ctx, request, sc)
		})))

	// List labels tool
	listLabelsTool := mcp.NewTool("gmail_list_labels",
		mcp.WithDescription("List all labels in the Gmail mailbox, system and user-created"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(listLabelsTool, mcpserver.ToolHandlerFunc(common.InstrumentedToolHandlerWithService(
		"gmail_list_labels", "gmail", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, request, sc)
		})))

	// Get profile tool
	getProfileTool := mcp.NewTool("gmail_get_profile",
		mcp.WithDescription("Get the Gmail profile of the authenticated user (email address, message and thread totals)"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(getProfileTool, mcpserver.ToolHandlerFunc(common.InstrumentedToolHandlerWithService(
		"gmail_get_profile", "gmail", "get_profile", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetProfile(ctx, request, sc)
		})))

	return nil
}

func handleGetMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	// Parse ids - can be string or array
	ids, err := batch.ParseStringOrArray(args["ids"], "ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getGmailClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Process batch, one child span per message
	results := batch.ProcessBatch(ids, func(id string) (string, error) {
		msgCtx, span := instrumentation.StartGoogleAPISpan(ctx,
			instrumentation.ServiceGmail, instrumentation.OperationGet,
			instrumentation.NewSpanAttrs().WithResource("message", id).Build()...)
		defer span.End()

		email, err := client.GetEssentialMessage(msgCtx, id)
		if err != nil {
			instrumentation.SetSpanError(span, err)
			return "", err
		}
		data, err := json.Marshal(email)
		if err != nil {
			instrumentation.SetSpanError(span, err)
			return "", err
		}
		instrumentation.SetSpanSuccess(span)
		return string(data), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	client, err := getGmailClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	labels, err := client.ListLabels(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list labels: %v", err)), nil
	}

	result, err := json.MarshalIndent(labels, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal labels: %v", err)), nil
	}

	return mcp.NewToolResultText(string(result)), nil
}

func handleGetProfile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	client, err := getGmailClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	profile, err := client.GetProfile(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get profile: %v", err)), nil
	}

	result, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal profile: %v", err)), nil
	}

	return mcp.NewToolResultText(string(result)), nil
}
