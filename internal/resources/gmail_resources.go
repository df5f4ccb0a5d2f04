package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/drkstar360/Gmail-API-Async-Agent/internal/gmail"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/instrumentation"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/server"
)

// RegisterGmailResources registers read-only Gmail resources with the MCP
// server. Resources always serve the default account; clients that need
// another account use the tools, which take an account argument.
func RegisterGmailResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Mailbox summary resource
	summaryResource := mcp.NewResource(
		"gmail://summary",
		"Mailbox Summary",
		mcp.WithResourceDescription("Labels, profile, and the most recent messages reduced to their essential fields"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(summaryResource, tracedRead("summary", instrumentation.OperationFetchSummary,
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return handleSummaryResource(ctx, request, sc)
		}))

	// User profile resource
	profileResource := mcp.NewResource(
		"gmail://profile",
		"Gmail Profile",
		mcp.WithResourceDescription("Profile of the authenticated Gmail user"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(profileResource, tracedRead("profile", instrumentation.OperationGetProfile,
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return handleProfileResource(ctx, request, sc)
		}))

	// Labels resource
	labelsResource := mcp.NewResource(
		"gmail://labels",
		"Gmail Labels",
		mcp.WithResourceDescription("All labels in the Gmail mailbox, system and user-created"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(labelsResource, tracedRead("labels", instrumentation.OperationList,
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return handleLabelsResource(ctx, request, sc)
		}))

	return nil
}

type readFunc = func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)

// tracedRead wraps a resource read handler in a span named resource.<kind>.
// Resource reads bypass the tool middleware, so the span is created here.
func tracedRead(kind, operation string, read readFunc) readFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		attrs := instrumentation.NewSpanAttrs().
			WithService(instrumentation.ServiceGmail).
			WithOperation(operation).
			WithResource(kind, request.Params.URI).
			Build()
		ctx, span := instrumentation.StartSpan(ctx, "resource."+kind, attrs...)
		defer span.End()

		contents, err := read(ctx, request)
		if err != nil {
			instrumentation.SetSpanError(span, err)
			return nil, err
		}
		instrumentation.SetSpanSuccess(span)
		return contents, nil
	}
}

func defaultGmailClient(sc *server.ServerContext) (*gmail.Client, error) {
	client := sc.GmailClient()
	if client == nil {
		return nil, fmt.Errorf("no Gmail client available for the default account")
	}
	return client, nil
}

// jsonContents wraps a value as a single JSON resource content entry.
func jsonContents(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

// handleSummaryResource serves the whole mailbox summary as one document
func handleSummaryResource(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := defaultGmailClient(sc)
	if err != nil {
		return nil, err
	}

	summary, err := client.FetchSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch summary: %w", err)
	}

	return jsonContents(request.Params.URI, summary)
}

// handleProfileResource serves the Gmail profile of the default account
func handleProfileResource(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := defaultGmailClient(sc)
	if err != nil {
		return nil, err
	}

	profile, err := client.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	return jsonContents(request.Params.URI, profile)
}

// handleLabelsResource serves the label list of the default account
func handleLabelsResource(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := defaultGmailClient(sc)
	if err != nil {
		return nil, err
	}

	labels, err := client.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	return jsonContents(request.Params.URI, labels)
}
