// Package gmail_tools provides MCP (Model Context Protocol) tools for interacting with Gmail.
//
// This package exposes Gmail functionality through MCP tools that can be called by
// AI agents or other MCP clients. It provides capabilities for:
//
// Mailbox Summary:
//   - gmail_fetch_summary: Fetch labels, profile, and the most recent messages
//     reduced to their essential fields, as a single JSON document
//
// Messages, Labels, and Profile:
//   - gmail_get_message: Get one or more messages reduced to their essential fields
//   - gmail_list_labels: List all labels in the mailbox
//   - gmail_get_profile: Get the authenticated user's profile
//
// All tools are read-only and accept an optional "account" argument so multiple
// Google accounts can be served from one process. Clients are created lazily
// from pre-acquired bearer tokens resolved through the server context; token
// acquisition and refresh are out of scope.
//
// Example usage:
//
//	// Fetch a summary of the five most recent messages
//	gmail_fetch_summary(max_messages: 5)
//
//	// Get several messages in one call
//	gmail_get_message(ids: ["msg123", "msg456"])
//
//	// List labels for a secondary account
//	gmail_list_labels(account: "work")
//
// Every tool is registered through the instrumented handler wrapper, so
// invocations produce metrics, traces, and audit log entries when the
// instrumentation provider is enabled.
package gmail_tools
