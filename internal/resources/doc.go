// Package resources provides MCP resources exposing read-only Gmail data.
// Resources are data sources MCP clients can fetch without invoking a tool:
// the mailbox summary, the user profile, and the label list.
//
// Resources are bound to the default account. Multi-account access goes
// through the tools, which accept an account argument per call.
package resources
