// Package batch supports MCP tools that accept one or many Gmail message IDs.
//
// It parses parameters that arrive as a single string, an array, or a
// JSON-encoded array, runs an operation per ID, and aggregates the outcomes
// so one bad ID fails that item instead of the whole call.
package batch
