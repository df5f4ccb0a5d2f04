// Package common carries the plumbing shared by the MCP tool packages:
// account extraction from tool arguments and handler wrappers that add
// logging, metrics, and audit events around each invocation.
package common
