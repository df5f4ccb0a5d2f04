// Package cmd wires up the gmail-agent command-line interface.
//
// Subcommands:
//   - fetch: print a mailbox summary (labels, profile, recent messages) as JSON
//   - serve: run the MCP server exposing Gmail summary tools on stdio
//   - generate-docs: render the markdown reference for the MCP tools
//   - version: print version information
//
// Running the binary with no subcommand is equivalent to running fetch.
package cmd
