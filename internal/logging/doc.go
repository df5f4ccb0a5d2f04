// Package logging configures slog for the agent and fixes the attribute
// vocabulary the rest of the codebase logs with.
//
// NewLogger builds the JSON stderr logger that every command installs as
// the process default. Stdout stays reserved for MCP framing and command
// output. The Key constants together with the attr helpers (Service,
// Account, Err, ...) keep field names identical across packages.
//
// Raw identities never reach the log stream: UserHash reduces an address
// to a correlatable form, Token reduces a credential to its length.
package logging
