// Package google resolves pre-acquired Google API access tokens.
//
// Tokens are never acquired or refreshed here. Callers bring their own
// bearer token, which can arrive as an explicit value (command-line flag),
// through the GMAIL_ACCESS_TOKEN environment variable, or from a
// per-account token file in the user cache directory.
//
// The TokenProvider interface allows the different sources to be plugged
// into the server context, and ChainTokenProvider composes them with the
// usual flag-env-file precedence.
package google
