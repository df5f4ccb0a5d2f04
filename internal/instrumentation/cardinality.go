package instrumentation

import "strings"

// unknownDomain stands in for addresses the domain cannot be read from, so
// malformed input collapses into one label value instead of many.
const unknownDomain = "unknown"

// ExtractUserDomain reduces an email address to its domain. Full addresses
// are unbounded as a metric label; domains are bounded by the set of
// customer organizations. Anything without exactly one non-empty domain part
// maps to "unknown".
func ExtractUserDomain(email string) string {
	_, domain, found := strings.Cut(email, "@")
	if !found || domain == "" || strings.Contains(domain, "@") {
		return unknownDomain
	}
	return domain
}

// Common operation types for Google API metrics.
// Status and Service constants are defined in config.go.
const (
	OperationList         = "list"
	OperationGet          = "get"
	OperationGetProfile   = "get_profile"
	OperationFetchSummary = "fetch_summary"
)
