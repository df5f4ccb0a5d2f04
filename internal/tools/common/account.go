package common

import "context"

// DefaultAccount is the account name handlers fall back to when a tool
// call does not name one.
const DefaultAccount = "default"

// GetAccountFromArgs returns the account a tool call addresses. The
// context is unused today; transports that carry caller identity can
// plug in here without touching call sites.
func GetAccountFromArgs(_ context.Context, args map[string]interface{}) string {
	account, ok := args["account"].(string)
	if !ok || account == "" {
		return DefaultAccount
	}
	return account
}
