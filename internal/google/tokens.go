package google

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// EnvAccessToken is the environment variable consulted for a bearer token.
const EnvAccessToken = "GMAIL_ACCESS_TOKEN"

// cacheDirName is the per-user cache subdirectory holding token files.
const cacheDirName = "gmail-agent"

// validateAccountName ensures account names are safe for use in file paths
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	for _, r := range account {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_') {
			return fmt.Errorf("account name %q contains invalid character %q", account, r)
		}
	}
	return nil
}

// getTokenFilePath returns the token file path for the given account
func getTokenFilePath(account string) string {
	return filepath.Join(userCacheDir(), cacheDirName, "google-"+account+".token")
}

// HasTokenForAccount checks if a token file exists for the specified account
func HasTokenForAccount(account string) bool {
	if err := validateAccountName(account); err != nil {
		return false
	}
	_, err := os.Stat(getTokenFilePath(account))
	return err == nil
}

// ReadTokenForAccount reads the stored access token for the specified
// account. The file holds the bearer token as its first whitespace-separated
// field; anything after it is ignored. This package never writes token
// files; the user places a token they already hold.
func ReadTokenForAccount(account string) (string, error) {
	if err := validateAccountName(account); err != nil {
		return "", err
	}

	tokenFile := getTokenFilePath(account)
	slurp, err := os.ReadFile(tokenFile)
	if err != nil {
		return "", fmt.Errorf("no token file for account %s: %w", account, err)
	}

	fields := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(fields) == 0 {
		return "", fmt.Errorf("token file %s is empty", tokenFile)
	}
	return fields[0], nil
}

// ResolveAccessToken resolves a bearer token with flag-over-environment
// precedence: the explicit value wins, then EnvAccessToken, then the
// account's token file. An empty result is an error carrying guidance for
// the user.
func ResolveAccessToken(explicit, account string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if token := os.Getenv(EnvAccessToken); token != "" {
		return token, nil
	}
	if HasTokenForAccount(account) {
		return ReadTokenForAccount(account)
	}
	return "", fmt.Errorf("no access token found: %s", GetAuthenticationErrorMessage(account))
}

// GetAuthenticationErrorMessage returns guidance for supplying a token for
// the given account.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf(
		"provide a bearer token via --token, the %s environment variable, or place one in %s (account %s). "+
			"Token acquisition is not handled here; use any OAuth tooling you already have.",
		EnvAccessToken, getTokenFilePath(account), account)
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		panic("No Windows TEMP or TMP environment variables found")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
