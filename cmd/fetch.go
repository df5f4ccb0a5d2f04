package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/drkstar360/Gmail-API-Async-Agent/internal/gmail"
	"github.com/drkstar360/Gmail-API-Async-Agent/internal/google"
)

func newFetchCmd() *cobra.Command {
	var (
		account     string
		token       string
		maxMessages int64
		timeout     time.Duration
		compact     bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a mailbox summary and print it as JSON",
		Long: `Fetch the Gmail labels, the user profile, and the most recent messages
in one concurrent batch, reduce each message to its essential fields, and
print the result as JSON on stdout.

The bearer token is resolved from --token, the GMAIL_ACCESS_TOKEN
environment variable, or the account's token file, in that order. Token
acquisition is not handled here; bring a token you already hold.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			accessToken, err := google.ResolveAccessToken(token, account)
			if err != nil {
				return err
			}

			ctx := context.Background()
			client, err := gmail.NewClientForToken(ctx, accessToken)
			if err != nil {
				return fmt.Errorf("failed to create Gmail client for account %s: %w", account, err)
			}
			client.SetMaxMessages(maxMessages)
			client.SetTimeout(timeout)

			summary, err := client.FetchSummary(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch summary: %w", err)
			}

			// Stdout carries only the result document.
			enc := json.NewEncoder(os.Stdout)
			if !compact {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(summary); err != nil {
				return fmt.Errorf("failed to encode summary: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use (default: 'default')")
	cmd.Flags().StringVar(&token, "token", "", "Bearer access token. Falls back to the GMAIL_ACCESS_TOKEN env var, then the account token file.")
	cmd.Flags().Int64Var(&maxMessages, "max-messages", gmail.DefaultMaxMessages, "Maximum number of recent messages to include, 1-10")
	cmd.Flags().DurationVar(&timeout, "timeout", gmail.DefaultFetchTimeout, "Overall timeout covering the whole fetch batch")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print the summary on a single line instead of indented")

	return cmd
}
