package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// version is the build version stamped by main. Subcommands read it for
// --version output and for the MCP server identity.
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gmail-agent",
		Short: "Fetches Gmail mailbox summaries with extracted message text",
		Long: `gmail-agent fetches a Gmail user's labels, profile, and most recent
messages in one concurrent batch, reducing each message to its essential
fields with readable plain text extracted from the MIME part tree.

It can run as:
  - A standalone CLI tool printing the summary as JSON (default)
  - An MCP (Model Context Protocol) server for AI assistants

Bearer tokens are supplied by the caller; gmail-agent never acquires or
refreshes them.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(`{{printf "gmail-agent version %s\n" .Version}}`)

	root.AddCommand(
		newFetchCmd(),
		newServeCmd(),
		newVersionCmd(),
		newGenerateDocsCmd(),
	)
	return root
}

// Execute builds the command tree and runs it. Invoked with no arguments,
// the CLI falls through to the fetch subcommand.
func Execute(buildVersion string) {
	if buildVersion != "" {
		version = buildVersion
	}

	root := newRootCmd()

	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"fetch"}
	}
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
