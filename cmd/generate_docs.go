package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/drkstar360/Gmail-API-Async-Agent/internal/server"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Render the markdown reference for the MCP tools this server exposes.

Tools are registered through the same path the serve command uses, so the
generated reference always matches the served tool set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	// Doc generation never calls the Gmail API, so no credentials are needed.
	sc, err := server.NewServerContext(context.Background(), nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = sc.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("gmail-agent", version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := registerAll(mcpSrv, sc); err != nil {
		return err
	}

	var tools []mcp.Tool
	for _, st := range mcpSrv.ListTools() {
		tools = append(tools, st.Tool)
	}
	doc := toolReference(tools)

	if outputFile == "" {
		fmt.Print(doc)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(doc), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	return nil
}

// toolReference renders the markdown reference for the given tools, sorted
// by name.
func toolReference(tools []mcp.Tool) string {
	sorted := slices.Clone(tools)
	slices.SortFunc(sorted, func(a, b mcp.Tool) int {
		return strings.Compare(a.Name, b.Name)
	})

	var b strings.Builder
	b.WriteString("# MCP Tools Reference\n\n")
	b.WriteString("Tools exposed by `gmail-agent serve`. This file is generated from the\n")
	b.WriteString("tool definitions; edit those, not this file.\n\n")
	b.WriteString("All tools are read-only. The optional `account` argument selects which\n")
	b.WriteString("stored token to use and defaults to `default`.\n\n")

	for _, tool := range sorted {
		writeToolSection(&b, tool)
	}
	return b.String()
}

func writeToolSection(b *strings.Builder, tool mcp.Tool) {
	fmt.Fprintf(b, "## %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(b, "%s\n\n", tool.Description)
	}
	if len(tool.InputSchema.Properties) == 0 {
		return
	}

	names := make([]string, 0, len(tool.InputSchema.Properties))
	for name := range tool.InputSchema.Properties {
		names = append(names, name)
	}
	slices.Sort(names)

	b.WriteString("**Arguments:**\n")
	for _, name := range names {
		prop, ok := tool.InputSchema.Properties[name].(map[string]interface{})
		if !ok {
			continue
		}
		requirement := "optional"
		if slices.Contains(tool.InputSchema.Required, name) {
			requirement = "required"
		}
		fmt.Fprintf(b, "- `%s` (%s): %s\n", name, requirement, propertyDoc(prop))
	}
	b.WriteString("\n")
}

// propertyDoc falls back to the declared type when a property carries no
// description.
func propertyDoc(prop map[string]interface{}) string {
	if desc, ok := prop["description"].(string); ok && desc != "" {
		return desc
	}
	if t, ok := prop["type"].(string); ok {
		return t + " parameter"
	}
	return "parameter"
}
