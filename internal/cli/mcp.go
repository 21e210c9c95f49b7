package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobmatch/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio transport)",
	Long: `Start the MCP (Model Context Protocol) server using stdio transport.

Assistants can score postings against user profiles, preview a run,
inspect the recency cache and read run history. Matching through MCP
never delivers and never marks postings as shown.

Example client configuration:

{
  "mcpServers": {
    "jobmatch": {
      "command": "/path/to/jobmatch",
      "args": ["mcp"]
    }
  }
}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	// Handle interrupt
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		cancel()
	}()

	env, err := openEnvironment(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	server := mcp.New(cfg, env.db, env.backend.Store, logger)
	return server.Start(ctx)
}
