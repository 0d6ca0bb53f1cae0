package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmirror/internal/adapters/driving/mcp"
	"github.com/custodia-labs/docmirror/internal/logger"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server and background tasks",
	Long: `Start the Model Context Protocol server for AI assistant integration,
together with the scheduler that periodically resyncs every stored root and
drops expired session tokens.

By default, the server communicates over stdio using JSON-RPC. Use --port
to serve over HTTP instead.

Examples:
  # Stdio mode (for desktop assistants)
  docmirror serve

  # HTTP mode (for MCP Inspector, remote access)
  docmirror serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "docmirror": {
        "command": "/path/to/docmirror",
        "args": ["serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (0 = use stdio)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Search:     searchService,
		Sync:       syncService,
		Conversion: conversionService,
		Session:    sessionService,
		Document:   documentService,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	defer startScheduler(ctx)()

	if servePort > 0 {
		addr := fmt.Sprintf(":%d", servePort)
		// stdout belongs to the protocol only in stdio mode.
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}
	return server.Run(ctx)
}

// startScheduler runs the background tasks for a long-running command when
// they are enabled. The returned function stops them.
func startScheduler(ctx context.Context) func() {
	if scheduler == nil || !schedulerConfig.Enabled {
		return func() {}
	}
	go func() {
		if err := scheduler.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("scheduler stopped: %v", err)
		}
	}()
	return func() {
		if err := scheduler.Stop(); err != nil {
			logger.Warn("scheduler stop: %v", err)
		}
	}
}
