package main

import (
	"context"

	"github.com/spf13/cobra"

	"rnse/internal/logging"
	mcpserver "rnse/internal/mcp"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Serve exposes the verify_bundle tool over MCP on stdin/stdout. Relative
bundle paths in tool calls resolve against the working directory.

The server exits when its parent process goes away.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := mcpserver.NewServer(version)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			mcpserver.WatchParent(ctx, mcpserver.DefaultWatchInterval, cancel)

			logging.New("mcp").Info("starting rnse MCP server over stdio", "root", srv.Root)
			return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
		},
	}
}
