package main

import (
	atlasmcp "github.com/claude/atlas/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func mcpCmd(rt *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the workout tools over MCP on stdio",
		Long: `Serve the workout tools over the Model Context Protocol on stdin/stdout,
for use by MCP-capable assistants. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := atlasmcp.New(rt.client, rt.session, Version, atlasmcp.Options{
				Streaming:   rt.cfg.Features.Streaming,
				HistoryDays: rt.cfg.History.Days,
				AllowDelete: rt.cfg.Features.Delete,
			}, rt.log)
			rt.log.Info("mcp server starting", "transport", "stdio", "backend", rt.cfg.Server.URL)
			return server.ServeStdio(srv)
		},
	}
}
