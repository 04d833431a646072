package main

import (
	"github.com/spf13/cobra"

	"flakestorm/internal/logging"
	mcpserver "flakestorm/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing run_storm, get_report and
verify_setup, so agent frameworks and editors can trigger storms directly.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	srv := mcpserver.NewServer(version)
	logging.New("mcp").Info("starting flakestorm MCP server over stdio")
	return srv.Run(cmd.Context())
}
