package main

import (
	"database/sql"

	"github.com/dmitrijs2005/cyclekeeper/internal/mcptools"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the read-only cycle tools over MCP stdio",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	return withDB(cmd.Context(), func(db *sql.DB) error {
		s := mcptools.NewServer(db, newRepositoryManager(), cfg)
		return server.ServeStdio(s)
	})
}
