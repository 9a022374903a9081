package mcptools

import (
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/config"
	"github.com/dmitrijs2005/cyclekeeper/internal/dbx"
	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/repomanager"
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported in the MCP handshake.
var Version = "dev"

const instructions = `Read-only access to a coffee/nicotine cycle tracker.
Use cycle_status for today's phase and target, history_stats for recent averages and streaks.`

// NewServer builds an MCP server with every tool registered.
func NewServer(db dbx.DBTX, m repomanager.RepositoryManager, cfg *config.Config) *server.MCPServer {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.UTC
	}
	d := deps{db: db, repomanager: m, ownerChatID: cfg.OwnerChatID, loc: loc, now: time.Now}

	s := server.NewMCPServer(
		"cyclekeeper",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	statusTool := newStatusTool(d)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	historyTool := newHistoryTool(d, cfg.HistoryWindow)
	s.AddTool(historyTool.Definition(), historyTool.Handle)

	return s
}
