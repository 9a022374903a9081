// Package mcptools exposes read-only views of a subject's cycle as MCP
// tools, so an assistant can answer questions about the current phase and
// recent consumption.
//
// Each tool is a struct with its dependencies injected by constructor,
// a Definition() returning the mcp.Tool schema and a Handle() method.
package mcptools

import (
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/dbx"
	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/repomanager"
	"github.com/mark3labs/mcp-go/mcp"
)

// deps is what every tool reads through.
type deps struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	ownerChatID int64
	loc         *time.Location
	now         func() time.Time
}

// intArg extracts an integer argument, returning defaultVal if the key is
// missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int64) int64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int64(v)
}

func (d *deps) chatID(req mcp.CallToolRequest) (int64, bool) {
	id := intArg(req, "chat_id", d.ownerChatID)
	return id, id != 0
}

func (d *deps) localNow() time.Time {
	return d.now().In(d.loc)
}
