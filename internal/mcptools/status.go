package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cyclekeeper/internal/common"
	"github.com/dmitrijs2005/cyclekeeper/internal/cycle"
	"github.com/dmitrijs2005/cyclekeeper/internal/timex"
	"github.com/mark3labs/mcp-go/mcp"
)

// StatusTool handles the cycle_status MCP tool.
type StatusTool struct {
	deps
}

func newStatusTool(d deps) *StatusTool {
	return &StatusTool{deps: d}
}

// Definition returns the MCP tool definition for cycle_status.
func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("cycle_status",
		mcp.WithDescription(
			"Show today's position in the 7-day coffee/nicotine cycle: phase, phase day, "+
				"days remaining, daily target and whether today has been logged.",
		),
		mcp.WithNumber("chat_id",
			mcp.Description("Telegram chat id of the subject. Defaults to the configured owner."),
		),
	)
}

// Handle processes the cycle_status tool call.
func (t *StatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID, ok := t.chatID(req)
	if !ok {
		return mcp.NewToolResultError("chat_id is required when no owner is configured"), nil
	}

	cfg, err := t.repomanager.Cycles(t.db).Get(ctx, chatID)
	if errors.Is(err, common.ErrorNotFound) {
		return mcp.NewToolResultText(fmt.Sprintf("No cycle has been started for chat %d.", chatID)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load cycle: %v", err)), nil
	}

	today := timex.DateOf(t.localNow())
	entry, err := t.repomanager.Logs(t.db).Get(ctx, chatID, today)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load today's entry: %v", err)), nil
	}

	info := cycle.Calculate(cfg.CycleStart, today)

	var sb strings.Builder
	sb.WriteString("## Cycle Status\n\n")
	sb.WriteString(fmt.Sprintf("- **Date**: %s\n", timex.FormatDate(today)))
	sb.WriteString(fmt.Sprintf("- **Cycle day**: %d/%d\n", info.CycleDay, cycle.Length))
	sb.WriteString(fmt.Sprintf("- **Phase**: %s (day %d, %d remaining)\n", info.Phase, info.PhaseDay, info.DaysRemaining))
	sb.WriteString(fmt.Sprintf("- **Target**: %d\n", cfg.Target(info.Phase)))
	switch {
	case entry.HasData():
		sb.WriteString(fmt.Sprintf("- **Today**: %d logged\n", *entry.Units))
	case entry != nil:
		sb.WriteString("- **Today**: closed without data\n")
	default:
		sb.WriteString("- **Today**: not logged\n")
	}
	sb.WriteString(fmt.Sprintf("- **Schedule**: morning %s, evening %s\n", cfg.MorningTime, cfg.EveningTime))
	if cfg.Paused {
		sb.WriteString("- **Paused**: yes\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}
