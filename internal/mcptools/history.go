package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cyclekeeper/internal/common"
	"github.com/dmitrijs2005/cyclekeeper/internal/tolerance"
	"github.com/mark3labs/mcp-go/mcp"
)

const maxDays = 90

// HistoryTool handles the history_stats MCP tool.
type HistoryTool struct {
	deps
	window int
}

func newHistoryTool(d deps, window int) *HistoryTool {
	return &HistoryTool{deps: d, window: window}
}

// Definition returns the MCP tool definition for history_stats.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("history_stats",
		mcp.WithDescription(
			"Summarise the most recent daily entries: per-phase average and trend, "+
				"longest and current within-target streaks.",
		),
		mcp.WithNumber("chat_id",
			mcp.Description("Telegram chat id of the subject. Defaults to the configured owner."),
		),
		mcp.WithNumber("days",
			mcp.Description(fmt.Sprintf("How many recent entries to analyse (1-%d).", maxDays)),
		),
	)
}

// Handle processes the history_stats tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID, ok := t.chatID(req)
	if !ok {
		return mcp.NewToolResultError("chat_id is required when no owner is configured"), nil
	}
	n := int(min(max(intArg(req, "days", int64(t.window)), 1), maxDays))

	cfg, err := t.repomanager.Cycles(t.db).Get(ctx, chatID)
	if errors.Is(err, common.ErrorNotFound) {
		return mcp.NewToolResultText(fmt.Sprintf("No cycle has been started for chat %d.", chatID)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load cycle: %v", err)), nil
	}

	entries, err := t.repomanager.Logs(t.db).ListRecent(ctx, chatID, n)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load history: %v", err)), nil
	}

	st := tolerance.Analyze(entries, cfg)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## History (last %d entries, %d requested)\n\n", st.Entries, n))
	for _, ps := range []tolerance.PhaseStats{st.Coffee, st.Nicotine} {
		if ps.Count == 0 {
			sb.WriteString(fmt.Sprintf("- **%s**: no data\n", ps.Phase))
			continue
		}
		trend := "steady"
		if ps.TrendingUp {
			trend = "trending up"
		}
		sb.WriteString(fmt.Sprintf("- **%s**: avg %.1f over %d days, %s (target %d)\n",
			ps.Phase, ps.Average, ps.Count, trend, cfg.Target(ps.Phase)))
	}
	sb.WriteString(fmt.Sprintf("- **Longest streak within target**: %d\n", st.LongestStreak))
	sb.WriteString(fmt.Sprintf("- **Current streak**: %d\n", st.CurrentStreak))

	return mcp.NewToolResultText(sb.String()), nil
}
