package services

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cyclekeeper/internal/cycle"
	"github.com/dmitrijs2005/cyclekeeper/internal/models"
	"github.com/dmitrijs2005/cyclekeeper/internal/tolerance"
)

const (
	ReplyWelcome = "Hi! I'll send you reminders on your schedule and keep track of your coffee/nicotine cycle.\n\n" + helpBody
	ReplyHelp    = "Commands:\n\n" + helpBody

	ReplyNotAllowed   = "Sorry, this bot is private."
	ReplyPaused       = "Tracking is paused. Send /resume to continue."
	ReplyNotPaused    = "Tracking is not paused."
	ReplyResumed      = "Welcome back! Tracking resumed."
	ReplyPausedNow    = "Paused. No cycle notifications until you send /resume."
	ReplyNoCycle      = "No cycle yet. Send /begin to start one today."
	ReplyNoReminders  = "You have no reminders. Use /add to create one."
	ReplyNoDeletable  = "You have no reminders to delete."
	ReplyAskDelete    = "Which reminder do you want to delete?"
	ReplyNoData       = "No check-ins yet. Use /log to record one."
	ReplyExportOff    = "Export is not configured on this server."
	ReplyExportFailed = "Export failed. Please try again later."
	ReplyStoreError   = "Something went wrong. Please try again."

	ReminderPrefix = "⏰ "
	AutoLogNote    = "auto-closed: no check-in"

	helpBody = "/add - add a new reminder\n" +
		"/list - see your reminders\n" +
		"/delete - remove a reminder\n" +
		"/cancel - cancel current action\n\n" +
		"/begin - start the cycle today\n" +
		"/status - where you are in the cycle\n" +
		"/log [units [note]] - record today's units\n" +
		"/skip - jump to the next phase\n" +
		"/reset - restart the current phase today\n" +
		"/settime - change morning and evening times\n" +
		"/setdose - change daily targets\n" +
		"/pause, /resume - stop or restart notifications\n" +
		"/history [N] - statistics over the last N entries\n" +
		"/chart - chart of your history\n" +
		"/export - download your history as CSV"
)

func phaseLabel(p models.Phase) string {
	if p == models.PhaseNicotine {
		return "🚬 NICOTINE"
	}
	return "☕ COFFEE"
}

func phaseLength(p models.Phase) int {
	if p == models.PhaseNicotine {
		return cycle.Length - cycle.CoffeeLength
	}
	return cycle.CoffeeLength
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func statusText(cfg *models.CycleConfig, info cycle.Info, today *models.LogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s phase, day %d of %d (cycle day %d/%d)\n",
		phaseLabel(info.Phase), info.PhaseDay, phaseLength(info.Phase), info.CycleDay, cycle.Length)
	fmt.Fprintf(&b, "%s left in this phase, including today.\n", plural(info.DaysRemaining, "day", "days"))
	fmt.Fprintf(&b, "Daily target: %d\n", cfg.Target(info.Phase))
	switch {
	case today.HasData():
		fmt.Fprintf(&b, "Today: %d logged\n", *today.Units)
	case today != nil:
		b.WriteString("Today: closed without a check-in\n")
	default:
		b.WriteString("Today: not logged yet\n")
	}
	fmt.Fprintf(&b, "Morning %s, evening %s", cfg.MorningTime, cfg.EveningTime)
	if cfg.Paused {
		b.WriteString("\n(paused)")
	}
	return b.String()
}

func morningText(cfg *models.CycleConfig, info cycle.Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Good morning! Cycle day %d/%d: %s day %d.\n",
		info.CycleDay, cycle.Length, phaseLabel(info.Phase), info.PhaseDay)
	if info.PhaseDay == 1 {
		b.WriteString("A new phase starts today.\n")
	}
	fmt.Fprintf(&b, "Today's target: %d. %s left in this phase.", cfg.Target(info.Phase), plural(info.DaysRemaining, "day", "days"))
	return b.String()
}

func eveningText(cfg *models.CycleConfig, info cycle.Info, prompt string) string {
	return fmt.Sprintf("Evening check-in (%s, target %d).\n\n%s", phaseLabel(info.Phase), cfg.Target(info.Phase), prompt)
}

func nudgeText(prompt string) string {
	return "You haven't checked in today yet.\n\n" + prompt
}

func autoLogText() string {
	return "No check-in today, so I've closed the day without data."
}

func loggedText(cfg *models.CycleConfig, phase models.Phase, units int, warn bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Logged %d for today (%s, target %d).", units, phaseLabel(phase), cfg.Target(phase))
	if warn {
		fmt.Fprintf(&b, "\n\n⚠️ %d %s days in a row at %d or more. Consider easing off.",
			tolerance.WarningRun, strings.ToLower(string(phase)), tolerance.Threshold(cfg, phase))
	}
	return b.String()
}

func reminderSetText(time, message, days string) string {
	return fmt.Sprintf("Reminder set!\n\nTime: %s\nMessage: %s\nRepeat: %s", time, message, days)
}

func reminderListText(rules []*models.ReminderRule) string {
	lines := []string{"Your reminders:\n"}
	for _, r := range rules {
		lines = append(lines, fmt.Sprintf("#%d  %s  [%s]\n    %s", r.ID, r.Time, r.Days, r.Message))
	}
	return strings.Join(lines, "\n\n")
}

func deleteButtonText(r *models.ReminderRule) string {
	msg := r.Message
	if runes := []rune(msg); len(runes) > 30 {
		msg = string(runes[:30])
	}
	return fmt.Sprintf("#%d  %s  %s", r.ID, r.Time, msg)
}

func historyText(n int, st tolerance.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Last %s:\n\n", plural(st.Entries, "entry", "entries"))
	for _, ps := range []tolerance.PhaseStats{st.Coffee, st.Nicotine} {
		if ps.Count == 0 {
			fmt.Fprintf(&b, "%s: no data\n", phaseLabel(ps.Phase))
			continue
		}
		fmt.Fprintf(&b, "%s: avg %.1f over %s", phaseLabel(ps.Phase), ps.Average, plural(ps.Count, "day", "days"))
		if ps.TrendingUp {
			b.WriteString(", trending up")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nLongest streak within target: %s\n", plural(st.LongestStreak, "day", "days"))
	fmt.Fprintf(&b, "Current streak: %s", plural(st.CurrentStreak, "day", "days"))
	if st.Entries < n {
		fmt.Fprintf(&b, "\n(asked for %d, only %d recorded)", n, st.Entries)
	}
	return b.String()
}
