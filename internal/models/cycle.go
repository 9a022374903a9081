// Package models defines the records persisted in the database.
package models

import "time"

// Phase names the regime that is active on a cycle day.
type Phase string

const (
	PhaseCoffee   Phase = "COFFEE"
	PhaseNicotine Phase = "NICOTINE"
)

// CycleConfig is the single per-subject cycle configuration.
type CycleConfig struct {
	ChatID int64
	// CycleStart is a calendar date (midnight UTC, see timex.DateOf).
	CycleStart     time.Time
	MorningTime    string
	EveningTime    string
	CoffeeTarget   int
	NicotineTarget int
	Paused         bool
}

// Target returns the daily unit target for the given phase.
func (c *CycleConfig) Target(p Phase) int {
	if p == PhaseNicotine {
		return c.NicotineTarget
	}
	return c.CoffeeTarget
}

// LogEntry is one day of a subject's history, unique per (ChatID, Date).
// Units == nil records a day that was closed out without data.
type LogEntry struct {
	ChatID   int64
	Date     time.Time
	Phase    Phase
	Units    *int
	Note     *string
	LoggedAt *time.Time
}

// HasData reports whether the entry carries a consumed-units value.
func (e *LogEntry) HasData() bool {
	return e != nil && e.Units != nil
}
