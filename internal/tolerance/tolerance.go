// Package tolerance analyses a subject's log history: the three-day
// over-target warning and the rolling statistics shown by /history.
package tolerance

import (
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/models"
)

// WarningRun is how many consecutive same-phase days over threshold trigger
// a warning.
const WarningRun = 3

// Threshold is the unit count at or above which a day counts towards a
// warning: target+1 for COFFEE, target+2 for NICOTINE.
func Threshold(cfg *models.CycleConfig, phase models.Phase) int {
	if phase == models.PhaseNicotine {
		return cfg.NicotineTarget + 2
	}
	return cfg.CoffeeTarget + 1
}

// Warning looks at the WarningRun most recent entries of phase that carry
// data. entries must be ordered by date descending.
func Warning(entries []*models.LogEntry, phase models.Phase, cfg *models.CycleConfig) bool {
	threshold := Threshold(cfg, phase)
	seen := 0
	for _, e := range entries {
		if !e.HasData() || e.Phase != phase {
			continue
		}
		if *e.Units < threshold {
			return false
		}
		seen++
		if seen == WarningRun {
			return true
		}
	}
	return false
}

// PhaseStats summarises the data points of one phase.
type PhaseStats struct {
	Phase      models.Phase
	Count      int
	Average    float64
	TrendingUp bool
}

// Stats is the result of Analyze.
type Stats struct {
	Coffee   PhaseStats
	Nicotine PhaseStats
	// LongestStreak is the longest run of data days within their phase target.
	LongestStreak int
	// CurrentStreak is the run ending at the most recent data day.
	CurrentStreak int
	Entries       int
}

// Analyze computes per-phase averages, the coarse trend flag and the
// within-target streaks. entries must be ordered by date descending and
// should already be limited to the window of interest.
//
// Only entries with data take part, so a missing day or a closed-out day
// never breaks a streak.
func Analyze(entries []*models.LogEntry, cfg *models.CycleConfig) Stats {
	var coffee, nicotine []int
	st := Stats{Entries: len(entries)}

	run := 0
	current := true
	for _, e := range entries {
		if !e.HasData() {
			continue
		}
		units := *e.Units
		if e.Phase == models.PhaseNicotine {
			nicotine = append(nicotine, units)
		} else {
			coffee = append(coffee, units)
		}

		if units <= cfg.Target(e.Phase) {
			run++
			if run > st.LongestStreak {
				st.LongestStreak = run
			}
			if current {
				st.CurrentStreak = run
			}
		} else {
			run = 0
			current = false
		}
	}

	st.Coffee = phaseStats(models.PhaseCoffee, coffee)
	st.Nicotine = phaseStats(models.PhaseNicotine, nicotine)
	return st
}

func phaseStats(phase models.Phase, values []int) PhaseStats {
	ps := PhaseStats{Phase: phase, Count: len(values)}
	if len(values) == 0 {
		return ps
	}
	ps.Average = mean(values)
	if len(values) >= 2*WarningRun {
		ps.TrendingUp = mean(values[:WarningRun])-mean(values[WarningRun:2*WarningRun]) > 0.5
	}
	return ps
}

func mean(values []int) float64 {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// Point is one day of the aggregated series consumed by the chart and the
// CSV export.
type Point struct {
	Date  time.Time
	Phase models.Phase
	Units int
}

// Series keeps the entries that carry data, in the order given.
func Series(entries []*models.LogEntry) []Point {
	points := make([]Point, 0, len(entries))
	for _, e := range entries {
		if !e.HasData() {
			continue
		}
		points = append(points, Point{Date: e.Date, Phase: e.Phase, Units: *e.Units})
	}
	return points
}
