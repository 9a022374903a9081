// Package cycle maps a cycle start date and a calendar day onto the fixed
// seven day schedule: four COFFEE days followed by three NICOTINE days.
package cycle

import (
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/models"
	"github.com/dmitrijs2005/cyclekeeper/internal/timex"
)

const (
	Length       = 7
	CoffeeLength = 4
)

// Info describes where a day falls in the cycle.
type Info struct {
	CycleDay      int
	Phase         models.Phase
	PhaseDay      int
	DaysRemaining int
}

// Calculate returns the cycle position of today for a cycle started on start.
// Both arguments are reduced to calendar dates first.
func Calculate(start, today time.Time) Info {
	offset := timex.DaysBetween(start, today) % Length
	if offset < 0 {
		offset += Length
	}
	day := offset + 1

	if day <= CoffeeLength {
		return Info{
			CycleDay:      day,
			Phase:         models.PhaseCoffee,
			PhaseDay:      day,
			DaysRemaining: CoffeeLength - day + 1,
		}
	}
	return Info{
		CycleDay:      day,
		Phase:         models.PhaseNicotine,
		PhaseDay:      day - CoffeeLength,
		DaysRemaining: Length - day + 1,
	}
}

// SkipStart returns the start date that moves today to the first day of the
// next phase: NICOTINE of the current cycle, or COFFEE of a new one.
func SkipStart(current models.Phase, today time.Time) time.Time {
	if current == models.PhaseCoffee {
		return timex.AddDays(today, -CoffeeLength)
	}
	return timex.DateOf(today)
}

// ResetStart returns the start date that keeps the current phase but makes
// today its first day.
func ResetStart(current models.Phase, today time.Time) time.Time {
	if current == models.PhaseNicotine {
		return timex.AddDays(today, -CoffeeLength)
	}
	return timex.DateOf(today)
}
