// Package recurrence parses day-of-week patterns such as "weekdays"
// or "mon, wed fri" and matches them against a weekday.
package recurrence

import (
	"errors"
	"slices"
	"strings"
)

// ErrInvalid is returned when any token of the pattern is unknown or
// nothing is left after dropping blanks.
var ErrInvalid = errors.New("invalid day pattern")

const (
	Daily    = "daily"
	Weekdays = "weekdays"
	Weekends = "weekends"
)

var dayNames = [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

var dayIndex = map[string]int{
	"mon": 0, "monday": 0,
	"tue": 1, "tuesday": 1,
	"wed": 2, "wednesday": 2,
	"thu": 3, "thursday": 3,
	"fri": 4, "friday": 4,
	"sat": 5, "saturday": 5,
	"sun": 6, "sunday": 6,
}

// DaySet is a sorted list of weekdays, 0=Monday .. 6=Sunday.
// A nil DaySet means no restriction.
type DaySet []int

var presets = map[string]DaySet{
	Daily:    nil,
	Weekdays: {0, 1, 2, 3, 4},
	Weekends: {5, 6},
}

// Parse returns the day set described by text together with its canonical
// form, which is what gets persisted. Parsing a canonical form yields the
// same canonical form.
func Parse(text string) (DaySet, string, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if set, ok := presets[text]; ok {
		return slices.Clone(set), text, nil
	}

	var set DaySet
	for _, token := range strings.Split(strings.ReplaceAll(text, " ", ","), ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		idx, ok := dayIndex[token]
		if !ok {
			return nil, "", ErrInvalid
		}
		set = append(set, idx)
	}
	if len(set) == 0 {
		return nil, "", ErrInvalid
	}

	slices.Sort(set)
	set = slices.Compact(set)

	names := make([]string, len(set))
	for i, idx := range set {
		names[i] = dayNames[idx]
	}
	return set, strings.Join(names, ","), nil
}

// Matches reports whether weekday (0=Monday) is part of the set.
func (s DaySet) Matches(weekday int) bool {
	return s == nil || slices.Contains(s, weekday)
}

// Match parses a stored canonical form and tests it against weekday.
// Unparseable input never matches.
func Match(canonical string, weekday int) bool {
	set, _, err := Parse(canonical)
	if err != nil {
		return false
	}
	return set.Matches(weekday)
}
