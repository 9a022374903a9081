package timex

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidClock is returned by ParseClock for anything that is not a
// valid 24h HH:MM time of day.
var ErrInvalidClock = errors.New("invalid time of day")

// ParseClock accepts "H:M" style input with 0<=H<24 and 0<=M<60 and returns
// the zero-padded "HH:MM" form, so "9:5" becomes "09:05".
func ParseClock(text string) (string, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 2 {
		return "", ErrInvalidClock
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return "", ErrInvalidClock
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", ErrInvalidClock
	}
	if h < 0 || h >= 24 || m < 0 || m >= 60 {
		return "", ErrInvalidClock
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// Clock renders the minute of t as HH:MM.
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// AddMinutes shifts an HH:MM clock by n minutes. The boolean is false when
// the input is malformed or the result leaves the same calendar day.
func AddMinutes(clock string, n int) (string, bool) {
	norm, err := ParseClock(clock)
	if err != nil {
		return "", false
	}
	h, _ := strconv.Atoi(norm[:2])
	m, _ := strconv.Atoi(norm[3:])
	total := h*60 + m + n
	if total < 0 || total >= 24*60 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60), true
}
