package models

// ReminderRule fires Message at Time (HH:MM) on the days described by Days,
// which holds a canonical recurrence form ("daily", "weekdays", "weekends"
// or a sorted list such as "mon,wed,fri").
type ReminderRule struct {
	ID      int64
	ChatID  int64
	Time    string
	Message string
	Days    string
}

// Button is one inline keyboard button; Data is echoed back in the callback.
type Button struct {
	Text string
	Data string
}
