package timetable

import "fmt"

const minutesPerDay = 24 * 60

// MinutesToTime converts minutes since midnight to "HH:MM", clamped to the day.
func MinutesToTime(m int) string {
	if m < 0 {
		m = 0
	}
	if m >= minutesPerDay {
		m = minutesPerDay - 1
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatRange formats a start & end time as "09:00 - 10:00".
// Times that cannot be normalized are printed as given.
func FormatRange(start, end string) string {
	if s, ok := NormalizeTimeString(start); ok {
		start = s
	}
	if e, ok := NormalizeTimeString(end); ok {
		end = e
	}
	return start + " - " + end
}

// Format12h formats a time as "9:05 AM".
// Times that cannot be normalized are returned as given.
func Format12h(t string) string {
	normalized, ok := NormalizeTimeString(t)
	if !ok {
		return t
	}
	m := TimeToMinutes(normalized)
	hours, minutes := m/60, m%60

	period := "AM"
	if hours >= 12 {
		period = "PM"
	}
	hours %= 12
	if hours == 0 {
		hours = 12
	}
	return fmt.Sprintf("%d:%02d %s", hours, minutes, period)
}
