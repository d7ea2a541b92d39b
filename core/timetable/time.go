package timetable

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeTimeString converts a loosely formatted wall-clock time
// ("9:5", "09:30", "9:30:00") to the zero-padded 24h "HH:MM" form.
// ok is false when s cannot be read as a time of day.
func NormalizeTimeString(s string) (normalized string, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", false
	}

	hours, ok := parseClockField(parts[0], 23)
	if !ok {
		return "", false
	}
	minutes, ok := parseClockField(parts[1], 59)
	if !ok {
		return "", false
	}
	// seconds are dropped, but must still be valid
	if len(parts) == 3 {
		if _, ok = parseClockField(parts[2], 59); !ok {
			return "", false
		}
	}
	return fmt.Sprintf("%02d:%02d", hours, minutes), true
}

// parseClockField parses a 1 or 2 digit clock field in [0, max].
func parseClockField(s string, max int) (int, bool) {
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n > max {
		return 0, false
	}
	return n, true
}

// TimeToMinutes converts a normalized "HH:MM" time to minutes since midnight.
// The result is undefined for non-normalized input; call NormalizeTimeString first.
func TimeToMinutes(normalized string) int {
	if len(normalized) < 5 {
		return 0
	}
	hours := int(normalized[0]-'0')*10 + int(normalized[1]-'0')
	minutes := int(normalized[3]-'0')*10 + int(normalized[4]-'0')
	return hours*60 + minutes
}
