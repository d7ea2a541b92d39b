package timetable

import (
	"strings"

	"github.com/pkg/errors"
)

// WeekDay is the name of a day of the week, as stored on time slots.
type WeekDay string

const (
	Sunday    WeekDay = "Sunday"
	Monday    WeekDay = "Monday"
	Tuesday   WeekDay = "Tuesday"
	Wednesday WeekDay = "Wednesday"
	Thursday  WeekDay = "Thursday"
	Friday    WeekDay = "Friday"
	Saturday  WeekDay = "Saturday"
)

// ErrInvalidDay is returned for day numbers out of range and unknown day names.
var ErrInvalidDay = errors.New("invalid day of week")

// weekDays is indexed by the calendar day number: 0 = Sunday ... 6 = Saturday (same as time.Weekday).
var weekDays = [...]WeekDay{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// WeekDays returns the days of the week in timetable order (Monday first).
func WeekDays() []WeekDay {
	days := make([]WeekDay, 0, len(weekDays))
	for n := 1; n <= len(weekDays); n++ {
		days = append(days, weekDays[n%len(weekDays)])
	}
	return days
}

// MapNumberToDay maps a calendar day number (0 = Sunday ... 6 = Saturday) to its WeekDay.
func MapNumberToDay(n int) (WeekDay, error) {
	if n < 0 || n >= len(weekDays) {
		return "", errors.Wrapf(ErrInvalidDay, "day number %d", n)
	}
	return weekDays[n], nil
}

// MapDayToNumber maps a WeekDay to its calendar day number (0 = Sunday ... 6 = Saturday).
func MapDayToNumber(day WeekDay) (int, error) {
	for n, wd := range weekDays {
		if wd == day {
			return n, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidDay, "day %q", string(day))
}

// MapDayToTimetableNumber maps a WeekDay to its ISO day number (1 = Monday ... 7 = Sunday).
// Do not mix it up with MapDayToNumber.
func MapDayToTimetableNumber(day WeekDay) (int, error) {
	n, err := MapDayToNumber(day)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 7, nil
	}
	return n, nil
}

// MapTimetableNumberToDay maps an ISO day number (1 = Monday ... 7 = Sunday) to its WeekDay.
func MapTimetableNumberToDay(n int) (WeekDay, error) {
	if n < 1 || n > len(weekDays) {
		return "", errors.Wrapf(ErrInvalidDay, "timetable day number %d", n)
	}
	return weekDays[n%len(weekDays)], nil
}

// ParseWeekDay parses a day name, ignoring case and surrounding whitespace.
func ParseWeekDay(s string) (WeekDay, error) {
	s = strings.TrimSpace(s)
	for _, wd := range weekDays {
		if strings.EqualFold(string(wd), s) {
			return wd, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidDay, "day %q", s)
}

func (d WeekDay) IsValid() bool {
	_, err := MapDayToNumber(d)
	return err == nil
}

func (d WeekDay) String() string {
	return string(d)
}
