package timetable

import "testing"

func TestMinutesToTime(t *testing.T) {
	tests := []struct {
		m    int
		want string
	}{
		{m: 0, want: "00:00"},
		{m: 65, want: "01:05"},
		{m: 1439, want: "23:59"},
		{m: -10, want: "00:00"},
		{m: 2000, want: "23:59"},
	}
	for _, tt := range tests {
		if got := MinutesToTime(tt.m); got != tt.want {
			t.Errorf("MinutesToTime(%d) = %q, want %q", tt.m, got, tt.want)
		}
	}
}

func TestFormatRange(t *testing.T) {
	tests := []struct {
		start, end string
		want       string
	}{
		{start: "9:00", end: "10:00", want: "09:00 - 10:00"},
		{start: "09:00:00", end: "9:45", want: "09:00 - 09:45"},
		{start: "lol", end: "10:00", want: "lol - 10:00"},
	}
	for _, tt := range tests {
		if got := FormatRange(tt.start, tt.end); got != tt.want {
			t.Errorf("FormatRange(%q, %q) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestFormat12h(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{s: "00:00", want: "12:00 AM"},
		{s: "9:05", want: "9:05 AM"},
		{s: "12:00", want: "12:00 PM"},
		{s: "13:30", want: "1:30 PM"},
		{s: "23:59", want: "11:59 PM"},
		{s: "25:00", want: "25:00"},
	}
	for _, tt := range tests {
		if got := Format12h(tt.s); got != tt.want {
			t.Errorf("Format12h(%q) = %q, want %q", tt.s, got, tt.want)
		}
	}
}
