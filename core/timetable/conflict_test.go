package timetable

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	secA = "9b2a1a4e-0a43-4c43-9d0e-7d1f7c0b9a01"
	secB = "0f6c7f4e-5c1e-4e86-8f55-3b8ce0b1ab02"
)

func slot(id, day, start, end, section string) TimeSlot {
	return TimeSlot{ID: id, DayOfWeek: WeekDay(day), StartTime: start, EndTime: end, SectionID: section, Subject: "Subject " + id}
}

func TestHasConflict(t *testing.T) {
	existing := []TimeSlot{
		slot("1", "Monday", "09:00", "10:00", secA),
		slot("2", "Monday", "10:30", "11:30", secA),
		slot("3", "Tuesday", "09:00", "10:00", secA),
		slot("4", "Monday", "13:00", "14:00", secB),
	}
	cand := func(day, start, end, section string) Candidate {
		return Candidate{DayOfWeek: WeekDay(day), StartTime: start, EndTime: end, SectionID: section}
	}

	tests := []struct {
		name      string
		candidate Candidate
		existing  []TimeSlot
		excludeID []string
		want      bool
	}{
		{name: "empty collection", candidate: cand("Monday", "09:00", "10:00", secA), want: false},
		{name: "exact overlap", candidate: cand("Monday", "09:00", "10:00", secA), existing: existing, want: true},
		{name: "back to back after", candidate: cand("Monday", "10:00", "10:30", secA), existing: existing, want: false},
		{name: "back to back before", candidate: cand("Monday", "08:00", "09:00", secA), existing: existing, want: false},
		{name: "starts during", candidate: cand("Monday", "09:30", "10:15", secA), existing: existing, want: true},
		{name: "ends during", candidate: cand("Monday", "08:30", "09:01", secA), existing: existing, want: true},
		{name: "contains", candidate: cand("Monday", "08:00", "12:00", secA), existing: existing, want: true},
		{
			name:      "contains a shorter slot with the same start",
			candidate: cand("Thursday", "09:00", "10:00", secA),
			existing:  []TimeSlot{slot("5", "Thursday", "09:00", "09:30", secA)},
			want:      true,
		},
		{name: "contained", candidate: cand("Monday", "09:15", "09:45", secA), existing: existing, want: true},
		{name: "between slots", candidate: cand("Monday", "10:00", "10:30", secA), existing: existing, want: false},
		{name: "different day", candidate: cand("Wednesday", "09:00", "10:00", secA), existing: existing, want: false},
		{name: "different section", candidate: cand("Monday", "09:00", "10:00", secB), existing: existing, want: false},
		{name: "other section overlaps", candidate: cand("Monday", "13:30", "14:30", secB), existing: existing, want: true},
		{name: "loose candidate format", candidate: cand("Monday", "9:30:00", "9:45", secA), existing: existing, want: true},
		{name: "self exclusion", candidate: cand("Monday", "09:00", "10:00", secA), existing: existing, excludeID: []string{"1"}, want: false},
		{name: "exclusion of another slot", candidate: cand("Monday", "09:00", "10:00", secA), existing: existing, excludeID: []string{"2"}, want: true},
		{name: "empty exclusion id", candidate: cand("Monday", "09:00", "10:00", secA), existing: existing, excludeID: []string{""}, want: true},
		{name: "malformed candidate start", candidate: cand("Monday", "25:00", "10:00", secA), existing: existing, want: false},
		{name: "malformed candidate end", candidate: cand("Monday", "09:00", "", secA), existing: existing, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasConflict(tt.candidate, tt.existing, tt.excludeID...); got != tt.want {
				t.Errorf("HasConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasConflict_symmetric(t *testing.T) {
	ranges := [][2]string{
		{"08:00", "09:00"}, {"09:00", "10:00"}, {"08:30", "09:30"},
		{"07:00", "12:00"}, {"09:15", "09:45"}, {"10:00", "11:00"},
	}
	for _, a := range ranges {
		for _, b := range ranges {
			ab := HasConflict(Candidate{StartTime: a[0], EndTime: a[1], DayOfWeek: Friday, SectionID: secA},
				[]TimeSlot{slot("b", "Friday", b[0], b[1], secA)})
			ba := HasConflict(Candidate{StartTime: b[0], EndTime: b[1], DayOfWeek: Friday, SectionID: secA},
				[]TimeSlot{slot("a", "Friday", a[0], a[1], secA)})
			if ab != ba {
				t.Errorf("%v vs %v: conflict = %v, reversed = %v", a, b, ab, ba)
			}
		}
	}
}

func TestChecker_FindConflict_skipsMalformed(t *testing.T) {
	existing := []TimeSlot{
		slot("bad", "Monday", "9h00", "10:00", secA),
		slot("worse", "Monday", "09:00", "", secA),
		slot("ok", "Monday", "09:30", "10:30", secA),
	}

	var skipped []string
	checker := Checker{Skipped: func(slot TimeSlot) { skipped = append(skipped, slot.ID) }}

	got, found := checker.FindConflict(Candidate{StartTime: "09:00", EndTime: "10:00", DayOfWeek: Monday, SectionID: secA}, existing)
	assert.True(t, found)
	assert.Equal(t, "ok", got.ID)
	assert.Equal(t, []string{"bad", "worse"}, skipped)

	// only malformed slots: no conflict
	skipped = nil
	found = checker.HasConflict(Candidate{StartTime: "09:00", EndTime: "10:00", DayOfWeek: Monday, SectionID: secA}, existing[:2])
	assert.False(t, found)
	assert.Len(t, skipped, 2)
}

func TestFindConflict_firstMatch(t *testing.T) {
	existing := []TimeSlot{
		slot("1", "Monday", "08:00", "09:00", secA),
		slot("2", "Monday", "09:00", "10:00", secA),
		slot("3", "Monday", "09:30", "11:00", secA),
	}
	got, found := FindConflict(Candidate{StartTime: "09:45", EndTime: "10:15", DayOfWeek: Monday, SectionID: secA}, existing)
	assert.True(t, found)
	assert.Equal(t, "2", got.ID)

	got, found = FindConflict(Candidate{StartTime: "07:00", EndTime: "08:00", DayOfWeek: Monday, SectionID: secA}, existing)
	assert.False(t, found)
	assert.Equal(t, TimeSlot{}, got)
}

func TestHasConflict_concurrent(t *testing.T) {
	existing := []TimeSlot{slot("1", "Monday", "09:00", "10:00", secA)}
	cand := Candidate{StartTime: "09:30", EndTime: "10:30", DayOfWeek: Monday, SectionID: secA}

	var wg sync.WaitGroup
	results := make([]bool, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = HasConflict(cand, existing)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if !got {
			t.Errorf("HasConflict() #%d = false, want true", i)
		}
	}
}
