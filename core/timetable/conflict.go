package timetable

// Candidate is a time slot being scheduled, checked against the existing ones.
type Candidate struct {
	StartTime string
	EndTime   string
	DayOfWeek WeekDay
	SectionID string
}

// Checker detects overlapping time slots within a day and a section.
// The zero value is ready to use.
type Checker struct {
	// Skipped, if set, is called with every existing slot whose stored times cannot be normalized.
	// Such slots never conflict.
	Skipped func(slot TimeSlot)
}

// HasConflict reports whether candidate overlaps any of the existing slots
// on the same day and in the same section.
// The slot whose ID is excludeID is ignored, so that an edited slot is not compared to itself.
func HasConflict(candidate Candidate, existing []TimeSlot, excludeID ...string) bool {
	return Checker{}.HasConflict(candidate, existing, excludeID...)
}

// FindConflict is like HasConflict but also returns the first conflicting slot.
func FindConflict(candidate Candidate, existing []TimeSlot, excludeID ...string) (TimeSlot, bool) {
	return Checker{}.FindConflict(candidate, existing, excludeID...)
}

func (c Checker) HasConflict(candidate Candidate, existing []TimeSlot, excludeID ...string) bool {
	_, found := c.FindConflict(candidate, existing, excludeID...)
	return found
}

// FindConflict returns the first existing slot that overlaps candidate.
// A candidate whose times cannot be normalized is never reported as conflicting:
// the time format is validated separately.
func (c Checker) FindConflict(candidate Candidate, existing []TimeSlot, excludeID ...string) (TimeSlot, bool) {
	start, ok := NormalizeTimeString(candidate.StartTime)
	if !ok {
		return TimeSlot{}, false
	}
	end, ok := NormalizeTimeString(candidate.EndTime)
	if !ok {
		return TimeSlot{}, false
	}
	newStart, newEnd := TimeToMinutes(start), TimeToMinutes(end)

	var exclID string
	if len(excludeID) > 0 {
		exclID = excludeID[0]
	}

	for _, slot := range existing {
		if exclID != "" && slot.ID == exclID {
			continue
		}
		if slot.DayOfWeek != candidate.DayOfWeek || slot.SectionID != candidate.SectionID {
			continue
		}

		slotStartStr, startOK := NormalizeTimeString(slot.StartTime)
		slotEndStr, endOK := NormalizeTimeString(slot.EndTime)
		if !startOK || !endOK {
			if c.Skipped != nil {
				c.Skipped(slot)
			}
			continue
		}

		if overlaps(newStart, newEnd, TimeToMinutes(slotStartStr), TimeToMinutes(slotEndStr)) {
			return slot, true
		}
	}
	return TimeSlot{}, false
}

// overlaps reports whether [newStart, newEnd] overlaps [slotStart, slotEnd].
// Slots that only touch (one ends when the other starts) do not overlap.
func overlaps(newStart, newEnd, slotStart, slotEnd int) bool {
	startsDuring := newStart >= slotStart && newStart < slotEnd
	endsDuring := newEnd > slotStart && newEnd <= slotEnd
	contains := newStart <= slotStart && newEnd >= slotEnd
	return startsDuring || endsDuring || contains
}
