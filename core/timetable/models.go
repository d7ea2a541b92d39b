package timetable

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
)

// SlotType is the kind of activity scheduled in a TimeSlot.
type SlotType string

const (
	TypeLesson   SlotType = "lesson"
	TypeBreak    SlotType = "break"
	TypeExam     SlotType = "exam"
	TypeActivity SlotType = "activity"
)

type TimeSlot struct {
	ID        string    `json:"id"`
	SectionID string    `json:"section_id"`
	DayOfWeek WeekDay   `json:"day_of_week"`
	StartTime string    `json:"start_time"` // HH:MM, not guaranteed for legacy records
	EndTime   string    `json:"end_time"`
	Subject   string    `json:"subject"`
	TeacherID string    `json:"teacher_id,omitempty"`
	Type      SlotType  `json:"type"`
	Room      string    `json:"room,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Candidate returns the slot as a conflict-check candidate.
func (ts TimeSlot) Candidate() Candidate {
	return Candidate{
		StartTime: ts.StartTime,
		EndTime:   ts.EndTime,
		DayOfWeek: ts.DayOfWeek,
		SectionID: ts.SectionID,
	}
}

// Range returns the "09:00 - 10:00" representation of the slot's times.
func (ts TimeSlot) Range() string {
	return FormatRange(ts.StartTime, ts.EndTime)
}

// NewTimeSlot contains information needed to create a new TimeSlot.
type NewTimeSlot struct {
	SectionID string   `json:"section_id" validate:"required,uuid"`
	DayOfWeek WeekDay  `json:"day_of_week" validate:"required,weekday"`
	StartTime string   `json:"start_time" validate:"required,hhmm"`
	EndTime   string   `json:"end_time" validate:"required,hhmm"`
	Subject   string   `json:"subject" validate:"omitempty,max=100"`
	TeacherID string   `json:"teacher_id" validate:"omitempty,uuid"`
	Type      SlotType `json:"type" validate:"omitempty,oneof=lesson break exam activity"`
	Room      string   `json:"room" validate:"omitempty,max=50"`
}

func (nts *NewTimeSlot) Candidate() Candidate {
	return Candidate{
		StartTime: nts.StartTime,
		EndTime:   nts.EndTime,
		DayOfWeek: nts.DayOfWeek,
		SectionID: nts.SectionID,
	}
}

// clean trims string fields and converts the day & times to their canonical forms, when possible.
// Values that cannot be converted are left as they are, for the validator to report.
func (nts *NewTimeSlot) clean() {
	nts.SectionID = core.CleanID(nts.SectionID)
	nts.TeacherID = core.CleanID(nts.TeacherID)
	nts.Subject = core.CleanString(nts.Subject)
	nts.Room = core.CleanString(nts.Room)
	nts.Type = SlotType(core.CleanString(string(nts.Type), true /* lower */))
	if nts.Type == "" {
		nts.Type = TypeLesson
	}

	if day, err := ParseWeekDay(string(nts.DayOfWeek)); err == nil {
		nts.DayOfWeek = day
	}
	if t, ok := NormalizeTimeString(nts.StartTime); ok {
		nts.StartTime = t
	}
	if t, ok := NormalizeTimeString(nts.EndTime); ok {
		nts.EndTime = t
	}
}

// Validate cleans & validates the new slot, then makes sure it fits in its section's timetable.
func (nts *NewTimeSlot) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	nts.clean()
	if err := validate.Struct(nts); err != nil {
		return err
	}
	return svc.CheckAvailability(ctx, *nts)
}

// UpdateTimeSlot defines what information may be provided to modify an existing TimeSlot.
// Empty fields keep their current values; TeacherID & Room are cleared with an empty string.
type UpdateTimeSlot struct {
	DayOfWeek WeekDay  `json:"day_of_week"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Subject   *string  `json:"subject"`
	TeacherID *string  `json:"teacher_id"`
	Type      SlotType `json:"type"`
	Room      *string  `json:"room"`
}

// Validate merges the update into the original slot, then validates the result like a NewTimeSlot.
// The original slot is excluded from the conflict check.
func (uts *UpdateTimeSlot) Validate(ctx context.Context, orig TimeSlot, validate *validator.Validate, svc ServiceInterface) (NewTimeSlot, error) {
	merged := NewTimeSlot{
		SectionID: orig.SectionID,
		DayOfWeek: orig.DayOfWeek,
		StartTime: orig.StartTime,
		EndTime:   orig.EndTime,
		Subject:   orig.Subject,
		TeacherID: orig.TeacherID,
		Type:      orig.Type,
		Room:      orig.Room,
	}
	if day := core.CleanString(string(uts.DayOfWeek)); day != "" {
		merged.DayOfWeek = WeekDay(day)
	}
	if start := core.CleanString(uts.StartTime); start != "" {
		merged.StartTime = start
	}
	if end := core.CleanString(uts.EndTime); end != "" {
		merged.EndTime = end
	}
	if uts.Subject != nil {
		merged.Subject = *uts.Subject
	}
	if uts.TeacherID != nil {
		merged.TeacherID = *uts.TeacherID
	}
	if typ := core.CleanString(string(uts.Type)); typ != "" {
		merged.Type = SlotType(typ)
	}
	if uts.Room != nil {
		merged.Room = *uts.Room
	}

	merged.clean()
	if err := validate.Struct(merged); err != nil {
		return NewTimeSlot{}, err
	}
	if err := svc.CheckAvailability(ctx, merged, orig.ID); err != nil {
		return NewTimeSlot{}, err
	}
	return merged, nil
}

type QueryFilter struct {
	SectionID string   `query:"section_id"`
	DayOfWeek WeekDay  `query:"day_of_week"`
	TeacherID string   `query:"teacher_id"`
	Type      SlotType `query:"type"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.SectionID == "" && qf.DayOfWeek == "" && qf.TeacherID == "" && qf.Type == ""
}

// Clean trims the filter values; an unknown day is kept as is and matches nothing.
func (qf *QueryFilter) Clean() {
	qf.SectionID = core.CleanID(qf.SectionID)
	qf.TeacherID = core.CleanID(qf.TeacherID)
	qf.Type = SlotType(core.CleanString(string(qf.Type), true /* lower */))
	if day, err := ParseWeekDay(string(qf.DayOfWeek)); err == nil {
		qf.DayOfWeek = day
	} else {
		qf.DayOfWeek = WeekDay(core.CleanString(string(qf.DayOfWeek)))
	}
}

// CheckRequest is the payload of a standalone conflict check; ExcludeID is the slot being edited, if any.
type CheckRequest struct {
	SectionID string  `json:"section_id" validate:"required,uuid"`
	DayOfWeek WeekDay `json:"day_of_week" validate:"required,weekday"`
	StartTime string  `json:"start_time" validate:"required,hhmm"`
	EndTime   string  `json:"end_time" validate:"required,hhmm"`
	ExcludeID string  `json:"exclude_id" validate:"omitempty,uuid"`
}

func (cr *CheckRequest) Validate(validate *validator.Validate) error {
	cr.SectionID = core.CleanID(cr.SectionID)
	cr.ExcludeID = core.CleanID(cr.ExcludeID)
	if day, err := ParseWeekDay(string(cr.DayOfWeek)); err == nil {
		cr.DayOfWeek = day
	}
	if t, ok := NormalizeTimeString(cr.StartTime); ok {
		cr.StartTime = t
	}
	if t, ok := NormalizeTimeString(cr.EndTime); ok {
		cr.EndTime = t
	}
	return validate.Struct(cr)
}

func (cr CheckRequest) Candidate() Candidate {
	return Candidate{
		StartTime: cr.StartTime,
		EndTime:   cr.EndTime,
		DayOfWeek: cr.DayOfWeek,
		SectionID: cr.SectionID,
	}
}
