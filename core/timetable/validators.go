package timetable

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
)

var (
	hhmmTag  = "hhmm"
	hhmmText = "must be a valid time (HH:MM)"

	weekDayTag  = "weekday"
	weekDayText = "must be a day of the week"

	timeOrderTag  = "timeorder"
	timeOrderText = "end time must be after start time"

	requiredTag = "required"
)

// InitValidators registers the timetable validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(hhmmTag, hhmmValidation)
	core.RegisterCustomTranslation(validate, translator, hhmmTag, hhmmText)

	_ = validate.RegisterValidation(weekDayTag, weekDayValidation)
	core.RegisterCustomTranslation(validate, translator, weekDayTag, weekDayText)

	validate.RegisterStructValidation(timeSlotStructValidation, NewTimeSlot{}, CheckRequest{})
	core.RegisterCustomTranslation(validate, translator, timeOrderTag, timeOrderText)
}

// Custom Validators

// hhmmValidation accepts any time NormalizeTimeString can read.
func hhmmValidation(fl validator.FieldLevel) bool {
	_, ok := NormalizeTimeString(fl.Field().String())
	return ok
}

// weekDayValidation only accepts canonical day names.
func weekDayValidation(fl validator.FieldLevel) bool {
	return WeekDay(fl.Field().String()).IsValid()
}

// timeSlotStructValidation does struct level validation on NewTimeSlot and CheckRequest structs.
func timeSlotStructValidation(sl validator.StructLevel) {
	switch slot := sl.Current().Interface().(type) {
	case NewTimeSlot:
		validateTimeOrder(slot.StartTime, slot.EndTime, sl)
		// breaks need no subject
		if (slot.Type == TypeLesson || slot.Type == TypeExam) && slot.Subject == "" {
			sl.ReportError(slot.Subject, "subject", "Subject", requiredTag, "")
		}
	case CheckRequest:
		validateTimeOrder(slot.StartTime, slot.EndTime, sl)
	}
}

// validateTimeOrder reports end_time when it is not after start_time.
// Malformed times are reported by hhmm.
func validateTimeOrder(start, end string, sl validator.StructLevel) {
	s, startOK := NormalizeTimeString(start)
	e, endOK := NormalizeTimeString(end)
	if !startOK || !endOK {
		return
	}
	if TimeToMinutes(e) <= TimeToMinutes(s) {
		sl.ReportError(end, "end_time", "EndTime", timeOrderTag, "")
	}
}
