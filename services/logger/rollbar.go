package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/staff"
	"github.com/trezcool/ratiba/core/timetable"
)

type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// slotContext is the custom data reported along with a time slot.
func slotContext(ts timetable.TimeSlot) map[string]interface{} {
	return map[string]interface{}{
		"slot_id":     ts.ID,
		"section_id":  ts.SectionID,
		"day_of_week": string(ts.DayOfWeek),
		"start_time":  ts.StartTime,
		"end_time":    ts.EndTime,
		"teacher_id":  ts.TeacherID,
	}
}

// prepare turns args into rollbar's fmt: msg, errors, then a single custom map.
// A staff.Member becomes the reported person; time slots & maps are merged into the custom map, later keys win.
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var member *staff.Member
	var custom map[string]interface{}
	merge := func(data map[string]interface{}) {
		if custom == nil {
			custom = make(map[string]interface{}, len(data))
		}
		for k, v := range data {
			custom[k] = v
		}
	}

	newArgs := make([]interface{}, 0, len(args)+2)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case staff.Member:
			if member == nil { // only set one Member
				member = &a
			}
		case timetable.TimeSlot:
			merge(slotContext(a))
		case map[string]interface{}:
			merge(a)
		default:
			newArgs = append(newArgs, arg)
		}
	}

	if member != nil {
		rollbar.SetPerson(member.ID, member.Name, member.Email)
	} else {
		rollbar.ClearPerson()
	}
	if custom != nil {
		newArgs = append(newArgs, custom)
	}
	return newArgs
}

func (l RollbarLogger) print(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case staff.Member:
			continue
		case timetable.TimeSlot:
			l.std.Printf("slot %s: section %s, %s %s\n", a.ID, a.SectionID, a.DayOfWeek, a.Range())
		default:
			l.std.Printf("%+v\n", arg)
		}
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	l.print(msg, args)
	l.std.Fatal(msg)
}
