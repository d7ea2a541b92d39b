// Package testutil holds the fixtures shared by the test suites.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/section"
	"github.com/trezcool/ratiba/core/staff"
	"github.com/trezcool/ratiba/core/timetable"
	logsvc "github.com/trezcool/ratiba/services/logger"
)

// NewConfig returns the configuration used by the test suites.
func NewConfig() *core.Config {
	return &core.Config{
		Env:             "TEST",
		Build:           "test",
		TestMode:        true,
		AppName:         "Ratiba",
		SecretKey:       "test-secret-key",
		FrontendBaseURL: "http://localhost:8080",

		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,

		Server: core.ServerConfig{
			Host:                      "localhost",
			Address:                   ":8000",
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

// NewLogger returns a logger that reports nothing.
func NewLogger(conf *core.Config) *logsvc.RollbarLogger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

// NewValidator returns a validator with all the app's validators & translations registered.
func NewValidator() *validator.Validate {
	validate, _ := NewTranslatedValidator()
	return validate
}

// NewTranslatedValidator is like NewValidator but also returns the translator holding the translations.
func NewTranslatedValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	section.InitValidators(validate, translator)
	staff.InitValidators(validate, translator)
	timetable.InitValidators(validate, translator)
	return validate, translator
}

func CreateSection(t *testing.T, repo section.Repository, name, className, academicYear string, createdAt ...time.Time) section.Section {
	tstamp := time.Date(2024, time.September, 2, 8, 0, 0, 0, time.UTC)
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	sec, err := repo.CreateSection(context.Background(), section.Section{
		Name:         name,
		ClassName:    className,
		AcademicYear: academicYear,
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	})
	if err != nil {
		t.Fatalf("createSection() failed: %v", err)
	}
	return sec
}

func CreateMember(
	t *testing.T,
	repo staff.Repository,
	name, email, pwd string,
	roles []string,
	isActive bool,
	subjects ...string,
) staff.Member {
	tstamp := time.Date(2024, time.September, 2, 8, 0, 0, 0, time.UTC)
	m := staff.Member{
		Name:      name,
		Email:     email,
		Subjects:  subjects,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := m.SetPassword(pwd); err != nil {
			t.Fatalf("createMember() failed: %v", err)
		}
	}
	m, err := repo.CreateMember(context.Background(), m)
	if err != nil {
		t.Fatalf("createMember() failed: %v", err)
	}
	return m
}

func CreateTimeSlot(
	t *testing.T,
	repo timetable.Repository,
	sectionID string,
	day timetable.WeekDay,
	start, end, subject, teacherID string,
) timetable.TimeSlot {
	tstamp := time.Date(2024, time.September, 2, 8, 0, 0, 0, time.UTC)
	ts, err := repo.CreateTimeSlot(context.Background(), timetable.TimeSlot{
		SectionID: sectionID,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		Subject:   subject,
		TeacherID: teacherID,
		Type:      timetable.TypeLesson,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("createTimeSlot() failed: %v", err)
	}
	return ts
}
