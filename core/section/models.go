package section

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
)

// Section is a group of students sharing one timetable, eg. "Grade 5 A" for "2024-2025".
type Section struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ClassName    string    `json:"class_name"`
	AcademicYear string    `json:"academic_year"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// NewSection contains information needed to create a new Section.
type NewSection struct {
	Name         string `json:"name" validate:"required,max=50"`
	ClassName    string `json:"class_name" validate:"omitempty,max=50"`
	AcademicYear string `json:"academic_year" validate:"required,acadyear"`
}

func (ns *NewSection) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	ns.Name = core.CleanString(ns.Name)
	ns.ClassName = core.CleanString(ns.ClassName)
	ns.AcademicYear = core.CleanString(ns.AcademicYear)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, ns.Name, ns.AcademicYear)
}

// UpdateSection defines what information may be provided to modify an existing Section.
type UpdateSection struct {
	Name         string `json:"name" validate:"omitempty,max=50"`
	ClassName    string `json:"class_name" validate:"omitempty,max=50"`
	AcademicYear string `json:"academic_year" validate:"omitempty,acadyear"`
}

func (us *UpdateSection) Validate(ctx context.Context, orig Section, validate *validator.Validate, svc ServiceInterface) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if cls := core.CleanString(us.ClassName); cls != "" {
		us.ClassName = cls
	} else {
		us.ClassName = orig.ClassName
	}
	if year := core.CleanString(us.AcademicYear); year != "" {
		us.AcademicYear = year
	} else {
		us.AcademicYear = orig.AcademicYear
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, us.Name, us.AcademicYear, orig)
}

type QueryFilter struct {
	Search       string `query:"search"`
	AcademicYear string `query:"academic_year"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.AcademicYear == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.AcademicYear = core.CleanString(qf.AcademicYear)
}
