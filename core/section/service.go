package section

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("section")
	ErrSectionExists = errors.New("a section with this name already exists for this academic year")
)

type (
	Repository interface {
		// CheckSectionUniqueness returns ErrSectionExists if another section has the same name & academic year.
		CheckSectionUniqueness(ctx context.Context, name, academicYear string, excludedSections []Section, exec ...core.DBExecutor) error
		CreateSection(ctx context.Context, sec Section, exec ...core.DBExecutor) (Section, error)
		QuerySections(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Section, error)
		GetSection(ctx context.Context, id string, exec ...core.DBExecutor) (Section, error)
		UpdateSection(ctx context.Context, sec Section, exec ...core.DBExecutor) (Section, error)
		DeleteSectionsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	ServiceInterface interface {
		CheckUniqueness(ctx context.Context, name, academicYear string, excludedSections ...Section) error
		Create(ctx context.Context, ns NewSection) (Section, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Section, error)
		GetByID(ctx context.Context, id string) (Section, error)
		Update(ctx context.Context, sec Section, us UpdateSection) (Section, error)
		Delete(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

var NowFunc = func() time.Time { return time.Now().UTC() } // mockable

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckUniqueness(ctx context.Context, name, academicYear string, excludedSections ...Section) error {
	if err := svc.repo.CheckSectionUniqueness(ctx, name, academicYear, excludedSections); err != nil {
		if errors.Cause(err) == ErrSectionExists {
			return core.NewValidationError(ErrSectionExists, core.FieldError{Field: "name", Error: ErrSectionExists.Error()})
		}
		return errors.Wrap(err, "checking section uniqueness")
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewSection) (Section, error) {
	now := NowFunc()
	sec := Section{
		Name:         ns.Name,
		ClassName:    ns.ClassName,
		AcademicYear: ns.AcademicYear,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	sec, err := svc.repo.CreateSection(ctx, sec)
	if err != nil {
		if errors.Cause(err) == core.ErrConflict {
			return Section{}, core.NewValidationError(ErrSectionExists, core.FieldError{Field: "name", Error: ErrSectionExists.Error()})
		}
		return Section{}, errors.Wrap(err, "creating section")
	}
	return sec, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Section, error) {
	if filter != nil {
		filter.Clean()
		if filter.IsEmpty() {
			filter = nil
		}
	}
	return svc.repo.QuerySections(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Section, error) {
	return svc.repo.GetSection(ctx, core.CleanID(id))
}

func (svc *Service) Update(ctx context.Context, sec Section, us UpdateSection) (Section, error) {
	sec.Name = us.Name
	sec.ClassName = us.ClassName
	sec.AcademicYear = us.AcademicYear
	sec.UpdatedAt = NowFunc()
	sec, err := svc.repo.UpdateSection(ctx, sec)
	if err != nil {
		if errors.Cause(err) == core.ErrConflict {
			return Section{}, core.NewValidationError(ErrSectionExists, core.FieldError{Field: "name", Error: ErrSectionExists.Error()})
		}
		return Section{}, errors.Wrap(err, "updating section")
	}
	return sec, nil
}

// Delete removes the sections & (cascading) their time slots.
func (svc *Service) Delete(ctx context.Context, ids ...string) (int, error) {
	return svc.repo.DeleteSectionsByID(ctx, ids)
}
