package timetable

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/section"
	"github.com/trezcool/ratiba/core/staff"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("time slot")
	ErrSlotConflict    = errors.New("this time slot conflicts with another one")
	ErrSectionNotFound = errors.New("section not found")
	ErrTeacherNotFound = errors.New("teacher not found")
)

type (
	Repository interface {
		CreateTimeSlot(ctx context.Context, ts TimeSlot, exec ...core.DBExecutor) (TimeSlot, error)
		// QueryTimeSlots applies AND operation on available QueryFilter fields.
		QueryTimeSlots(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]TimeSlot, error)
		GetTimeSlot(ctx context.Context, id string, exec ...core.DBExecutor) (TimeSlot, error)
		UpdateTimeSlot(ctx context.Context, ts TimeSlot, exec ...core.DBExecutor) (TimeSlot, error)
		DeleteTimeSlotsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
		// LockSection blocks other LockSection calls on the section until exec's transaction ends.
		// It returns ErrSectionNotFound if the section does not exist.
		LockSection(ctx context.Context, sectionID string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		// CheckAvailability makes sure the slot's section & teacher exist and that it does not
		// overlap another slot of the section. The slot whose ID is excludeID is ignored.
		CheckAvailability(ctx context.Context, nts NewTimeSlot, excludeID ...string) error
		// CheckConflict returns the first stored slot overlapping the candidate, if any.
		CheckConflict(ctx context.Context, candidate Candidate, excludeID ...string) (TimeSlot, bool, error)
		Create(ctx context.Context, nts NewTimeSlot) (TimeSlot, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]TimeSlot, error)
		GetByID(ctx context.Context, id string) (TimeSlot, error)
		Update(ctx context.Context, orig TimeSlot, nts NewTimeSlot) (TimeSlot, error)
		Delete(ctx context.Context, ids ...string) (int, error)
		// Audit lists the section's slots that the conflict checker cannot read.
		Audit(ctx context.Context, sectionID string) ([]TimeSlot, error)
	}

	Service struct {
		repo        Repository
		sectionRepo section.Repository
		staffRepo   staff.Repository
		tx          core.Transactor
		mailSvc     core.EmailService
		logger      core.Logger
		checker     Checker
	}

	slotAssignedData struct {
		TeacherName string
		Subject     string
		SectionID   string
		SectionName string
		DayOfWeek   WeekDay
		Range       string
		Room        string
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

var NowFunc = func() time.Time { return time.Now().UTC() } // mockable

func NewService(
	repo Repository,
	sectionRepo section.Repository,
	staffRepo staff.Repository,
	tx core.Transactor,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	svc := &Service{
		repo:        repo,
		sectionRepo: sectionRepo,
		staffRepo:   staffRepo,
		tx:          tx,
		mailSvc:     mailSvc,
		logger:      logger,
	}
	svc.checker = Checker{Skipped: svc.logSkipped}
	return svc
}

func (svc *Service) logSkipped(slot TimeSlot) {
	svc.logger.Warn("timetable: skipped time slot with malformed times", slot)
}

func (svc *Service) CheckConflict(ctx context.Context, candidate Candidate, excludeID ...string) (TimeSlot, bool, error) {
	var exclID string
	if len(excludeID) > 0 {
		exclID = excludeID[0]
	}
	return svc.checkConflict(ctx, candidate, exclID, nil)
}

func (svc *Service) checkConflict(ctx context.Context, candidate Candidate, excludeID string, exec core.DBExecutor) (TimeSlot, bool, error) {
	existing, err := svc.repo.QueryTimeSlots(ctx, &QueryFilter{SectionID: candidate.SectionID, DayOfWeek: candidate.DayOfWeek}, nil, exec)
	if err != nil {
		return TimeSlot{}, false, errors.Wrap(err, "querying time slots")
	}
	slot, found := svc.checker.FindConflict(candidate, existing, excludeID)
	return slot, found, nil
}

// reserve locks the candidate's section for the rest of exec's transaction,
// then makes sure no stored slot overlaps the candidate.
func (svc *Service) reserve(ctx context.Context, candidate Candidate, excludeID string, exec core.DBExecutor) error {
	if err := svc.repo.LockSection(ctx, candidate.SectionID, exec); err != nil {
		if errors.Cause(err) == ErrSectionNotFound {
			return core.NewValidationError(ErrSectionNotFound, core.FieldError{Field: "section_id", Error: ErrSectionNotFound.Error()})
		}
		return errors.Wrap(err, "locking section")
	}

	slot, found, err := svc.checkConflict(ctx, candidate, excludeID, exec)
	if err != nil {
		return err
	}
	if found {
		return core.NewValidationError(ErrSlotConflict, core.FieldError{Field: "start_time", Error: conflictMessage(slot)})
	}
	return nil
}

func (svc *Service) CheckAvailability(ctx context.Context, nts NewTimeSlot, excludeID ...string) error {
	if _, err := svc.sectionRepo.GetSection(ctx, nts.SectionID); err != nil {
		if core.IsNotFound(err) {
			return core.NewValidationError(ErrSectionNotFound, core.FieldError{Field: "section_id", Error: ErrSectionNotFound.Error()})
		}
		return errors.Wrap(err, "getting section")
	}
	if nts.TeacherID != "" {
		if _, err := svc.staffRepo.GetMember(ctx, staff.GetFilter{ID: nts.TeacherID}); err != nil {
			if core.IsNotFound(err) {
				return core.NewValidationError(ErrTeacherNotFound, core.FieldError{Field: "teacher_id", Error: ErrTeacherNotFound.Error()})
			}
			return errors.Wrap(err, "getting teacher")
		}
	}

	slot, found, err := svc.CheckConflict(ctx, nts.Candidate(), excludeID...)
	if err != nil {
		return err
	}
	if found {
		return core.NewValidationError(ErrSlotConflict, core.FieldError{Field: "start_time", Error: conflictMessage(slot)})
	}
	return nil
}

// conflictMessage describes the conflicting slot, eg. "conflicts with Maths (09:00 - 10:00) on Monday".
func conflictMessage(slot TimeSlot) string {
	name := slot.Subject
	if name == "" {
		name = string(slot.Type)
	}
	if name == "" {
		name = "another slot"
	}
	return fmt.Sprintf("conflicts with %s (%s) on %s", name, slot.Range(), slot.DayOfWeek)
}

func (svc *Service) Create(ctx context.Context, nts NewTimeSlot) (TimeSlot, error) {
	now := NowFunc()
	ts := TimeSlot{
		SectionID: nts.SectionID,
		DayOfWeek: nts.DayOfWeek,
		StartTime: nts.StartTime,
		EndTime:   nts.EndTime,
		Subject:   nts.Subject,
		TeacherID: nts.TeacherID,
		Type:      nts.Type,
		Room:      nts.Room,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := svc.tx.WithinTx(ctx, func(exec core.DBExecutor) error {
		if err := svc.reserve(ctx, ts.Candidate(), "", exec); err != nil {
			return err
		}
		created, err := svc.repo.CreateTimeSlot(ctx, ts, exec)
		if err != nil {
			return svc.mapWriteErr(ctx, err, ts, "creating time slot")
		}
		ts = created
		return nil
	})
	if err != nil {
		return TimeSlot{}, err
	}

	if ts.TeacherID != "" {
		svc.notifyTeacher(ctx, ts)
	}
	return ts, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]TimeSlot, error) {
	if filter != nil {
		filter.Clean()
		if filter.IsEmpty() {
			filter = nil
		}
	}
	return svc.repo.QueryTimeSlots(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (TimeSlot, error) {
	return svc.repo.GetTimeSlot(ctx, core.CleanID(id))
}

func (svc *Service) Update(ctx context.Context, orig TimeSlot, nts NewTimeSlot) (TimeSlot, error) {
	ts := orig
	ts.DayOfWeek = nts.DayOfWeek
	ts.StartTime = nts.StartTime
	ts.EndTime = nts.EndTime
	ts.Subject = nts.Subject
	ts.TeacherID = nts.TeacherID
	ts.Type = nts.Type
	ts.Room = nts.Room
	ts.UpdatedAt = NowFunc()

	err := svc.tx.WithinTx(ctx, func(exec core.DBExecutor) error {
		if err := svc.reserve(ctx, ts.Candidate(), orig.ID, exec); err != nil {
			return err
		}
		updated, err := svc.repo.UpdateTimeSlot(ctx, ts, exec)
		if err != nil {
			return svc.mapWriteErr(ctx, err, ts, "updating time slot")
		}
		ts = updated
		return nil
	})
	if err != nil {
		return TimeSlot{}, err
	}

	rescheduled := ts.TeacherID != orig.TeacherID ||
		ts.DayOfWeek != orig.DayOfWeek ||
		ts.StartTime != orig.StartTime ||
		ts.EndTime != orig.EndTime
	if ts.TeacherID != "" && rescheduled {
		svc.notifyTeacher(ctx, ts)
	}
	return ts, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) (int, error) {
	return svc.repo.DeleteTimeSlotsByID(ctx, ids)
}

func (svc *Service) Audit(ctx context.Context, sectionID string) ([]TimeSlot, error) {
	if _, err := svc.sectionRepo.GetSection(ctx, sectionID); err != nil {
		return nil, err
	}
	slots, err := svc.repo.QueryTimeSlots(ctx, &QueryFilter{SectionID: sectionID}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying time slots")
	}

	malformed := make([]TimeSlot, 0)
	for _, slot := range slots {
		_, startOK := NormalizeTimeString(slot.StartTime)
		_, endOK := NormalizeTimeString(slot.EndTime)
		if !(startOK && endOK && slot.DayOfWeek.IsValid()) {
			malformed = append(malformed, slot)
		}
	}
	return malformed, nil
}

// mapWriteErr turns a missing section or teacher reported by the storage layer into a validation error
// on the field holding the dangling reference.
func (svc *Service) mapWriteErr(ctx context.Context, err error, ts TimeSlot, msg string) error {
	if errors.Cause(err) != core.ErrReference {
		return errors.Wrap(err, msg)
	}
	if _, secErr := svc.sectionRepo.GetSection(ctx, ts.SectionID); core.IsNotFound(secErr) {
		return core.NewValidationError(ErrSectionNotFound, core.FieldError{Field: "section_id", Error: ErrSectionNotFound.Error()})
	}
	return core.NewValidationError(ErrTeacherNotFound, core.FieldError{Field: "teacher_id", Error: ErrTeacherNotFound.Error()})
}

// notifyTeacher emails the slot's teacher. Failures are logged, the slot is saved anyway.
func (svc *Service) notifyTeacher(ctx context.Context, ts TimeSlot) {
	teacher, err := svc.staffRepo.GetMember(ctx, staff.GetFilter{ID: ts.TeacherID})
	if err != nil {
		svc.logger.Error("timetable: getting teacher to notify", err, ts)
		return
	}
	if teacher.Email == "" || !teacher.IsActive {
		return
	}
	sec, err := svc.sectionRepo.GetSection(ctx, ts.SectionID)
	if err != nil {
		svc.logger.Error("timetable: getting section to notify", err, ts)
		return
	}

	subject := ts.Subject
	if subject == "" {
		subject = string(ts.Type)
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: teacher.Name, Address: teacher.Email}},
		Subject:      fmt.Sprintf("%s on %s, %s", subject, ts.DayOfWeek, ts.Range()),
		TemplateName: "slot_assigned",
		TemplateData: slotAssignedData{
			TeacherName: teacher.Name,
			Subject:     subject,
			SectionID:   sec.ID,
			SectionName: sec.Name,
			DayOfWeek:   ts.DayOfWeek,
			Range:       ts.Range(),
			Room:        ts.Room,
		},
	})
}
