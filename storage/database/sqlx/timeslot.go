package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/timetable"
	"github.com/trezcool/ratiba/storage/database"
)

const (
	timeSlotColumns = "id, section_id, day_of_week, start_time, end_time, subject, teacher_id, type, room, created_at, updated_at"

	// Monday first, then by time. Stored times are normalized on write, legacy rows may sort oddly.
	timeSlotDefaultOrder = "array_position(ARRAY['Monday','Tuesday','Wednesday','Thursday','Friday','Saturday','Sunday']::varchar[], day_of_week), start_time, end_time"
)

var timeSlotOrderings = map[string]string{
	"start_time": "start_time",
	"end_time":   "end_time",
	"subject":    "subject",
	"type":       "type",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type timeSlotRow struct {
	ID        string      `db:"id"`
	SectionID string      `db:"section_id"`
	DayOfWeek string      `db:"day_of_week"`
	StartTime string      `db:"start_time"`
	EndTime   string      `db:"end_time"`
	Subject   string      `db:"subject"`
	TeacherID null.String `db:"teacher_id"`
	Type      string      `db:"type"`
	Room      null.String `db:"room"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func toTimeSlotRow(ts timetable.TimeSlot) timeSlotRow {
	typ := ts.Type
	if typ == "" {
		typ = timetable.TypeLesson
	}
	return timeSlotRow{
		ID:        ts.ID,
		SectionID: ts.SectionID,
		DayOfWeek: string(ts.DayOfWeek),
		StartTime: ts.StartTime,
		EndTime:   ts.EndTime,
		Subject:   ts.Subject,
		TeacherID: null.NewString(ts.TeacherID, ts.TeacherID != ""),
		Type:      string(typ),
		Room:      null.NewString(ts.Room, ts.Room != ""),
		CreatedAt: ts.CreatedAt.UTC(),
		UpdatedAt: ts.UpdatedAt.UTC(),
	}
}

func (row timeSlotRow) timeSlot() timetable.TimeSlot {
	return timetable.TimeSlot{
		ID:        row.ID,
		SectionID: row.SectionID,
		DayOfWeek: timetable.WeekDay(row.DayOfWeek),
		StartTime: row.StartTime,
		EndTime:   row.EndTime,
		Subject:   row.Subject,
		TeacherID: row.TeacherID.String,
		Type:      timetable.SlotType(row.Type),
		Room:      row.Room.String,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type timeSlotRepository struct {
	repository
}

var _ timetable.Repository = (*timeSlotRepository)(nil) // interface compliance check

func NewTimeSlotRepository(exec core.DBExecutor) *timeSlotRepository {
	return &timeSlotRepository{repository{exec: exec}}
}

func (repo timeSlotRepository) CreateTimeSlot(ctx context.Context, ts timetable.TimeSlot, exec ...core.DBExecutor) (timetable.TimeSlot, error) {
	ts.ID = uuid.New().String()
	row := toTimeSlotRow(ts)
	q := `INSERT INTO time_slot (` + timeSlotColumns + `)
		VALUES (:id, :section_id, :day_of_week, :start_time, :end_time, :subject, :teacher_id, :type, :room, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, row); err != nil {
		return timetable.TimeSlot{}, errors.Wrap(database.MapError(err), "inserting time slot")
	}
	return row.timeSlot(), nil
}

func (repo timeSlotRepository) QueryTimeSlots(ctx context.Context, filter *timetable.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]timetable.TimeSlot, error) {
	var w where
	if filter != nil {
		if filter.SectionID != "" {
			if _, err := uuid.Parse(filter.SectionID); err != nil {
				return []timetable.TimeSlot{}, nil
			}
			w.add("section_id = ?", filter.SectionID)
		}
		if filter.DayOfWeek != "" {
			w.add("day_of_week = ?", string(filter.DayOfWeek))
		}
		if filter.TeacherID != "" {
			if _, err := uuid.Parse(filter.TeacherID); err != nil {
				return []timetable.TimeSlot{}, nil
			}
			w.add("teacher_id = ?", filter.TeacherID)
		}
		if filter.Type != "" {
			w.add("type = ?", string(filter.Type))
		}
	}

	exe := repo.getExec(exec)
	q := "SELECT " + timeSlotColumns + " FROM time_slot" + w.String() + orderBy(ordering, timeSlotOrderings, timeSlotDefaultOrder)
	var rows []timeSlotRow
	if err := sqlx.SelectContext(ctx, exe, &rows, exe.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying time slots")
	}

	slots := make([]timetable.TimeSlot, 0, len(rows))
	for _, row := range rows {
		slots = append(slots, row.timeSlot())
	}
	return slots, nil
}

func (repo timeSlotRepository) GetTimeSlot(ctx context.Context, id string, exec ...core.DBExecutor) (timetable.TimeSlot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return timetable.TimeSlot{}, timetable.ErrNotFound
	}
	exe := repo.getExec(exec)
	var row timeSlotRow
	q := "SELECT " + timeSlotColumns + " FROM time_slot WHERE id = ?"
	if err := sqlx.GetContext(ctx, exe, &row, exe.Rebind(q), id); err != nil {
		return timetable.TimeSlot{}, errors.Wrap(database.MapNotFound(err, timetable.ErrNotFound), "finding time slot by ID")
	}
	return row.timeSlot(), nil
}

func (repo timeSlotRepository) UpdateTimeSlot(ctx context.Context, ts timetable.TimeSlot, exec ...core.DBExecutor) (timetable.TimeSlot, error) {
	row := toTimeSlotRow(ts)
	q := `UPDATE time_slot
		SET day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, subject = :subject,
			teacher_id = :teacher_id, type = :type, room = :room, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, row)
	if err != nil {
		return timetable.TimeSlot{}, errors.Wrap(database.MapNotFound(err, timetable.ErrNotFound), "updating time slot")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return timetable.TimeSlot{}, timetable.ErrNotFound
	}
	return row.timeSlot(), nil
}

func (repo timeSlotRepository) LockSection(ctx context.Context, sectionID string, exec ...core.DBExecutor) error {
	if _, err := uuid.Parse(sectionID); err != nil {
		return timetable.ErrSectionNotFound
	}
	exe := repo.getExec(exec)
	var id string
	if err := sqlx.GetContext(ctx, exe, &id, exe.Rebind("SELECT id FROM section WHERE id = ? FOR UPDATE"), sectionID); err != nil {
		return errors.Wrap(database.MapNotFound(err, timetable.ErrSectionNotFound), "locking section")
	}
	return nil
}

func (repo timeSlotRepository) DeleteTimeSlotsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	return deleteByID(ctx, repo.getExec(exec), "time_slot", ids)
}
