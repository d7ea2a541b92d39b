package sqlxrepos

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/timetable"
)

const (
	testSectionID = "9b2a1a4e-0a43-4c43-9d0e-7d1f7c0b9a01"
	testTeacherID = "0f6c7f4e-5c1e-4e86-8f55-3b8ce0b1ab02"
	testSlotID    = "5d0f6f0e-2b55-4d8e-a5f5-1c1a1f0d9c03"
)

var timeSlotRowCols = []string{
	"id", "section_id", "day_of_week", "start_time", "end_time", "subject", "teacher_id", "type", "room", "created_at", "updated_at",
}

func TestTimeSlotRepository_CreateTimeSlot(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimeSlotRepository(db)
	ctx := context.Background()
	now := time.Date(2024, time.September, 2, 8, 0, 0, 0, time.UTC)

	slot := timetable.TimeSlot{
		SectionID: testSectionID,
		DayOfWeek: timetable.Monday,
		StartTime: "09:00",
		EndTime:   "10:00",
		Subject:   "Maths",
		TeacherID: testTeacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Run("ok", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO time_slot (" + timeSlotColumns + ")")).
			WithArgs(sqlmock.AnyArg(), testSectionID, "Monday", "09:00", "10:00", "Maths", testTeacherID, "lesson", nil, now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		got, err := repo.CreateTimeSlot(ctx, slot)
		require.NoError(t, err)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, timetable.TypeLesson, got.Type)
		assert.Equal(t, "", got.Room)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown section", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO time_slot")).
			WillReturnError(&pq.Error{Code: "23503", Constraint: "time_slot_section_id_fkey"})

		_, err := repo.CreateTimeSlot(ctx, slot)
		assert.Equal(t, core.ErrReference, errors.Cause(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTimeSlotRepository_QueryTimeSlots(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimeSlotRepository(db)
	ctx := context.Background()
	now := time.Date(2024, time.September, 2, 8, 0, 0, 0, time.UTC)

	t.Run("by section & day", func(t *testing.T) {
		rows := sqlmock.NewRows(timeSlotRowCols).
			AddRow(testSlotID, testSectionID, "Monday", "09:00", "10:00", "Maths", testTeacherID, "lesson", "B12", now, now).
			AddRow(testTeacherID, testSectionID, "Monday", "9h", "10:00", "", nil, "break", nil, now, now)
		mock.ExpectQuery(`FROM time_slot WHERE section_id = \$1 AND day_of_week = \$2 ORDER BY array_position`).
			WithArgs(testSectionID, "Monday").
			WillReturnRows(rows)

		got, err := repo.QueryTimeSlots(ctx, &timetable.QueryFilter{SectionID: testSectionID, DayOfWeek: timetable.Monday}, nil)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, timetable.TimeSlot{
			ID: testSlotID, SectionID: testSectionID, DayOfWeek: timetable.Monday, StartTime: "09:00", EndTime: "10:00",
			Subject: "Maths", TeacherID: testTeacherID, Type: timetable.TypeLesson, Room: "B12", CreatedAt: now, UpdatedAt: now,
		}, got[0])
		assert.Equal(t, "9h", got[1].StartTime) // stored as is
		assert.Equal(t, "", got[1].TeacherID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("custom ordering", func(t *testing.T) {
		mock.ExpectQuery(`FROM time_slot WHERE type = \$1 ORDER BY start_time DESC`).
			WithArgs("exam").
			WillReturnRows(sqlmock.NewRows(timeSlotRowCols))

		got, err := repo.QueryTimeSlots(ctx, &timetable.QueryFilter{Type: timetable.TypeExam}, []core.DBOrdering{{Field: "start_time"}})
		require.NoError(t, err)
		assert.Empty(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed section id", func(t *testing.T) {
		got, err := repo.QueryTimeSlots(ctx, &timetable.QueryFilter{SectionID: "lol"}, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTimeSlotRepository_GetTimeSlot(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimeSlotRepository(db)
	ctx := context.Background()

	t.Run("malformed id", func(t *testing.T) {
		_, err := repo.GetTimeSlot(ctx, "lol")
		assert.True(t, core.IsNotFound(err))
	})

	t.Run("no rows", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM time_slot WHERE id = $1")).
			WithArgs(testSlotID).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetTimeSlot(ctx, testSlotID)
		assert.Equal(t, timetable.ErrNotFound, errors.Cause(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTimeSlotRepository_UpdateTimeSlot(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimeSlotRepository(db)
	ctx := context.Background()
	slot := timetable.TimeSlot{ID: testSlotID, SectionID: testSectionID, DayOfWeek: timetable.Friday, StartTime: "11:00", EndTime: "12:00", Type: timetable.TypeBreak}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE time_slot")).WillReturnResult(sqlmock.NewResult(0, 0))
	_, err := repo.UpdateTimeSlot(ctx, slot)
	assert.Equal(t, timetable.ErrNotFound, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE time_slot")).WillReturnResult(sqlmock.NewResult(0, 1))
	got, err := repo.UpdateTimeSlot(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, slot.StartTime, got.StartTime)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE time_slot")).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "time_slot_teacher_id_fkey"})
	_, err = repo.UpdateTimeSlot(ctx, slot)
	assert.Equal(t, core.ErrReference, errors.Cause(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepository_LockSection(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimeSlotRepository(db)
	ctx := context.Background()
	lockQuery := regexp.QuoteMeta("SELECT id FROM section WHERE id = $1 FOR UPDATE")

	t.Run("ok", func(t *testing.T) {
		mock.ExpectQuery(lockQuery).WithArgs(testSectionID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testSectionID))
		require.NoError(t, repo.LockSection(ctx, testSectionID))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed id", func(t *testing.T) {
		assert.Equal(t, timetable.ErrSectionNotFound, repo.LockSection(ctx, "lol"))
	})

	t.Run("no rows", func(t *testing.T) {
		mock.ExpectQuery(lockQuery).WithArgs(testSectionID).WillReturnError(sql.ErrNoRows)
		err := repo.LockSection(ctx, testSectionID)
		assert.Equal(t, timetable.ErrSectionNotFound, errors.Cause(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTimeSlotRepository_DeleteTimeSlotsByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimeSlotRepository(db)
	ctx := context.Background()

	cnt, err := repo.DeleteTimeSlotsByID(ctx, []string{"lol"})
	require.NoError(t, err)
	assert.Equal(t, 0, cnt)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM time_slot WHERE id IN ($1, $2)")).
		WithArgs(testSlotID, testSectionID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	cnt, err = repo.DeleteTimeSlotsByID(ctx, []string{testSlotID, "lol", testSectionID})
	require.NoError(t, err)
	assert.Equal(t, 1, cnt)
	require.NoError(t, mock.ExpectationsWereMet())
}
