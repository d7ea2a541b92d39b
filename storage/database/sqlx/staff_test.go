package sqlxrepos

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core/staff"
)

var staffRowCols = []string{"id", "name", "email", "subjects", "roles", "is_active", "password_hash", "created_at", "updated_at", "last_login"}

func TestStaffRepository_GetMember(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStaffRepository(db)
	ctx := context.Background()
	now := time.Date(2024, time.September, 2, 8, 0, 0, 0, time.UTC)

	t.Run("no filter", func(t *testing.T) {
		_, err := repo.GetMember(ctx, staff.GetFilter{})
		assert.Equal(t, staff.ErrNotFound, err)
	})

	t.Run("by email", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM staff WHERE email = $1")).
			WithArgs("jane@school.test").
			WillReturnRows(sqlmock.NewRows(staffRowCols).
				AddRow(testTeacherID, "Jane", "jane@school.test", "{Maths,Physics}", "{teacher:}", true, []byte("hash"), now, now, nil))

		got, err := repo.GetMember(ctx, staff.GetFilter{Email: "jane@school.test"})
		require.NoError(t, err)
		assert.Equal(t, staff.Member{
			ID:           testTeacherID,
			Name:         "Jane",
			Email:        "jane@school.test",
			Subjects:     []string{"Maths", "Physics"},
			Roles:        []string{staff.RoleTeacher},
			IsActive:     true,
			PasswordHash: []byte("hash"),
			CreatedAt:    now,
			UpdatedAt:    now,
		}, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStaffRepository_QueryMembers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStaffRepository(db)
	ctx := context.Background()
	active := true

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM staff WHERE EXISTS (SELECT 1 FROM UNNEST(roles) staff_role WHERE staff_role LIKE ANY($1)) AND is_active = $2 ORDER BY created_at DESC")).
		WithArgs(pq.Array([]string{"admin:%"}), true).
		WillReturnRows(sqlmock.NewRows(staffRowCols))

	got, err := repo.QueryMembers(ctx, &staff.QueryFilter{Roles: []string{staff.RoleAdmin}, IsActive: &active}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepository_CheckEmailUniqueness(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStaffRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM staff WHERE email = $1)")).
		WithArgs("jane@school.test").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := repo.CheckEmailUniqueness(context.Background(), "jane@school.test")
	assert.Equal(t, staff.ErrEmailExists, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
