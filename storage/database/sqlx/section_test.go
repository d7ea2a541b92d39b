package sqlxrepos

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/section"
)

func TestSectionRepository_CheckSectionUniqueness(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSectionRepository(db)
	ctx := context.Background()

	tests := []struct {
		name     string
		excluded []section.Section
		query    string
		args     []driver.Value
		exists   bool
		wantErr  error
	}{
		{
			name:  "unique",
			query: "SELECT EXISTS(SELECT 1 FROM section WHERE LOWER(name) = LOWER($1) AND academic_year = $2)",
			args:  []driver.Value{"5 A", "2024-2025"},
		},
		{
			name:    "taken",
			query:   "SELECT EXISTS(SELECT 1 FROM section WHERE LOWER(name) = LOWER($1) AND academic_year = $2)",
			args:    []driver.Value{"5 A", "2024-2025"},
			exists:  true,
			wantErr: section.ErrSectionExists,
		},
		{
			name:     "excluding self",
			excluded: []section.Section{{ID: testSectionID}, {ID: ""}},
			query:    "SELECT EXISTS(SELECT 1 FROM section WHERE LOWER(name) = LOWER($1) AND academic_year = $2 AND id NOT IN ($3))",
			args:     []driver.Value{"5 A", "2024-2025", testSectionID},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock.ExpectQuery(regexp.QuoteMeta(tt.query)).
				WithArgs(tt.args...).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			err := repo.CheckSectionUniqueness(ctx, "5 A", "2024-2025", tt.excluded)
			if err != tt.wantErr {
				t.Errorf("CheckSectionUniqueness() error = %v, wantErr %v", err, tt.wantErr)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSectionRepository_CreateSection(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSectionRepository(db)
	ctx := context.Background()
	now := time.Date(2024, time.September, 2, 8, 0, 0, 0, time.UTC)
	sec := section.Section{Name: "5 A", ClassName: "Grade 5", AcademicYear: "2024-2025", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO section (" + sectionColumns + ")")).
		WithArgs(sqlmock.AnyArg(), "5 A", "Grade 5", "2024-2025", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	got, err := repo.CreateSection(ctx, sec)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "5 A", got.Name)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO section")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "section_name_academic_year_key"})
	_, err = repo.CreateSection(ctx, sec)
	assert.Equal(t, core.ErrConflict, errors.Cause(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_QuerySections(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSectionRepository(db)
	ctx := context.Background()
	now := time.Date(2024, time.September, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM section WHERE (name ILIKE $1 OR class_name ILIKE $2) AND academic_year = $3 ORDER BY name ASC")).
		WithArgs("%grade%", "%grade%", "2024-2025").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "class_name", "academic_year", "created_at", "updated_at"}).
			AddRow(testSectionID, "5 A", "Grade 5", "2024-2025", now, now))

	got, err := repo.QuerySections(ctx,
		&section.QueryFilter{Search: "grade", AcademicYear: "2024-2025"},
		[]core.DBOrdering{{Field: "name", Ascending: true}})
	require.NoError(t, err)
	assert.Equal(t, []section.Section{{
		ID: testSectionID, Name: "5 A", ClassName: "Grade 5", AcademicYear: "2024-2025", CreatedAt: now, UpdatedAt: now,
	}}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
