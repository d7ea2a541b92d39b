package section_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/section"
	"github.com/trezcool/ratiba/core/timetable"
	inmemdb "github.com/trezcool/ratiba/storage/database/inmem"
	testutil "github.com/trezcool/ratiba/tests"
)

func TestNewSection_Validate(t *testing.T) {
	ctx := context.Background()
	validate := testutil.NewValidator()
	repo := inmemdb.NewSectionRepository(inmemdb.NewDB())
	svc := section.NewService(repo)
	testutil.CreateSection(t, repo, "Grade 5 A", "Grade 5", "2024-2025")

	tests := []struct {
		name      string
		ns        section.NewSection
		wantField string
	}{
		{name: "valid", ns: section.NewSection{Name: "Grade 5 B", AcademicYear: "2024-2025"}},
		{name: "same name, other year", ns: section.NewSection{Name: "Grade 5 A", AcademicYear: "2025-2026"}},
		{name: "missing name", ns: section.NewSection{Name: "  ", AcademicYear: "2024-2025"}, wantField: "name"},
		{name: "bad year format", ns: section.NewSection{Name: "Grade 6", AcademicYear: "2024/25"}, wantField: "academic_year"},
		{name: "years not consecutive", ns: section.NewSection{Name: "Grade 6", AcademicYear: "2024-2026"}, wantField: "academic_year"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ns.Validate(ctx, validate, svc)
			if tc.wantField == "" {
				assert.NoError(t, err)
				return
			}
			verrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "want validator.ValidationErrors, got %v", err)
			assert.Equal(t, tc.wantField, verrs[0].Field())
		})
	}

	t.Run("duplicate name", func(t *testing.T) {
		ns := section.NewSection{Name: "grade 5 a", AcademicYear: "2024-2025"}
		err := ns.Validate(ctx, validate, svc)
		verr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok, "want *core.ValidationError, got %v", err)
		assert.Equal(t, section.ErrSectionExists, verr.Err)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	validate := testutil.NewValidator()
	repo := inmemdb.NewSectionRepository(inmemdb.NewDB())
	svc := section.NewService(repo)
	sec := testutil.CreateSection(t, repo, "Grade 5 A", "Grade 5", "2024-2025")
	testutil.CreateSection(t, repo, "Grade 5 B", "Grade 5", "2024-2025")

	t.Run("keeping its own name", func(t *testing.T) {
		us := section.UpdateSection{ClassName: "Fifth grade"}
		require.NoError(t, us.Validate(ctx, sec, validate, svc))
		got, err := svc.Update(ctx, sec, us)
		require.NoError(t, err)
		assert.Equal(t, "Grade 5 A", got.Name)
		assert.Equal(t, "Fifth grade", got.ClassName)
	})

	t.Run("taking another's name", func(t *testing.T) {
		us := section.UpdateSection{Name: "Grade 5 B"}
		err := us.Validate(ctx, sec, validate, svc)
		verr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok, "want *core.ValidationError, got %v", err)
		assert.Equal(t, section.ErrSectionExists, verr.Err)
	})
}

func TestService_Delete_cascades(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	repo := inmemdb.NewSectionRepository(db)
	slotRepo := inmemdb.NewTimeSlotRepository(db)
	svc := section.NewService(repo)
	sec := testutil.CreateSection(t, repo, "Grade 5 A", "", "2024-2025")
	ts := testutil.CreateTimeSlot(t, slotRepo, sec.ID, timetable.Monday, "09:00", "10:00", "Maths", "")

	n, err := svc.Delete(ctx, sec.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.GetByID(ctx, sec.ID)
	assert.True(t, core.IsNotFound(err))
	_, err = slotRepo.GetTimeSlot(ctx, ts.ID)
	assert.True(t, core.IsNotFound(err))
}
