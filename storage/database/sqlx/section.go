package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/section"
	"github.com/trezcool/ratiba/storage/database"
)

const sectionColumns = "id, name, class_name, academic_year, created_at, updated_at"

var sectionOrderings = map[string]string{
	"name":          "name",
	"academic_year": "academic_year",
	"created_at":    "created_at",
	"updated_at":    "updated_at",
}

type sectionRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	ClassName    string    `db:"class_name"`
	AcademicYear string    `db:"academic_year"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func toSectionRow(sec section.Section) sectionRow {
	return sectionRow{
		ID:           sec.ID,
		Name:         sec.Name,
		ClassName:    sec.ClassName,
		AcademicYear: sec.AcademicYear,
		CreatedAt:    sec.CreatedAt.UTC(),
		UpdatedAt:    sec.UpdatedAt.UTC(),
	}
}

func (row sectionRow) section() section.Section {
	return section.Section{
		ID:           row.ID,
		Name:         row.Name,
		ClassName:    row.ClassName,
		AcademicYear: row.AcademicYear,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

type sectionRepository struct {
	repository
}

var _ section.Repository = (*sectionRepository)(nil) // interface compliance check

func NewSectionRepository(exec core.DBExecutor) *sectionRepository {
	return &sectionRepository{repository{exec: exec}}
}

func (repo sectionRepository) CheckSectionUniqueness(ctx context.Context, name, academicYear string, excludedSections []section.Section, exec ...core.DBExecutor) error {
	var w where
	w.add("LOWER(name) = LOWER(?)", name)
	w.add("academic_year = ?", academicYear)
	if len(excludedSections) > 0 {
		ids := make([]string, 0, len(excludedSections))
		for _, sec := range excludedSections {
			ids = append(ids, sec.ID)
		}
		if ids = validIDs(ids); len(ids) > 0 {
			w.add("id NOT IN (?)", ids)
		}
	}

	q, args, err := sqlx.In("SELECT EXISTS(SELECT 1 FROM section"+w.String()+")", w.args...)
	if err != nil {
		return errors.Wrap(err, "building section uniqueness query")
	}
	found, err := exists(ctx, repo.getExec(exec), q, args...)
	if err != nil {
		return errors.Wrap(err, "checking section uniqueness")
	}
	if found {
		return section.ErrSectionExists
	}
	return nil
}

func (repo sectionRepository) CreateSection(ctx context.Context, sec section.Section, exec ...core.DBExecutor) (section.Section, error) {
	sec.ID = uuid.New().String()
	row := toSectionRow(sec)
	q := `INSERT INTO section (` + sectionColumns + `)
		VALUES (:id, :name, :class_name, :academic_year, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, row); err != nil {
		return section.Section{}, errors.Wrap(database.MapError(err), "inserting section")
	}
	return row.section(), nil
}

func (repo sectionRepository) QuerySections(ctx context.Context, filter *section.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]section.Section, error) {
	var w where
	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			w.add("(name ILIKE ? OR class_name ILIKE ?)", val, val)
		}
		if filter.AcademicYear != "" {
			w.add("academic_year = ?", filter.AcademicYear)
		}
	}

	exe := repo.getExec(exec)
	q := "SELECT " + sectionColumns + " FROM section" + w.String() + orderBy(ordering, sectionOrderings, "created_at DESC")
	var rows []sectionRow
	if err := sqlx.SelectContext(ctx, exe, &rows, exe.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying sections")
	}

	sections := make([]section.Section, 0, len(rows))
	for _, row := range rows {
		sections = append(sections, row.section())
	}
	return sections, nil
}

func (repo sectionRepository) GetSection(ctx context.Context, id string, exec ...core.DBExecutor) (section.Section, error) {
	if _, err := uuid.Parse(id); err != nil {
		return section.Section{}, section.ErrNotFound
	}
	exe := repo.getExec(exec)
	var row sectionRow
	q := "SELECT " + sectionColumns + " FROM section WHERE id = ?"
	if err := sqlx.GetContext(ctx, exe, &row, exe.Rebind(q), id); err != nil {
		return section.Section{}, errors.Wrap(database.MapNotFound(err, section.ErrNotFound), "finding section by ID")
	}
	return row.section(), nil
}

func (repo sectionRepository) UpdateSection(ctx context.Context, sec section.Section, exec ...core.DBExecutor) (section.Section, error) {
	row := toSectionRow(sec)
	q := `UPDATE section
		SET name = :name, class_name = :class_name, academic_year = :academic_year, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, row)
	if err != nil {
		return section.Section{}, errors.Wrap(database.MapNotFound(err, section.ErrNotFound), "updating section")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return section.Section{}, section.ErrNotFound
	}
	return row.section(), nil
}

func (repo sectionRepository) DeleteSectionsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	return deleteByID(ctx, repo.getExec(exec), "section", ids)
}
