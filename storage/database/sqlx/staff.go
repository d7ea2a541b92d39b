package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/staff"
	"github.com/trezcool/ratiba/storage/database"
)

const staffColumns = "id, name, email, subjects, roles, is_active, password_hash, created_at, updated_at, last_login"

var staffOrderings = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"last_login": "last_login",
}

type staffRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	Subjects     pq.StringArray `db:"subjects"`
	Roles        pq.StringArray `db:"roles"`
	IsActive     bool           `db:"is_active"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func toStaffRow(m staff.Member) staffRow {
	subjects, roles := m.Subjects, m.Roles
	if subjects == nil {
		subjects = []string{}
	}
	if roles == nil {
		roles = []string{}
	}
	return staffRow{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Subjects:     subjects,
		Roles:        roles,
		IsActive:     m.IsActive,
		PasswordHash: null.NewBytes(m.PasswordHash, m.PasswordHash != nil),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(m.LastLogin.UTC(), !m.LastLogin.IsZero()),
	}
}

func (row staffRow) member() staff.Member {
	m := staff.Member{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Subjects:     []string(row.Subjects),
		Roles:        []string(row.Roles),
		IsActive:     row.IsActive,
		PasswordHash: row.PasswordHash.Bytes,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	if row.LastLogin.Valid {
		m.LastLogin = row.LastLogin.Time.UTC()
	}
	return m
}

type staffRepository struct {
	repository
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(exec core.DBExecutor) *staffRepository {
	return &staffRepository{repository{exec: exec}}
}

func (repo staffRepository) CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error {
	found, err := exists(ctx, repo.getExec(exec), "SELECT EXISTS(SELECT 1 FROM staff WHERE email = ?)", email)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if found {
		return staff.ErrEmailExists
	}
	return nil
}

func (repo staffRepository) CreateMember(ctx context.Context, m staff.Member, exec ...core.DBExecutor) (staff.Member, error) {
	m.ID = uuid.New().String()
	row := toStaffRow(m)
	q := `INSERT INTO staff (` + staffColumns + `)
		VALUES (:id, :name, :email, :subjects, :roles, :is_active, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, row); err != nil {
		return staff.Member{}, errors.Wrap(database.MapError(err), "inserting staff member")
	}
	return row.member(), nil
}

func (repo staffRepository) QueryMembers(ctx context.Context, filter *staff.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]staff.Member, error) {
	var w where
	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			w.add("(name ILIKE ? OR email ILIKE ?)", val, val)
		}
		// members with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			patterns := make([]string, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				patterns = append(patterns, role+"%")
			}
			w.add("EXISTS (SELECT 1 FROM UNNEST(roles) staff_role WHERE staff_role LIKE ANY(?))", pq.Array(patterns))
		}
		if filter.Subject != "" {
			w.add("EXISTS (SELECT 1 FROM UNNEST(subjects) staff_subject WHERE staff_subject ILIKE ?)", filter.Subject)
		}
		if filter.IsActive != nil {
			w.add("is_active = ?", *filter.IsActive)
		}
	}

	exe := repo.getExec(exec)
	q := "SELECT " + staffColumns + " FROM staff" + w.String() + orderBy(ordering, staffOrderings, "created_at DESC")
	var rows []staffRow
	if err := sqlx.SelectContext(ctx, exe, &rows, exe.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying staff")
	}

	members := make([]staff.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.member())
	}
	return members, nil
}

func (repo staffRepository) GetMember(ctx context.Context, filter staff.GetFilter, exec ...core.DBExecutor) (staff.Member, error) {
	var w where
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return staff.Member{}, staff.ErrNotFound
		}
		w.add("id = ?", filter.ID)
	case filter.Email != "":
		w.add("email = ?", filter.Email)
	default:
		return staff.Member{}, staff.ErrNotFound
	}

	exe := repo.getExec(exec)
	var row staffRow
	q := "SELECT " + staffColumns + " FROM staff" + w.String()
	if err := sqlx.GetContext(ctx, exe, &row, exe.Rebind(q), w.args...); err != nil {
		return staff.Member{}, errors.Wrap(database.MapNotFound(err, staff.ErrNotFound), "finding staff member")
	}
	return row.member(), nil
}

func (repo staffRepository) UpdateMember(ctx context.Context, m staff.Member, exec ...core.DBExecutor) (staff.Member, error) {
	row := toStaffRow(m)
	q := `UPDATE staff
		SET name = :name, email = :email, subjects = :subjects, roles = :roles, is_active = :is_active,
			password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, row)
	if err != nil {
		return staff.Member{}, errors.Wrap(database.MapNotFound(err, staff.ErrNotFound), "updating staff member")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return staff.Member{}, staff.ErrNotFound
	}
	return row.member(), nil
}

func (repo staffRepository) DeleteMembersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	return deleteByID(ctx, repo.getExec(exec), "staff", ids)
}
