package staff

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/ratiba/core"
)

// Roles
const (
	// Admin
	RoleAdmin          = "admin:"
	RoleAdminPrincipal = "admin:principal"

	// Teacher
	RoleTeacher = "teacher:"
)

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminPrincipal}
	TeacherRoles = []string{RoleTeacher}
	AllRoles     = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminPrincipal: 29,
		RoleAdmin:          21,

		// Teachers: 20 - 11
		RoleTeacher: 11,
	}

	Roles = []Role{
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Principal", Value: RoleAdminPrincipal},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 3)
	all = append(all, AdminRoles...)
	all = append(all, TeacherRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Member is a staff account: teachers receive time slots, admins manage the timetables.
type Member struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Subjects     []string  `json:"subjects"`
	Roles        []string  `json:"roles"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (m *Member) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	m.PasswordHash = hash
	return nil
}

func (m *Member) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(m.PasswordHash, []byte(pwd))
}

func (m *Member) RoleStartsWith(prefix string) bool {
	for _, role := range m.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (m *Member) IsAdmin() bool {
	return m.RoleStartsWith(RoleAdmin)
}

func (m *Member) IsTeacher() bool {
	return m.RoleStartsWith(RoleTeacher)
}

// NewMember contains information needed to create a new Member.
type NewMember struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Subjects        []string `json:"subjects" validate:"omitempty,dive,notblank,max=100"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
}

func (nm *NewMember) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	nm.Name = core.CleanString(nm.Name)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	for i, subj := range nm.Subjects {
		nm.Subjects[i] = core.CleanString(subj)
	}
	if len(nm.Roles) == 0 {
		nm.Roles = []string{RoleTeacher}
	}

	if err := validate.Struct(nm); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nm.Email)
}

// PasswordResetConfirm sets a new password using the link sent by Service.RequestPasswordReset.
type PasswordResetConfirm struct {
	UID             string `json:"uid" validate:"required"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`

	// checked against the new password
	name, email string
}

// Validate returns the member whose password is being reset.
func (prc *PasswordResetConfirm) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) (Member, error) {
	prc.UID = core.CleanString(prc.UID)
	prc.Token = core.CleanString(prc.Token)
	if err := validate.Struct(prc); err != nil {
		return Member{}, err
	}

	m, err := svc.CheckResetToken(ctx, prc.UID, prc.Token)
	if err != nil {
		return Member{}, err
	}
	prc.name, prc.email = m.Name, m.Email
	if err := validate.Struct(prc); err != nil {
		return Member{}, err
	}
	return m, nil
}

type QueryFilter struct {
	Search   string   `query:"search"`
	Roles    []string `query:"role"`
	Subject  string   `query:"subject"`
	IsActive *bool    `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.Subject == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Subject = core.CleanString(qf.Subject)
}

// GetFilter selects a single Member; the first non-empty field wins.
type GetFilter struct {
	ID    string
	Email string
}
