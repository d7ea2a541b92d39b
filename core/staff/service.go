package staff

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("staff member")
	ErrEmailExists        = errors.New("a staff member with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	Repository interface {
		// CheckEmailUniqueness returns ErrEmailExists if the email is taken.
		CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error
		CreateMember(ctx context.Context, m Member, exec ...core.DBExecutor) (Member, error)
		// QueryMembers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Member.Name or Member.Email.
		QueryMembers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Member, error)
		GetMember(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Member, error)
		UpdateMember(ctx context.Context, m Member, exec ...core.DBExecutor) (Member, error)
		DeleteMembersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	ServiceInterface interface {
		CheckUniqueness(ctx context.Context, email string) error
		Create(ctx context.Context, nm NewMember) (Member, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Member, error)
		GetByID(ctx context.Context, id string) (Member, error)
		GetByEmail(ctx context.Context, email string) (Member, error)
		Authenticate(ctx context.Context, email, password string) (Member, error)
		SetLastLogin(ctx context.Context, m Member) (Member, error)
		// RequestPasswordReset emails a password reset link to the active member owning email.
		// Unknown emails are ignored silently.
		RequestPasswordReset(ctx context.Context, email string) error
		// CheckResetToken returns the member a password reset link was made for.
		CheckResetToken(ctx context.Context, uid, token string) (Member, error)
		ResetPassword(ctx context.Context, m Member, password string) (Member, error)
		Delete(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo    Repository
		conf    *core.Config
		mailSvc core.EmailService
	}

	passwordResetData struct {
		Name  string
		UID   string
		Token string
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

var NowFunc = func() time.Time { return time.Now().UTC() } // mockable

func NewService(repo Repository, conf *core.Config, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, conf: conf, mailSvc: mailSvc}
}

func (svc *Service) CheckUniqueness(ctx context.Context, email string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
		}
		return errors.Wrap(err, "checking email uniqueness")
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nm NewMember) (Member, error) {
	now := NowFunc()
	m := Member{
		Name:      nm.Name,
		Email:     nm.Email,
		Subjects:  nm.Subjects,
		Roles:     nm.Roles,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if m.Subjects == nil {
		m.Subjects = []string{}
	}
	if err := m.SetPassword(nm.Password); err != nil {
		return Member{}, errors.Wrap(err, "hashing password")
	}

	m, err := svc.repo.CreateMember(ctx, m)
	if err != nil {
		if errors.Cause(err) == core.ErrConflict {
			return Member{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
		}
		return Member{}, errors.Wrap(err, "creating staff member")
	}
	return m, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Member, error) {
	if filter != nil {
		filter.Clean()
		if filter.IsEmpty() {
			filter = nil
		}
	}
	return svc.repo.QueryMembers(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Member, error) {
	return svc.repo.GetMember(ctx, GetFilter{ID: core.CleanID(id)})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Member, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" {
		return Member{}, ErrNotFound
	}
	return svc.repo.GetMember(ctx, GetFilter{Email: email})
}

// Authenticate returns the active member matching the credentials, or ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, email, password string) (Member, error) {
	m, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if core.IsNotFound(err) {
			return Member{}, ErrInvalidCredentials
		}
		return Member{}, err
	}
	if !m.IsActive || m.CheckPassword(password) != nil {
		return Member{}, ErrInvalidCredentials
	}
	return m, nil
}

func (svc *Service) SetLastLogin(ctx context.Context, m Member) (Member, error) {
	m.LastLogin = NowFunc()
	return svc.repo.UpdateMember(ctx, m)
}

func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	m, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if core.IsNotFound(err) {
			return nil
		}
		return errors.Wrap(err, "getting staff member")
	}
	if !m.IsActive {
		return nil
	}

	token, err := MakeResetToken(svc.conf, m)
	if err != nil {
		return errors.Wrap(err, "making reset token")
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: m.Name, Address: m.Email}},
		Subject:      "Reset your password",
		TemplateName: "password_reset",
		TemplateData: passwordResetData{Name: m.Name, UID: EncodeUID(m), Token: token},
	})
	return nil
}

func (svc *Service) CheckResetToken(ctx context.Context, uid, token string) (Member, error) {
	invalid := func(err error) error {
		return core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}

	id, err := DecodeUID(uid)
	if err != nil {
		return Member{}, invalid(ErrInvalidToken)
	}
	m, err := svc.repo.GetMember(ctx, GetFilter{ID: id})
	if err != nil {
		if core.IsNotFound(err) {
			return Member{}, invalid(ErrInvalidToken)
		}
		return Member{}, errors.Wrap(err, "getting staff member")
	}
	if !m.IsActive {
		return Member{}, invalid(ErrInvalidToken)
	}
	if err := VerifyResetToken(svc.conf, m, token); err != nil {
		return Member{}, invalid(err)
	}
	return m, nil
}

func (svc *Service) ResetPassword(ctx context.Context, m Member, password string) (Member, error) {
	if err := m.SetPassword(password); err != nil {
		return Member{}, errors.Wrap(err, "hashing password")
	}
	m.UpdatedAt = NowFunc()
	return svc.repo.UpdateMember(ctx, m)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) (int, error) {
	return svc.repo.DeleteMembersByID(ctx, ids)
}
