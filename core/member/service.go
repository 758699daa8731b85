package member

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
)

var (
	ErrNotFound           = core.NewNotFoundError("member not found")
	ErrEmailExists        = errors.New("a member with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSelfDemotion       = core.NewForbiddenError("a head cannot change their own role")
	ErrSelfDeletion       = core.NewForbiddenError("a head cannot delete themselves")

	nowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

type (
	// Repository stores member documents. Every write replaces the whole document except AppendMessage,
	// which only appends to the inbox.
	Repository interface {
		CreateMember(ctx context.Context, m Member) (Member, error)
		GetMember(ctx context.Context, filter GetFilter) (Member, error)
		QueryMembers(ctx context.Context, filter QueryFilter) ([]Member, error)
		UpdateMember(ctx context.Context, m Member) (Member, error)
		AppendMessage(ctx context.Context, memberID string, msg Message) error
		DeleteMember(ctx context.Context, id string) error
	}

	// Notifier delivers messages to members. Delivery is best-effort: callers log failures and carry on.
	Notifier interface {
		Notify(ctx context.Context, recipient Member, msg Message) error
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Register creates a member awaiting acceptance.
func (svc *Service) Register(ctx context.Context, nm NewMember) (Member, error) {
	now := nowFunc()
	role := nm.Role
	if role == "" {
		role = RoleNotAccepted
	}
	m := Member{
		Name:      nm.Name,
		Email:     nm.Email,
		Committee: nm.Committee,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.SetPassword(nm.Password); err != nil {
		return Member{}, errors.Wrap(err, "setting password")
	}

	m, err := svc.repo.CreateMember(ctx, m)
	if err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return Member{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return Member{}, errors.Wrap(err, "creating member")
	}
	return m, nil
}

// Authenticate returns the member matching email and password.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Member, error) {
	m, err := svc.repo.GetMember(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Member{}, ErrInvalidCredentials
		}
		return Member{}, errors.Wrap(err, "getting member by email")
	}
	if err = m.CheckPassword(pwd); err != nil {
		return Member{}, ErrInvalidCredentials
	}
	return m, nil
}

// Resolve maps a verified identity key (the member's email) to an Actor.
func (svc *Service) Resolve(ctx context.Context, email string) (Actor, error) {
	m, err := svc.repo.GetMember(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		return Actor{}, errors.Wrap(err, "getting member by email")
	}
	return NewActor(m), nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Member, error) {
	return svc.repo.GetMember(ctx, GetFilter{ID: id})
}

func (svc *Service) Query(ctx context.Context, actor Actor, filter QueryFilter) ([]Member, error) {
	if err := actor.Require(PermManageMembers); err != nil {
		return nil, err
	}
	filter.Clean()
	return svc.repo.QueryMembers(ctx, filter)
}

func (svc *Service) ChangeRole(ctx context.Context, actor Actor, id string, ru RoleUpdate) (Member, error) {
	if err := actor.Require(PermManageMembers); err != nil {
		return Member{}, err
	}
	if id == actor.ID && ru.Role != actor.Role {
		return Member{}, ErrSelfDemotion
	}

	m, err := svc.repo.GetMember(ctx, GetFilter{ID: id})
	if err != nil {
		return Member{}, errors.Wrap(err, "getting member")
	}
	m.Role = ru.Role
	m.UpdatedAt = nowFunc()
	return svc.repo.UpdateMember(ctx, m)
}

// SetRate sets the overall rate of a member, used by dashboards and rankings.
func (svc *Service) SetRate(ctx context.Context, actor Actor, id string, ru RateUpdate) (Member, error) {
	if err := actor.Require(PermManageMembers); err != nil {
		return Member{}, err
	}

	m, err := svc.repo.GetMember(ctx, GetFilter{ID: id})
	if err != nil {
		return Member{}, errors.Wrap(err, "getting member")
	}
	rate := *ru.Rate
	m.Rate = &rate
	m.UpdatedAt = nowFunc()
	return svc.repo.UpdateMember(ctx, m)
}

// SetPassword is used by the admin CLI.
func (svc *Service) SetPassword(ctx context.Context, pr PasswordReset) error {
	m, err := svc.repo.GetMember(ctx, GetFilter{Email: pr.Email})
	if err != nil {
		return errors.Wrap(err, "getting member by email")
	}
	if err = m.SetPassword(pr.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	m.UpdatedAt = nowFunc()
	_, err = svc.repo.UpdateMember(ctx, m)
	return errors.Wrap(err, "updating member")
}

func (svc *Service) Delete(ctx context.Context, actor Actor, id string) error {
	if err := actor.Require(PermManageMembers); err != nil {
		return err
	}
	if id == actor.ID {
		return ErrSelfDeletion
	}
	if _, err := svc.repo.GetMember(ctx, GetFilter{ID: id}); err != nil {
		return errors.Wrap(err, "getting member")
	}
	return svc.repo.DeleteMember(ctx, id)
}

// Inbox returns the actor's messages, oldest first.
func (svc *Service) Inbox(ctx context.Context, actor Actor) ([]Message, error) {
	m, err := svc.repo.GetMember(ctx, GetFilter{ID: actor.ID})
	if err != nil {
		return nil, errors.Wrap(err, "getting member")
	}
	if m.Messages == nil {
		return []Message{}, nil
	}
	return m.Messages, nil
}
