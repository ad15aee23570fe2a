package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/listingz-backend/internal/propagation"
	"github.com/angelmondragon/listingz-backend/internal/repo"
	"github.com/angelmondragon/listingz-backend/pkg/db"
	"github.com/angelmondragon/listingz-backend/pkg/db/models"
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/listingz-backend/pkg/errors"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
	"github.com/google/uuid"
)

// Service defines the account management and status behavior.
type Service interface {
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*AccountDTO, error)
	List(ctx context.Context, actor Actor) ([]AccountDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateAccountRequest) (*AccountDTO, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, isActive bool) (*StatusChangeResult, error)
	DeleteSelf(ctx context.Context, callerID, id uuid.UUID) (*StatusChangeResult, error)
}

type accountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	ExistsByEmail(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.AccountStatus, at time.Time) error
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email string, at time.Time) error
}

// SessionRevoker ends every live session of an account.
type SessionRevoker interface {
	RevokeAccount(ctx context.Context, accountID uuid.UUID) (int, error)
}

// ServiceParams bundles the dependencies required to build an accounts service.
type ServiceParams struct {
	Repo     accountRepository
	Notifier propagation.Notifier
	// Sessions is optional; when set, deactivation revokes the account's sessions.
	Sessions SessionRevoker
	Logger   *logger.Logger
	Clock    func() time.Time
}

type service struct {
	repo     accountRepository
	notifier propagation.Notifier
	sessions SessionRevoker
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs an accounts service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("status notifier is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:     params.Repo,
		notifier: params.Notifier,
		sessions: params.Sessions,
		logg:     logg,
		now:      clock,
	}, nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*AccountDTO, error) {
	if !actor.CanManage(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you can only view your own account")
	}
	account, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(account), nil
}

func (s *service) List(ctx context.Context, actor Actor) ([]AccountDTO, error) {
	if !actor.Role.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list accounts")
	}
	out := make([]AccountDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateAccountRequest) (*AccountDTO, error) {
	if !actor.CanManage(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you can only edit your own account")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	account, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	email := NormalizeEmail(req.Email)
	if email != account.Email {
		taken, err := s.repo.ExistsByEmail(ctx, email, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already taken")
		}
	}

	now := s.now().UTC()
	if err := s.repo.UpdateProfile(ctx, id, name, email, now); err != nil {
		if db.IsUniqueViolation(err, EmailConstraint) || db.IsUniqueViolation(err, "accounts.email") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already taken")
		}
		return nil, s.mapLookupErr(err, "update account")
	}

	account.Name = name
	account.Email = email
	account.UpdatedAt = now
	return FromModel(account), nil
}

// ChangeStatus writes the status and then propagates it. The write is never
// rolled back; propagation problems surface only in the returned result.
// Re-applying the current status still propagates.
func (s *service) ChangeStatus(ctx context.Context, id uuid.UUID, isActive bool) (*StatusChangeResult, error) {
	account, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	status := enums.AccountStatusFromActive(isActive)
	now := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, id, status, now); err != nil {
		return nil, s.mapLookupErr(err, "update account status")
	}
	account.Status = status
	account.UpdatedAt = now

	ctx = s.logg.WithFields(ctx, map[string]any{
		"account_id": id.String(),
		"status":     status.String(),
	})
	s.logg.Info(ctx, "account.status_changed")

	if !isActive {
		s.revokeSessions(ctx, id)
	}

	result := s.notifier.Notify(ctx, propagation.NewStatusChange(id, isActive, now))
	return &StatusChangeResult{
		Account:     FromModel(account),
		Propagation: result,
	}, nil
}

// revokeSessions is best effort: a failure is logged and the status change stands.
func (s *service) revokeSessions(ctx context.Context, id uuid.UUID) {
	if s.sessions == nil {
		return
	}
	revoked, err := s.sessions.RevokeAccount(ctx, id)
	if err != nil {
		s.logg.Error(ctx, "account.sessions_revoke_failed", err)
		return
	}
	s.logg.Info(s.logg.WithField(ctx, "revoked_sessions", revoked), "account.sessions_revoked")
}

// DeleteSelf deactivates the caller's own account. Nothing is physically removed.
func (s *service) DeleteSelf(ctx context.Context, callerID, id uuid.UUID) (*StatusChangeResult, error) {
	if callerID == uuid.Nil || callerID != id {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you can only delete your own account")
	}
	return s.ChangeStatus(ctx, id, false)
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupErr(err, "load account")
	}
	return account, nil
}

func (s *service) mapLookupErr(err error, op string) error {
	if repo.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
