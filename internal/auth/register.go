package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/listingz-backend/internal/accounts"
	"github.com/angelmondragon/listingz-backend/internal/repo"
	"github.com/angelmondragon/listingz-backend/pkg/config"
	"github.com/angelmondragon/listingz-backend/pkg/db"
	"github.com/angelmondragon/listingz-backend/pkg/db/models"
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/listingz-backend/pkg/errors"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
	"github.com/angelmondragon/listingz-backend/pkg/mailer"
	"github.com/angelmondragon/listingz-backend/pkg/security"
	"github.com/google/uuid"
)

const (
	confirmationTokenBytes = 32
	confirmEmailPath       = "/api/v1/auth/confirm-email"
	registeredMessage      = "Registration successful. Please check your email to confirm your account."
)

// RegisterService handles sign-up and email confirmation.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	ConfirmEmail(ctx context.Context, token string) error
}

type registerRepository interface {
	Create(ctx context.Context, dto accounts.CreateAccountDTO) (*models.Account, error)
	ExistsByEmail(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	FindByConfirmationToken(ctx context.Context, token string) (*models.Account, error)
	ConfirmEmail(ctx context.Context, id uuid.UUID, at time.Time) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	AccountRepo    registerRepository
	Mailer         mailer.Sender
	PasswordConfig config.PasswordConfig
	PublicBaseURL  string
	Logger         *logger.Logger
	Clock          func() time.Time
}

type registerService struct {
	accounts    registerRepository
	mail        mailer.Sender
	passwordCfg config.PasswordConfig
	baseURL     string
	logg        *logger.Logger
	now         func() time.Time
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.AccountRepo == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &registerService{
		accounts:    params.AccountRepo,
		mail:        params.Mailer,
		passwordCfg: params.PasswordConfig,
		baseURL:     strings.TrimRight(params.PublicBaseURL, "/"),
		logg:        logg,
		now:         clock,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	email := accounts.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if len(req.Password) < security.MinPasswordLength {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "password must be at least %d characters", security.MinPasswordLength)
	}

	taken, err := s.accounts.ExistsByEmail(ctx, email, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check account email")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user with this email already exists")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	token, err := security.GenerateToken(confirmationTokenBytes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate confirmation token")
	}

	account, err := s.accounts.Create(ctx, accounts.CreateAccountDTO{
		Name:              name,
		Email:             email,
		PasswordHash:      passwordHash,
		Role:              enums.AccountRoleUser,
		ConfirmationToken: token,
	})
	if err != nil {
		if db.IsUniqueViolation(err, accounts.EmailConstraint) || db.IsUniqueViolation(err, "accounts.email") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create account")
	}

	ctx = s.logg.WithUserID(ctx, account.ID.String())
	s.logg.Info(ctx, "auth.registered")

	// The account stays even when delivery fails; the token is still valid.
	if err := s.mail.Send(ctx, mailer.Message{
		To:       account.Email,
		Subject:  "Confirm your email",
		Template: mailer.TemplateConfirmEmail,
		Data: mailer.TemplateData{
			Name:      account.Name,
			ActionURL: s.link(confirmEmailPath, token),
		},
	}); err != nil {
		s.logg.Error(ctx, "auth.confirmation_mail_failed", err)
	}

	return &RegisterResponse{
		Message: registeredMessage,
		Email:   account.Email,
		UserID:  account.ID,
	}, nil
}

func (s *registerService) ConfirmEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}
	account, err := s.accounts.FindByConfirmationToken(ctx, token)
	if err != nil {
		if repo.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid confirmation token")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup confirmation token")
	}
	if account.IsEmailConfirmed {
		return pkgerrors.New(pkgerrors.CodeValidation, "email already confirmed")
	}
	if err := s.accounts.ConfirmEmail(ctx, account.ID, s.now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirm email")
	}
	s.logg.Info(s.logg.WithUserID(ctx, account.ID.String()), "auth.email_confirmed")
	return nil
}

func (s *registerService) link(path, token string) string {
	return s.baseURL + path + "?token=" + url.QueryEscape(token)
}
