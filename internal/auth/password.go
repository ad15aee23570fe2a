package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/listingz-backend/internal/accounts"
	"github.com/angelmondragon/listingz-backend/internal/repo"
	"github.com/angelmondragon/listingz-backend/pkg/config"
	"github.com/angelmondragon/listingz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/listingz-backend/pkg/errors"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
	"github.com/angelmondragon/listingz-backend/pkg/mailer"
	"github.com/angelmondragon/listingz-backend/pkg/security"
	"github.com/google/uuid"
)

const (
	resetTokenBytes      = 32
	resetPasswordPath    = "/api/v1/auth/reset-password"
	defaultResetTokenTTL = time.Hour
	invalidResetMessage  = "invalid or expired reset token"
)

// PasswordService handles the forgot/reset password flow.
type PasswordService interface {
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	ValidateResetToken(ctx context.Context, token string) (bool, error)
}

type passwordRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByResetToken(ctx context.Context, token string) (*models.Account, error)
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string, at time.Time) error
}

// PasswordServiceParams packages the dependencies for password recovery.
type PasswordServiceParams struct {
	AccountRepo    passwordRepository
	Mailer         mailer.Sender
	PasswordConfig config.PasswordConfig
	PublicBaseURL  string
	Logger         *logger.Logger
	Clock          func() time.Time
}

type passwordService struct {
	accounts    passwordRepository
	mail        mailer.Sender
	passwordCfg config.PasswordConfig
	baseURL     string
	ttl         time.Duration
	logg        *logger.Logger
	now         func() time.Time
}

// NewPasswordService builds the password recovery service.
func NewPasswordService(params PasswordServiceParams) (PasswordService, error) {
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
	ttl := params.PasswordConfig.ResetTokenTTL
	if ttl <= 0 {
		ttl = defaultResetTokenTTL
	}
	return &passwordService{
		accounts:    params.AccountRepo,
		mail:        params.Mailer,
		passwordCfg: params.PasswordConfig,
		baseURL:     strings.TrimRight(params.PublicBaseURL, "/"),
		ttl:         ttl,
		logg:        logg,
		now:         clock,
	}, nil
}

// ForgotPassword issues a reset token. Unknown emails succeed silently.
func (s *passwordService) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.accounts.FindByEmail(ctx, accounts.NormalizeEmail(email))
	if err != nil {
		if repo.IsNotFound(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}
	if !account.IsActive() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, deactivatedMessage)
	}

	token, err := security.GenerateToken(resetTokenBytes)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}
	expiresAt := s.now().UTC().Add(s.ttl)
	if err := s.accounts.SetResetToken(ctx, account.ID, token, expiresAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset token")
	}

	ctx = s.logg.WithUserID(ctx, account.ID.String())
	if err := s.mail.Send(ctx, mailer.Message{
		To:       account.Email,
		Subject:  "Reset your password",
		Template: mailer.TemplateResetPassword,
		Data: mailer.TemplateData{
			Name:      account.Name,
			ActionURL: s.baseURL + resetPasswordPath + "?token=" + token,
			ValidFor:  s.ttl.String(),
		},
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send reset email")
	}
	s.logg.Info(ctx, "auth.reset_requested")
	return nil
}

func (s *passwordService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if len(req.NewPassword) < security.MinPasswordLength {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "password must be at least %d characters", security.MinPasswordLength)
	}
	account, err := s.lookupValid(ctx, req.Token)
	if err != nil {
		return err
	}
	if account == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, invalidResetMessage)
	}
	if !account.IsActive() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, deactivatedMessage)
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, hash, s.now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	s.logg.Info(s.logg.WithUserID(ctx, account.ID.String()), "auth.password_reset")
	return nil
}

func (s *passwordService) ValidateResetToken(ctx context.Context, token string) (bool, error) {
	account, err := s.lookupValid(ctx, token)
	if err != nil {
		return false, err
	}
	return account != nil, nil
}

// lookupValid returns nil without error when the token is unknown or expired.
func (s *passwordService) lookupValid(ctx context.Context, token string) (*models.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	account, err := s.accounts.FindByResetToken(ctx, token)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reset token")
	}
	if account.ResetTokenExpiresAt == nil || !account.ResetTokenExpiresAt.After(s.now().UTC()) {
		return nil, nil
	}
	return account, nil
}
