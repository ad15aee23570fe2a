package accounts

import (
	"context"
	"time"

	"github.com/angelmondragon/listingz-backend/internal/repo"
	"github.com/angelmondragon/listingz-backend/pkg/db/models"
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailConstraint is the unique index guarding account emails.
const EmailConstraint = "accounts_email_key"

// Repository exposes account persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs an accounts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, dto CreateAccountDTO) (*models.Account, error) {
	account := dto.ToModel()
	if err := r.DB(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// FindByID loads an account by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.DB(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByEmail retrieves the account matching the normalized email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.DB(ctx).Where("email = ?", NormalizeEmail(email)).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByConfirmationToken retrieves the account awaiting the given confirmation token.
func (r *Repository) FindByConfirmationToken(ctx context.Context, token string) (*models.Account, error) {
	var account models.Account
	if err := r.DB(ctx).Where("confirmation_token = ?", token).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByResetToken retrieves the account holding the given password reset token.
func (r *Repository) FindByResetToken(ctx context.Context, token string) (*models.Account, error) {
	var account models.Account
	if err := r.DB(ctx).Where("reset_token = ?", token).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// ExistsByEmail reports whether another account already uses the email.
func (r *Repository) ExistsByEmail(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.DB(ctx).Model(&models.Account{}).Where("email = ?", NormalizeEmail(email))
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns every account, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.DB(ctx).Order("created_at DESC").Order("id DESC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// UpdateStatus writes the status and stamps updated_at.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.AccountStatus, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{
		"status":     status,
		"updated_at": at,
	})
}

// UpdateProfile overwrites the editable profile fields.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{
		"name":       name,
		"email":      NormalizeEmail(email),
		"updated_at": at,
	})
}

// UpdateLastLogin refreshes the account's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// ConfirmEmail flags the email as confirmed and consumes the token.
func (r *Repository) ConfirmEmail(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{
		"is_email_confirmed": true,
		"confirmation_token": nil,
		"updated_at":         at,
	})
}

// SetResetToken stores a password reset token with its expiry.
func (r *Repository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{
		"reset_token":            token,
		"reset_token_expires_at": expiresAt,
	})
}

// UpdatePassword stores a new hash and clears any reset token.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{
		"password_hash":          hash,
		"reset_token":            nil,
		"reset_token_expires_at": nil,
		"updated_at":             at,
	})
}

func (r *Repository) updateColumns(ctx context.Context, id uuid.UUID, values map[string]any) error {
	res := r.DB(ctx).Model(&models.Account{}).Where("id = ?", id).UpdateColumns(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
