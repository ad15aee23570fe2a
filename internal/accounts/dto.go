package accounts

import (
	"strings"
	"time"

	"github.com/angelmondragon/listingz-backend/internal/propagation"
	"github.com/angelmondragon/listingz-backend/pkg/db/models"
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	"github.com/google/uuid"
)

// AccountDTO is the transport shape that omits credentials and tokens.
type AccountDTO struct {
	ID               uuid.UUID           `json:"id"`
	Name             string              `json:"name"`
	Email            string              `json:"email"`
	Role             enums.AccountRole   `json:"role"`
	Status           enums.AccountStatus `json:"status"`
	IsEmailConfirmed bool                `json:"is_email_confirmed"`
	LastLoginAt      *time.Time          `json:"last_login_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// CreateAccountDTO holds the data required by the repo to persist a new account.
type CreateAccountDTO struct {
	Name              string
	Email             string
	PasswordHash      string
	Role              enums.AccountRole
	ConfirmationToken string
}

// UpdateAccountRequest is the editable profile surface.
type UpdateAccountRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// ChangeStatusRequest is the admin payload for activating or deactivating an account.
type ChangeStatusRequest struct {
	UserID   uuid.UUID `json:"user_id" validate:"required"`
	IsActive *bool     `json:"is_active" validate:"required"`
}

// StatusChangeResult pairs the written account with what happened to the
// propagation of its new status.
type StatusChangeResult struct {
	Account     *AccountDTO        `json:"account"`
	Propagation propagation.Result `json:"propagation"`
}

// Message renders the admin confirmation text.
func (r StatusChangeResult) Message() string {
	if r.Account == nil {
		return ""
	}
	return "User status changed to " + r.Account.Status.Label()
}

// Actor is the authenticated caller as seen by the service layer.
type Actor struct {
	ID   uuid.UUID
	Role enums.AccountRole
}

// CanManage reports whether the actor may read or edit the target account.
func (a Actor) CanManage(target uuid.UUID) bool {
	return a.Role.IsAdmin() || (a.ID != uuid.Nil && a.ID == target)
}

func FromModel(a *models.Account) *AccountDTO {
	if a == nil {
		return nil
	}
	return &AccountDTO{
		ID:               a.ID,
		Name:             a.Name,
		Email:            a.Email,
		Role:             a.Role,
		Status:           a.Status,
		IsEmailConfirmed: a.IsEmailConfirmed,
		LastLoginAt:      a.LastLoginAt,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func (c CreateAccountDTO) ToModel() *models.Account {
	role := c.Role
	if role == "" {
		role = enums.AccountRoleUser
	}
	var token *string
	if c.ConfirmationToken != "" {
		t := c.ConfirmationToken
		token = &t
	}
	return &models.Account{
		Name:              strings.TrimSpace(c.Name),
		Email:             NormalizeEmail(c.Email),
		PasswordHash:      c.PasswordHash,
		Role:              role,
		Status:            enums.AccountStatusActive,
		IsEmailConfirmed:  false,
		ConfirmationToken: token,
	}
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
