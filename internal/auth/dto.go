package auth

import (
	"time"

	"github.com/angelmondragon/listingz-backend/internal/accounts"
	"github.com/google/uuid"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// LoginResponse contains the tokens and the authenticated account.
type LoginResponse struct {
	TokenPair
	User *accounts.AccountDTO `json:"user"`
}

// RefreshInput carries the session being rotated. AccessTokenID is the jti of
// the (possibly expired) access token presented with the refresh token.
type RefreshInput struct {
	UserID        uuid.UUID
	AccessTokenID string
	RefreshToken  string
}

// RegisterRequest contains the payload required to open an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterResponse summarizes a successful registration.
type RegisterResponse struct {
	Message string    `json:"message"`
	Email   string    `json:"email"`
	UserID  uuid.UUID `json:"user_id"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}
