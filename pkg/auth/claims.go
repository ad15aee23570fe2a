package auth

import (
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.AccountRole
	// JTI doubles as the refresh session key; a random id is generated when empty.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to clients. Both services
// verify the same claims with the shared secret.
type AccessTokenClaims struct {
	UserID uuid.UUID         `json:"user_id"`
	Role   enums.AccountRole `json:"role"`
	jwt.RegisteredClaims
}
