package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmarquezdev/subvault-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
// AuthCodeID is set for customer tokens and nil for admin tokens.
type AccessTokenPayload struct {
	AuthCodeID *uuid.UUID
	Role       enums.ActorRole
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	AuthCodeID *uuid.UUID      `json:"auth_code_id,omitempty"`
	Role       enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
