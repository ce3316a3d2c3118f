package auth

import (
	"github.com/farmcart/farmcart-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID       uuid.UUID
	ActiveFarmID *uuid.UUID
	Role         enums.ActorRole
	JTI          string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID       uuid.UUID       `json:"user_id"`
	ActiveFarmID *uuid.UUID      `json:"active_farm_id,omitempty"`
	Role         enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
