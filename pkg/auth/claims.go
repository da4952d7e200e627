package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/okovalchuk/distrohub-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Role        enums.UserRole
	ActiveOrgID *uuid.UUID
	OrgRole     *enums.MemberRole
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID      uuid.UUID         `json:"user_id"`
	Role        enums.UserRole    `json:"role"`
	ActiveOrgID *uuid.UUID        `json:"active_org_id,omitempty"`
	OrgRole     *enums.MemberRole `json:"org_role,omitempty"`
	jwt.RegisteredClaims
}
