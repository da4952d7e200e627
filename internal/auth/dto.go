package auth

import (
	"github.com/google/uuid"

	"github.com/okovalchuk/distrohub-backend/internal/users"
	"github.com/okovalchuk/distrohub-backend/pkg/enums"
)

// CallbackRequest carries the authorization code returned by Google.
type CallbackRequest struct {
	Code  string `json:"code" validate:"required"`
	State string `json:"state"`
}

// OrgSummary describes the organization metadata returned after login.
type OrgSummary struct {
	ID   uuid.UUID        `json:"id"`
	Name string           `json:"name"`
	Type enums.OrgType    `json:"type"`
	Role enums.MemberRole `json:"role"`
}

// LoginResponse contains the tokens, user, and org list produced by a successful sign-in.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Orgs         []OrgSummary   `json:"orgs"`
	User         *users.UserDTO `json:"user"`
}

// RefreshRequest carries the expired access token and its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
