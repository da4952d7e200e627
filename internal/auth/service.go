package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/internal/users"
	pkgAuth "github.com/okovalchuk/distrohub-backend/pkg/auth"
	"github.com/okovalchuk/distrohub-backend/pkg/auth/session"
	"github.com/okovalchuk/distrohub-backend/pkg/config"
	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
	"github.com/okovalchuk/distrohub-backend/pkg/enums"
	pkgerrors "github.com/okovalchuk/distrohub-backend/pkg/errors"
)

const (
	signInFailedMessage   = "google sign-in could not be completed"
	invalidSessionMessage = "session is no longer valid"
	invalidTokenMessage   = "invalid access token"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	AuthURL(state string) string
	HandleCallback(ctx context.Context, req CallbackRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

type service struct {
	provider IdentityProvider
	users    userRepository
	orgs     orgsRepository
	session  sessionManager
	jwtCfg   config.JWTConfig
	now      func() time.Time
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type orgsRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Organization, error)
	FindMember(ctx context.Context, orgID, userID uuid.UUID) (*models.OrgMember, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Provider       IdentityProvider
	UserRepo       userRepository
	OrgsRepo       orgsRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
}

// NewService constructs a Google sign-in service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Provider == nil {
		return nil, fmt.Errorf("identity provider is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.OrgsRepo == nil {
		return nil, fmt.Errorf("organizations repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		provider: params.Provider,
		users:    params.UserRepo,
		orgs:     params.OrgsRepo,
		session:  params.SessionManager,
		jwtCfg:   params.JWTConfig,
		now:      time.Now,
	}, nil
}

func (s *service) AuthURL(state string) string {
	return s.provider.AuthURL(state)
}

func (s *service) HandleCallback(ctx context.Context, req CallbackRequest) (*LoginResponse, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "authorization code is required")
	}

	identity, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, signInFailedMessage)
	}

	user, err := s.upsertUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}
	user.LastLoginAt = &now

	memberships, err := s.orgs.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list organizations")
	}

	orgs := make([]OrgSummary, 0, len(memberships))
	var activeOrgID *uuid.UUID
	var orgRole *enums.MemberRole
	for i, org := range memberships {
		member, err := s.orgs.FindMember(ctx, org.ID, user.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
		}
		orgs = append(orgs, OrgSummary{
			ID:   org.ID,
			Name: org.Name,
			Type: org.Type,
			Role: member.Role,
		})
		if i == 0 {
			id := org.ID
			role := member.Role
			activeOrgID = &id
			orgRole = &role
		}
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:      user.ID,
		Role:        user.Role,
		ActiveOrgID: activeOrgID,
		OrgRole:     orgRole,
		JTI:         accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Orgs:         orgs,
		User:         users.FromModel(user),
	}, nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidTokenMessage)
	}

	newAccessID, newRefresh, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidSessionMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:      claims.UserID,
		Role:        claims.Role,
		ActiveOrgID: claims.ActiveOrgID,
		OrgRole:     claims.OrgRole,
		JTI:         newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
	}, nil
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidTokenMessage)
	}
	if err := s.session.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// upsertUser resolves the Google identity to a local user, linking the Google
// ID to an existing email account or provisioning a new artist account.
func (s *service) upsertUser(ctx context.Context, identity *Identity) (*models.User, error) {
	user, err := s.users.FindByGoogleID(ctx, identity.GoogleID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user by google id")
	}

	email := strings.ToLower(strings.TrimSpace(identity.Email))
	user, err = s.users.FindByEmail(ctx, email)
	if err == nil {
		updates := map[string]any{"google_id": identity.GoogleID}
		if identity.AvatarURL != "" && user.AvatarURL == nil {
			updates["avatar_url"] = identity.AvatarURL
		}
		if err := s.users.Update(ctx, user.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link google account")
		}
		googleID := identity.GoogleID
		user.GoogleID = &googleID
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user by email")
	}

	googleID := identity.GoogleID
	newUser := &models.User{
		Email:    email,
		Name:     strings.TrimSpace(identity.Name),
		GoogleID: &googleID,
		Role:     enums.UserRoleArtist,
	}
	if identity.AvatarURL != "" {
		avatar := identity.AvatarURL
		newUser.AvatarURL = &avatar
	}
	created, err := s.users.Create(ctx, newUser)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return created, nil
}
