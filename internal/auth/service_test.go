package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/okovalchuk/distrohub-backend/pkg/auth"
	"github.com/okovalchuk/distrohub-backend/pkg/auth/session"
	"github.com/okovalchuk/distrohub-backend/pkg/config"
	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
	"github.com/okovalchuk/distrohub-backend/pkg/enums"
	pkgerrors "github.com/okovalchuk/distrohub-backend/pkg/errors"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "distrohub",
	ExpirationMinutes: 60,
}

type stubProvider struct {
	identity *Identity
	err      error
}

func (s *stubProvider) AuthURL(state string) string { return "https://accounts.example/auth?state=" + state }

func (s *stubProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

type stubUsers struct {
	byGoogleID map[string]*models.User
	byEmail    map[string]*models.User
	created    []*models.User
	updates    map[uuid.UUID]map[string]any
}

func newStubUsers() *stubUsers {
	return &stubUsers{
		byGoogleID: map[string]*models.User{},
		byEmail:    map[string]*models.User{},
		updates:    map[uuid.UUID]map[string]any{},
	}
}

func (s *stubUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New()
	s.created = append(s.created, user)
	s.byEmail[user.Email] = user
	if user.GoogleID != nil {
		s.byGoogleID[*user.GoogleID] = user
	}
	return user, nil
}

func (s *stubUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUsers) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	user, ok := s.byGoogleID[googleID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUsers) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates[id] = updates
	return nil
}

func (s *stubUsers) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

type stubOrgs struct {
	orgs  []models.Organization
	roles map[uuid.UUID]enums.MemberRole
}

func (s *stubOrgs) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Organization, error) {
	return s.orgs, nil
}

func (s *stubOrgs) FindMember(ctx context.Context, orgID, userID uuid.UUID) (*models.OrgMember, error) {
	role, ok := s.roles[orgID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.OrgMember{OrgID: orgID, UserID: userID, Role: role}, nil
}

type stubSessions struct {
	refreshByAccessID map[string]string
	revoked           []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{refreshByAccessID: map[string]string{}}
}

func (s *stubSessions) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.refreshByAccessID[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.refreshByAccessID[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.refreshByAccessID, oldAccessID)
	newAccessID := session.NewAccessID()
	token := "refresh-" + newAccessID
	s.refreshByAccessID[newAccessID] = token
	return newAccessID, token, nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.refreshByAccessID, accessID)
	return nil
}

func googleIdentity() *Identity {
	return &Identity{
		GoogleID:  "google-123",
		Email:     "Singer@Example.com",
		Name:      "Test Singer",
		AvatarURL: "https://lh3.example/avatar.png",
	}
}

func newTestService(t *testing.T, provider *stubProvider, usersRepo *stubUsers, orgsRepo *stubOrgs, sessions *stubSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Provider:       provider,
		UserRepo:       usersRepo,
		OrgsRepo:       orgsRepo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCallbackProvisionsNewArtistAccount(t *testing.T) {
	usersRepo := newStubUsers()
	svc := newTestService(t, &stubProvider{identity: googleIdentity()}, usersRepo, &stubOrgs{}, newStubSessions())

	out, err := svc.HandleCallback(context.Background(), CallbackRequest{Code: "auth-code"})
	if err != nil {
		t.Fatalf("callback: %v", err)
	}

	if len(usersRepo.created) != 1 {
		t.Fatalf("expected one created user, got %d", len(usersRepo.created))
	}
	created := usersRepo.created[0]
	if created.Email != "singer@example.com" {
		t.Fatalf("expected lower-cased email, got %q", created.Email)
	}
	if created.Role != enums.UserRoleArtist {
		t.Fatalf("expected ARTIST default role, got %q", created.Role)
	}
	if created.GoogleID == nil || *created.GoogleID != "google-123" {
		t.Fatalf("expected google id linked, got %v", created.GoogleID)
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", out)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, out.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != created.ID || claims.Role != enums.UserRoleArtist {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ActiveOrgID != nil {
		t.Fatalf("expected no active org for fresh account, got %v", claims.ActiveOrgID)
	}
}

func TestCallbackLinksExistingEmailAccount(t *testing.T) {
	usersRepo := newStubUsers()
	existing := &models.User{ID: uuid.New(), Email: "singer@example.com", Name: "Test Singer", Role: enums.UserRoleLabel}
	usersRepo.byEmail[existing.Email] = existing
	svc := newTestService(t, &stubProvider{identity: googleIdentity()}, usersRepo, &stubOrgs{}, newStubSessions())

	out, err := svc.HandleCallback(context.Background(), CallbackRequest{Code: "auth-code"})
	if err != nil {
		t.Fatalf("callback: %v", err)
	}

	if len(usersRepo.created) != 0 {
		t.Fatalf("expected no new user, got %d", len(usersRepo.created))
	}
	updates := usersRepo.updates[existing.ID]
	if updates["google_id"] != "google-123" {
		t.Fatalf("expected google id linked, got %v", updates)
	}
	if out.User == nil || out.User.ID != existing.ID {
		t.Fatalf("expected existing user in response, got %+v", out.User)
	}
}

func TestCallbackCarriesActiveOrgIntoClaims(t *testing.T) {
	usersRepo := newStubUsers()
	googleID := "google-123"
	existing := &models.User{ID: uuid.New(), Email: "singer@example.com", GoogleID: &googleID, Role: enums.UserRoleArtist}
	usersRepo.byGoogleID[googleID] = existing

	orgID := uuid.New()
	orgsRepo := &stubOrgs{
		orgs:  []models.Organization{{ID: orgID, Name: "Night Label", Type: enums.OrgTypeLabel}},
		roles: map[uuid.UUID]enums.MemberRole{orgID: enums.MemberRoleOwner},
	}
	svc := newTestService(t, &stubProvider{identity: googleIdentity()}, usersRepo, orgsRepo, newStubSessions())

	out, err := svc.HandleCallback(context.Background(), CallbackRequest{Code: "auth-code"})
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if len(out.Orgs) != 1 || out.Orgs[0].Role != enums.MemberRoleOwner {
		t.Fatalf("unexpected orgs %+v", out.Orgs)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, out.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.ActiveOrgID == nil || *claims.ActiveOrgID != orgID {
		t.Fatalf("expected active org %s, got %v", orgID, claims.ActiveOrgID)
	}
	if claims.OrgRole == nil || *claims.OrgRole != enums.MemberRoleOwner {
		t.Fatalf("expected OWNER org role, got %v", claims.OrgRole)
	}
}

func TestCallbackRejectsFailedExchange(t *testing.T) {
	svc := newTestService(t, &stubProvider{err: fmt.Errorf("invalid_grant")}, newStubUsers(), &stubOrgs{}, newStubSessions())

	_, err := svc.HandleCallback(context.Background(), CallbackRequest{Code: "bad-code"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	usersRepo := newStubUsers()
	sessions := newStubSessions()
	svc := newTestService(t, &stubProvider{identity: googleIdentity()}, usersRepo, &stubOrgs{}, sessions)

	login, err := svc.HandleCallback(context.Background(), CallbackRequest{Code: "auth-code"})
	if err != nil {
		t.Fatalf("callback: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatalf("expected rotated refresh token")
	}

	// The old pair must be dead after rotation.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized after reuse, got %v", err)
	}
}

func TestRefreshRejectsForeignToken(t *testing.T) {
	svc := newTestService(t, &stubProvider{identity: googleIdentity()}, newStubUsers(), &stubOrgs{}, newStubSessions())

	_, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  "not-a-jwt",
		RefreshToken: "whatever",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := newStubSessions()
	svc := newTestService(t, &stubProvider{identity: googleIdentity()}, newStubUsers(), &stubOrgs{}, sessions)

	login, err := svc.HandleCallback(context.Background(), CallbackRequest{Code: "auth-code"})
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if err := svc.Logout(context.Background(), login.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 {
		t.Fatalf("expected one revoked session, got %v", sessions.revoked)
	}
	if len(sessions.refreshByAccessID) != 0 {
		t.Fatalf("expected session store emptied, got %v", sessions.refreshByAccessID)
	}
}
